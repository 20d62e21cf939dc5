package controllers

import (
	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
)

// CategoryController serves product categories.
type CategoryController struct {
	categories *services.CategoryService
}

func NewCategoryController(categories *services.CategoryService) *CategoryController {
	return &CategoryController{categories: categories}
}

func (h *CategoryController) All(c *ctx.Context) {
	rows, err := h.categories.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *CategoryController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	cat, err := h.categories.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (h *CategoryController) Store(c *ctx.Context) {
	var in services.CategoryInput
	if !c.BindJSON(&in) {
		return
	}
	cat, err := h.categories.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(cat)
}

func (h *CategoryController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var p services.CategoryPatch
	if !c.BindJSON(&p) {
		return
	}
	cat, err := h.categories.Update(c.Context(), id, p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(cat)
}

func (h *CategoryController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.categories.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Category deleted successfully")
}
