package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/listing"
)

type StoreCategoryController struct {
	categories *services.StoreCategoryService
}

func NewStoreCategoryController(categories *services.StoreCategoryService) *StoreCategoryController {
	return &StoreCategoryController{categories: categories}
}

func (h *StoreCategoryController) All(c *ctx.Context) {
	rows, err := h.categories.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *StoreCategoryController) Show(c *ctx.Context) {
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

func (h *StoreCategoryController) Store(c *ctx.Context) {
	var in services.StoreCategoryInput
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

func (h *StoreCategoryController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var p services.StoreCategoryPatch
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

func (h *StoreCategoryController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.categories.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Store category deleted successfully")
}

type StoreController struct {
	stores *services.StoreService
}

func NewStoreController(stores *services.StoreService) *StoreController {
	return &StoreController{stores: stores}
}

// Index handles GET /api/stores?page=&limit=&categories=&search=
func (h *StoreController) Index(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	categories, err := listing.ParseIDs("categories", c.Query("categories"))
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.stores.List(c.Context(), services.StoreFilter{
		Params:      params,
		CategoryIDs: categories,
		Search:      c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *StoreController) All(c *ctx.Context) {
	rows, err := h.stores.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *StoreController) Options(c *ctx.Context) {
	rows, err := h.stores.Options(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *StoreController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	st, err := h.stores.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(st)
}

func (h *StoreController) Store(c *ctx.Context) {
	var in services.StoreInput
	if !c.BindJSON(&in) {
		return
	}
	st, err := h.stores.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(st)
}

func (h *StoreController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var p services.StorePatch
	if !c.BindJSON(&p) {
		return
	}
	st, err := h.stores.Update(c.Context(), id, p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(st)
}

func (h *StoreController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.stores.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Store deleted successfully")
}

// Photo handles POST /api/stores/{id}/photo with a multipart "photo" file.
func (h *StoreController) Photo(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	ph, err := photo(c)
	if err != nil {
		c.Fail(err)
		return
	}
	defer closePhoto(ph)
	st, err := h.stores.UploadPhoto(c.Context(), id, ph)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(st)
}
