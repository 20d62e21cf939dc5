package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/listing"
)

type ProductController struct {
	products *services.ProductService
}

func NewProductController(products *services.ProductService) *ProductController {
	return &ProductController{products: products}
}

// Index handles GET /api/products?page=&limit=&categories=3.7&search=
func (h *ProductController) Index(c *ctx.Context) {
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
	res, err := h.products.List(c.Context(), services.ProductFilter{
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

func (h *ProductController) All(c *ctx.Context) {
	rows, err := h.products.All(c.Context())
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

func (h *ProductController) Show(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	p, err := h.products.Get(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (h *ProductController) Store(c *ctx.Context) {
	var in services.ProductInput
	if !c.BindJSON(&in) {
		return
	}
	p, err := h.products.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(p)
}

func (h *ProductController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var patch services.ProductPatch
	if !c.BindJSON(&patch) {
		return
	}
	p, err := h.products.Update(c.Context(), id, patch)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}

func (h *ProductController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.products.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product deleted successfully")
}

// Photo handles POST /api/products/{id}/photo with a multipart "photo" file.
func (h *ProductController) Photo(c *ctx.Context) {
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
	p, err := h.products.UploadPhoto(c.Context(), id, ph)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(p)
}
