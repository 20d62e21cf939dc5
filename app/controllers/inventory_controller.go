package controllers

import (
	"net/http"

	"github.com/sincro/backoffice/app/services"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/listing"
)

type InventoryController struct {
	inventory *services.InventoryService
}

func NewInventoryController(inventory *services.InventoryService) *InventoryController {
	return &InventoryController{inventory: inventory}
}

// ByStore handles GET /api/stores/{id}/inventory.
func (h *InventoryController) ByStore(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	rows, err := h.inventory.ByStore(c.Context(), id)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(rows)
}

// Products handles GET /api/store-inventory/products?storeId=&categories=&search=&page=&limit=
func (h *InventoryController) Products(c *ctx.Context) {
	params, err := pageParams(c)
	if err != nil {
		c.Fail(err)
		return
	}
	storeID, err := optionalID(c, "storeId")
	if err != nil {
		c.Fail(err)
		return
	}
	categories, err := listing.ParseIDs("categories", c.Query("categories"))
	if err != nil {
		c.Fail(err)
		return
	}
	res, err := h.inventory.Products(c.Context(), services.InventoryFilter{
		Params:      params,
		StoreID:     storeID,
		CategoryIDs: categories,
		Search:      c.Query("search"),
	})
	if err != nil {
		c.Fail(err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *InventoryController) Store(c *ctx.Context) {
	var in services.InventoryInput
	if !c.BindJSON(&in) {
		return
	}
	row, err := h.inventory.Create(c.Context(), in)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Created(row)
}

func (h *InventoryController) Update(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	var p services.InventoryPatch
	if !c.BindJSON(&p) {
		return
	}
	row, err := h.inventory.Update(c.Context(), id, p)
	if err != nil {
		c.Fail(err)
		return
	}
	c.Success(row)
}

func (h *InventoryController) Destroy(c *ctx.Context) {
	id, err := c.ParamInt64("id")
	if err != nil {
		c.Fail(err)
		return
	}
	if err := h.inventory.Delete(c.Context(), id); err != nil {
		c.Fail(err)
		return
	}
	c.Message("Product removed from store successfully")
}
