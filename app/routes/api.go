// Package routes is the route table of the back office.
package routes

import (
	"github.com/sincro/backoffice/app/controllers"
	"github.com/sincro/backoffice/app/models"
	"github.com/sincro/backoffice/pkg/ctx"
	"github.com/sincro/backoffice/pkg/rbac"
	"github.com/sincro/backoffice/pkg/router"
)

// Controllers are the handlers mounted under /api.
type Controllers struct {
	Bookings        *controllers.BookingController
	Coupons         *controllers.CouponController
	Orders          *controllers.OrderController
	Categories      *controllers.CategoryController
	Products        *controllers.ProductController
	StoreCategories *controllers.StoreCategoryController
	Stores          *controllers.StoreController
	Inventory       *controllers.InventoryController
	Users           *controllers.UserController
}

// RegisterAPI mounts the /api routes. authenticate verifies the bearer
// token; everything but login sits behind it.
func RegisterAPI(r *router.Router, c Controllers, authenticate router.Middleware) {
	api := r.Group("/api")
	api.Post("/auth/login", "auth.login", ctx.Wrap(c.Users.Login))

	p := api.Group("", authenticate)
	p.Get("/auth/me", "auth.me", ctx.Wrap(c.Users.Me))

	p.Get("/bookings", "bookings.index", ctx.Wrap(c.Bookings.Index))
	p.Get("/bookings/{id}", "bookings.show", ctx.Wrap(c.Bookings.Show))

	p.Get("/orders", "orders.index", ctx.Wrap(c.Orders.Index))
	p.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Orders.Show))

	p.Get("/coupons", "coupons.index", ctx.Wrap(c.Coupons.Index))
	p.Get("/coupons/all", "coupons.all", ctx.Wrap(c.Coupons.All))
	p.Post("/coupons", "coupons.store", ctx.Wrap(c.Coupons.Store))
	p.Get("/coupons/{id}", "coupons.show", ctx.Wrap(c.Coupons.Show))
	p.Put("/coupons/{id}", "coupons.update", ctx.Wrap(c.Coupons.Update))
	p.Delete("/coupons/{id}", "coupons.destroy", ctx.Wrap(c.Coupons.Destroy))

	p.Get("/categories", "categories.all", ctx.Wrap(c.Categories.All))
	p.Post("/categories", "categories.store", ctx.Wrap(c.Categories.Store))
	p.Get("/categories/{id}", "categories.show", ctx.Wrap(c.Categories.Show))
	p.Put("/categories/{id}", "categories.update", ctx.Wrap(c.Categories.Update))
	p.Delete("/categories/{id}", "categories.destroy", ctx.Wrap(c.Categories.Destroy))

	p.Get("/products", "products.index", ctx.Wrap(c.Products.Index))
	p.Get("/products/all", "products.all", ctx.Wrap(c.Products.All))
	p.Post("/products", "products.store", ctx.Wrap(c.Products.Store))
	p.Get("/products/{id}", "products.show", ctx.Wrap(c.Products.Show))
	p.Put("/products/{id}", "products.update", ctx.Wrap(c.Products.Update))
	p.Delete("/products/{id}", "products.destroy", ctx.Wrap(c.Products.Destroy))
	p.Post("/products/{id}/photo", "products.photo", ctx.Wrap(c.Products.Photo))

	p.Get("/store-categories", "store_categories.all", ctx.Wrap(c.StoreCategories.All))
	p.Post("/store-categories", "store_categories.store", ctx.Wrap(c.StoreCategories.Store))
	p.Get("/store-categories/{id}", "store_categories.show", ctx.Wrap(c.StoreCategories.Show))
	p.Put("/store-categories/{id}", "store_categories.update", ctx.Wrap(c.StoreCategories.Update))
	p.Delete("/store-categories/{id}", "store_categories.destroy", ctx.Wrap(c.StoreCategories.Destroy))

	p.Get("/stores", "stores.index", ctx.Wrap(c.Stores.Index))
	p.Get("/stores/all", "stores.all", ctx.Wrap(c.Stores.All))
	p.Get("/stores/options", "stores.options", ctx.Wrap(c.Stores.Options))
	p.Post("/stores", "stores.store", ctx.Wrap(c.Stores.Store))
	p.Get("/stores/{id}", "stores.show", ctx.Wrap(c.Stores.Show))
	p.Put("/stores/{id}", "stores.update", ctx.Wrap(c.Stores.Update))
	p.Delete("/stores/{id}", "stores.destroy", ctx.Wrap(c.Stores.Destroy))
	p.Post("/stores/{id}/photo", "stores.photo", ctx.Wrap(c.Stores.Photo))
	p.Get("/stores/{id}/inventory", "stores.inventory", ctx.Wrap(c.Inventory.ByStore))

	p.Get("/store-inventory/products", "inventory.products", ctx.Wrap(c.Inventory.Products))
	p.Post("/store-inventory", "inventory.store", ctx.Wrap(c.Inventory.Store))
	p.Put("/store-inventory/{id}", "inventory.update", ctx.Wrap(c.Inventory.Update))
	p.Delete("/store-inventory/{id}", "inventory.destroy", ctx.Wrap(c.Inventory.Destroy))

	p.Get("/users", "users.index", ctx.Wrap(c.Users.Index))
	p.Get("/users/{id}", "users.show", ctx.Wrap(c.Users.Show))
	admins := p.Group("/users", rbac.HasRole(models.RoleOwner, models.RoleManager))
	admins.Post("", "users.store", ctx.Wrap(c.Users.Store))
	admins.Put("/{id}", "users.update", ctx.Wrap(c.Users.Update))
	admins.Delete("/{id}", "users.destroy", ctx.Wrap(c.Users.Destroy))
}
