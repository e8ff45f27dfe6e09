// Package routes wires controllers onto the router.
package routes

import (
	"github.com/shashiranjanraj/dabba/app/controllers"
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
	"github.com/shashiranjanraj/dabba/pkg/router"
)

// Controllers groups everything Register needs.
type Controllers struct {
	Catalog  *controllers.CatalogController
	Auth     *controllers.AuthController
	Cart     *controllers.CartController
	Checkout *controllers.CheckoutController
	Payment  *controllers.PaymentController
	Webhook  *controllers.WebhookController
	Order    *controllers.OrderController
	Admin    *controllers.AdminMealController
}

// Register mounts the full route table.
func Register(r *router.Router, c Controllers) {
	// Public catalog.
	r.Get("/", "catalog.index", ctx.Wrap(c.Catalog.List))
	r.Get("/meals/{id}", "catalog.show", ctx.Wrap(c.Catalog.Show))
	r.Get("/categories", "catalog.categories", ctx.Wrap(c.Catalog.Categories))

	// Accounts.
	r.Post("/register", "auth.register", ctx.Wrap(c.Auth.Register))
	r.Post("/login", "auth.login", ctx.Wrap(c.Auth.Login))
	r.Post("/logout", "auth.logout", ctx.Wrap(c.Auth.Logout))
	r.Post("/api/token", "auth.token", ctx.Wrap(c.Auth.Token))

	// Cart follows the anonymous session, no login needed.
	r.Get("/cart", "cart.show", ctx.Wrap(c.Cart.Show))
	r.Post("/cart/add/{meal_id}", "cart.add", ctx.Wrap(c.Cart.Add))
	r.Post("/cart/update/{meal_id}", "cart.update", ctx.Wrap(c.Cart.Update))
	r.Get("/api/cart/count", "cart.count", ctx.Wrap(c.Cart.Count))

	// Payment gateway callback, authenticated by signature only.
	r.Post("/webhook/payment", "webhook.payment", ctx.Wrap(c.Webhook.Handle))

	// Everything below requires a logged-in user.
	authed := r.Group("", middleware.Auth)
	authed.Get("/profile", "profile.show", ctx.Wrap(c.Auth.Profile))
	authed.Post("/profile", "profile.update", ctx.Wrap(c.Auth.UpdateProfile))

	authed.Get("/checkout", "checkout.review", ctx.Wrap(c.Checkout.Review))
	authed.Post("/checkout", "checkout.create", ctx.Wrap(c.Checkout.Create))

	authed.Get("/payment/success/{id}", "payment.success", ctx.Wrap(c.Payment.Success))
	authed.Get("/payment/cancel/{id}", "payment.cancel", ctx.Wrap(c.Payment.Cancel))

	authed.Get("/orders", "orders.index", ctx.Wrap(c.Order.Index))
	authed.Get("/orders/{id}", "orders.show", ctx.Wrap(c.Order.Show))
	authed.Get("/ws/orders/{id}", "orders.track", ctx.Wrap(c.Order.Track))
	authed.Get("/sse/orders/{id}", "orders.track.sse", ctx.Wrap(c.Order.TrackSSE))

	// Menu management.
	admin := r.Group("/admin", middleware.Auth, middleware.RequireRole(models.RoleAdmin))
	admin.Post("/meals", "admin.meals.store", ctx.Wrap(c.Admin.Store))
	admin.Put("/meals/{id}", "admin.meals.update", ctx.Wrap(c.Admin.Update))
	admin.Post("/meals/{id}/image", "admin.meals.image", ctx.Wrap(c.Admin.UploadImage))
}
