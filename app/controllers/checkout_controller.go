package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
	"github.com/shashiranjanraj/dabba/pkg/session"
)

// CheckoutController turns the session cart into an order.
type CheckoutController struct {
	checkout *services.CheckoutService
	carts    *services.CartService
}

func NewCheckoutController(checkout *services.CheckoutService, carts *services.CartService) *CheckoutController {
	return &CheckoutController{checkout: checkout, carts: carts}
}

// Review handles GET /checkout: the resolved cart plus the service fee and
// the total the order would be created with.
func (h *CheckoutController) Review(c *ctx.Context) {
	cart := services.NewCart(session.FromCtx(c.R))

	view, err := h.carts.Read(cart)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load the cart")
		return
	}

	c.Success(map[string]interface{}{
		"cart":        view,
		"service_fee": services.ServiceFee(),
		"total":       view.Total + services.ServiceFee(),
	})
}

// Create handles POST /checkout. On success the cart is cleared and, for
// hosted card payments, the response carries the gateway redirect URL.
func (h *CheckoutController) Create(c *ctx.Context) {
	var input services.CheckoutInput
	if !c.BindJSON(&input) {
		return
	}

	sess := session.FromCtx(c.R)
	cart := services.NewCart(sess)

	view, err := h.carts.Read(cart)
	if err != nil {
		c.Error(http.StatusInternalServerError, "Could not load the cart")
		return
	}

	result, err := h.checkout.Checkout(c.Context(), middleware.UserID(c.Context()), view, input)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		logger.WithCtx(c.Context()).Error("checkout failed", "error", err)
		c.Error(http.StatusInternalServerError, "Could not place the order")
		return
	}

	cart.Clear()
	if err := sess.Save(c.W); err != nil {
		logger.WithCtx(c.Context()).Warn("cart not cleared after checkout", "order_id", result.Order.ID, "error", err)
	}

	out := map[string]interface{}{"order": resources.Order(result.Order)}
	if result.RedirectURL != "" {
		out["redirect_url"] = result.RedirectURL
	}
	c.Created(out)
}
