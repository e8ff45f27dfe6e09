package controllers

import (
	"net/http"

	"github.com/shashiranjanraj/dabba/app/resources"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/middleware"
)

// PaymentController handles the customer returning from the hosted checkout
// page. These routes are redirect targets, so state comes from the path and
// query string, never from a request body.
type PaymentController struct {
	payments *services.PaymentService
}

func NewPaymentController(payments *services.PaymentService) *PaymentController {
	return &PaymentController{payments: payments}
}

// Success handles GET /payment/success/{id}?session_id=...
// The session is re-verified with the gateway before the order is trusted
// as paid; a forged query string cannot mark an order paid.
func (h *PaymentController) Success(c *ctx.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.payments.ConfirmReturn(c.Context(), middleware.UserID(c.Context()), orderID, c.Query("session_id"))
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not confirm the payment")
		return
	}
	c.Success(resources.Order(order))
}

// Cancel handles GET /payment/cancel/{id}. Paid orders are left untouched.
func (h *PaymentController) Cancel(c *ctx.Context) {
	orderID, ok := paramID(c, "id")
	if !ok {
		return
	}

	order, err := h.payments.CancelReturn(c.Context(), middleware.UserID(c.Context()), orderID)
	if err != nil {
		if serviceError(c, err) {
			return
		}
		c.Error(http.StatusInternalServerError, "Could not cancel the payment")
		return
	}
	c.Success(resources.Order(order))
}
