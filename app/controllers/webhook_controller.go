package controllers

import (
	"errors"
	"net/http"

	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/pkg/ctx"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/metrics"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
)

// WebhookController receives payment gateway notifications. The endpoint is
// unauthenticated by design; the HMAC signature on the raw body is the only
// thing that makes a request trustworthy.
type WebhookController struct {
	payments *services.PaymentService
}

func NewWebhookController(payments *services.PaymentService) *WebhookController {
	return &WebhookController{payments: payments}
}

// Handle processes POST /webhook/payment. Unknown event types are
// acknowledged with 200 so the gateway stops retrying them; processing
// failures return 500 so it retries.
func (h *WebhookController) Handle(c *ctx.Context) {
	secret := config.StripeWebhookSecret()
	if secret == "" {
		metrics.WebhookRejected.WithLabelValues("config").Inc()
		c.Error(http.StatusBadRequest, "Webhook secret not configured")
		return
	}

	payload, err := c.Body()
	if err != nil {
		metrics.WebhookRejected.WithLabelValues("payload").Inc()
		c.Error(http.StatusBadRequest, "Could not read payload")
		return
	}

	event, err := stripe.ConstructEvent(payload, c.Header("Stripe-Signature"), secret)
	if err != nil {
		switch {
		case errors.Is(err, stripe.ErrSignatureInvalid):
			metrics.WebhookRejected.WithLabelValues("signature").Inc()
			c.Error(http.StatusBadRequest, "Invalid signature")
		case errors.Is(err, stripe.ErrMalformedPayload):
			metrics.WebhookRejected.WithLabelValues("payload").Inc()
			c.Error(http.StatusBadRequest, "Malformed payload")
		default:
			metrics.WebhookRejected.WithLabelValues("payload").Inc()
			c.Error(http.StatusBadRequest, "Rejected")
		}
		return
	}

	if err := h.payments.HandleEvent(c.Context(), event); err != nil {
		logger.WithCtx(c.Context()).Error("webhook processing failed", "type", event.Type, "error", err)
		c.Error(http.StatusInternalServerError, "Processing failed")
		return
	}

	c.Success(map[string]string{"received": "true"})
}
