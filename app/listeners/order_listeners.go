// Package listeners wires order lifecycle events to their side effects:
// confirmation emails via the queue, live status pushes over the hub and
// Slack alerts for the ops channel.
package listeners

import (
	"encoding/json"
	"fmt"

	"github.com/shashiranjanraj/dabba/app/jobs"
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/notifications"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/notification"
	"github.com/shashiranjanraj/dabba/pkg/queue"
	"github.com/shashiranjanraj/dabba/pkg/ws"
)

// Register hooks all order listeners into the event bus. Call once at boot,
// after the queue workers and the hub are running.
func Register(hub *ws.Hub) {
	for _, topic := range []string{
		services.EventOrderPlaced,
		services.EventOrderPaid,
		services.EventOrderPaymentFailed,
		services.EventOrderRefunded,
	} {
		event.Listen(topic, func(payload interface{}) {
			ev, ok := payload.(services.OrderEvent)
			if !ok {
				return
			}
			notify(ev)
			alert(ev)
			push(hub, ev)
		})
	}
}

func notify(ev services.OrderEvent) {
	job := jobs.OrderConfirmationJob{
		OrderID:       ev.OrderID,
		Email:         ev.Email,
		Status:        ev.Status,
		PaymentStatus: ev.PaymentStatus,
		TotalPrice:    ev.TotalPrice,
	}
	if err := queue.Dispatch(job); err != nil {
		logger.Error("dispatch order confirmation", "order_id", ev.OrderID, "error", err)
	}
}

// alert pings the ops Slack channel on failed or refunded payments. Skipped
// entirely when no webhook is configured.
func alert(ev services.OrderEvent) {
	if ev.PaymentStatus != models.PaymentFailed && ev.PaymentStatus != models.PaymentRefunded {
		return
	}
	if config.Get("SLACK_WEBHOOK_URL", "") == "" {
		return
	}
	notification.SendAsync("", &notifications.PaymentAlert{
		OrderID:       ev.OrderID,
		Email:         ev.Email,
		PaymentStatus: ev.PaymentStatus,
		TotalPrice:    ev.TotalPrice,
	})
}

func push(hub *ws.Hub, ev services.OrderEvent) {
	if hub == nil {
		return
	}
	data, err := json.Marshal(map[string]interface{}{
		"order_id":       ev.OrderID,
		"status":         ev.Status,
		"payment_status": ev.PaymentStatus,
	})
	if err != nil {
		return
	}
	hub.Publish(fmt.Sprintf("orders.%d", ev.OrderID), data)
}
