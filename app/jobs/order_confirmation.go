// Package jobs defines the background jobs dispatched onto the queue.
package jobs

import (
	"fmt"

	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/mail"
)

// OrderConfirmationJob emails the customer about an order lifecycle change.
// The payload is self-contained so the worker needs no database access.
type OrderConfirmationJob struct {
	OrderID       uint    `json:"order_id"`
	Email         string  `json:"email"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalPrice    float64 `json:"total_price"`
}

func (j OrderConfirmationJob) Handle() error {
	if j.Email == "" {
		logger.Warn("order confirmation without recipient", "order_id", j.OrderID)
		return nil
	}

	subject := fmt.Sprintf("Order #%d: %s", j.OrderID, j.subjectLine())
	body := fmt.Sprintf(
		"<h1>Order #%d</h1><p>Status: %s</p><p>Payment: %s</p><p>Total: %.2f&nbsp;&euro;</p>",
		j.OrderID, j.Status, j.PaymentStatus, j.TotalPrice,
	)

	return mail.To(j.Email).Subject(subject).Body(body).Send()
}

func (j OrderConfirmationJob) subjectLine() string {
	switch j.PaymentStatus {
	case "paid":
		return "payment confirmed"
	case "failed":
		return "payment failed"
	case "refunded":
		return "refund issued"
	default:
		return "received"
	}
}
