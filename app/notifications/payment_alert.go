// Package notifications holds the ops-facing notifications. Customer mail
// goes through queued jobs instead; these are for the people running the
// kitchen.
package notifications

import (
	"fmt"

	"github.com/shashiranjanraj/dabba/pkg/notification"
)

// PaymentAlert is raised when a card payment fails or a charge is refunded,
// so someone can follow up with the customer.
type PaymentAlert struct {
	OrderID       uint
	Email         string
	PaymentStatus string
	TotalPrice    float64
}

func (n *PaymentAlert) Via() []string { return []string{"slack"} }

func (n *PaymentAlert) ToSlack() notification.SlackData {
	color := "danger"
	title := fmt.Sprintf("Payment failed for order #%d", n.OrderID)
	if n.PaymentStatus == "refunded" {
		color = "warning"
		title = fmt.Sprintf("Order #%d refunded", n.OrderID)
	}

	return notification.SlackData{
		Text: title,
		Attachments: []notification.SlackAttachment{{
			Color: color,
			Text:  fmt.Sprintf("Customer: %s\nTotal: %.2f EUR", n.Email, n.TotalPrice),
		}},
	}
}
