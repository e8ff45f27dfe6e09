package services

// Event topics fired on order lifecycle changes. Listeners are registered
// in app/listeners.
const (
	EventOrderPlaced        = "order.placed"
	EventOrderPaid          = "order.paid"
	EventOrderPaymentFailed = "order.payment_failed"
	EventOrderRefunded      = "order.refunded"
)

// OrderEvent is the payload carried by every order lifecycle event. It is
// self-contained so listeners and queued jobs need no extra lookups.
type OrderEvent struct {
	OrderID       uint    `json:"order_id"`
	UserID        uint    `json:"user_id"`
	Email         string  `json:"email"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	TotalPrice    float64 `json:"total_price"`
}
