package models

import "gorm.io/gorm"

// Order fulfilment statuses. Status and PaymentStatus are independent
// axes: a cash order stays pending/pending until the kitchen picks it up,
// which is documented behaviour, not a bug.
const (
	OrderPending           = "pending"
	OrderPaymentInProgress = "payment_in_progress"
	OrderPaid              = "paid"
	OrderPreparing         = "preparing"
	OrderOutForDelivery    = "out_for_delivery"
	OrderDelivered         = "delivered"
	OrderCancelled         = "cancelled"
)

// Payment statuses.
const (
	PaymentPending  = "pending"
	PaymentPaid     = "paid"
	PaymentFailed   = "failed"
	PaymentRefunded = "refunded"
)

// Payment methods accepted at checkout.
const (
	MethodCard = "card"
	MethodCash = "cash"
)

// Order is a placed order. TotalPrice is computed once at creation (sum of
// item snapshots plus the service fee) and never recomputed.
type Order struct {
	gorm.Model
	UserID                uint        `gorm:"not null;index" json:"user_id"`
	TotalPrice            float64     `gorm:"not null" json:"total_price"`
	Status                string      `gorm:"size:50;not null;default:pending;index" json:"status"`
	PaymentMethod         string      `gorm:"size:20;not null;default:card" json:"payment_method"`
	PaymentStatus         string      `gorm:"size:50;not null;default:pending" json:"payment_status"`
	DeliveryAddress       string      `gorm:"size:500;not null" json:"delivery_address"`
	StripeSessionID       string      `gorm:"size:255;index" json:"-"`
	StripePaymentIntentID string      `gorm:"size:255;index" json:"-"`
	Items                 []OrderItem `json:"items"`
}

// OrderItem snapshots one cart line at checkout time. UnitPrice is frozen
// so later menu price changes do not alter historic orders.
type OrderItem struct {
	gorm.Model
	OrderID   uint    `gorm:"not null;index" json:"order_id"`
	MealID    uint    `gorm:"not null;index" json:"meal_id"`
	Quantity  int     `gorm:"not null" json:"quantity"`
	UnitPrice float64 `gorm:"not null" json:"unit_price"`
}
