package repositories

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"gorm.io/gorm"
)

// OrderRepository handles database operations for Order and OrderItem.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// DB exposes the underlying handle for services that need transactions
// spanning order updates.
func (r *OrderRepository) DB() *gorm.DB { return r.db }

// Create persists an order with its items in one insert.
func (r *OrderRepository) Create(order *models.Order) error {
	return r.db.Create(order).Error
}

// FindByID loads an order with its items.
func (r *OrderRepository) FindByID(id uint) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").First(&order, id).Error
	return order, err
}

// FindByStripeSessionID locates the order a checkout session belongs to.
func (r *OrderRepository) FindByStripeSessionID(sessionID string) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("stripe_session_id = ?", sessionID).First(&order).Error
	return order, err
}

// FindByPaymentIntentID locates the order a payment intent belongs to.
func (r *OrderRepository) FindByPaymentIntentID(intentID string) (models.Order, error) {
	var order models.Order
	err := r.db.Preload("Items").Where("stripe_payment_intent_id = ?", intentID).First(&order).Error
	return order, err
}

// ListByUser returns the user's orders, newest first, with items.
func (r *OrderRepository) ListByUser(userID uint) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("id desc").
		Find(&orders).Error
	return orders, err
}

// Update persists changes to an existing order.
func (r *OrderRepository) Update(order *models.Order) error {
	return r.db.Save(order).Error
}
