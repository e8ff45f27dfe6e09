package services

import (
	"errors"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"gorm.io/gorm"
)

// OrderService reads order history and enforces ownership.
type OrderService struct {
	orders *repositories.OrderRepository
}

func NewOrderService(orders *repositories.OrderRepository) *OrderService {
	return &OrderService{orders: orders}
}

// ListByUser returns the user's orders, newest first.
func (s *OrderService) ListByUser(userID uint) ([]models.Order, error) {
	return s.orders.ListByUser(userID)
}

// Get loads one order. Accessing another user's order returns ErrNotOwner,
// not ErrNotFound: the order exists, the caller just may not see it.
func (s *OrderService) Get(userID, orderID uint) (models.Order, error) {
	order, err := s.orders.FindByID(orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, ErrNotFound
		}
		return models.Order{}, err
	}
	if order.UserID != userID {
		return models.Order{}, ErrNotOwner
	}
	return order, nil
}
