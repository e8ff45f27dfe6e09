package resources

import (
	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/pkg/collection"
	"github.com/shashiranjanraj/dabba/pkg/resource"
)

// OrderResource shapes an order with its line items. Gateway identifiers
// never leave the server.
type OrderResource struct{ resource.Base }

func (OrderResource) ToArray(v interface{}) resource.Map {
	o, ok := v.(models.Order)
	if !ok {
		return resource.Map{}
	}

	items := collection.Map(o.Items, func(item models.OrderItem) resource.Map {
		return resource.Map{
			"meal_id":    item.MealID,
			"quantity":   item.Quantity,
			"unit_price": item.UnitPrice,
			"subtotal":   item.UnitPrice * float64(item.Quantity),
		}
	})

	return resource.Map{
		"id":               o.ID,
		"total_price":      o.TotalPrice,
		"status":           o.Status,
		"payment_method":   o.PaymentMethod,
		"payment_status":   o.PaymentStatus,
		"delivery_address": o.DeliveryAddress,
		"created_at":       o.CreatedAt,
		"items":            items,
	}
}

// Order shapes one order.
func Order(o models.Order) resource.Map {
	return OrderResource{}.ToArray(o)
}

// Orders shapes a slice of orders.
func Orders(os []models.Order) []resource.Map {
	return collection.Map(os, Order)
}

// UserResource shapes an account profile.
type UserResource struct{ resource.Base }

func (UserResource) ToArray(v interface{}) resource.Map {
	u, ok := v.(models.User)
	if !ok {
		return resource.Map{}
	}
	return resource.Map{
		"id":       u.ID,
		"username": u.Username,
		"email":    u.Email,
		"address":  u.Address,
		"phone":    u.Phone,
		"role":     u.Role,
	}
}

// User shapes one user.
func User(u models.User) resource.Map {
	return UserResource{}.ToArray(u)
}
