package services_test

import (
	"testing"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
)

func newOrderFixture(t *testing.T) (*services.OrderService, *repositories.OrderRepository, models.User, models.User) {
	t.Helper()
	db := testkit.NewDB(t, &models.User{}, &models.Order{}, &models.OrderItem{})

	users := repositories.NewUserRepository(db)
	orders := repositories.NewOrderRepository(db)

	owner := models.User{Username: "eater", Email: "eater@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(&owner))
	other := models.User{Username: "other", Email: "other@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, users.Create(&other))

	return services.NewOrderService(orders), orders, owner, other
}

func TestOrderGetEnforcesOwnership(t *testing.T) {
	svc, orders, owner, other := newOrderFixture(t)

	order := models.Order{
		UserID:        owner.ID,
		TotalPrice:    16.40,
		Status:        models.OrderPending,
		PaymentMethod: models.MethodCash,
		PaymentStatus: models.PaymentPending,
	}
	require.NoError(t, orders.Create(&order))

	got, err := svc.Get(owner.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, order.ID, got.ID)

	// Someone else's order exists but must not be visible.
	_, err = svc.Get(other.ID, order.ID)
	require.ErrorIs(t, err, services.ErrNotOwner)

	_, err = svc.Get(owner.ID, 9999)
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestOrderListNewestFirst(t *testing.T) {
	svc, orders, owner, other := newOrderFixture(t)

	for _, total := range []float64{10, 20, 30} {
		o := models.Order{
			UserID:        owner.ID,
			TotalPrice:    total,
			Status:        models.OrderPending,
			PaymentMethod: models.MethodCash,
			PaymentStatus: models.PaymentPending,
		}
		require.NoError(t, orders.Create(&o))
	}
	foreign := models.Order{UserID: other.ID, TotalPrice: 99, Status: models.OrderPending, PaymentMethod: models.MethodCash, PaymentStatus: models.PaymentPending}
	require.NoError(t, orders.Create(&foreign))

	list, err := svc.ListByUser(owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	require.InDelta(t, 30, list[0].TotalPrice, 0.001)
	require.InDelta(t, 10, list[2].TotalPrice, 0.001)
}
