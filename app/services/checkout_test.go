package services_test

import (
	"context"
	"testing"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type checkoutFixture struct {
	db       *gorm.DB
	orders   *repositories.OrderRepository
	meals    *repositories.MealRepository
	users    *repositories.UserRepository
	gateway  *testkit.StubGateway
	checkout *services.CheckoutService
	user     models.User
	bowl     models.Meal
}

func newCheckoutFixture(t *testing.T) *checkoutFixture {
	t.Helper()
	event.Flush()
	t.Cleanup(event.Flush)

	db := testkit.NewDB(t, &models.User{}, &models.Meal{}, &models.Order{}, &models.OrderItem{})

	f := &checkoutFixture{
		db:      db,
		orders:  repositories.NewOrderRepository(db),
		meals:   repositories.NewMealRepository(db),
		users:   repositories.NewUserRepository(db),
		gateway: testkit.NewStubGateway(),
	}
	f.checkout = services.NewCheckoutService(f.orders, f.users, f.gateway)

	f.user = models.User{Username: "eater", Email: "eater@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, f.users.Create(&f.user))

	f.bowl = models.Meal{Name: "Bowl Buddha aux Légumes Grillés", Price: 14.90, Category: "Bowls", IsAvailable: true}
	require.NoError(t, f.meals.Create(&f.bowl))

	return f
}

func (f *checkoutFixture) cartView(qty int) services.CartView {
	subtotal := f.bowl.Price * float64(qty)
	return services.CartView{
		Lines: []services.CartLine{{Meal: f.bowl, Quantity: qty, Subtotal: subtotal}},
		Total: subtotal,
	}
}

func TestCheckoutEmptyCart(t *testing.T) {
	f := newCheckoutFixture(t)

	_, err := f.checkout.Checkout(context.Background(), f.user.ID, services.CartView{}, services.CheckoutInput{
		DeliveryAddress: "1 rue de la Paix",
		PaymentMethod:   models.MethodCash,
	})
	require.ErrorIs(t, err, services.ErrEmptyCart)
}

func TestCheckoutCashTotalsAndState(t *testing.T) {
	f := newCheckoutFixture(t)

	var placed []services.OrderEvent
	event.Listen(services.EventOrderPlaced, func(payload interface{}) {
		placed = append(placed, payload.(services.OrderEvent))
	})

	result, err := f.checkout.Checkout(context.Background(), f.user.ID, f.cartView(2), services.CheckoutInput{
		DeliveryAddress: "1 rue de la Paix",
		PaymentMethod:   models.MethodCash,
	})
	require.NoError(t, err)

	// 2 × 14.90 + 1.50 service fee.
	require.InDelta(t, 31.30, result.Order.TotalPrice, 0.001)
	require.Equal(t, models.OrderPending, result.Order.Status)
	require.Equal(t, models.PaymentPending, result.Order.PaymentStatus)
	require.Empty(t, result.RedirectURL)

	stored, err := f.orders.FindByID(result.Order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	require.Equal(t, 2, stored.Items[0].Quantity)
	require.InDelta(t, 14.90, stored.Items[0].UnitPrice, 0.001)

	require.Len(t, placed, 1)
	require.Equal(t, result.Order.ID, placed[0].OrderID)
	require.Equal(t, "eater@example.com", placed[0].Email)
}

func TestCheckoutCardWithGateway(t *testing.T) {
	f := newCheckoutFixture(t)

	result, err := f.checkout.Checkout(context.Background(), f.user.ID, f.cartView(2), services.CheckoutInput{
		DeliveryAddress: "1 rue de la Paix",
		PaymentMethod:   models.MethodCard,
	})
	require.NoError(t, err)
	require.NotEmpty(t, result.RedirectURL)

	stored, err := f.orders.FindByID(result.Order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPaymentInProgress, stored.Status)
	require.Equal(t, models.PaymentPending, stored.PaymentStatus)
	require.NotEmpty(t, stored.StripeSessionID)

	// The stub totals in cents must match: 2 × 1490 + 150.
	sess, err := f.gateway.RetrieveSession(context.Background(), stored.StripeSessionID)
	require.NoError(t, err)
	require.EqualValues(t, 3130, sess.AmountTotal)
}

func TestCheckoutCardDemoModeWithoutGateway(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.Enabled = false

	var paid []services.OrderEvent
	event.Listen(services.EventOrderPaid, func(payload interface{}) {
		paid = append(paid, payload.(services.OrderEvent))
	})

	result, err := f.checkout.Checkout(context.Background(), f.user.ID, f.cartView(1), services.CheckoutInput{
		DeliveryAddress: "1 rue de la Paix",
		PaymentMethod:   models.MethodCard,
	})
	require.NoError(t, err)
	require.Empty(t, result.RedirectURL)
	require.Equal(t, models.PaymentPaid, result.Order.PaymentStatus)
	require.Len(t, paid, 1)
}

func TestCheckoutGatewayFailureCancelsOrder(t *testing.T) {
	f := newCheckoutFixture(t)
	f.gateway.Err = context.DeadlineExceeded

	_, err := f.checkout.Checkout(context.Background(), f.user.ID, f.cartView(1), services.CheckoutInput{
		DeliveryAddress: "1 rue de la Paix",
		PaymentMethod:   models.MethodCard,
	})
	require.ErrorIs(t, err, services.ErrGateway)

	orders, err := f.orders.ListByUser(f.user.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, models.OrderCancelled, orders[0].Status)
	require.Equal(t, models.PaymentFailed, orders[0].PaymentStatus)
}

func TestCentsRounding(t *testing.T) {
	require.EqualValues(t, 1490, services.Cents(14.90))
	require.EqualValues(t, 1650, services.Cents(16.50))
	require.EqualValues(t, 1, services.Cents(0.005))
	require.EqualValues(t, 0, services.Cents(0))
}
