package services_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/app/services"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
)

type paymentFixture struct {
	orders   *repositories.OrderRepository
	users    *repositories.UserRepository
	gateway  *testkit.StubGateway
	payments *services.PaymentService
	user     models.User
	other    models.User
}

func newPaymentFixture(t *testing.T) *paymentFixture {
	t.Helper()
	event.Flush()
	t.Cleanup(event.Flush)

	db := testkit.NewDB(t, &models.User{}, &models.Meal{}, &models.Order{}, &models.OrderItem{})

	f := &paymentFixture{
		orders:  repositories.NewOrderRepository(db),
		users:   repositories.NewUserRepository(db),
		gateway: testkit.NewStubGateway(),
	}
	f.payments = services.NewPaymentService(f.orders, f.users, f.gateway)

	f.user = models.User{Username: "eater", Email: "eater@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, f.users.Create(&f.user))
	f.other = models.User{Username: "other", Email: "other@example.com", Password: "x", Role: models.RoleUser}
	require.NoError(t, f.users.Create(&f.other))

	return f
}

func (f *paymentFixture) cardOrder(t *testing.T, sessionID string) models.Order {
	t.Helper()
	order := models.Order{
		UserID:          f.user.ID,
		TotalPrice:      31.30,
		Status:          models.OrderPaymentInProgress,
		PaymentMethod:   models.MethodCard,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: "1 rue de la Paix",
		StripeSessionID: sessionID,
	}
	require.NoError(t, f.orders.Create(&order))
	return order
}

func orderIDString(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func checkoutCompletedEvent(sessionID, intent string) stripe.Event {
	return stripe.Event{
		Type: "checkout.session.completed",
		Kind: stripe.KindCheckoutCompleted,
		Session: &stripe.SessionData{
			ID:            sessionID,
			PaymentIntent: intent,
			PaymentStatus: "paid",
		},
	}
}

func TestWebhookMarksOrderPaid(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	var paid int
	event.Listen(services.EventOrderPaid, func(interface{}) { paid++ })

	require.NoError(t, f.payments.HandleEvent(context.Background(), checkoutCompletedEvent("cs_1", "pi_1")))

	stored, err := f.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, stored.Status)
	require.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	require.Equal(t, "pi_1", stored.StripePaymentIntentID)
	require.Equal(t, 1, paid)
}

func TestWebhookPaidIsIdempotent(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	var paid int
	event.Listen(services.EventOrderPaid, func(interface{}) { paid++ })

	ev := checkoutCompletedEvent("cs_1", "pi_1")
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev))
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev))

	stored, err := f.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	require.Equal(t, 1, paid, "second delivery must not re-fire the event")
}

func TestWebhookUnknownSessionIsDropped(t *testing.T) {
	f := newPaymentFixture(t)

	require.NoError(t, f.payments.HandleEvent(context.Background(), checkoutCompletedEvent("cs_missing", "pi_x")))
}

func TestWebhookPaymentFailedViaMetadata(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	ev := stripe.Event{
		Type: "payment_intent.payment_failed",
		Kind: stripe.KindPaymentFailed,
		Intent: &stripe.IntentData{
			ID:       "pi_unseen",
			Metadata: map[string]string{"order_id": orderIDString(order.ID)},
		},
	}
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev))

	stored, err := f.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderCancelled, stored.Status)
	require.Equal(t, models.PaymentFailed, stored.PaymentStatus)
}

func TestWebhookFailureNeverDowngradesPaid(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	require.NoError(t, f.payments.HandleEvent(context.Background(), checkoutCompletedEvent("cs_1", "pi_1")))

	ev := stripe.Event{
		Type:   "payment_intent.payment_failed",
		Kind:   stripe.KindPaymentFailed,
		Intent: &stripe.IntentData{ID: "pi_1"},
	}
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev))

	stored, err := f.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, stored.Status)
	require.Equal(t, models.PaymentPaid, stored.PaymentStatus)
}

func TestWebhookRefund(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	require.NoError(t, f.payments.HandleEvent(context.Background(), checkoutCompletedEvent("cs_1", "pi_1")))

	var refunded int
	event.Listen(services.EventOrderRefunded, func(interface{}) { refunded++ })

	ev := stripe.Event{
		Type:   "charge.refunded",
		Kind:   stripe.KindChargeRefunded,
		Charge: &stripe.ChargeData{ID: "ch_1", PaymentIntent: "pi_1"},
	}
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev))
	require.NoError(t, f.payments.HandleEvent(context.Background(), ev)) // replay

	stored, err := f.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderCancelled, stored.Status)
	require.Equal(t, models.PaymentRefunded, stored.PaymentStatus)
	require.Equal(t, 1, refunded)
}

func TestConfirmReturnVerifiesWithGateway(t *testing.T) {
	f := newPaymentFixture(t)

	sess, err := f.gateway.CreateCheckoutSession(context.Background(), stripe.SessionParams{})
	require.NoError(t, err)
	order := f.cardOrder(t, sess.ID)

	// Not paid yet at the gateway: the return must not mark it paid.
	got, err := f.payments.ConfirmReturn(context.Background(), f.user.ID, order.ID, sess.ID)
	require.NoError(t, err)
	require.Equal(t, models.PaymentPending, got.PaymentStatus)

	f.gateway.MarkPaid(sess.ID, "pi_9")

	got, err = f.payments.ConfirmReturn(context.Background(), f.user.ID, order.ID, sess.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, got.Status)
	require.Equal(t, models.PaymentPaid, got.PaymentStatus)
	require.Equal(t, "pi_9", got.StripePaymentIntentID)
}

func TestConfirmReturnRejectsForeignOrder(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	_, err := f.payments.ConfirmReturn(context.Background(), f.other.ID, order.ID, "cs_1")
	require.ErrorIs(t, err, services.ErrNotOwner)
}

func TestConfirmReturnRejectsMismatchedSession(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	_, err := f.payments.ConfirmReturn(context.Background(), f.user.ID, order.ID, "cs_forged")
	require.ErrorIs(t, err, services.ErrNotFound)
}

func TestCancelReturnKeepsPaidOrders(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	require.NoError(t, f.payments.HandleEvent(context.Background(), checkoutCompletedEvent("cs_1", "pi_1")))

	got, err := f.payments.CancelReturn(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, got.Status)
	require.Equal(t, models.PaymentPaid, got.PaymentStatus)
}

func TestExpireStaleCheckouts(t *testing.T) {
	f := newPaymentFixture(t)
	stale := f.cardOrder(t, "cs_stale")
	fresh := f.cardOrder(t, "cs_fresh")

	require.NoError(t, f.orders.DB().Model(&models.Order{}).
		Where("id = ?", stale.ID).
		UpdateColumn("updated_at", time.Now().Add(-48*time.Hour)).Error)

	n, err := f.payments.ExpireStaleCheckouts(24 * time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	got, err := f.orders.FindByID(stale.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderCancelled, got.Status)
	require.Equal(t, models.PaymentFailed, got.PaymentStatus)

	got, err = f.orders.FindByID(fresh.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPaymentInProgress, got.Status)

	// A second sweep finds nothing left to expire.
	n, err = f.payments.ExpireStaleCheckouts(24 * time.Hour)
	require.NoError(t, err)
	require.EqualValues(t, 0, n)
}

func TestCancelReturnCancelsPending(t *testing.T) {
	f := newPaymentFixture(t)
	order := f.cardOrder(t, "cs_1")

	got, err := f.payments.CancelReturn(context.Background(), f.user.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderCancelled, got.Status)
	require.Equal(t, models.PaymentFailed, got.PaymentStatus)
}
