package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/metrics"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
	"gorm.io/gorm"
)

// PaymentService reconciles order payment state from two independent
// sources: the customer's browser returning from the hosted checkout page,
// and the gateway's webhook. Either may arrive first, both may arrive, and
// every transition is idempotent, so order state is the same regardless.
type PaymentService struct {
	orders  *repositories.OrderRepository
	users   *repositories.UserRepository
	gateway Gateway
}

func NewPaymentService(orders *repositories.OrderRepository, users *repositories.UserRepository, gateway Gateway) *PaymentService {
	return &PaymentService{orders: orders, users: users, gateway: gateway}
}

// ConfirmReturn handles the success redirect. The session is re-verified
// against the gateway rather than trusting the query string: only a session
// the gateway reports as paid marks the order paid.
func (s *PaymentService) ConfirmReturn(ctx context.Context, userID uint, orderID uint, sessionID string) (models.Order, error) {
	order, err := s.findOwned(userID, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if !s.gateway.Configured() {
		return order, nil
	}
	if sessionID == "" || order.StripeSessionID != sessionID {
		return models.Order{}, ErrNotFound
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return models.Order{}, errors.Join(ErrGateway, err)
	}
	if sess.PaymentStatus != "paid" {
		logger.WithCtx(ctx).Info("payment return without paid session", "order_id", order.ID, "session_status", sess.PaymentStatus)
		return order, nil
	}

	updated, changed, err := s.markPaid(order.ID, sess.PaymentIntent)
	if err != nil {
		return models.Order{}, err
	}
	if changed {
		metrics.PaymentEvents.WithLabelValues("paid", "callback").Inc()
		s.fire(EventOrderPaid, updated)
	}
	return updated, nil
}

// CancelReturn handles the cancel redirect. A paid order is never
// downgraded: the webhook may have confirmed payment while the customer
// navigated back.
func (s *PaymentService) CancelReturn(ctx context.Context, userID uint, orderID uint) (models.Order, error) {
	order, err := s.findOwned(userID, orderID)
	if err != nil {
		return models.Order{}, err
	}

	if order.PaymentStatus == models.PaymentPaid {
		return order, nil
	}

	err = s.orders.DB().Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, models.PaymentPaid).
			Updates(map[string]interface{}{
				"status":         models.OrderCancelled,
				"payment_status": models.PaymentFailed,
			}).Error
	})
	if err != nil {
		return models.Order{}, err
	}

	return s.orders.FindByID(order.ID)
}

// HandleEvent applies a verified webhook event. Events for unknown orders
// are logged and dropped so the gateway stops retrying.
func (s *PaymentService) HandleEvent(ctx context.Context, ev stripe.Event) error {
	switch ev.Kind {
	case stripe.KindCheckoutCompleted:
		return s.handleCheckoutCompleted(ctx, ev)
	case stripe.KindPaymentFailed:
		return s.handlePaymentFailed(ctx, ev)
	case stripe.KindChargeRefunded:
		return s.handleChargeRefunded(ctx, ev)
	default:
		logger.WithCtx(ctx).Debug("webhook event ignored", "type", ev.Type)
		return nil
	}
}

func (s *PaymentService) handleCheckoutCompleted(ctx context.Context, ev stripe.Event) error {
	if ev.Session == nil {
		return nil
	}
	order, err := s.orders.FindByStripeSessionID(ev.Session.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithCtx(ctx).Warn("webhook for unknown checkout session", "session_id", ev.Session.ID)
			return nil
		}
		return err
	}

	updated, changed, err := s.markPaid(order.ID, ev.Session.PaymentIntent)
	if err != nil {
		return err
	}
	if changed {
		metrics.PaymentEvents.WithLabelValues("paid", "webhook").Inc()
		s.fire(EventOrderPaid, updated)
	}
	return nil
}

func (s *PaymentService) handlePaymentFailed(ctx context.Context, ev stripe.Event) error {
	if ev.Intent == nil {
		return nil
	}
	// A failed intent was usually never recorded on the order, so fall back
	// to the order_id metadata set when the session was created.
	order, err := s.findByIntent(ev.Intent.ID, ev.Intent.Metadata)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithCtx(ctx).Warn("payment failure for unknown intent", "payment_intent", ev.Intent.ID)
			return nil
		}
		return err
	}
	if order.PaymentStatus == models.PaymentPaid {
		// A late failure event never undoes a confirmed payment.
		return nil
	}

	err = s.orders.DB().Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", order.ID, models.PaymentPaid).
			Updates(map[string]interface{}{
				"status":         models.OrderCancelled,
				"payment_status": models.PaymentFailed,
			}).Error
	})
	if err != nil {
		return err
	}

	updated, err := s.orders.FindByID(order.ID)
	if err != nil {
		return err
	}
	metrics.PaymentEvents.WithLabelValues("failed", "webhook").Inc()
	s.fire(EventOrderPaymentFailed, updated)
	return nil
}

func (s *PaymentService) handleChargeRefunded(ctx context.Context, ev stripe.Event) error {
	if ev.Charge == nil {
		return nil
	}
	order, err := s.findByIntent(ev.Charge.PaymentIntent, ev.Charge.Metadata)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.WithCtx(ctx).Warn("refund for unknown intent", "payment_intent", ev.Charge.PaymentIntent)
			return nil
		}
		return err
	}
	if order.PaymentStatus == models.PaymentRefunded {
		return nil
	}

	err = s.orders.DB().Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Updates(map[string]interface{}{
				"status":         models.OrderCancelled,
				"payment_status": models.PaymentRefunded,
			}).Error
	})
	if err != nil {
		return err
	}

	updated, err := s.orders.FindByID(order.ID)
	if err != nil {
		return err
	}
	metrics.PaymentEvents.WithLabelValues("refunded", "webhook").Inc()
	s.fire(EventOrderRefunded, updated)
	return nil
}

// ExpireStaleCheckouts cancels card orders whose hosted checkout session
// was opened but never completed. The scheduler runs this periodically so
// abandoned checkouts do not sit in payment_in_progress forever. Returns
// the number of orders expired.
func (s *PaymentService) ExpireStaleCheckouts(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)
	res := s.orders.DB().Model(&models.Order{}).
		Where("status = ? AND updated_at < ?", models.OrderPaymentInProgress, cutoff).
		Updates(map[string]interface{}{
			"status":         models.OrderCancelled,
			"payment_status": models.PaymentFailed,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected > 0 {
		metrics.PaymentEvents.WithLabelValues("expired", "scheduler").Inc()
	}
	return res.RowsAffected, nil
}

// markPaid records a confirmed payment exactly once: payment_status goes
// to paid and status returns to pending, back in the kitchen's queue. The
// guarded update makes the transition idempotent across the callback and
// webhook paths: whichever arrives second matches zero rows.
func (s *PaymentService) markPaid(orderID uint, paymentIntent string) (models.Order, bool, error) {
	var changed bool
	err := s.orders.DB().Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Order{}).
			Where("id = ? AND payment_status <> ?", orderID, models.PaymentPaid).
			Updates(map[string]interface{}{
				"status":                   models.OrderPending,
				"payment_status":           models.PaymentPaid,
				"stripe_payment_intent_id": paymentIntent,
			})
		if res.Error != nil {
			return res.Error
		}
		changed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return models.Order{}, false, err
	}

	order, err := s.orders.FindByID(orderID)
	if err != nil {
		return models.Order{}, false, err
	}
	return order, changed, nil
}

func (s *PaymentService) findByIntent(intentID string, metadata map[string]string) (models.Order, error) {
	if intentID != "" {
		order, err := s.orders.FindByPaymentIntentID(intentID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Order{}, err
		}
	}

	raw, ok := metadata["order_id"]
	if !ok {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return models.Order{}, gorm.ErrRecordNotFound
	}
	return s.orders.FindByID(uint(id))
}

func (s *PaymentService) findOwned(userID, orderID uint) (models.Order, error) {
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

func (s *PaymentService) fire(topic string, order models.Order) {
	email := ""
	if user, err := s.users.FindByID(order.UserID); err == nil {
		email = user.Email
	}
	event.Fire(topic, OrderEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         email,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
	})
}
