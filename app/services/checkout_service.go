package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/logger"
	"github.com/shashiranjanraj/dabba/pkg/metrics"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
	"gorm.io/gorm"
)

// CheckoutService turns a resolved cart into an order and, for card
// payments, a hosted gateway session.
type CheckoutService struct {
	orders  *repositories.OrderRepository
	users   *repositories.UserRepository
	gateway Gateway
}

func NewCheckoutService(orders *repositories.OrderRepository, users *repositories.UserRepository, gateway Gateway) *CheckoutService {
	return &CheckoutService{orders: orders, users: users, gateway: gateway}
}

// CheckoutInput is the payload for placing an order.
type CheckoutInput struct {
	DeliveryAddress string `json:"delivery_address" validate:"required,max=500"`
	PaymentMethod   string `json:"payment_method" validate:"required,in=card,cash"`
}

// CheckoutResult reports the created order and, for hosted card payments,
// the URL to redirect the customer to.
type CheckoutResult struct {
	Order       models.Order `json:"order"`
	RedirectURL string       `json:"redirect_url,omitempty"`
}

// Cents converts a euro price to minor units, rounding to the nearest cent.
func Cents(price float64) int64 {
	return int64(math.Round(price * 100))
}

// ServiceFee returns the flat per-order fee in euros.
func ServiceFee() float64 {
	return float64(config.ServiceFeeCents()) / 100
}

// Checkout places an order from the cart view. The total is fixed here,
// at creation, as the sum of line subtotals plus the service fee.
//
// Payment flow by method:
//
//   - cash: order stays pending/pending until the kitchen handles it.
//   - card, gateway unconfigured: demo mode, marked paid immediately.
//   - card, gateway configured: a hosted checkout session is created and
//     the order moves to payment_in_progress with the session ID persisted
//     before the caller ever sees the redirect URL.
func (s *CheckoutService) Checkout(ctx context.Context, userID uint, cart CartView, input CheckoutInput) (CheckoutResult, error) {
	if len(cart.Lines) == 0 {
		return CheckoutResult{}, ErrEmptyCart
	}

	user, err := s.users.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return CheckoutResult{}, ErrNotFound
		}
		return CheckoutResult{}, err
	}

	order := models.Order{
		UserID:          userID,
		TotalPrice:      cart.Total + ServiceFee(),
		Status:          models.OrderPending,
		PaymentMethod:   input.PaymentMethod,
		PaymentStatus:   models.PaymentPending,
		DeliveryAddress: input.DeliveryAddress,
	}
	for _, line := range cart.Lines {
		order.Items = append(order.Items, models.OrderItem{
			MealID:    line.Meal.ID,
			Quantity:  line.Quantity,
			UnitPrice: line.Meal.Price,
		})
	}

	if err := s.orders.Create(&order); err != nil {
		return CheckoutResult{}, err
	}
	metrics.OrdersPlaced.WithLabelValues(input.PaymentMethod).Inc()

	switch {
	case input.PaymentMethod == models.MethodCash:
		event.Fire(EventOrderPlaced, s.eventFor(order, user))
		return CheckoutResult{Order: order}, nil

	case !s.gateway.Configured():
		// Demo mode: no gateway to collect from, treat as paid.
		logger.WithCtx(ctx).Warn("checkout: gateway not configured, marking order paid", "order_id", order.ID)
		order.PaymentStatus = models.PaymentPaid
		if err := s.orders.Update(&order); err != nil {
			return CheckoutResult{}, err
		}
		event.Fire(EventOrderPaid, s.eventFor(order, user))
		return CheckoutResult{Order: order}, nil
	}

	redirectURL, err := s.openGatewaySession(ctx, &order, user, cart)
	if err != nil {
		// Never leave the order ambiguous: a gateway failure cancels it.
		order.Status = models.OrderCancelled
		order.PaymentStatus = models.PaymentFailed
		if saveErr := s.orders.Update(&order); saveErr != nil {
			logger.WithCtx(ctx).Error("checkout: cancel after gateway failure", "order_id", order.ID, "error", saveErr)
		}
		return CheckoutResult{}, fmt.Errorf("%w: %v", ErrGateway, err)
	}

	return CheckoutResult{Order: order, RedirectURL: redirectURL}, nil
}

func (s *CheckoutService) openGatewaySession(ctx context.Context, order *models.Order, user models.User, cart CartView) (string, error) {
	currency := config.Currency()

	params := stripe.SessionParams{
		SuccessURL:    fmt.Sprintf("%s/payment/success/%d?session_id={CHECKOUT_SESSION_ID}", config.AppURL(), order.ID),
		CancelURL:     fmt.Sprintf("%s/payment/cancel/%d", config.AppURL(), order.ID),
		CustomerEmail: user.Email,
		Metadata:      map[string]string{"order_id": fmt.Sprint(order.ID)},
	}
	for _, line := range cart.Lines {
		params.LineItems = append(params.LineItems, stripe.LineItem{
			Name:        line.Meal.Name,
			Description: line.Meal.Description,
			UnitAmount:  Cents(line.Meal.Price),
			Quantity:    int64(line.Quantity),
			Currency:    currency,
		})
	}
	params.LineItems = append(params.LineItems, stripe.LineItem{
		Name:       "Service fee",
		UnitAmount: config.ServiceFeeCents(),
		Quantity:   1,
		Currency:   currency,
	})

	sess, err := s.gateway.CreateCheckoutSession(ctx, params)
	if err != nil {
		return "", err
	}

	// Persist the session ID before handing out the redirect so the webhook
	// can always find this order, even if the customer never returns.
	order.StripeSessionID = sess.ID
	order.Status = models.OrderPaymentInProgress
	if err := s.orders.Update(order); err != nil {
		return "", err
	}

	return sess.URL, nil
}

func (s *CheckoutService) eventFor(order models.Order, user models.User) OrderEvent {
	return OrderEvent{
		OrderID:       order.ID,
		UserID:        order.UserID,
		Email:         user.Email,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		TotalPrice:    order.TotalPrice,
	}
}
