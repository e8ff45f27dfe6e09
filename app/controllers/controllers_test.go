package controllers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shashiranjanraj/dabba/app/models"
	"github.com/shashiranjanraj/dabba/app/repositories"
	"github.com/shashiranjanraj/dabba/config"
	"github.com/shashiranjanraj/dabba/internal/kernel"
	"github.com/shashiranjanraj/dabba/pkg/auth"
	"github.com/shashiranjanraj/dabba/pkg/event"
	"github.com/shashiranjanraj/dabba/pkg/session"
	"github.com/shashiranjanraj/dabba/pkg/stripe"
	"github.com/shashiranjanraj/dabba/pkg/testkit"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type app struct {
	client  *testkit.Client
	db      *gorm.DB
	gateway *testkit.StubGateway
	orders  *repositories.OrderRepository
	meals   *repositories.MealRepository
}

func newApp(t *testing.T) *app {
	t.Helper()
	event.Flush()
	t.Cleanup(event.Flush)

	db := testkit.NewDB(t, &models.User{}, &models.Meal{}, &models.Order{}, &models.OrderItem{})
	gateway := testkit.NewStubGateway()

	handler, err := kernel.Handler(kernel.Options{
		DB:           db,
		Gateway:      gateway,
		SessionStore: session.NewMemoryStore(),
	})
	require.NoError(t, err)

	return &app{
		client:  testkit.NewClient(t, handler),
		db:      db,
		gateway: gateway,
		orders:  repositories.NewOrderRepository(db),
		meals:   repositories.NewMealRepository(db),
	}
}

func (a *app) seedMeal(t *testing.T, name string, price float64) models.Meal {
	t.Helper()
	meal := models.Meal{Name: name, Price: price, Category: "Bowls", IsAvailable: true}
	require.NoError(t, a.meals.Create(&meal))
	return meal
}

// register creates an account through the API, leaving the client logged in.
func (a *app) register(t *testing.T, username, email string) {
	t.Helper()
	rec := a.client.Post("/register", map[string]string{
		"username":              username,
		"email":                 email,
		"password":              "secret-pass",
		"password_confirmation": "secret-pass",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (a *app) checkout(t *testing.T, method string) *orderPayload {
	t.Helper()
	rec := a.client.Post("/checkout", map[string]string{
		"delivery_address": "1 rue de la Paix",
		"payment_method":   method,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Order       orderPayload `json:"order"`
			RedirectURL string       `json:"redirect_url"`
		} `json:"data"`
	}
	testkit.DecodeJSON(t, rec, &resp)
	resp.Data.Order.RedirectURL = resp.Data.RedirectURL
	return &resp.Data.Order
}

type orderPayload struct {
	ID            uint    `json:"id"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	PaymentStatus string  `json:"payment_status"`
	RedirectURL   string  `json:"-"`
}

func TestBrowseCartAndCashCheckout(t *testing.T) {
	a := newApp(t)
	bowl := a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	rec := a.client.Get("/")
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 2; i++ {
		rec = a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	}

	var count struct {
		Data struct {
			Count int `json:"count"`
		} `json:"data"`
	}
	testkit.DecodeJSON(t, a.client.Get("/api/cart/count"), &count)
	require.Equal(t, 2, count.Data.Count)

	a.register(t, "eater", "eater@example.com")

	order := a.checkout(t, models.MethodCash)
	require.InDelta(t, 31.30, order.TotalPrice, 0.001)
	require.Equal(t, models.OrderPending, order.Status)
	require.Equal(t, models.PaymentPending, order.PaymentStatus)
	require.Empty(t, order.RedirectURL)

	// Checkout empties the cart.
	testkit.DecodeJSON(t, a.client.Get("/api/cart/count"), &count)
	require.Equal(t, 0, count.Data.Count)

	rec = a.client.Get(fmt.Sprintf("/orders/%d", order.ID))
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCheckoutRequiresLogin(t *testing.T) {
	a := newApp(t)
	bowl := a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)

	rec := a.client.Post("/checkout", map[string]string{
		"delivery_address": "1 rue de la Paix",
		"payment_method":   models.MethodCash,
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCheckoutEmptyCartRejected(t *testing.T) {
	a := newApp(t)
	a.register(t, "eater", "eater@example.com")

	rec := a.client.Post("/checkout", map[string]string{
		"delivery_address": "1 rue de la Paix",
		"payment_method":   models.MethodCash,
	})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestCartRejectsUnavailableMeal(t *testing.T) {
	a := newApp(t)

	hidden := models.Meal{Name: "Soupe Pho Vietnamienne", Price: 14.90, Category: "Soupes", IsAvailable: false}
	require.NoError(t, a.meals.Create(&hidden))

	rec := a.client.Post(fmt.Sprintf("/cart/add/%d", hidden.ID), nil)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestForeignOrderIsForbidden(t *testing.T) {
	a := newApp(t)
	bowl := a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	a.register(t, "eater", "eater@example.com")
	a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)
	order := a.checkout(t, models.MethodCash)

	// A different account must not see the order.
	a.client.Post("/logout", nil)
	a.register(t, "other", "other@example.com")

	rec := a.client.Get(fmt.Sprintf("/orders/%d", order.ID))
	require.Equal(t, http.StatusForbidden, rec.Code)
}

// webhookPayload builds the gateway's delivery body for a completed session.
func webhookPayload(t *testing.T, sessionID, intent string) []byte {
	t.Helper()
	payload, err := json.Marshal(map[string]interface{}{
		"id":   "evt_1",
		"type": "checkout.session.completed",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":             sessionID,
				"payment_intent": intent,
				"payment_status": "paid",
			},
		},
	})
	require.NoError(t, err)
	return payload
}

func useWebhookSecret(t *testing.T, secret string) {
	t.Helper()
	config.Set("STRIPE_WEBHOOK_SECRET", secret)
	t.Cleanup(func() { config.Set("STRIPE_WEBHOOK_SECRET", "") })
}

func TestCardCheckoutAndWebhookMarksPaid(t *testing.T) {
	a := newApp(t)
	useWebhookSecret(t, "whsec_test")
	bowl := a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	a.register(t, "eater", "eater@example.com")
	a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)
	a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)

	order := a.checkout(t, models.MethodCard)
	require.NotEmpty(t, order.RedirectURL)
	require.Equal(t, models.OrderPaymentInProgress, order.Status)

	stored, err := a.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.NotEmpty(t, stored.StripeSessionID)

	payload := webhookPayload(t, stored.StripeSessionID, "pi_1")
	rec := a.client.Do(http.MethodPost, "/webhook/payment", json.RawMessage(payload), http.Header{
		"Stripe-Signature": {stripe.SignatureHeader(payload, "whsec_test", time.Now())},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored, err = a.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPending, stored.Status)
	require.Equal(t, models.PaymentPaid, stored.PaymentStatus)
	require.Equal(t, "pi_1", stored.StripePaymentIntentID)
}

func TestWebhookBadSignatureChangesNothing(t *testing.T) {
	a := newApp(t)
	useWebhookSecret(t, "whsec_test")
	bowl := a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	a.register(t, "eater", "eater@example.com")
	a.client.Post(fmt.Sprintf("/cart/add/%d", bowl.ID), nil)
	order := a.checkout(t, models.MethodCard)

	stored, err := a.orders.FindByID(order.ID)
	require.NoError(t, err)

	payload := webhookPayload(t, stored.StripeSessionID, "pi_1")
	rec := a.client.Do(http.MethodPost, "/webhook/payment", json.RawMessage(payload), http.Header{
		"Stripe-Signature": {stripe.SignatureHeader(payload, "whsec_wrong", time.Now())},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	stored, err = a.orders.FindByID(order.ID)
	require.NoError(t, err)
	require.Equal(t, models.OrderPaymentInProgress, stored.Status)
	require.Equal(t, models.PaymentPending, stored.PaymentStatus)
}

func TestWebhookRejectedWithoutSecret(t *testing.T) {
	a := newApp(t)
	useWebhookSecret(t, "")

	payload := webhookPayload(t, "cs_1", "pi_1")
	rec := a.client.Do(http.MethodPost, "/webhook/payment", json.RawMessage(payload), http.Header{
		"Stripe-Signature": {stripe.SignatureHeader(payload, "whsec_test", time.Now())},
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminRoutesAreGated(t *testing.T) {
	a := newApp(t)
	a.register(t, "eater", "eater@example.com")

	rec := a.client.Post("/admin/meals", map[string]interface{}{
		"name":     "Tacos Mexicains au Poulet",
		"price":    15.50,
		"category": "Tacos",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminCreatesAndUpdatesMeal(t *testing.T) {
	a := newApp(t)

	hash, err := auth.HashPassword("changeme-now")
	require.NoError(t, err)
	admin := models.User{Username: "admin", Email: "admin@dabba.app", Password: hash, Role: models.RoleAdmin}
	require.NoError(t, a.db.Create(&admin).Error)

	rec := a.client.Post("/login", map[string]string{
		"email":    "admin@dabba.app",
		"password": "changeme-now",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = a.client.Post("/admin/meals", map[string]interface{}{
		"name":     "Tacos Mexicains au Poulet",
		"price":    15.50,
		"category": "Tacos",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created struct {
		Data struct {
			ID uint `json:"id"`
		} `json:"data"`
	}
	testkit.DecodeJSON(t, rec, &created)

	rec = a.client.Do(http.MethodPut, fmt.Sprintf("/admin/meals/%d", created.Data.ID), map[string]interface{}{
		"name":         "Tacos Mexicains au Poulet",
		"price":        15.90,
		"category":     "Tacos",
		"is_available": false,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	meal, err := a.meals.FindByID(created.Data.ID)
	require.NoError(t, err)
	require.False(t, meal.IsAvailable)
	require.InDelta(t, 15.90, meal.Price, 0.001)
}

func TestGraphQLCatalogQuery(t *testing.T) {
	a := newApp(t)
	a.seedMeal(t, "Bowl Buddha aux Légumes Grillés", 14.90)

	rec := a.client.Post("/graphql", map[string]string{
		"query": `{ meals { name price } categories }`,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Meals []struct {
				Name  string  `json:"name"`
				Price float64 `json:"price"`
			} `json:"meals"`
			Categories []string `json:"categories"`
		} `json:"data"`
	}
	testkit.DecodeJSON(t, rec, &resp)
	require.Len(t, resp.Data.Meals, 1)
	require.Equal(t, "Bowl Buddha aux Légumes Grillés", resp.Data.Meals[0].Name)
	require.Equal(t, []string{"Bowls"}, resp.Data.Categories)
}

func TestProfileRoundTrip(t *testing.T) {
	a := newApp(t)
	a.register(t, "eater", "eater@example.com")

	rec := a.client.Post("/profile", map[string]string{
		"address": "8 avenue des Gobelins",
		"phone":   "+33 6 12 34 56 78",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Data struct {
			Address string `json:"address"`
		} `json:"data"`
	}
	testkit.DecodeJSON(t, a.client.Get("/profile"), &resp)
	require.Equal(t, "8 avenue des Gobelins", resp.Data.Address)
}
