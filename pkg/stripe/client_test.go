package stripe_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shashiranjanraj/dabba/pkg/stripe"
)

func TestCreateCheckoutSession(t *testing.T) {
	var gotForm map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk_test_123" {
			t.Errorf("authorization = %q", got)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		gotForm = map[string]string{}
		for k := range r.PostForm {
			gotForm[k] = r.PostForm.Get(k)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_1","url":"https://checkout.stripe.com/pay/cs_test_1","status":"open","payment_status":"unpaid"}`))
	}))
	defer srv.Close()

	client := stripe.NewClient("sk_test_123").WithBaseURL(srv.URL)

	sess, err := client.CreateCheckoutSession(context.Background(), stripe.SessionParams{
		SuccessURL:    "https://dabba.test/payment/success/7?session_id={CHECKOUT_SESSION_ID}",
		CancelURL:     "https://dabba.test/payment/cancel/7",
		CustomerEmail: "eater@example.com",
		Metadata:      map[string]string{"order_id": "7"},
		LineItems: []stripe.LineItem{
			{Name: "Wrap Falafel", UnitAmount: 1290, Quantity: 2, Currency: "eur"},
			{Name: "Service fee", UnitAmount: 150, Quantity: 1, Currency: "eur"},
		},
	})
	if err != nil {
		t.Fatalf("CreateCheckoutSession: %v", err)
	}

	if sess.ID != "cs_test_1" {
		t.Fatalf("session id = %q", sess.ID)
	}
	if sess.URL == "" {
		t.Fatal("session url empty")
	}

	checks := map[string]string{
		"mode":                                      "payment",
		"customer_email":                            "eater@example.com",
		"metadata[order_id]":                        "7",
		"line_items[0][quantity]":                   "2",
		"line_items[0][price_data][currency]":       "eur",
		"line_items[0][price_data][unit_amount]":    "1290",
		"line_items[0][price_data][product_data][name]": "Wrap Falafel",
		"line_items[1][price_data][unit_amount]":        "150",
	}
	for key, want := range checks {
		if gotForm[key] != want {
			t.Errorf("form[%q] = %q, want %q", key, gotForm[key], want)
		}
	}
}

func TestRetrieveSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/checkout/sessions/cs_test_9" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"cs_test_9","status":"complete","payment_status":"paid","payment_intent":"pi_55","amount_total":3130}`))
	}))
	defer srv.Close()

	client := stripe.NewClient("sk_test_123").WithBaseURL(srv.URL)

	sess, err := client.RetrieveSession(context.Background(), "cs_test_9")
	if err != nil {
		t.Fatalf("RetrieveSession: %v", err)
	}
	if sess.PaymentStatus != "paid" || sess.PaymentIntent != "pi_55" || sess.AmountTotal != 3130 {
		t.Fatalf("session decoded wrong: %+v", sess)
	}
}

func TestAPIErrorSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusPaymentRequired)
		w.Write([]byte(`{"error":{"type":"card_error","code":"card_declined","message":"Your card was declined."}}`))
	}))
	defer srv.Close()

	client := stripe.NewClient("sk_test_123").WithBaseURL(srv.URL)

	_, err := client.RetrieveSession(context.Background(), "cs_bad")
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestUnconfiguredClient(t *testing.T) {
	client := stripe.NewClient("")
	if client.Configured() {
		t.Fatal("empty key should not be configured")
	}
	if _, err := client.CreateCheckoutSession(context.Background(), stripe.SessionParams{}); err == nil {
		t.Fatal("expected error from unconfigured client")
	}

	var nilClient *stripe.Client
	if nilClient.Configured() {
		t.Fatal("nil client should not be configured")
	}
}
