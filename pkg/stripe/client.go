// Package stripe is a minimal client for the Stripe REST API, covering the
// hosted Checkout flow: create a checkout session, retrieve it, and verify
// webhook deliveries.
//
// The client speaks the form-encoded v1 API directly through pkg/httpx; it
// carries no state beyond the secret key and is safe for concurrent use.
package stripe

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/shashiranjanraj/dabba/pkg/httpx"
)

const (
	defaultBaseURL = "https://api.stripe.com"

	// maxDescriptionLen is Stripe's limit on product descriptions.
	maxDescriptionLen = 200
)

// Client calls the Stripe API with a fixed secret key.
type Client struct {
	secretKey string
	baseURL   string
}

// NewClient builds a client for the given secret key. An empty key yields an
// unconfigured client; see Configured.
func NewClient(secretKey string) *Client {
	return &Client{secretKey: secretKey, baseURL: defaultBaseURL}
}

// WithBaseURL overrides the API base URL. Used by tests to point the client
// at an httptest server.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = base
	return c
}

// Configured reports whether a secret key is present. Checkout falls back to
// demo behaviour when the gateway is not configured.
func (c *Client) Configured() bool {
	return c != nil && c.secretKey != ""
}

// LineItem is one purchasable line on a checkout session.
type LineItem struct {
	Name        string
	Description string
	UnitAmount  int64 // minor currency units
	Quantity    int64
	Currency    string
}

// SessionParams are the inputs to CreateCheckoutSession.
type SessionParams struct {
	LineItems     []LineItem
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Metadata      map[string]string
}

// Session is the subset of a Stripe checkout session the application uses.
type Session struct {
	ID            string `json:"id"`
	URL           string `json:"url"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
	PaymentIntent string `json:"payment_intent"`
	AmountTotal   int64  `json:"amount_total"`
}

// apiError mirrors Stripe's error envelope.
type apiError struct {
	Error struct {
		Type    string `json:"type"`
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// CreateCheckoutSession creates a hosted payment session and returns it,
// including the URL to redirect the customer to.
func (c *Client) CreateCheckoutSession(ctx context.Context, params SessionParams) (*Session, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("stripe: client not configured")
	}

	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	for i, item := range params.LineItems {
		p := fmt.Sprintf("line_items[%d]", i)
		form.Set(p+"[quantity]", strconv.FormatInt(item.Quantity, 10))
		form.Set(p+"[price_data][currency]", item.Currency)
		form.Set(p+"[price_data][unit_amount]", strconv.FormatInt(item.UnitAmount, 10))
		form.Set(p+"[price_data][product_data][name]", item.Name)
		if desc := truncate(item.Description, maxDescriptionLen); desc != "" {
			form.Set(p+"[price_data][product_data][description]", desc)
		}
	}

	return c.postSession(ctx, "/v1/checkout/sessions", form)
}

// RetrieveSession fetches a checkout session by ID. The payment callback
// uses it to re-verify payment state instead of trusting the redirect.
func (c *Client) RetrieveSession(ctx context.Context, id string) (*Session, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("stripe: client not configured")
	}

	resp, err := httpx.Get(c.baseURL+"/v1/checkout/sessions/"+url.PathEscape(id)).
		Bearer(c.secretKey).
		WithContext(ctx).
		Timeout(15 * time.Second).
		Retry(3, 500*time.Millisecond).
		Send()
	if err != nil {
		return nil, fmt.Errorf("stripe: retrieve session: %w", err)
	}

	return decodeSession(resp)
}

func (c *Client) postSession(ctx context.Context, path string, form url.Values) (*Session, error) {
	resp, err := httpx.Post(c.baseURL+path).
		Bearer(c.secretKey).
		Body(form).
		WithContext(ctx).
		Timeout(15 * time.Second).
		Retry(2, time.Second).
		Send()
	if err != nil {
		return nil, fmt.Errorf("stripe: create session: %w", err)
	}

	return decodeSession(resp)
}

func decodeSession(resp *httpx.Response) (*Session, error) {
	if !resp.OK() {
		var apiErr apiError
		if err := resp.JSON(&apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, fmt.Errorf("stripe: api error (%s): %s", apiErr.Error.Type, apiErr.Error.Message)
		}
		return nil, fmt.Errorf("stripe: unexpected status %d: %s", resp.StatusCode, resp.Text())
	}

	var sess Session
	if err := resp.JSON(&sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
