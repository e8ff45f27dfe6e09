package testkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/shashiranjanraj/dabba/pkg/stripe"
)

// StubGateway is an in-memory payment gateway. It hands out sessions with
// predictable IDs and lets tests flip their payment status.
type StubGateway struct {
	mu       sync.Mutex
	Enabled  bool
	Err      error // returned by both calls when set
	sessions map[string]*stripe.Session
	nextID   int
}

func NewStubGateway() *StubGateway {
	return &StubGateway{Enabled: true, sessions: map[string]*stripe.Session{}}
}

func (g *StubGateway) Configured() bool { return g.Enabled }

func (g *StubGateway) CreateCheckoutSession(_ context.Context, params stripe.SessionParams) (*stripe.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}

	g.nextID++
	id := fmt.Sprintf("cs_test_%d", g.nextID)
	sess := &stripe.Session{
		ID:            id,
		URL:           "https://checkout.example.com/" + id,
		Status:        "open",
		PaymentStatus: "unpaid",
	}
	for _, item := range params.LineItems {
		sess.AmountTotal += item.UnitAmount * item.Quantity
	}
	g.sessions[id] = sess
	return sess, nil
}

func (g *StubGateway) RetrieveSession(_ context.Context, id string) (*stripe.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.Err != nil {
		return nil, g.Err
	}
	sess, ok := g.sessions[id]
	if !ok {
		return nil, fmt.Errorf("stub gateway: unknown session %q", id)
	}
	out := *sess
	return &out, nil
}

// MarkPaid flips a stub session to paid, as if the customer completed the
// hosted checkout.
func (g *StubGateway) MarkPaid(id, paymentIntent string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if sess, ok := g.sessions[id]; ok {
		sess.Status = "complete"
		sess.PaymentStatus = "paid"
		sess.PaymentIntent = paymentIntent
	}
}
