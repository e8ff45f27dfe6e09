package services

import (
	"context"

	"github.com/shashiranjanraj/dabba/pkg/stripe"
)

// Gateway is the payment processor seam. Production wires *stripe.Client;
// tests inject a stub.
type Gateway interface {
	Configured() bool
	CreateCheckoutSession(ctx context.Context, params stripe.SessionParams) (*stripe.Session, error)
	RetrieveSession(ctx context.Context, id string) (*stripe.Session, error)
}

var _ Gateway = (*stripe.Client)(nil)
