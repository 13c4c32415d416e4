package checkout

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/checkout/session"

	pkgstripe "github.com/monsoonshop/monsoon-backend/pkg/stripe"
)

// SessionCreator exposes the subset of Stripe operations checkout needs.
type SessionCreator interface {
	CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error)
}

type stripeSessionClient struct {
	sessions session.Client
}

// NewStripeSessionClient wraps the shared Stripe client so the checkout
// service can be tested against a fake. The session client carries its own
// key rather than leaning on the package-global one.
func NewStripeSessionClient(client *pkgstripe.Client) SessionCreator {
	if client == nil {
		return nil
	}
	return &stripeSessionClient{
		sessions: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: client.APIKey(),
		},
	}
}

func (c *stripeSessionClient) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	if params != nil {
		params.Context = ctx
	}
	return c.sessions.New(params)
}
