// Package billing creates hosted checkout sessions and verifies the events
// Stripe posts back.
package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/checkout/session"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/krishkalaria12/pixelmind/common"
)

type CheckoutRequest struct {
	Plan       string
	Credits    int
	Amount     float64
	BuyerID    string
	SuccessURL string
	CancelURL  string
}

// Checkout starts hosted payment flows.
type Checkout interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
}

// EventParser verifies and decodes webhook deliveries.
type EventParser interface {
	ParseEvent(payload []byte, signature string) (*Event, error)
}

type Event struct {
	ID   string
	Type string
	// Set for checkout.session.completed.
	Checkout *CompletedCheckout
}

type CompletedCheckout struct {
	SessionID   string
	AmountTotal int64
	Plan        string
	Credits     int
	BuyerID     string
}

type Stripe struct {
	sessions      session.Client
	webhookSecret string
}

func NewStripe(secretKey, webhookSecret string) *Stripe {
	return newStripe(stripe.GetBackend(stripe.APIBackend), secretKey, webhookSecret)
}

func newStripe(b stripe.Backend, secretKey, webhookSecret string) *Stripe {
	return &Stripe{
		sessions:      session.Client{B: b, Key: secretKey},
		webhookSecret: webhookSecret,
	}
}

// CreateCheckoutSession returns the URL of the hosted checkout page.
func (s *Stripe) CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error) {
	params := &stripe.CheckoutSessionParams{
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(string(stripe.CurrencyUSD)),
					UnitAmount: stripe.Int64(int64(math.Round(req.Amount * 100))),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(req.Plan),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"plan":    req.Plan,
			"credits": strconv.Itoa(req.Credits),
			"buyerId": req.BuyerID,
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(req.SuccessURL),
		CancelURL:  stripe.String(req.CancelURL),
	}
	params.Context = ctx

	sess, err := s.sessions.New(params)
	if err != nil {
		return "", fmt.Errorf("stripe checkout session: %w", err)
	}
	return sess.URL, nil
}

// ParseEvent verifies the Stripe-Signature header against the webhook secret.
// Verification failures wrap common.ErrVerificationFailed.
func (s *Stripe) ParseEvent(payload []byte, signature string) (*Event, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signature, s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	out := &Event{ID: event.ID, Type: string(event.Type)}
	if event.Type != stripe.EventTypeCheckoutSessionCompleted {
		return out, nil
	}

	var cs stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("%w: decode checkout session: %v", common.ErrInvalidInput, err)
	}
	credits, err := strconv.Atoi(cs.Metadata["credits"])
	if err != nil {
		return nil, fmt.Errorf("%w: credits metadata %q", common.ErrInvalidInput, cs.Metadata["credits"])
	}

	out.Checkout = &CompletedCheckout{
		SessionID:   cs.ID,
		AmountTotal: cs.AmountTotal,
		Plan:        cs.Metadata["plan"],
		Credits:     credits,
		BuyerID:     cs.Metadata["buyerId"],
	}
	return out, nil
}
