// AngelaMos | 2026
// stripe.go

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/webhook"

	"github.com/carterperez-dev/enhancify/internal/config"
)

const metadataPaymentID = "payment_id"

// Stripe accepts a session expiry between 30 minutes and 24 hours out.
const (
	minSessionLifetime = 31 * time.Minute
	maxSessionLifetime = 24 * time.Hour
)

// StripeProvider opens hosted Checkout sessions and verifies webhook
// deliveries.
type StripeProvider struct {
	sessions      session.Client
	webhookSecret string
	successURL    string
	cancelURL     string
}

func NewStripeProvider(cfg config.StripeConfig) *StripeProvider {
	return &StripeProvider{
		sessions: session.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: cfg.SecretKey,
		},
		webhookSecret: cfg.WebhookSecret,
		successURL:    cfg.SuccessURL,
		cancelURL:     cfg.CancelURL,
	}
}

func (p *StripeProvider) CreateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	if p.sessions.Key == "" {
		return nil, ErrNotConfigured
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(strings.ToLower(req.Currency)),
				UnitAmount: stripe.Int64(req.Amount),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(req.Description),
				},
			},
			Quantity: stripe.Int64(1),
		}},
		ClientReferenceID: stripe.String(req.UserID),
		SuccessURL:        stripe.String(p.successURL),
		CancelURL:         stripe.String(p.cancelURL),
	}
	if !req.ExpiresAt.IsZero() {
		params.ExpiresAt = stripe.Int64(sessionExpiry(time.Now(), req.ExpiresAt).Unix())
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx
	params.AddMetadata(metadataPaymentID, req.PaymentID)

	sess, err := p.sessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe checkout: %w", err)
	}

	return &CheckoutSession{ID: sess.ID, URL: sess.URL}, nil
}

// ExpireCheckout closes an open hosted checkout so it can no longer be paid.
// A session that already expired is treated as closed. One that was paid
// reports ErrCheckoutComplete.
func (p *StripeProvider) ExpireCheckout(ctx context.Context, sessionID string) error {
	if p.sessions.Key == "" {
		return ErrNotConfigured
	}

	params := &stripe.CheckoutSessionExpireParams{}
	params.Context = ctx

	_, err := p.sessions.Expire(sessionID, params)
	if err == nil {
		return nil
	}

	getParams := &stripe.CheckoutSessionParams{}
	getParams.Context = ctx
	sess, gerr := p.sessions.Get(sessionID, getParams)
	if gerr != nil {
		return fmt.Errorf("stripe expire checkout: %w", err)
	}

	switch sess.Status {
	case stripe.CheckoutSessionStatusExpired:
		return nil
	case stripe.CheckoutSessionStatusComplete:
		return ErrCheckoutComplete
	}
	return fmt.Errorf("stripe expire checkout: %w", err)
}

func sessionExpiry(now, want time.Time) time.Time {
	lifetime := min(max(want.Sub(now), minSessionLifetime), maxSessionLifetime)
	return now.Add(lifetime)
}

// ParseEvent verifies the Stripe-Signature header and decodes the event.
// Only checkout completion carries a payment reference.
func (p *StripeProvider) ParseEvent(payload []byte, signature string) (*Event, error) {
	if p.webhookSecret == "" {
		return nil, ErrNotConfigured
	}

	ev, err := webhook.ConstructEventWithOptions(
		payload,
		signature,
		p.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	if out.Type != EventCheckoutCompleted {
		return out, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &sess); err != nil {
		return nil, fmt.Errorf("decode checkout session: %w", err)
	}

	out.SessionID = sess.ID
	out.PaymentID = sess.Metadata[metadataPaymentID]
	out.Paid = sess.PaymentStatus == stripe.CheckoutSessionPaymentStatusPaid

	return out, nil
}
