// Package webhook verifies and decodes payment-gateway checkout notifications.
package webhook

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"
)

const (
	SignatureHeader = "Stripe-Signature"

	CheckoutCompleted = "checkout.session.completed"

	DefaultTolerance = stripewebhook.DefaultTolerance
)

var (
	ErrMissingSignature = stripewebhook.ErrNotSigned
	ErrBadSignature     = stripewebhook.ErrNoValidSignature
	ErrStaleTimestamp   = stripewebhook.ErrTooOld
	ErrMalformedHeader  = stripewebhook.ErrInvalidHeader
)

// CheckoutSession is the part of a completed checkout session an order is built from.
type CheckoutSession struct {
	ID                string
	ClientReferenceID string
	CustomerEmail     string
	AmountTotal       int64
	Metadata          map[string]string
}

func (s CheckoutSession) CartID() (uuid.UUID, error) {
	id, err := uuid.Parse(s.ClientReferenceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("webhook: client_reference_id: %w", err)
	}
	return id, nil
}

type Verifier struct {
	Secret    string
	Tolerance time.Duration
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{Secret: secret, Tolerance: DefaultTolerance}
}

// ConstructEvent checks the signature header against the exact payload bytes and decodes the event.
// Events from any API version are accepted; only the session fields above are read.
func (v *Verifier) ConstructEvent(payload []byte, header string) (*stripe.Event, error) {
	ev, err := stripewebhook.ConstructEventWithOptions(payload, header, v.Secret, stripewebhook.ConstructEventOptions{
		Tolerance:                v.Tolerance,
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, err
	}
	return &ev, nil
}

// SignatureHeaderFor builds a header value for payload signed at ts.
func (v *Verifier) SignatureHeaderFor(payload []byte, ts time.Time) string {
	signed := stripewebhook.GenerateTestSignedPayload(&stripewebhook.UnsignedPayload{
		Payload:   payload,
		Secret:    v.Secret,
		Timestamp: ts,
		Scheme:    "v1",
	})
	return signed.Header
}

// Session decodes the checkout session carried by ev. The customer email falls back to
// the details collected during checkout.
func Session(ev *stripe.Event) (*CheckoutSession, error) {
	if ev.Data == nil {
		return nil, fmt.Errorf("webhook: event %s has no data", ev.ID)
	}
	var cs stripe.CheckoutSession
	if err := json.Unmarshal(ev.Data.Raw, &cs); err != nil {
		return nil, fmt.Errorf("webhook: decode session: %w", err)
	}

	email := cs.CustomerEmail
	if email == "" && cs.CustomerDetails != nil {
		email = cs.CustomerDetails.Email
	}
	return &CheckoutSession{
		ID:                cs.ID,
		ClientReferenceID: cs.ClientReferenceID,
		CustomerEmail:     email,
		AmountTotal:       cs.AmountTotal,
		Metadata:          cs.Metadata,
	}, nil
}
