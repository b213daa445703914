// Package payment creates payment intents with the external processor.
package payment

import (
	"context"
	"errors"
	"fmt"
	"math"

	"go-medicamp/metrics"
	"go-medicamp/models"
	"go-medicamp/store"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
)

var (
	ErrUnknownCamp   = errors.New("camp not found")
	ErrInvalidAmount = errors.New("charge amount must be positive")
)

// CampFinder resolves the camp whose fee is charged
type CampFinder interface {
	FindCamp(ctx context.Context, id string) (*models.Camp, error)
}

// IntentCreator is the processor call. *paymentintent.Client satisfies it.
type IntentCreator interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

// Bridge computes charges and requests payment intents. No record of the
// intent is kept.
type Bridge struct {
	camps    CampFinder
	intents  IntentCreator
	currency string
}

// NewBridge returns a Bridge using intents for processor calls
func NewBridge(camps CampFinder, intents IntentCreator, currency string) *Bridge {
	return &Bridge{camps: camps, intents: intents, currency: currency}
}

// NewStripeBridge returns a Bridge backed by the Stripe API
func NewStripeBridge(camps CampFinder, secretKey, currency string) *Bridge {
	sc := client.New(secretKey, nil)
	return NewBridge(camps, sc.PaymentIntents, currency)
}

// ChargeAmount returns quantity × fee in minor currency units
func ChargeAmount(quantity, fee float64) int64 {
	return int64(math.Round(quantity * fee * 100))
}

// CreateIntent charges quantity times the camp's stored fee and returns the
// client secret of the created intent
func (b *Bridge) CreateIntent(ctx context.Context, quantity float64, campID string) (string, error) {
	camp, err := b.camps.FindCamp(ctx, campID)
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrInvalidID) {
		return "", fmt.Errorf("%w: %s", ErrUnknownCamp, campID)
	}
	if err != nil {
		return "", err
	}

	amount := ChargeAmount(quantity, camp.Fee)
	if amount <= 0 {
		return "", ErrInvalidAmount
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(b.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("campId", campID)

	intent, err := b.intents.New(params)
	if err != nil {
		metrics.RecordPaymentIntent("failed")
		return "", fmt.Errorf("create payment intent: %w", err)
	}
	metrics.RecordPaymentIntent("created")
	return intent.ClientSecret, nil
}
