package payment

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v72"
	"github.com/stripe/stripe-go/v72/paymentintent"
)

// stripeProvider implements Provider on Stripe payment intents. One
// checkout maps to one payment intent; the intent id is the checkout id.
type stripeProvider struct {
	currency string
}

// NewStripeProvider configures the Stripe client and returns a Provider.
func NewStripeProvider(apiKey, currency string) Provider {
	stripe.Key = apiKey
	if currency == "" {
		currency = string(stripe.CurrencyEUR)
	}
	return &stripeProvider{currency: currency}
}

func (p *stripeProvider) CreateCheckout(ctx context.Context, amount float64, accountRef string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toCents(amount)),
		Currency:    stripe.String(p.currency),
		Description: stripe.String("wallet top-up"),
	}
	params.Context = ctx
	params.AddMetadata("account_ref", accountRef)

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}
	return intent.ID, nil
}

func (p *stripeProvider) GetStatus(ctx context.Context, checkoutID string) (*Checkout, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	intent, err := paymentintent.Get(checkoutID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to get checkout status: %w", err)
	}
	return &Checkout{
		ID:     intent.ID,
		Status: mapIntentStatus(intent.Status),
		Amount: fromCents(intent.Amount),
	}, nil
}

func mapIntentStatus(status stripe.PaymentIntentStatus) Status {
	switch status {
	case stripe.PaymentIntentStatusSucceeded:
		return StatusSuccess
	case stripe.PaymentIntentStatusCanceled:
		return StatusFailed
	default:
		return StatusPending
	}
}

// Stripe amounts are integer cents. Conversions go through decimal so a
// float euro amount never picks up rounding error on the way in or out.
func toCents(amount float64) int64 {
	return decimal.NewFromFloat(amount).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

func fromCents(cents int64) float64 {
	f, _ := decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).Float64()
	return f
}
