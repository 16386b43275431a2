// Package payment is the boundary to the external payment provider. The
// settlement flows treat the provider as untrusted input: only a SUCCESS
// status releases a credit, and the credited amount is always the
// provider-reported one, never a client-supplied value.
package payment

import "context"

// Status is the provider-reported state of a checkout.
type Status string

const (
	StatusSuccess Status = "SUCCESS"
	StatusPending Status = "PENDING"
	StatusFailed  Status = "FAILED"
)

// Checkout is the provider's view of a top-up payment.
type Checkout struct {
	ID     string  `json:"id"`
	Status Status  `json:"status"`
	Amount float64 `json:"amount"`
}

// Provider creates checkouts and reports their status.
type Provider interface {
	CreateCheckout(ctx context.Context, amount float64, accountRef string) (string, error)
	GetStatus(ctx context.Context, checkoutID string) (*Checkout, error)
}
