// Package errors defines the domain error taxonomy shared by services and
// handlers. Every business-rule failure is one of these values so handlers
// can map them to responses without string matching.
package errors

import "fmt"

// DomainError is a typed business-rule failure with a stable code.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string { return e.Message }

// InsufficientFundsError reports a failed balance check. It carries the
// balance observed at check time and the amount the operation required.
type InsufficientFundsError struct {
	Balance  float64
	Required float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %.2f, required %.2f", e.Balance, e.Required)
}
