package settlement

import (
	"context"

	"campuspay/internal/models"
)

// Service exposes the settlement flows: purchases, peer transfers and
// credits, each built as validation plus one atomic ledger invocation.
type Service interface {
	Purchase(ctx context.Context, accountID uint, items []PurchaseItem) (*PurchaseResult, error)
	PurchaseFor(ctx context.Context, handle string, items []PurchaseItem) (*PurchaseResult, error)
	Transfer(ctx context.Context, senderID uint, recipientHandle string, amount float64) (*TransferResult, error)
	ManualCredit(ctx context.Context, handle string, amount float64) (*CreditResult, error)

	CreateTopUp(ctx context.Context, accountID uint, amount float64) (string, error)
	ConfirmTopUp(ctx context.Context, accountID uint, checkoutID string) (*CreditResult, error)

	Balance(ctx context.Context, accountID uint) (*BalanceView, error)
	BalanceByHandle(ctx context.Context, handle string) (*BalanceView, error)
	History(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, error)
	PurchaseHistory(ctx context.Context, accountID uint, limit, offset int) ([]models.Purchase, error)
}
