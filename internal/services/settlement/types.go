package settlement

import "campuspay/internal/models"

// PurchaseItem is one requested basket line. Duplicate product ids are
// settled per line; quantities are not merged.
type PurchaseItem struct {
	ProductID uint `json:"product_id" validate:"required"`
	Quantity  int  `json:"quantity" validate:"required,gt=0"`
}

// PurchaseResult is the consistent view returned by a committed purchase.
type PurchaseResult struct {
	TotalPaid  float64           `json:"total_paid"`
	NewBalance float64           `json:"new_balance"`
	Purchases  []models.Purchase `json:"purchases"`
}

// TransferResult is the consistent view returned by a committed transfer.
type TransferResult struct {
	To         string              `json:"to"`
	Amount     float64             `json:"amount"`
	NewBalance float64             `json:"new_balance"`
	Outgoing   *models.Transaction `json:"outgoing"`
	Incoming   *models.Transaction `json:"incoming"`
}

// CreditResult is the consistent view returned by a committed credit.
type CreditResult struct {
	Handle      string              `json:"handle"`
	Amount      float64             `json:"amount"`
	NewBalance  float64             `json:"new_balance"`
	Transaction *models.Transaction `json:"transaction"`
}

// BalanceView is a read-only snapshot of an account's balance.
type BalanceView struct {
	Handle  string  `json:"handle"`
	Balance float64 `json:"balance"`
}
