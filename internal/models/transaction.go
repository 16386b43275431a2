package models

import "time"

// Transaction kinds
const (
	TransactionTypeCredit      = "credit"
	TransactionTypeDebit       = "debit"
	TransactionTypeTransferIn  = "transfer_in"
	TransactionTypeTransferOut = "transfer_out"
)

// Transaction sources
const (
	TransactionSourceManual = "manual"
)

// Transaction is an append-only history row describing a single balance
// mutation. Amount is signed: negative on the debit side, positive on the
// credit side. Rows are never updated or deleted.
type Transaction struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Kind      string    `gorm:"not null" json:"kind"`
	Source    string    `gorm:"not null" json:"source"`
	Amount    float64   `gorm:"not null" json:"amount"`
	Reference string    `json:"reference,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Purchase is an append-only record of a settled basket line. TotalPrice
// snapshots unit price times quantity at settlement time and is never
// recomputed from the product's current price.
type Purchase struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	UserID     uint      `gorm:"not null;index" json:"user_id"`
	ProductID  uint      `gorm:"not null;index" json:"product_id"`
	ShopID     uint      `gorm:"not null;index" json:"shop_id"`
	Quantity   int       `gorm:"not null" json:"quantity"`
	TotalPrice float64   `gorm:"not null" json:"total_price"`
	CreatedAt  time.Time `json:"created_at"`
}
