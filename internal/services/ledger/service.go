package ledger

import (
	"context"
	stderrors "errors"
	"log"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"

	"github.com/google/uuid"
)

// Engine executes settlement scopes against the ledger store.
type Engine struct {
	store repositories.LedgerRepository
}

// NewEngine creates a ledger engine.
func NewEngine(store repositories.LedgerRepository) *Engine {
	if store == nil {
		panic("ledger store is required")
	}
	return &Engine{store: store}
}

// Settle runs fn inside a single atomic unit. All Ops calls made by fn
// commit together or roll back together.
func (e *Engine) Settle(ctx context.Context, fn func(ops *Ops) error) error {
	err := e.store.ExecuteInTransaction(func(tx repositories.LedgerRepository) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(&Ops{tx: tx})
	})
	if err == nil {
		return nil
	}

	var domainErr *errors.DomainError
	var fundsErr *errors.InsufficientFundsError
	if stderrors.As(err, &domainErr) || stderrors.As(err, &fundsErr) {
		return err
	}

	log.Printf("settlement aborted: %v", err)
	return errors.ErrTransactionFailed
}

// Store exposes the underlying repository for read-only lookups that
// happen before a settlement scope is entered.
func (e *Engine) Store() repositories.LedgerRepository {
	return e.store
}

// Ops is the set of ledger operations available inside a settlement
// scope. It is only ever handed out by Settle.
type Ops struct {
	tx repositories.LedgerRepository
}

// Debit decrements the account balance by amount and returns the new
// balance. The account row is locked for the rest of the scope.
func (o *Ops) Debit(accountID uint, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, errors.ErrInvalidAmount
	}
	account, err := o.tx.GetAccountForUpdate(accountID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return 0, errors.ErrAccountNotFound
		}
		return 0, err
	}
	if account.Balance < amount {
		return account.Balance, &errors.InsufficientFundsError{
			Balance:  account.Balance,
			Required: amount,
		}
	}
	account.Balance -= amount
	if err := o.tx.UpdateAccount(account); err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// Credit increments the account balance by amount and returns the new
// balance. Crediting never fails on balance grounds.
func (o *Ops) Credit(accountID uint, amount float64) (float64, error) {
	if amount <= 0 {
		return 0, errors.ErrInvalidAmount
	}
	account, err := o.tx.GetAccountForUpdate(accountID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return 0, errors.ErrAccountNotFound
		}
		return 0, err
	}
	account.Balance += amount
	if err := o.tx.UpdateAccount(account); err != nil {
		return 0, err
	}
	return account.Balance, nil
}

// RecordPurchase appends a purchase row. The total price snapshots the
// product's price at call time.
func (o *Ops) RecordPurchase(accountID uint, product *models.Product, quantity int) (*models.Purchase, error) {
	if quantity <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if product == nil || !product.Active() {
		return nil, errors.ErrProductNotFound
	}
	purchase := &models.Purchase{
		UserID:     accountID,
		ProductID:  product.ID,
		ShopID:     product.ShopID,
		Quantity:   quantity,
		TotalPrice: product.Price * float64(quantity),
	}
	if err := o.tx.CreatePurchase(purchase); err != nil {
		return nil, err
	}
	return purchase, nil
}

// RecordTransaction appends a signed history row. Amount is negative on
// the debit side and positive on the credit side.
func (o *Ops) RecordTransaction(accountID uint, kind, source string, amount float64) (*models.Transaction, error) {
	tx := &models.Transaction{
		UserID:    accountID,
		Kind:      kind,
		Source:    source,
		Amount:    amount,
		Reference: uuid.NewString(),
	}
	if err := o.tx.CreateTransaction(tx); err != nil {
		return nil, err
	}
	return tx, nil
}
