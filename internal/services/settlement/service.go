package settlement

import (
	"context"
	stderrors "errors"
	"fmt"
	"log"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
	"campuspay/internal/repositories/cache"
	"campuspay/internal/services/ledger"
	"campuspay/internal/services/payment"
)

type service struct {
	engine   *ledger.Engine
	provider payment.Provider
	cache    *cache.CacheService
}

// NewService creates a settlement service. The cache may be nil; the
// provider is only required for the top-up flows.
func NewService(engine *ledger.Engine, provider payment.Provider, cacheSvc *cache.CacheService) Service {
	if engine == nil {
		panic("ledger engine is required")
	}
	return &service{
		engine:   engine,
		provider: provider,
		cache:    cacheSvc,
	}
}

func (s *service) Purchase(ctx context.Context, accountID uint, items []PurchaseItem) (*PurchaseResult, error) {
	account, err := s.resolveAccount(accountID)
	if err != nil {
		return nil, err
	}
	return s.settlePurchase(ctx, account, items)
}

func (s *service) PurchaseFor(ctx context.Context, handle string, items []PurchaseItem) (*PurchaseResult, error) {
	account, err := s.resolveAccountByHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.settlePurchase(ctx, account, items)
}

// settlePurchase validates the basket, computes the total from current
// prices, then debits and records every line in one atomic unit.
func (s *service) settlePurchase(ctx context.Context, account *models.User, items []PurchaseItem) (*PurchaseResult, error) {
	if len(items) == 0 {
		return nil, errors.ErrEmptyBasket
	}
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, errors.ErrInvalidAmount
		}
	}

	ids := make([]uint, 0, len(items))
	seen := make(map[uint]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.engine.Store().GetActiveProducts(ids)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve products: %w", err)
	}
	if len(products) != len(ids) {
		return nil, errors.ErrProductNotFound
	}
	byID := make(map[uint]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	var total float64
	for _, item := range items {
		total += byID[item.ProductID].Price * float64(item.Quantity)
	}

	if account.Balance < total {
		return nil, &errors.InsufficientFundsError{Balance: account.Balance, Required: total}
	}

	result := &PurchaseResult{TotalPaid: total}
	err = s.engine.Settle(ctx, func(ops *ledger.Ops) error {
		newBalance, err := ops.Debit(account.ID, total)
		if err != nil {
			return err
		}
		result.NewBalance = newBalance
		for _, item := range items {
			purchase, err := ops.RecordPurchase(account.ID, byID[item.ProductID], item.Quantity)
			if err != nil {
				return err
			}
			result.Purchases = append(result.Purchases, *purchase)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, account.ID)
	return result, nil
}

func (s *service) Transfer(ctx context.Context, senderID uint, recipientHandle string, amount float64) (*TransferResult, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	if recipientHandle == "" {
		return nil, errors.ErrMissingFields
	}

	sender, err := s.resolveAccount(senderID)
	if err != nil {
		return nil, err
	}
	if sender.Handle == recipientHandle {
		return nil, errors.ErrSameAccount
	}
	recipient, err := s.resolveAccountByHandle(recipientHandle)
	if err != nil {
		return nil, err
	}
	if recipient.ID == sender.ID {
		return nil, errors.ErrSameAccount
	}
	if sender.Balance < amount {
		return nil, &errors.InsufficientFundsError{Balance: sender.Balance, Required: amount}
	}

	result := &TransferResult{To: recipient.Handle, Amount: amount}
	err = s.engine.Settle(ctx, func(ops *ledger.Ops) error {
		newBalance, err := ops.Debit(sender.ID, amount)
		if err != nil {
			return err
		}
		result.NewBalance = newBalance
		if _, err := ops.Credit(recipient.ID, amount); err != nil {
			return err
		}
		incoming, err := ops.RecordTransaction(recipient.ID, models.TransactionTypeTransferIn, sender.Handle, amount)
		if err != nil {
			return err
		}
		outgoing, err := ops.RecordTransaction(sender.ID, models.TransactionTypeTransferOut, recipient.Handle, -amount)
		if err != nil {
			return err
		}
		result.Incoming = incoming
		result.Outgoing = outgoing
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, sender.ID)
	s.invalidate(ctx, recipient.ID)
	return result, nil
}

func (s *service) ManualCredit(ctx context.Context, handle string, amount float64) (*CreditResult, error) {
	if amount <= 0 {
		return nil, errors.ErrInvalidAmount
	}
	account, err := s.resolveAccountByHandle(handle)
	if err != nil {
		return nil, err
	}
	return s.settleCredit(ctx, account, amount, models.TransactionSourceManual)
}

func (s *service) CreateTopUp(ctx context.Context, accountID uint, amount float64) (string, error) {
	if amount <= 0 {
		return "", errors.ErrInvalidAmount
	}
	account, err := s.resolveAccount(accountID)
	if err != nil {
		return "", err
	}
	checkoutID, err := s.provider.CreateCheckout(ctx, amount, account.Handle)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout: %w", err)
	}
	return checkoutID, nil
}

func (s *service) ConfirmTopUp(ctx context.Context, accountID uint, checkoutID string) (*CreditResult, error) {
	if checkoutID == "" {
		return nil, errors.ErrMissingFields
	}
	account, err := s.resolveAccount(accountID)
	if err != nil {
		return nil, err
	}

	checkout, err := s.provider.GetStatus(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify checkout: %w", err)
	}
	if checkout.Status != payment.StatusSuccess {
		return nil, errors.ErrPaymentNotConfirmed
	}
	if checkout.Amount <= 0 {
		return nil, errors.ErrPaymentNotConfirmed
	}

	// Credit the provider-reported amount, never a client-supplied one.
	return s.settleCredit(ctx, account, checkout.Amount, checkout.ID)
}

// settleCredit records the history row and applies the credit in one
// atomic unit.
func (s *service) settleCredit(ctx context.Context, account *models.User, amount float64, source string) (*CreditResult, error) {
	result := &CreditResult{Handle: account.Handle, Amount: amount}
	err := s.engine.Settle(ctx, func(ops *ledger.Ops) error {
		tx, err := ops.RecordTransaction(account.ID, models.TransactionTypeCredit, source, amount)
		if err != nil {
			return err
		}
		result.Transaction = tx
		newBalance, err := ops.Credit(account.ID, amount)
		if err != nil {
			return err
		}
		result.NewBalance = newBalance
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, account.ID)
	return result, nil
}

func (s *service) Balance(ctx context.Context, accountID uint) (*BalanceView, error) {
	account, err := s.resolveAccount(accountID)
	if err != nil {
		return nil, err
	}
	return &BalanceView{Handle: account.Handle, Balance: account.Balance}, nil
}

func (s *service) BalanceByHandle(ctx context.Context, handle string) (*BalanceView, error) {
	account, err := s.resolveAccountByHandle(handle)
	if err != nil {
		return nil, err
	}
	return &BalanceView{Handle: account.Handle, Balance: account.Balance}, nil
}

func (s *service) History(ctx context.Context, accountID uint, limit, offset int) ([]models.Transaction, error) {
	return s.engine.Store().GetTransactionsByAccount(accountID, clampLimit(limit), offset)
}

func (s *service) PurchaseHistory(ctx context.Context, accountID uint, limit, offset int) ([]models.Purchase, error) {
	return s.engine.Store().GetPurchasesByAccount(accountID, clampLimit(limit), offset)
}

// clampLimit bounds a requested page size to [1,100], defaulting to 20.
func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func (s *service) resolveAccount(id uint) (*models.User, error) {
	account, err := s.engine.Store().GetAccount(id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *service) resolveAccountByHandle(handle string) (*models.User, error) {
	if handle == "" {
		return nil, errors.ErrMissingFields
	}
	account, err := s.engine.Store().GetAccountByHandle(handle)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}
	return account, nil
}

func (s *service) invalidate(ctx context.Context, accountID uint) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateAccount(ctx, accountID); err != nil {
		log.Printf("failed to invalidate account %d cache: %v", accountID, err)
	}
}
