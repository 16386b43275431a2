package repositories

import (
	"fmt"

	"campuspay/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository is the storage surface of the settlement engine. A
// settlement runs every call inside a single ExecuteInTransaction scope;
// GetAccountForUpdate takes a row lock so concurrent settlements against
// the same account serialize at the database instead of interleaving
// their balance check and balance write.
type LedgerRepository interface {
	GetAccount(id uint) (*models.User, error)
	GetAccountByHandle(handle string) (*models.User, error)
	GetAccountForUpdate(id uint) (*models.User, error)
	UpdateAccount(account *models.User) error

	GetActiveProducts(ids []uint) ([]models.Product, error)
	CreatePurchase(purchase *models.Purchase) error
	CreateTransaction(tx *models.Transaction) error

	GetTransactionsByAccount(accountID uint, limit, offset int) ([]models.Transaction, error)
	GetPurchasesByAccount(accountID uint, limit, offset int) ([]models.Purchase, error)

	ExecuteInTransaction(fn func(LedgerRepository) error) error
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) GetAccount(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) GetAccountByHandle(handle string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("handle = ?", handle).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) GetAccountForUpdate(id uint) (*models.User, error) {
	var user models.User
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to lock account: %w", err)
	}
	return &user, nil
}

func (r *ledgerRepository) UpdateAccount(account *models.User) error {
	if err := r.db.Save(account).Error; err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetActiveProducts(ids []uint) ([]models.Product, error) {
	var products []models.Product
	err := r.db.Where("id IN ? AND status = ?", ids, models.StatusActive).Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get products: %w", err)
	}
	return products, nil
}

func (r *ledgerRepository) CreatePurchase(purchase *models.Purchase) error {
	if err := r.db.Create(purchase).Error; err != nil {
		return fmt.Errorf("failed to create purchase: %w", err)
	}
	return nil
}

func (r *ledgerRepository) CreateTransaction(tx *models.Transaction) error {
	if err := r.db.Create(tx).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *ledgerRepository) GetTransactionsByAccount(accountID uint, limit, offset int) ([]models.Transaction, error) {
	var txs []models.Transaction
	err := r.db.Where("user_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&txs).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction history: %w", err)
	}
	return txs, nil
}

func (r *ledgerRepository) GetPurchasesByAccount(accountID uint, limit, offset int) ([]models.Purchase, error) {
	var purchases []models.Purchase
	err := r.db.Where("user_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&purchases).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get purchase history: %w", err)
	}
	return purchases, nil
}

func (r *ledgerRepository) ExecuteInTransaction(fn func(LedgerRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&ledgerRepository{db: tx})
	})
}
