package ledger

import (
	"context"
	stderrors "errors"
	"testing"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory LedgerRepository. ExecuteInTransaction runs
// fn against a deep copy and commits the copy back only on success, so
// rollback behavior is observable.
type fakeStore struct {
	accounts     map[uint]*models.User
	products     map[uint]*models.Product
	purchases    []models.Purchase
	transactions []models.Transaction

	failUpdate      bool
	failTransaction bool
}

func newFakeStore(accounts ...*models.User) *fakeStore {
	s := &fakeStore{
		accounts: make(map[uint]*models.User),
		products: make(map[uint]*models.Product),
	}
	for _, a := range accounts {
		copy := *a
		s.accounts[a.ID] = &copy
	}
	return s
}

func (s *fakeStore) clone() *fakeStore {
	c := &fakeStore{
		accounts:        make(map[uint]*models.User, len(s.accounts)),
		products:        s.products,
		purchases:       append([]models.Purchase(nil), s.purchases...),
		transactions:    append([]models.Transaction(nil), s.transactions...),
		failUpdate:      s.failUpdate,
		failTransaction: s.failTransaction,
	}
	for id, a := range s.accounts {
		copy := *a
		c.accounts[id] = &copy
	}
	return c
}

func (s *fakeStore) GetAccount(id uint) (*models.User, error) {
	a, ok := s.accounts[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	copy := *a
	return &copy, nil
}

func (s *fakeStore) GetAccountByHandle(handle string) (*models.User, error) {
	for _, a := range s.accounts {
		if a.Handle == handle {
			copy := *a
			return &copy, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (s *fakeStore) GetAccountForUpdate(id uint) (*models.User, error) {
	return s.GetAccount(id)
}

func (s *fakeStore) UpdateAccount(account *models.User) error {
	if s.failUpdate {
		return stderrors.New("storage failure")
	}
	copy := *account
	s.accounts[account.ID] = &copy
	return nil
}

func (s *fakeStore) GetActiveProducts(ids []uint) ([]models.Product, error) {
	var out []models.Product
	for _, id := range ids {
		if p, ok := s.products[id]; ok && p.Active() {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) CreatePurchase(purchase *models.Purchase) error {
	purchase.ID = uint(len(s.purchases) + 1)
	s.purchases = append(s.purchases, *purchase)
	return nil
}

func (s *fakeStore) CreateTransaction(tx *models.Transaction) error {
	if s.failTransaction {
		return stderrors.New("storage failure")
	}
	tx.ID = uint(len(s.transactions) + 1)
	s.transactions = append(s.transactions, *tx)
	return nil
}

func (s *fakeStore) GetTransactionsByAccount(accountID uint, limit, offset int) ([]models.Transaction, error) {
	var out []models.Transaction
	for _, tx := range s.transactions {
		if tx.UserID == accountID {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *fakeStore) GetPurchasesByAccount(accountID uint, limit, offset int) ([]models.Purchase, error) {
	var out []models.Purchase
	for _, p := range s.purchases {
		if p.UserID == accountID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *fakeStore) ExecuteInTransaction(fn func(repositories.LedgerRepository) error) error {
	tx := s.clone()
	if err := fn(tx); err != nil {
		return err
	}
	s.accounts = tx.accounts
	s.purchases = tx.purchases
	s.transactions = tx.transactions
	return nil
}

func TestEngine_Settle_Debit(t *testing.T) {
	tests := []struct {
		name        string
		balance     float64
		amount      float64
		wantErr     error
		wantBalance float64
	}{
		{
			name:        "successful debit",
			balance:     100,
			amount:      40,
			wantBalance: 60,
		},
		{
			name:        "exact balance",
			balance:     50,
			amount:      50,
			wantBalance: 0,
		},
		{
			name:        "insufficient funds",
			balance:     50,
			amount:      60,
			wantErr:     &errors.InsufficientFundsError{Balance: 50, Required: 60},
			wantBalance: 50,
		},
		{
			name:        "zero amount",
			balance:     100,
			amount:      0,
			wantErr:     errors.ErrInvalidAmount,
			wantBalance: 100,
		},
		{
			name:        "negative amount",
			balance:     100,
			amount:      -5,
			wantErr:     errors.ErrInvalidAmount,
			wantBalance: 100,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeStore(&models.User{ID: 1, Handle: "alice", Balance: tt.balance})
			engine := NewEngine(store)

			err := engine.Settle(context.Background(), func(ops *Ops) error {
				_, err := ops.Debit(1, tt.amount)
				return err
			})

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())
			} else {
				require.NoError(t, err)
			}
			account, _ := store.GetAccount(1)
			assert.Equal(t, tt.wantBalance, account.Balance)
		})
	}
}

func TestEngine_Settle_InsufficientFundsDetail(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice", Balance: 50})
	engine := NewEngine(store)

	err := engine.Settle(context.Background(), func(ops *Ops) error {
		_, err := ops.Debit(1, 60)
		return err
	})

	var fundsErr *errors.InsufficientFundsError
	require.ErrorAs(t, err, &fundsErr)
	assert.Equal(t, float64(50), fundsErr.Balance)
	assert.Equal(t, float64(60), fundsErr.Required)
}

func TestEngine_Settle_Credit(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice", Balance: 10})
	engine := NewEngine(store)

	var newBalance float64
	err := engine.Settle(context.Background(), func(ops *Ops) error {
		var err error
		newBalance, err = ops.Credit(1, 25)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, float64(35), newBalance)
	account, _ := store.GetAccount(1)
	assert.Equal(t, float64(35), account.Balance)
}

func TestEngine_Settle_UnknownAccount(t *testing.T) {
	store := newFakeStore()
	engine := NewEngine(store)

	err := engine.Settle(context.Background(), func(ops *Ops) error {
		_, err := ops.Debit(42, 10)
		return err
	})

	assert.ErrorIs(t, err, errors.ErrAccountNotFound)
}

func TestEngine_Settle_RollsBackOnFailure(t *testing.T) {
	store := newFakeStore(
		&models.User{ID: 1, Handle: "alice", Balance: 100},
		&models.User{ID: 2, Handle: "bob", Balance: 10},
	)
	store.failTransaction = true
	engine := NewEngine(store)

	err := engine.Settle(context.Background(), func(ops *Ops) error {
		if _, err := ops.Debit(1, 40); err != nil {
			return err
		}
		if _, err := ops.Credit(2, 40); err != nil {
			return err
		}
		_, err := ops.RecordTransaction(2, models.TransactionTypeTransferIn, "alice", 40)
		return err
	})

	assert.ErrorIs(t, err, errors.ErrTransactionFailed)

	alice, _ := store.GetAccount(1)
	bob, _ := store.GetAccount(2)
	assert.Equal(t, float64(100), alice.Balance)
	assert.Equal(t, float64(10), bob.Balance)
	assert.Empty(t, store.transactions)
}

func TestEngine_Settle_CanceledContext(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice", Balance: 100})
	engine := NewEngine(store)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.Settle(ctx, func(ops *Ops) error {
		_, err := ops.Debit(1, 10)
		return err
	})

	assert.ErrorIs(t, err, errors.ErrTransactionFailed)
	account, _ := store.GetAccount(1)
	assert.Equal(t, float64(100), account.Balance)
}

func TestOps_RecordPurchase(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice", Balance: 100})
	engine := NewEngine(store)

	product := &models.Product{ID: 7, Name: "coffee", Price: 1.5, ShopID: 3, Status: models.StatusActive}

	var purchase *models.Purchase
	err := engine.Settle(context.Background(), func(ops *Ops) error {
		var err error
		purchase, err = ops.RecordPurchase(1, product, 4)
		return err
	})

	require.NoError(t, err)
	assert.Equal(t, float64(6), purchase.TotalPrice)
	assert.Equal(t, uint(3), purchase.ShopID)
	assert.Equal(t, 4, purchase.Quantity)

	// Snapshot stays put when the catalog price changes afterwards.
	product.Price = 9
	assert.Equal(t, float64(6), store.purchases[0].TotalPrice)
}

func TestOps_RecordPurchase_Guards(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice"})
	engine := NewEngine(store)

	deleted := &models.Product{ID: 8, Price: 2, Status: models.StatusDeleted}

	err := engine.Settle(context.Background(), func(ops *Ops) error {
		_, err := ops.RecordPurchase(1, deleted, 1)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrProductNotFound)

	err = engine.Settle(context.Background(), func(ops *Ops) error {
		_, err := ops.RecordPurchase(1, &models.Product{ID: 9, Price: 2, Status: models.StatusActive}, 0)
		return err
	})
	assert.ErrorIs(t, err, errors.ErrInvalidAmount)
}

func TestOps_RecordTransaction(t *testing.T) {
	store := newFakeStore(&models.User{ID: 1, Handle: "alice"})
	engine := NewEngine(store)

	err := engine.Settle(context.Background(), func(ops *Ops) error {
		tx, err := ops.RecordTransaction(1, models.TransactionTypeTransferOut, "bob", -40)
		if err != nil {
			return err
		}
		assert.NotEmpty(t, tx.Reference)
		return nil
	})

	require.NoError(t, err)
	require.Len(t, store.transactions, 1)
	assert.Equal(t, float64(-40), store.transactions[0].Amount)
	assert.Equal(t, "bob", store.transactions[0].Source)
}
