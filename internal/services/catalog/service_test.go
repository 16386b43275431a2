package catalog

import (
	"context"
	"strings"
	"testing"
	"time"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCatalogRepo struct {
	shops      map[uint]*models.Shop
	categories map[uint]*models.Category
	products   map[uint]*models.Product
	operations []repositories.ShopOperation
	nextID     uint
}

func newFakeCatalogRepo() *fakeCatalogRepo {
	return &fakeCatalogRepo{
		shops:      make(map[uint]*models.Shop),
		categories: make(map[uint]*models.Category),
		products:   make(map[uint]*models.Product),
		nextID:     1,
	}
}

func (r *fakeCatalogRepo) id() uint {
	id := r.nextID
	r.nextID++
	return id
}

func (r *fakeCatalogRepo) CreateShop(shop *models.Shop) error {
	shop.ID = r.id()
	r.shops[shop.ID] = shop
	return nil
}

func (r *fakeCatalogRepo) GetShop(id uint) (*models.Shop, error) {
	s, ok := r.shops[id]
	if !ok || !s.Active() {
		return nil, repositories.ErrShopNotFound
	}
	dup := *s
	return &dup, nil
}

func (r *fakeCatalogRepo) GetShopByName(name string) (*models.Shop, error) {
	for _, s := range r.shops {
		if s.Name == name && s.Active() {
			dup := *s
			return &dup, nil
		}
	}
	return nil, repositories.ErrShopNotFound
}

func (r *fakeCatalogRepo) ListShops() ([]models.Shop, error) {
	var out []models.Shop
	for _, s := range r.shops {
		if s.Active() {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) UpdateShop(shop *models.Shop) error {
	dup := *shop
	r.shops[shop.ID] = &dup
	return nil
}

func (r *fakeCatalogRepo) SoftDeleteShop(id uint, cascade bool) error {
	r.shops[id].Status = models.StatusDeleted
	if cascade {
		for _, c := range r.categories {
			if c.ShopID == id {
				c.Status = models.StatusDeleted
			}
		}
		for _, p := range r.products {
			if p.ShopID == id {
				p.Status = models.StatusDeleted
			}
		}
	}
	return nil
}

func (r *fakeCatalogRepo) CreateCategory(category *models.Category) error {
	category.ID = r.id()
	r.categories[category.ID] = category
	return nil
}

func (r *fakeCatalogRepo) GetCategory(id uint) (*models.Category, error) {
	c, ok := r.categories[id]
	if !ok || !c.Active() {
		return nil, repositories.ErrCategoryNotFound
	}
	dup := *c
	return &dup, nil
}

func (r *fakeCatalogRepo) GetCategoryByName(shopID uint, name string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.ShopID == shopID && c.Name == name && c.Active() {
			dup := *c
			return &dup, nil
		}
	}
	return nil, repositories.ErrCategoryNotFound
}

func (r *fakeCatalogRepo) ListCategories(shopID uint) ([]models.Category, error) {
	var out []models.Category
	for _, c := range r.categories {
		if c.ShopID == shopID && c.Active() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *fakeCatalogRepo) UpdateCategory(category *models.Category) error {
	dup := *category
	r.categories[category.ID] = &dup
	return nil
}

func (r *fakeCatalogRepo) SoftDeleteCategory(id uint, cascade bool) error {
	r.categories[id].Status = models.StatusDeleted
	if cascade {
		for _, p := range r.products {
			if p.CategoryID == id {
				p.Status = models.StatusDeleted
			}
		}
	}
	return nil
}

func (r *fakeCatalogRepo) CreateProduct(product *models.Product) error {
	product.ID = r.id()
	r.products[product.ID] = product
	return nil
}

func (r *fakeCatalogRepo) GetProduct(id uint) (*models.Product, error) {
	p, ok := r.products[id]
	if !ok || !p.Active() {
		return nil, repositories.ErrProductNotFound
	}
	dup := *p
	return &dup, nil
}

func (r *fakeCatalogRepo) ListProducts(shopID, categoryID uint) ([]models.Product, error) {
	var out []models.Product
	for _, p := range r.products {
		if p.ShopID != shopID || !p.Active() {
			continue
		}
		if categoryID != 0 && p.CategoryID != categoryID {
			continue
		}
		out = append(out, *p)
	}
	return out, nil
}

func (r *fakeCatalogRepo) UpdateProduct(product *models.Product) error {
	dup := *product
	r.products[product.ID] = &dup
	return nil
}

func (r *fakeCatalogRepo) SoftDeleteProduct(id uint) error {
	r.products[id].Status = models.StatusDeleted
	return nil
}

func (r *fakeCatalogRepo) GetShopOperationsSince(shopID uint, from time.Time) ([]repositories.ShopOperation, error) {
	return r.operations, nil
}

type fakeUserRepo struct {
	users map[string]*models.User
}

func newFakeUserRepo(users ...models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		dup := u
		r.users[u.Handle] = &dup
	}
	return r
}

func (r *fakeUserRepo) Create(user *models.User) error {
	user.ID = uint(len(r.users) + 1)
	r.users[user.Handle] = user
	return nil
}

func (r *fakeUserRepo) CreateBatch(users []*models.User) error {
	for _, u := range users {
		if err := r.Create(u); err != nil {
			return err
		}
	}
	return nil
}

func (r *fakeUserRepo) GetByID(id uint) (*models.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			dup := *u
			return &dup, nil
		}
	}
	return nil, repositories.ErrUserNotFound
}

func (r *fakeUserRepo) GetByHandle(handle string) (*models.User, error) {
	u, ok := r.users[handle]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	dup := *u
	return &dup, nil
}

func (r *fakeUserRepo) Update(user *models.User) error {
	dup := *user
	r.users[user.Handle] = &dup
	return nil
}

func (r *fakeUserRepo) CreateRefreshToken(token *models.RefreshToken) error { return nil }
func (r *fakeUserRepo) GetRefreshToken(token string) (*models.RefreshToken, error) {
	return nil, repositories.ErrTokenNotFound
}
func (r *fakeUserRepo) DeleteRefreshToken(token string) error { return nil }

func ownerClaims(userID uint) *models.UserClaims {
	return &models.UserClaims{UserID: userID, Handle: "owner", Role: models.RoleOwner}
}

func treasurerClaims() *models.UserClaims {
	return &models.UserClaims{UserID: 99, Handle: "treasurer", Role: models.RoleTreasurer}
}

// seeds a shop owned by user 1 with one category.
func seedShop(t *testing.T, svc Service) (*models.Shop, *models.Category) {
	t.Helper()
	shop, err := svc.CreateShop(context.Background(), "cafeteria", "owner")
	require.NoError(t, err)
	category, err := svc.CreateCategory(context.Background(), treasurerClaims(), "drinks", shop.ID)
	require.NoError(t, err)
	return shop, category
}

func newTestService() (Service, *fakeCatalogRepo) {
	repo := newFakeCatalogRepo()
	users := newFakeUserRepo(
		models.User{ID: 1, Handle: "owner", Role: models.RoleOwner},
		models.User{ID: 2, Handle: "other", Role: models.RoleOwner},
	)
	return NewService(repo, users), repo
}

func TestService_CreateShop(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()

	shop, err := svc.CreateShop(ctx, "cafeteria", "owner")
	require.NoError(t, err)
	assert.Equal(t, uint(1), shop.OwnerID)
	assert.True(t, shop.Active())

	_, err = svc.CreateShop(ctx, "cafeteria", "owner")
	assert.ErrorIs(t, err, errors.ErrShopExists)

	_, err = svc.CreateShop(ctx, "bar", "nobody")
	assert.ErrorIs(t, err, errors.ErrAccountNotFound)

	_, err = svc.CreateShop(ctx, "", "owner")
	assert.ErrorIs(t, err, errors.ErrMissingFields)
}

func TestService_OwnershipGate(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	shop, category := seedShop(t, svc)

	t.Run("owner of the shop passes", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ownerClaims(1), CreateProductInput{
			Name: "tea", Price: 1, ShopID: shop.ID, CategoryID: category.ID,
		})
		assert.NoError(t, err)
	})

	t.Run("other owner denied", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, ownerClaims(2), CreateProductInput{
			Name: "coffee", Price: 1, ShopID: shop.ID, CategoryID: category.ID,
		})
		assert.ErrorIs(t, err, errors.ErrPermissionDenied)
	})

	t.Run("treasurer passes on any shop", func(t *testing.T) {
		_, err := svc.CreateProduct(ctx, treasurerClaims(), CreateProductInput{
			Name: "coffee", Price: 1, ShopID: shop.ID, CategoryID: category.ID,
		})
		assert.NoError(t, err)
	})

	t.Run("plain user denied", func(t *testing.T) {
		claims := &models.UserClaims{UserID: 5, Role: models.RoleUser}
		_, err := svc.CreateCategory(ctx, claims, "food", shop.ID)
		assert.ErrorIs(t, err, errors.ErrPermissionDenied)
	})

	t.Run("nil claims denied", func(t *testing.T) {
		_, err := svc.CreateCategory(ctx, nil, "food", shop.ID)
		assert.ErrorIs(t, err, errors.ErrPermissionDenied)
	})
}

func TestService_CreateProduct_CategoryShopMismatch(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	shopA, _ := seedShop(t, svc)

	shopB, err := svc.CreateShop(ctx, "bar", "other")
	require.NoError(t, err)
	categoryB, err := svc.CreateCategory(ctx, treasurerClaims(), "snacks", shopB.ID)
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, treasurerClaims(), CreateProductInput{
		Name: "chips", Price: 2, ShopID: shopA.ID, CategoryID: categoryB.ID,
	})
	assert.ErrorIs(t, err, errors.ErrCategoryShopMismatch)
}

func TestService_UpdateProduct(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService()
	shop, category := seedShop(t, svc)

	product, err := svc.CreateProduct(ctx, ownerClaims(1), CreateProductInput{
		Name: "tea", Price: 1.5, ShopID: shop.ID, CategoryID: category.ID,
	})
	require.NoError(t, err)

	t.Run("price zero is settable", func(t *testing.T) {
		zero := float64(0)
		updated, err := svc.UpdateProduct(ctx, ownerClaims(1), UpdateProductInput{
			ProductID: product.ID, Price: &zero,
		})
		require.NoError(t, err)
		assert.Equal(t, float64(0), updated.Price)
		assert.Equal(t, "tea", updated.Name)
	})

	t.Run("negative price rejected", func(t *testing.T) {
		neg := float64(-1)
		_, err := svc.UpdateProduct(ctx, ownerClaims(1), UpdateProductInput{
			ProductID: product.ID, Price: &neg,
		})
		assert.ErrorIs(t, err, errors.ErrInvalidAmount)
	})

	t.Run("cross-shop category rejected", func(t *testing.T) {
		shopB, err := svc.CreateShop(ctx, "bar", "other")
		require.NoError(t, err)
		categoryB, err := svc.CreateCategory(ctx, treasurerClaims(), "snacks", shopB.ID)
		require.NoError(t, err)

		_, err = svc.UpdateProduct(ctx, treasurerClaims(), UpdateProductInput{
			ProductID: product.ID, CategoryID: categoryB.ID,
		})
		assert.ErrorIs(t, err, errors.ErrCategoryShopMismatch)
	})
}

func TestService_SoftDelete(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	shop, category := seedShop(t, svc)

	product, err := svc.CreateProduct(ctx, ownerClaims(1), CreateProductInput{
		Name: "tea", Price: 1, ShopID: shop.ID, CategoryID: category.ID,
	})
	require.NoError(t, err)

	t.Run("deleted product leaves lists and lookups", func(t *testing.T) {
		_, err := svc.DeleteProduct(ctx, ownerClaims(1), product.ID)
		require.NoError(t, err)

		products, err := svc.ListProducts(ctx, shop.ID, 0)
		require.NoError(t, err)
		assert.Empty(t, products)

		// Row is still there, just flagged.
		assert.Equal(t, models.StatusDeleted, repo.products[product.ID].Status)
	})

	t.Run("shop cascade hides categories and products", func(t *testing.T) {
		_, err := svc.DeleteShop(ctx, shop.ID, true)
		require.NoError(t, err)

		_, err = svc.ListCategories(ctx, shop.ID)
		assert.ErrorIs(t, err, errors.ErrShopNotFound)

		shops, err := svc.ListShops(ctx)
		require.NoError(t, err)
		assert.Empty(t, shops)
		assert.Equal(t, models.StatusDeleted, repo.categories[category.ID].Status)
	})
}

func TestService_ExportOperations(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService()
	shop, _ := seedShop(t, svc)

	when := time.Date(2026, 3, 14, 12, 30, 0, 0, time.UTC)
	repo.operations = []repositories.ShopOperation{
		{CreatedAt: when, Handle: "alice", Family: "north", Class: "2027", Product: "tea", Quantity: 2, TotalPrice: 3},
	}

	out, err := svc.ExportOperations(ctx, shop.ID, time.Time{})
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(out)), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "Date,User,Family,Class,Product,Quantity,Amount", lines[0])
	assert.Equal(t, "2026-03-14T12:30:00Z,alice,north,2027,tea,2,3.00", lines[1])

	_, err = svc.ExportOperations(ctx, 999, time.Time{})
	assert.ErrorIs(t, err, errors.ErrShopNotFound)
}
