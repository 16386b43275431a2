// Package catalog manages the reference data the settlement engine
// consumes: shops, their categories and products. All reads are scoped to
// active rows; deletes are soft so purchase history keeps resolving.
package catalog

import (
	"bytes"
	"context"
	"encoding/csv"
	stderrors "errors"
	"fmt"
	"strconv"
	"time"

	"campuspay/internal/errors"
	"campuspay/internal/models"
	"campuspay/internal/repositories"
)

// CreateProductInput carries the fields for a new product.
type CreateProductInput struct {
	Name       string  `json:"name" validate:"required"`
	Price      float64 `json:"price" validate:"gte=0"`
	ShopID     uint    `json:"shop_id" validate:"required"`
	CategoryID uint    `json:"category_id" validate:"required"`
}

// UpdateProductInput carries a partial product update. Zero values leave
// the current field untouched; Price uses a pointer so zero is settable.
type UpdateProductInput struct {
	ProductID  uint     `json:"product_id" validate:"required"`
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	CategoryID uint     `json:"category_id"`
}

// Service manages shops, categories and products.
type Service interface {
	CreateShop(ctx context.Context, name, ownerHandle string) (*models.Shop, error)
	ListShops(ctx context.Context) ([]models.Shop, error)
	UpdateShop(ctx context.Context, shopID uint, name, ownerHandle string) (*models.Shop, error)
	DeleteShop(ctx context.Context, shopID uint, cascade bool) (string, error)

	CreateCategory(ctx context.Context, claims *models.UserClaims, name string, shopID uint) (*models.Category, error)
	ListCategories(ctx context.Context, shopID uint) ([]models.Category, error)
	UpdateCategory(ctx context.Context, claims *models.UserClaims, categoryID uint, name string) (*models.Category, error)
	DeleteCategory(ctx context.Context, claims *models.UserClaims, categoryID uint, cascade bool) (string, error)

	CreateProduct(ctx context.Context, claims *models.UserClaims, input CreateProductInput) (*models.Product, error)
	ListProducts(ctx context.Context, shopID, categoryID uint) ([]models.Product, error)
	UpdateProduct(ctx context.Context, claims *models.UserClaims, input UpdateProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, claims *models.UserClaims, productID uint) (string, error)

	ExportOperations(ctx context.Context, shopID uint, from time.Time) ([]byte, error)
}

type service struct {
	repo  repositories.CatalogRepository
	users repositories.UserRepository
}

func NewService(repo repositories.CatalogRepository, users repositories.UserRepository) Service {
	if repo == nil {
		panic("catalog repository is required")
	}
	if users == nil {
		panic("user repository is required")
	}
	return &service{repo: repo, users: users}
}

// authorizeShopWrite enforces the ownership gate: a principal with the
// OWNER role may only mutate resources of shops it owns. Higher ranks
// pass on rank alone.
func (s *service) authorizeShopWrite(claims *models.UserClaims, shop *models.Shop) error {
	if claims == nil || !models.HasMinRole(claims.Role, models.RoleOwner) {
		return errors.ErrPermissionDenied
	}
	if claims.Role == models.RoleOwner && shop.OwnerID != claims.UserID {
		return errors.ErrPermissionDenied
	}
	return nil
}

func (s *service) CreateShop(ctx context.Context, name, ownerHandle string) (*models.Shop, error) {
	if name == "" || ownerHandle == "" {
		return nil, errors.ErrMissingFields
	}
	if _, err := s.repo.GetShopByName(name); err == nil {
		return nil, errors.ErrShopExists
	}
	owner, err := s.users.GetByHandle(ownerHandle)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return nil, errors.ErrAccountNotFound
		}
		return nil, err
	}

	shop := &models.Shop{Name: name, OwnerID: owner.ID, Status: models.StatusActive}
	if err := s.repo.CreateShop(shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *service) ListShops(ctx context.Context) ([]models.Shop, error) {
	return s.repo.ListShops()
}

func (s *service) UpdateShop(ctx context.Context, shopID uint, name, ownerHandle string) (*models.Shop, error) {
	shop, err := s.getShop(shopID)
	if err != nil {
		return nil, err
	}
	if name != "" && name != shop.Name {
		if _, err := s.repo.GetShopByName(name); err == nil {
			return nil, errors.ErrShopExists
		}
		shop.Name = name
	}
	if ownerHandle != "" {
		owner, err := s.users.GetByHandle(ownerHandle)
		if err != nil {
			if stderrors.Is(err, repositories.ErrUserNotFound) {
				return nil, errors.ErrAccountNotFound
			}
			return nil, err
		}
		shop.OwnerID = owner.ID
	}
	if err := s.repo.UpdateShop(shop); err != nil {
		return nil, err
	}
	return shop, nil
}

func (s *service) DeleteShop(ctx context.Context, shopID uint, cascade bool) (string, error) {
	shop, err := s.getShop(shopID)
	if err != nil {
		return "", err
	}
	if err := s.repo.SoftDeleteShop(shop.ID, cascade); err != nil {
		return "", err
	}
	return shop.Name, nil
}

func (s *service) CreateCategory(ctx context.Context, claims *models.UserClaims, name string, shopID uint) (*models.Category, error) {
	if name == "" || shopID == 0 {
		return nil, errors.ErrMissingFields
	}
	shop, err := s.getShop(shopID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetCategoryByName(shopID, name); err == nil {
		return nil, errors.ErrCategoryExists
	}

	category := &models.Category{Name: name, ShopID: shopID, Status: models.StatusActive}
	if err := s.repo.CreateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) ListCategories(ctx context.Context, shopID uint) ([]models.Category, error) {
	if _, err := s.getShop(shopID); err != nil {
		return nil, err
	}
	return s.repo.ListCategories(shopID)
}

func (s *service) UpdateCategory(ctx context.Context, claims *models.UserClaims, categoryID uint, name string) (*models.Category, error) {
	if name == "" {
		return nil, errors.ErrMissingFields
	}
	category, err := s.getCategory(categoryID)
	if err != nil {
		return nil, err
	}
	shop, err := s.getShop(category.ShopID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetCategoryByName(category.ShopID, name); err == nil && existing.ID != category.ID {
		return nil, errors.ErrCategoryExists
	}

	category.Name = name
	if err := s.repo.UpdateCategory(category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *service) DeleteCategory(ctx context.Context, claims *models.UserClaims, categoryID uint, cascade bool) (string, error) {
	category, err := s.getCategory(categoryID)
	if err != nil {
		return "", err
	}
	shop, err := s.getShop(category.ShopID)
	if err != nil {
		return "", err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return "", err
	}
	if err := s.repo.SoftDeleteCategory(category.ID, cascade); err != nil {
		return "", err
	}
	return category.Name, nil
}

func (s *service) CreateProduct(ctx context.Context, claims *models.UserClaims, input CreateProductInput) (*models.Product, error) {
	if input.Name == "" || input.ShopID == 0 || input.CategoryID == 0 {
		return nil, errors.ErrMissingFields
	}
	if input.Price < 0 {
		return nil, errors.ErrInvalidAmount
	}
	shop, err := s.getShop(input.ShopID)
	if err != nil {
		return nil, err
	}
	category, err := s.getCategory(input.CategoryID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return nil, err
	}
	// A product's category must belong to the product's shop.
	if category.ShopID != shop.ID {
		return nil, errors.ErrCategoryShopMismatch
	}

	product := &models.Product{
		Name:       input.Name,
		Price:      input.Price,
		ShopID:     shop.ID,
		CategoryID: category.ID,
		Status:     models.StatusActive,
	}
	if err := s.repo.CreateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) ListProducts(ctx context.Context, shopID, categoryID uint) ([]models.Product, error) {
	if _, err := s.getShop(shopID); err != nil {
		return nil, err
	}
	return s.repo.ListProducts(shopID, categoryID)
}

func (s *service) UpdateProduct(ctx context.Context, claims *models.UserClaims, input UpdateProductInput) (*models.Product, error) {
	product, err := s.getProduct(input.ProductID)
	if err != nil {
		return nil, err
	}
	shop, err := s.getShop(product.ShopID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return nil, err
	}

	categoryID := product.CategoryID
	if input.CategoryID != 0 {
		categoryID = input.CategoryID
	}
	category, err := s.getCategory(categoryID)
	if err != nil {
		return nil, err
	}
	if category.ShopID != product.ShopID {
		return nil, errors.ErrCategoryShopMismatch
	}

	if input.Name != "" {
		product.Name = input.Name
	}
	if input.Price != nil {
		if *input.Price < 0 {
			return nil, errors.ErrInvalidAmount
		}
		product.Price = *input.Price
	}
	product.CategoryID = category.ID

	if err := s.repo.UpdateProduct(product); err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) DeleteProduct(ctx context.Context, claims *models.UserClaims, productID uint) (string, error) {
	product, err := s.getProduct(productID)
	if err != nil {
		return "", err
	}
	shop, err := s.getShop(product.ShopID)
	if err != nil {
		return "", err
	}
	if err := s.authorizeShopWrite(claims, shop); err != nil {
		return "", err
	}
	if err := s.repo.SoftDeleteProduct(product.ID); err != nil {
		return "", err
	}
	return product.Name, nil
}

// ExportOperations renders a shop's purchases since a date as CSV,
// newest first.
func (s *service) ExportOperations(ctx context.Context, shopID uint, from time.Time) ([]byte, error) {
	if _, err := s.getShop(shopID); err != nil {
		return nil, err
	}
	ops, err := s.repo.GetShopOperationsSince(shopID, from)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"Date", "User", "Family", "Class", "Product", "Quantity", "Amount"}); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	for _, op := range ops {
		record := []string{
			op.CreatedAt.Format(time.RFC3339),
			op.Handle,
			op.Family,
			op.Class,
			op.Product,
			strconv.Itoa(op.Quantity),
			strconv.FormatFloat(op.TotalPrice, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func (s *service) getShop(id uint) (*models.Shop, error) {
	shop, err := s.repo.GetShop(id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrShopNotFound) {
			return nil, errors.ErrShopNotFound
		}
		return nil, err
	}
	return shop, nil
}

func (s *service) getCategory(id uint) (*models.Category, error) {
	category, err := s.repo.GetCategory(id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, errors.ErrCategoryNotFound
		}
		return nil, err
	}
	return category, nil
}

func (s *service) getProduct(id uint) (*models.Product, error) {
	product, err := s.repo.GetProduct(id)
	if err != nil {
		if stderrors.Is(err, repositories.ErrProductNotFound) {
			return nil, errors.ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}
