package repositories

import (
	"fmt"
	"time"

	"campuspay/internal/models"

	"gorm.io/gorm"
)

// ShopOperation is one exported purchase row with its buyer and product
// resolved, ready for CSV rendering.
type ShopOperation struct {
	CreatedAt  time.Time
	Handle     string
	Family     string
	Class      string
	Product    string
	Quantity   int
	TotalPrice float64
}

// CatalogRepository provides shop/category/product reference data. Every
// read filters to active rows; soft deletes flip the status and never
// remove anything.
type CatalogRepository interface {
	CreateShop(shop *models.Shop) error
	GetShop(id uint) (*models.Shop, error)
	GetShopByName(name string) (*models.Shop, error)
	ListShops() ([]models.Shop, error)
	UpdateShop(shop *models.Shop) error
	SoftDeleteShop(id uint, cascade bool) error

	CreateCategory(category *models.Category) error
	GetCategory(id uint) (*models.Category, error)
	GetCategoryByName(shopID uint, name string) (*models.Category, error)
	ListCategories(shopID uint) ([]models.Category, error)
	UpdateCategory(category *models.Category) error
	SoftDeleteCategory(id uint, cascade bool) error

	CreateProduct(product *models.Product) error
	GetProduct(id uint) (*models.Product, error)
	ListProducts(shopID, categoryID uint) ([]models.Product, error)
	UpdateProduct(product *models.Product) error
	SoftDeleteProduct(id uint) error

	GetShopOperationsSince(shopID uint, from time.Time) ([]ShopOperation, error)
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

// active scopes a query to non-deleted rows.
func active(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", models.StatusActive)
}

func (r *catalogRepository) CreateShop(shop *models.Shop) error {
	if err := r.db.Create(shop).Error; err != nil {
		return fmt.Errorf("failed to create shop: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetShop(id uint) (*models.Shop, error) {
	var shop models.Shop
	if err := active(r.db).First(&shop, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

func (r *catalogRepository) GetShopByName(name string) (*models.Shop, error) {
	var shop models.Shop
	if err := active(r.db).Where("name = ?", name).First(&shop).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrShopNotFound
		}
		return nil, fmt.Errorf("failed to get shop: %w", err)
	}
	return &shop, nil
}

func (r *catalogRepository) ListShops() ([]models.Shop, error) {
	var shops []models.Shop
	if err := active(r.db).Preload("Owner").Find(&shops).Error; err != nil {
		return nil, fmt.Errorf("failed to list shops: %w", err)
	}
	return shops, nil
}

func (r *catalogRepository) UpdateShop(shop *models.Shop) error {
	if err := r.db.Save(shop).Error; err != nil {
		return fmt.Errorf("failed to update shop: %w", err)
	}
	return nil
}

func (r *catalogRepository) SoftDeleteShop(id uint, cascade bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Shop{}).Where("id = ?", id).
			Update("status", models.StatusDeleted).Error; err != nil {
			return fmt.Errorf("failed to delete shop: %w", err)
		}
		if !cascade {
			return nil
		}
		if err := tx.Model(&models.Product{}).Where("shop_id = ?", id).
			Update("status", models.StatusDeleted).Error; err != nil {
			return fmt.Errorf("failed to delete shop products: %w", err)
		}
		if err := tx.Model(&models.Category{}).Where("shop_id = ?", id).
			Update("status", models.StatusDeleted).Error; err != nil {
			return fmt.Errorf("failed to delete shop categories: %w", err)
		}
		return nil
	})
}

func (r *catalogRepository) CreateCategory(category *models.Category) error {
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetCategory(id uint) (*models.Category, error) {
	var category models.Category
	if err := active(r.db).First(&category, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *catalogRepository) GetCategoryByName(shopID uint, name string) (*models.Category, error) {
	var category models.Category
	err := active(r.db).Where("shop_id = ? AND name = ?", shopID, name).First(&category).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrCategoryNotFound
		}
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

func (r *catalogRepository) ListCategories(shopID uint) ([]models.Category, error) {
	var categories []models.Category
	if err := active(r.db).Where("shop_id = ?", shopID).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *catalogRepository) UpdateCategory(category *models.Category) error {
	if err := r.db.Save(category).Error; err != nil {
		return fmt.Errorf("failed to update category: %w", err)
	}
	return nil
}

func (r *catalogRepository) SoftDeleteCategory(id uint, cascade bool) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Category{}).Where("id = ?", id).
			Update("status", models.StatusDeleted).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		if !cascade {
			return nil
		}
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).
			Update("status", models.StatusDeleted).Error; err != nil {
			return fmt.Errorf("failed to delete category products: %w", err)
		}
		return nil
	})
}

func (r *catalogRepository) CreateProduct(product *models.Product) error {
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetProduct(id uint) (*models.Product, error) {
	var product models.Product
	if err := active(r.db).First(&product, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	return &product, nil
}

func (r *catalogRepository) ListProducts(shopID, categoryID uint) ([]models.Product, error) {
	var products []models.Product
	q := active(r.db).Where("shop_id = ?", shopID)
	if categoryID != 0 {
		q = q.Where("category_id = ?", categoryID)
	}
	if err := q.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

func (r *catalogRepository) UpdateProduct(product *models.Product) error {
	if err := r.db.Save(product).Error; err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	return nil
}

func (r *catalogRepository) SoftDeleteProduct(id uint) error {
	if err := r.db.Model(&models.Product{}).Where("id = ?", id).
		Update("status", models.StatusDeleted).Error; err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetShopOperationsSince(shopID uint, from time.Time) ([]ShopOperation, error) {
	var ops []ShopOperation
	err := r.db.Table("purchases").
		Select(`purchases.created_at, users.handle, users.family, users.class,
			products.name AS product, purchases.quantity, purchases.total_price`).
		Joins("JOIN users ON users.id = purchases.user_id").
		Joins("JOIN products ON products.id = purchases.product_id").
		Where("purchases.shop_id = ? AND purchases.created_at >= ?", shopID, from).
		Order("purchases.created_at DESC").
		Scan(&ops).Error
	if err != nil {
		return nil, fmt.Errorf("failed to export shop operations: %w", err)
	}
	return ops, nil
}
