package repositories

import (
	"context"
	"log"
	"time"

	"campuspay/internal/models"
	"campuspay/internal/repositories/cache"

	"gorm.io/gorm"
)

// UserRepository provides account lookups and writes. Balance is never
// written through this repository; only the ledger repository mutates it.
type UserRepository interface {
	Create(user *models.User) error
	CreateBatch(users []*models.User) error
	GetByID(id uint) (*models.User, error)
	GetByHandle(handle string) (*models.User, error)
	Update(user *models.User) error

	CreateRefreshToken(token *models.RefreshToken) error
	GetRefreshToken(token string) (*models.RefreshToken, error)
	DeleteRefreshToken(token string) error
}

type userRepository struct {
	db    *gorm.DB
	cache *cache.CacheService
}

// NewUserRepository creates a new instance of UserRepository.
func NewUserRepository(db *gorm.DB, cacheSvc *cache.CacheService) UserRepository {
	return &userRepository{db: db, cache: cacheSvc}
}

func (r *userRepository) Create(user *models.User) error {
	if err := r.db.Create(user).Error; err != nil {
		return ErrDatabaseOperation
	}
	return nil
}

func (r *userRepository) CreateBatch(users []*models.User) error {
	if len(users) == 0 {
		return nil
	}
	if err := r.db.Create(users).Error; err != nil {
		return ErrDatabaseOperation
	}
	return nil
}

func (r *userRepository) GetByID(id uint) (*models.User, error) {
	if r.cache != nil {
		var cached models.User
		key := r.cache.GenerateKey("account", "id", id)
		if ok, err := r.cache.Get(context.Background(), key, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if r.cache != nil {
		key := r.cache.GenerateKey("account", "id", id)
		if err := r.cache.SetWithTTL(context.Background(), key, &user, 5*time.Minute); err != nil {
			log.Printf("failed to cache account %d: %v", id, err)
		}
	}
	return &user, nil
}

func (r *userRepository) GetByHandle(handle string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("handle = ?", handle).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrUserNotFound
		}
		return nil, ErrDatabaseOperation
	}
	return &user, nil
}

func (r *userRepository) Update(user *models.User) error {
	if err := r.db.Save(user).Error; err != nil {
		return ErrDatabaseOperation
	}
	if r.cache != nil {
		if err := r.cache.InvalidateAccount(context.Background(), user.ID); err != nil {
			log.Printf("failed to invalidate account %d: %v", user.ID, err)
		}
	}
	return nil
}

func (r *userRepository) CreateRefreshToken(token *models.RefreshToken) error {
	if err := r.db.Create(token).Error; err != nil {
		return ErrDatabaseOperation
	}
	return nil
}

func (r *userRepository) GetRefreshToken(token string) (*models.RefreshToken, error) {
	var stored models.RefreshToken
	if err := r.db.Where("token = ?", token).First(&stored).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, ErrTokenNotFound
		}
		return nil, ErrDatabaseOperation
	}
	return &stored, nil
}

func (r *userRepository) DeleteRefreshToken(token string) error {
	if err := r.db.Where("token = ?", token).Delete(&models.RefreshToken{}).Error; err != nil {
		return ErrDatabaseOperation
	}
	return nil
}
