package models

import "time"

// Catalog entity statuses. Deleted rows stay in place but are excluded
// from every lookup the settlement engine consumes.
const (
	StatusActive  = "active"
	StatusDeleted = "deleted"
)

// Shop is a point of sale owned by exactly one user.
type Shop struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	OwnerID   uint      `gorm:"not null;index" json:"owner_id"`
	Owner     *User     `gorm:"foreignKey:OwnerID" json:"owner,omitempty"`
	Status    string    `gorm:"not null;default:'active'" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Category groups products inside a single shop.
type Category struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	ShopID    uint      `gorm:"not null;index" json:"shop_id"`
	Status    string    `gorm:"not null;default:'active'" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Product belongs to one shop and one category of that same shop.
type Product struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	Name       string    `gorm:"not null" json:"name"`
	Price      float64   `gorm:"not null" json:"price"`
	ShopID     uint      `gorm:"not null;index" json:"shop_id"`
	CategoryID uint      `gorm:"not null;index" json:"category_id"`
	Status     string    `gorm:"not null;default:'active'" json:"-"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Active reports whether the shop is visible to catalog lookups.
func (s *Shop) Active() bool { return s.Status == StatusActive }

// Active reports whether the category is visible to catalog lookups.
func (c *Category) Active() bool { return c.Status == StatusActive }

// Active reports whether the product is visible to catalog lookups.
func (p *Product) Active() bool { return p.Status == StatusActive }
