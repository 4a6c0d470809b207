package models

import (
	"time"
)

// Cart is one shopper's in-progress selection. Anonymous carts have no
// UserID; the checkout path resolves a cart through the owning user.
type Cart struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    *string   `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Cart) TableName() string {
	return "carts"
}

// CartItem is one product line within a cart. The unique index keeps a
// single row per (cart, product); adding an existing product increments
// Quantity instead of inserting a duplicate.
type CartItem struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CartID    string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product" json:"cart_id"`
	ProductID string    `gorm:"type:varchar(36);not null;uniqueIndex:idx_cart_product" json:"product_id"`
	Quantity  int       `gorm:"not null;default:1" json:"quantity"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Product   Product   `json:"product"`
}

func (CartItem) TableName() string {
	return "cart_items"
}
