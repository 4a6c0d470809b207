package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is the immutable record of a completed checkout. It is created
// exactly once per checkout submission and never mutated afterwards.
type Order struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	UserID    string          `gorm:"type:varchar(36);not null;index" json:"user_id"`
	Total     decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Items     []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem freezes one cart line at checkout time. Price is copied from
// the catalog at that instant and must not track later price changes.
type OrderItem struct {
	ID        string          `gorm:"primaryKey;type:varchar(36)" json:"id"`
	OrderID   string          `gorm:"type:varchar(36);not null;index" json:"order_id"`
	ProductID string          `gorm:"type:varchar(36);not null" json:"product_id"`
	Quantity  int             `gorm:"not null" json:"quantity"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	CreatedAt time.Time       `json:"created_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}
