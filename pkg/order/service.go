package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/models"
)

var (
	ErrUnauthorized  = errors.New("login required")
	ErrNoCart        = errors.New("no cart for user")
	ErrOrderNotFound = errors.New("order not found")
)

// Service materializes a cart into an immutable order.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// Checkout snapshots every line of the principal's cart into a new order,
// copying the product price as it stands right now, then empties the cart.
// Order, order items and the cart clear commit in one transaction; a failure
// partway rolls all of it back and leaves the cart untouched.
//
// A cart already emptied by a previous checkout produces an order with zero
// items rather than an error.
func (s *Service) Checkout(ctx context.Context, principal *models.Principal) (*models.Order, error) {
	if principal == nil {
		return nil, ErrUnauthorized
	}

	var cart models.Cart
	if err := s.db.WithContext(ctx).Where("user_id = ?", principal.ID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoCart
		}
		return nil, err
	}

	var order *models.Order
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var items []models.CartItem
		if err := tx.Preload("Product").Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
			return err
		}

		order = &models.Order{
			ID:     uuid.NewString(),
			UserID: principal.ID,
			Total:  decimal.Zero,
		}
		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for _, item := range items {
			line := models.OrderItem{
				ID:        uuid.NewString(),
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
				Price:     item.Product.Price,
			}
			if err := tx.Create(&line).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, line)
			order.Total = order.Total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
		}

		if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
			Update("total", order.Total).Error; err != nil {
			return err
		}

		// The cart row survives empty, ready for reuse.
		return tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Checkout completed",
		zap.String("order_id", order.ID),
		zap.String("user_id", principal.ID),
		zap.Int("item_count", len(order.Items)),
		zap.String("total", order.Total.String()))

	return order, nil
}

// Get returns one of the user's orders; other users' orders are invisible.
func (s *Service) Get(ctx context.Context, orderID, userID string) (*models.Order, error) {
	var order models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *Service) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	var orders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at desc").
		Find(&orders).Error
	return orders, err
}
