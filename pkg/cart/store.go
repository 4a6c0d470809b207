package cart

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/catalog"
	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/session"
)

var (
	ErrCartNotFound = errors.New("cart not found")
	ErrItemNotFound = errors.New("cart item not found")
)

// Store resolves the cart for the current session and mutates its lines.
type Store struct {
	db      *gorm.DB
	catalog catalog.Catalog
	binder  session.Binder
	logger  *zap.Logger
}

func NewStore(db *gorm.DB, cat catalog.Catalog, binder session.Binder, logger *zap.Logger) *Store {
	return &Store{db: db, catalog: cat, binder: binder, logger: logger}
}

// GetOrCreate returns the cart bound to the session, creating and binding a
// fresh one when the session has none. A binding that points at a missing
// cart row is an inconsistency and surfaces as ErrCartNotFound rather than
// being silently replaced.
func (s *Store) GetOrCreate(ctx context.Context, sessionID string) (*models.Cart, error) {
	cartID, err := s.binder.ResolveCart(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if cartID != "" {
		var cart models.Cart
		if err := s.db.WithContext(ctx).Where("id = ?", cartID).First(&cart).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCartNotFound
			}
			return nil, err
		}
		return &cart, nil
	}

	cart := models.Cart{ID: uuid.NewString()}
	if err := s.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	if err := s.binder.BindCart(ctx, sessionID, cart.ID); err != nil {
		return nil, err
	}

	s.logger.Info("Cart created", zap.String("cart_id", cart.ID))
	return &cart, nil
}

// AddItem puts one unit of the product into the cart. An existing line for
// the same product gains quantity instead of a second row.
func (s *Store) AddItem(ctx context.Context, cart *models.Cart, productID string) (*models.CartItem, error) {
	product, err := s.catalog.Lookup(ctx, productID)
	if err != nil {
		return nil, err
	}

	var item models.CartItem
	err = s.db.WithContext(ctx).
		Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		item = models.CartItem{
			ID:        uuid.NewString(),
			CartID:    cart.ID,
			ProductID: product.ID,
			Quantity:  1,
		}
		if err := s.db.WithContext(ctx).Create(&item).Error; err != nil {
			return nil, err
		}
		item.Product = *product
		return &item, nil
	} else if err != nil {
		return nil, err
	}

	item.Quantity++
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	item.Product = *product
	return &item, nil
}

// IncreaseQuantity bumps the line by one. No upper bound is enforced.
func (s *Store) IncreaseQuantity(ctx context.Context, itemID string) (*models.CartItem, error) {
	var item models.CartItem
	if err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	item.Quantity++
	item.UpdatedAt = time.Now()
	if err := s.db.WithContext(ctx).Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// DecreaseQuantity drops the line by one; at quantity 1 the line is removed
// entirely, so quantity never reaches zero.
func (s *Store) DecreaseQuantity(ctx context.Context, itemID string) error {
	var item models.CartItem
	if err := s.db.WithContext(ctx).Where("id = ?", itemID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrItemNotFound
		}
		return err
	}

	if item.Quantity > 1 {
		item.Quantity--
		return s.db.WithContext(ctx).Save(&item).Error
	}
	return s.db.WithContext(ctx).Delete(&item).Error
}

func (s *Store) ListItems(ctx context.Context, cartID string) ([]models.CartItem, error) {
	var items []models.CartItem
	err := s.db.WithContext(ctx).
		Preload("Product").
		Where("cart_id = ?", cartID).
		Find(&items).Error
	return items, err
}

// Total sums price * quantity over the cart's lines. An empty or unknown
// cart totals zero.
func (s *Store) Total(ctx context.Context, cartID string) (decimal.Decimal, error) {
	items, err := s.ListItems(ctx, cartID)
	if err != nil {
		return decimal.Zero, err
	}

	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total, nil
}

// ItemCount reports how many distinct lines the session's cart holds, for
// the header badge. It counts rows, not units; a line at quantity 5 is 1.
// Sessions with no cart count zero and no cart is created.
func (s *Store) ItemCount(ctx context.Context, sessionID string) (int64, error) {
	cartID, err := s.binder.ResolveCart(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if cartID == "" {
		return 0, nil
	}

	var count int64
	err = s.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Count(&count).Error
	return count, err
}

// GetByUser resolves a registered user's claimed cart.
func (s *Store) GetByUser(ctx context.Context, userID string) (*models.Cart, error) {
	var cart models.Cart
	if err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&cart).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCartNotFound
		}
		return nil, err
	}
	return &cart, nil
}

// Claim attaches the session's cart to a user so the checkout path can
// resolve it by principal. A user owns at most one cart: when the user
// already owns one from an earlier visit, the session cart's lines are
// merged into it (summing quantities for shared products), the emptied
// anonymous cart is dropped and the session is re-bound to the owned cart.
// A session with no cart of its own is simply re-bound to the owned cart.
func (s *Store) Claim(ctx context.Context, sessionID, userID string) error {
	cartID, err := s.binder.ResolveCart(ctx, sessionID)
	if err != nil {
		return err
	}

	var owned models.Cart
	err = s.db.WithContext(ctx).Where("user_id = ?", userID).First(&owned).Error
	ownedExists := err == nil
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	if cartID == "" {
		if ownedExists {
			return s.binder.BindCart(ctx, sessionID, owned.ID)
		}
		return nil
	}

	if ownedExists && owned.ID != cartID {
		err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			var items []models.CartItem
			if err := tx.Where("cart_id = ?", cartID).Find(&items).Error; err != nil {
				return err
			}
			for _, item := range items {
				var existing models.CartItem
				err := tx.Where("cart_id = ? AND product_id = ?", owned.ID, item.ProductID).
					First(&existing).Error
				if errors.Is(err, gorm.ErrRecordNotFound) {
					if err := tx.Model(&models.CartItem{}).Where("id = ?", item.ID).
						Update("cart_id", owned.ID).Error; err != nil {
						return err
					}
					continue
				} else if err != nil {
					return err
				}
				existing.Quantity += item.Quantity
				if err := tx.Save(&existing).Error; err != nil {
					return err
				}
				if err := tx.Delete(&item).Error; err != nil {
					return err
				}
			}
			return tx.Delete(&models.Cart{}, "id = ?", cartID).Error
		})
		if err != nil {
			return err
		}
		s.logger.Info("Carts merged",
			zap.String("cart_id", owned.ID),
			zap.String("user_id", userID))
		return s.binder.BindCart(ctx, sessionID, owned.ID)
	}

	return s.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ? AND user_id IS NULL", cartID).
		Update("user_id", userID).Error
}
