package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
)

var ErrProductNotFound = errors.New("product not found")

// Catalog supplies immutable product records on demand.
type Catalog interface {
	Lookup(ctx context.Context, productID string) (*models.Product, error)
	List(ctx context.Context) ([]models.Product, error)
}

// Store is the MySQL-backed catalog with a read-through redis cache for
// single-product lookups. The redis repository may be nil, in which case
// every lookup goes to the database.
type Store struct {
	db     *gorm.DB
	redis  *repository.RedisRepository
	logger *zap.Logger
}

func NewStore(db *gorm.DB, redis *repository.RedisRepository, logger *zap.Logger) *Store {
	return &Store{db: db, redis: redis, logger: logger}
}

func (s *Store) Lookup(ctx context.Context, productID string) (*models.Product, error) {
	if s.redis != nil {
		if cached, err := s.redis.GetProductCache(ctx, productID); err == nil {
			return &models.Product{
				ID:       cached.ID,
				Name:     cached.Name,
				Price:    cached.Price,
				ImageURL: cached.ImageURL,
			}, nil
		} else if !errors.Is(err, repository.ErrKeyNotFound) {
			s.logger.Warn("Product cache read failed", zap.String("product_id", productID), zap.Error(err))
		}
	}

	var product models.Product
	if err := s.db.WithContext(ctx).Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if s.redis != nil {
		if err := s.redis.CacheProduct(ctx, &repository.ProductCache{
			ID:       product.ID,
			Name:     product.Name,
			Price:    product.Price,
			ImageURL: product.ImageURL,
		}); err != nil {
			s.logger.Warn("Product cache write failed", zap.String("product_id", productID), zap.Error(err))
		}
	}

	return &product, nil
}

func (s *Store) List(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Order("created_at asc").Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Seed resets the catalog to a small demo set. Carts and orders referencing
// old products are wiped with it.
func (s *Store) Seed(ctx context.Context) error {
	demo := []models.Product{
		{Name: "Blue T-Shirt", Price: decimal.NewFromFloat(19.99), ImageURL: "https://picsum.photos/seed/blue/600/400"},
		{Name: "Red Hoodie", Price: decimal.NewFromFloat(45.99), ImageURL: "https://picsum.photos/seed/red/600/400"},
		{Name: "Sneakers", Price: decimal.NewFromFloat(69.99), ImageURL: "https://picsum.photos/seed/shoes/600/400"},
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []interface{}{&models.OrderItem{}, &models.Order{}, &models.CartItem{}, &models.Cart{}, &models.Product{}} {
			if err := tx.Where("1 = 1").Delete(m).Error; err != nil {
				return err
			}
		}
		for i := range demo {
			demo[i].ID = uuid.NewString()
			demo[i].CreatedAt = time.Now().Add(time.Duration(i) * time.Millisecond)
			if err := tx.Create(&demo[i]).Error; err != nil {
				return err
			}
			if s.redis != nil {
				if err := s.redis.InvalidateProduct(ctx, demo[i].ID); err != nil {
					s.logger.Warn("Product cache invalidation failed", zap.Error(err))
				}
			}
		}
		return nil
	})
}
