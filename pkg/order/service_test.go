package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/example/storefront/pkg/models"
	"github.com/example/storefront/pkg/repository"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))

	return NewService(db, zap.NewNop()), db
}

func createProduct(t *testing.T, db *gorm.DB, name, price string) models.Product {
	t.Helper()

	p := models.Product{
		ID:    uuid.NewString(),
		Name:  name,
		Price: decimal.RequireFromString(price),
	}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func createUserCart(t *testing.T, db *gorm.DB, userID string) models.Cart {
	t.Helper()

	c := models.Cart{ID: uuid.NewString(), UserID: &userID}
	require.NoError(t, db.Create(&c).Error)
	return c
}

func addLine(t *testing.T, db *gorm.DB, cartID, productID string, qty int) {
	t.Helper()

	require.NoError(t, db.Create(&models.CartItem{
		ID:        uuid.NewString(),
		CartID:    cartID,
		ProductID: productID,
		Quantity:  qty,
	}).Error)
}

func TestCheckout_RequiresPrincipal(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), nil)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestCheckout_NoCartForUser(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Checkout(context.Background(), &models.Principal{ID: uuid.NewString(), Username: "alice"})
	assert.ErrorIs(t, err, ErrNoCart)
}

func TestCheckout_SnapshotsCartIntoOrderAndClearsIt(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	p1 := createProduct(t, db, "Blue T-Shirt", "10.00")
	p2 := createProduct(t, db, "Red Hoodie", "5.00")

	principal := &models.Principal{ID: uuid.NewString(), Username: "alice"}
	userCart := createUserCart(t, db, principal.ID)
	addLine(t, db, userCart.ID, p1.ID, 2)
	addLine(t, db, userCart.ID, p2.ID, 1)

	placed, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)

	assert.Equal(t, principal.ID, placed.UserID)
	require.Len(t, placed.Items, 2)
	assert.True(t, placed.Total.Equal(decimal.RequireFromString("25.00")),
		"expected total 25.00, got %s", placed.Total)

	byProduct := map[string]models.OrderItem{}
	for _, line := range placed.Items {
		byProduct[line.ProductID] = line
	}
	assert.Equal(t, 2, byProduct[p1.ID].Quantity)
	assert.True(t, byProduct[p1.ID].Price.Equal(p1.Price))
	assert.Equal(t, 1, byProduct[p2.ID].Quantity)
	assert.True(t, byProduct[p2.ID].Price.Equal(p2.Price))

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("cart_id = ?", userCart.ID).Count(&remaining).Error)
	assert.Zero(t, remaining, "cart must be emptied by checkout")

	var cartRow models.Cart
	assert.NoError(t, db.First(&cartRow, "id = ?", userCart.ID).Error,
		"the cart row itself survives, ready for reuse")
}

func TestCheckout_PriceIsFrozenAtCheckoutTime(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	product := createProduct(t, db, "Sneakers", "69.99")
	principal := &models.Principal{ID: uuid.NewString(), Username: "bob"}
	userCart := createUserCart(t, db, principal.ID)
	addLine(t, db, userCart.ID, product.ID, 1)

	placed, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)

	// Catalog price changes after checkout must not leak into the order.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", product.ID).
		Update("price", decimal.RequireFromString("99.99")).Error)

	reloaded, err := svc.Get(ctx, placed.ID, principal.ID)
	require.NoError(t, err)
	require.Len(t, reloaded.Items, 1)
	assert.True(t, reloaded.Items[0].Price.Equal(decimal.RequireFromString("69.99")))
}

func TestCheckout_SecondRunOnEmptiedCartYieldsEmptyOrder(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	product := createProduct(t, db, "Sneakers", "69.99")
	principal := &models.Principal{ID: uuid.NewString(), Username: "carol"}
	userCart := createUserCart(t, db, principal.ID)
	addLine(t, db, userCart.ID, product.ID, 1)

	first, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)
	require.Len(t, first.Items, 1)

	second, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)
	assert.Empty(t, second.Items)
	assert.True(t, second.Total.IsZero())
	assert.NotEqual(t, first.ID, second.ID)
}

func TestCheckout_FailedItemWriteRollsBackEverything(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	product := createProduct(t, db, "Sneakers", "69.99")
	principal := &models.Principal{ID: uuid.NewString(), Username: "frank"}
	userCart := createUserCart(t, db, principal.ID)
	addLine(t, db, userCart.ID, product.ID, 2)

	// Make the order-line insert fail partway through the transaction.
	require.NoError(t, db.Migrator().DropTable(&models.OrderItem{}))

	_, err := svc.Checkout(ctx, principal)
	require.Error(t, err)

	var orderCount int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orderCount).Error)
	assert.Zero(t, orderCount, "the order row must roll back with its items")

	var remaining int64
	require.NoError(t, db.Model(&models.CartItem{}).
		Where("cart_id = ?", userCart.ID).Count(&remaining).Error)
	assert.Equal(t, int64(1), remaining, "cart lines survive a failed checkout")
}

func TestGet_OtherUsersOrdersAreInvisible(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	product := createProduct(t, db, "Sneakers", "69.99")
	principal := &models.Principal{ID: uuid.NewString(), Username: "dave"}
	userCart := createUserCart(t, db, principal.ID)
	addLine(t, db, userCart.ID, product.ID, 1)

	placed, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)

	_, err = svc.Get(ctx, placed.ID, uuid.NewString())
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestListByUser(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	product := createProduct(t, db, "Sneakers", "69.99")
	principal := &models.Principal{ID: uuid.NewString(), Username: "erin"}
	userCart := createUserCart(t, db, principal.ID)

	addLine(t, db, userCart.ID, product.ID, 1)
	_, err := svc.Checkout(ctx, principal)
	require.NoError(t, err)

	addLine(t, db, userCart.ID, product.ID, 2)
	_, err = svc.Checkout(ctx, principal)
	require.NoError(t, err)

	orders, err := svc.ListByUser(ctx, principal.ID)
	require.NoError(t, err)
	assert.Len(t, orders, 2)

	other, err := svc.ListByUser(ctx, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, other)
}
