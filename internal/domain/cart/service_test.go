// internal/domain/cart/service_test.go
package cart

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sellasticpots/shop-backend/internal/config"
	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

func setupService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &catalog.ProductImage{}, &CartItem{}))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Shipping.DeliveryFee = 4900
	cfg.Shipping.DeliveryEstimateDays = 7

	return NewService(db, redisClient, cfg, log), db
}

func seedProduct(t *testing.T, db *gorm.DB, name string, price int64, freeDelivery bool) *catalog.Product {
	t.Helper()

	p := &catalog.Product{Name: name, Price: price, FreeDelivery: freeDelivery, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAddMergesQuantities(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter", 129900, true)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 3}))

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 5, summary.Items[0].Quantity)
}

func TestAddDefaultsToQuantityOne(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID}))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _ := setupService(t)

	err := svc.Add(context.Background(), 1, &AddRequest{ProductID: 9999, Quantity: 1})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestSetQuantityZeroRemovesLine(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, svc.SetQuantity(ctx, 1, p.ID, 0))

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestSetQuantityMissingLine(t *testing.T) {
	svc, db := setupService(t)
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	err := svc.SetQuantity(context.Background(), 1, p.ID, 3)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, svc.Remove(ctx, 1, p.ID))
	require.NoError(t, svc.Remove(ctx, 1, p.ID))
}

func TestGetComputesTotalsFromLiveProducts(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	planter := seedProduct(t, db, "Terracotta Planter", 129900, true)
	mug := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: planter.ID, Quantity: 2}))
	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: mug.ID, Quantity: 1}))

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.ItemCount)
	assert.Equal(t, int64(2*129900+59900), summary.Subtotal)
	assert.Equal(t, int64(4900), summary.DeliveryFee)
	assert.Equal(t, summary.Subtotal+4900, summary.Total)
}

func TestGetWaivesDeliveryFeeForFreeDeliveryCart(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	planter := seedProduct(t, db, "Terracotta Planter", 129900, true)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: planter.ID, Quantity: 1}))

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), summary.DeliveryFee)
	assert.Equal(t, summary.Subtotal, summary.Total)
}

func TestGetSkipsUnavailableProducts(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	planter := seedProduct(t, db, "Terracotta Planter", 129900, true)
	mug := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: planter.ID, Quantity: 1}))
	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: mug.ID, Quantity: 1}))

	require.NoError(t, db.Model(&catalog.Product{}).Where("id = ?", mug.ID).Update("is_active", false).Error)

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, planter.ID, summary.Items[0].ProductID)
}

func TestClearEmptiesCart(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 3}))
	require.NoError(t, svc.Clear(ctx, 1))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestCountIsCached(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 2}))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	// Bypass the service so the stale cached count is served until the
	// next mutation invalidates it.
	require.NoError(t, db.Where("user_id = ?", 1).Delete(&CartItem{}).Error)

	count, err = svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.Remove(ctx, 1, p.ID))
	count, err = svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestGetStoreFailureIsBackendError(t *testing.T) {
	svc, db := setupService(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = svc.Get(context.Background(), 1)
	var berr *apperr.BackendError
	require.ErrorAs(t, err, &berr)
	assert.Equal(t, http.StatusBadGateway, apperr.HTTPStatus(err))
	assert.Contains(t, err.Error(), berr.Err.Error())
	assert.Contains(t, berr.Err.Error(), "closed")
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Clay Mug", 59900, false)

	require.NoError(t, svc.Add(ctx, 1, &AddRequest{ProductID: p.ID, Quantity: 2}))
	require.NoError(t, svc.Add(ctx, 2, &AddRequest{ProductID: p.ID, Quantity: 5}))

	summary, err := svc.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ItemCount)
}
