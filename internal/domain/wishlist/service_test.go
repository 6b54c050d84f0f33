// internal/domain/wishlist/service_test.go
package wishlist

import (
	"context"
	"fmt"
	"io"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

func setupService(t *testing.T) (*Service, *gorm.DB, *miniredis.Miniredis) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&catalog.Product{}, &catalog.ProductImage{}, &WishlistItem{}))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	return NewService(db, redisClient, log), db, mr
}

func seedProduct(t *testing.T, db *gorm.DB, name string) *catalog.Product {
	t.Helper()

	p := &catalog.Product{Name: name, Price: 99900, IsActive: true}
	require.NoError(t, db.Create(p).Error)
	return p
}

func TestAddRejectsDuplicate(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter")

	require.NoError(t, svc.Add(ctx, 1, p.ID))
	err := svc.Add(ctx, 1, p.ID)
	assert.ErrorIs(t, err, apperr.ErrDuplicate)
}

func TestAddUnknownProduct(t *testing.T) {
	svc, _, _ := setupService(t)

	err := svc.Add(context.Background(), 1, 9999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveIsIdempotent(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter")

	require.NoError(t, svc.Add(ctx, 1, p.ID))
	require.NoError(t, svc.Remove(ctx, 1, p.ID))
	require.NoError(t, svc.Remove(ctx, 1, p.ID))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestToggleFlipsMembership(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter")

	resp, err := svc.Toggle(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.True(t, resp.InWishlist)

	resp, err = svc.Toggle(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.False(t, resp.InWishlist)

	member, err := svc.IsMember(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestIsMember(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter")
	other := seedProduct(t, db, "Clay Mug")

	require.NoError(t, svc.Add(ctx, 1, p.ID))

	member, err := svc.IsMember(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.True(t, member)

	member, err = svc.IsMember(ctx, 1, other.ID)
	require.NoError(t, err)
	assert.False(t, member)

	member, err = svc.IsMember(ctx, 2, p.ID)
	require.NoError(t, err)
	assert.False(t, member)
}

func TestIsMemberServedFromPrimedCache(t *testing.T) {
	svc, db, mr := setupService(t)
	ctx := context.Background()
	p := seedProduct(t, db, "Terracotta Planter")

	require.NoError(t, svc.Add(ctx, 1, p.ID))

	// First call primes the Redis set, second call is answered from it.
	_, err := svc.IsMember(ctx, 1, p.ID)
	require.NoError(t, err)
	require.True(t, mr.Exists("wishlist:1"))

	member, err := svc.IsMember(ctx, 1, p.ID)
	require.NoError(t, err)
	assert.True(t, member)
}

func TestListNewestFirstSkipsUnavailable(t *testing.T) {
	svc, db, _ := setupService(t)
	ctx := context.Background()
	planter := seedProduct(t, db, "Terracotta Planter")
	mug := seedProduct(t, db, "Clay Mug")

	require.NoError(t, svc.Add(ctx, 1, planter.ID))
	require.NoError(t, svc.Add(ctx, 1, mug.ID))

	require.NoError(t, db.Model(&catalog.Product{}).Where("id = ?", mug.ID).Update("is_active", false).Error)

	items, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, planter.ID, items[0].ProductID)
}

func TestClear(t *testing.T) {
	svc, db, mr := setupService(t)
	ctx := context.Background()
	planter := seedProduct(t, db, "Terracotta Planter")
	mug := seedProduct(t, db, "Clay Mug")

	require.NoError(t, svc.Add(ctx, 1, planter.ID))
	require.NoError(t, svc.Add(ctx, 1, mug.ID))

	// Prime the cache so Clear has something to drop.
	_, err := svc.IsMember(ctx, 1, planter.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Clear(ctx, 1))

	count, err := svc.Count(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.False(t, mr.Exists("wishlist:1"))
}
