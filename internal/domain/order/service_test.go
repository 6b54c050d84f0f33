// internal/domain/order/service_test.go
package order

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
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
	"github.com/sellasticpots/shop-backend/internal/domain/cart"
	"github.com/sellasticpots/shop-backend/internal/domain/catalog"
	"github.com/sellasticpots/shop-backend/internal/pkg/apperr"
)

type fakeMailer struct {
	sent []string
	err  error
}

func (m *fakeMailer) SendOrderConfirmation(o *Order) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, o.OrderNumber)
	return nil
}

type fixture struct {
	orders *Service
	cart   *cart.Service
	mailer *fakeMailer
	db     *gorm.DB
}

func setup(t *testing.T) *fixture {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalog.Product{}, &catalog.ProductImage{},
		&cart.CartItem{}, &Order{}, &OrderItem{},
	))

	mr := miniredis.RunT(t)
	redisClient := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})

	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := &config.Config{}
	cfg.Shipping.DeliveryFee = 4900
	cfg.Shipping.DeliveryEstimateDays = 7

	cartService := cart.NewService(db, redisClient, cfg, log)
	mailer := &fakeMailer{}

	return &fixture{
		orders: NewService(db, cartService, mailer, cfg, log),
		cart:   cartService,
		mailer: mailer,
		db:     db,
	}
}

func (f *fixture) seedProduct(t *testing.T, name string, price int64, freeDelivery bool) *catalog.Product {
	t.Helper()

	p := &catalog.Product{Name: name, Price: price, FreeDelivery: freeDelivery, IsActive: true}
	require.NoError(t, f.db.Create(p).Error)
	return p
}

func (f *fixture) fillCart(t *testing.T, userID uint, productID uint, quantity int) {
	t.Helper()
	require.NoError(t, f.cart.Add(context.Background(), userID, &cart.AddRequest{ProductID: productID, Quantity: quantity}))
}

func validShipping() *PlaceOrderRequest {
	return &PlaceOrderRequest{
		CustomerName: "Asha Rao",
		Phone:        "9876543210",
		Email:        "asha@example.com",
		Address:      "12 Pottery Lane",
		City:         "Jaipur",
		State:        "Rajasthan",
		Pincode:      "302001",
	}
}

func TestValidateShippingFieldOrder(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*PlaceOrderRequest)
		wantField string
	}{
		{"missing name", func(r *PlaceOrderRequest) { r.CustomerName = "  " }, "customer_name"},
		{"short phone", func(r *PlaceOrderRequest) { r.Phone = "12345" }, "phone"},
		{"bad email", func(r *PlaceOrderRequest) { r.Email = "not-an-email" }, "email"},
		{"missing address", func(r *PlaceOrderRequest) { r.Address = "" }, "address"},
		{"missing city", func(r *PlaceOrderRequest) { r.City = "" }, "city"},
		{"missing state", func(r *PlaceOrderRequest) { r.State = "" }, "state"},
		{"short pincode", func(r *PlaceOrderRequest) { r.Pincode = "3020" }, "pincode"},
		{"non-numeric pincode", func(r *PlaceOrderRequest) { r.Pincode = "30200a" }, "pincode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validShipping()
			tt.mutate(req)

			err := ValidateShipping(req)
			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.wantField, verr.Field)
		})
	}
}

func TestValidateShippingReportsFirstFailingField(t *testing.T) {
	req := validShipping()
	req.CustomerName = ""
	req.Pincode = "bad"

	err := ValidateShipping(req)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "customer_name", verr.Field)
}

func TestValidateShippingAcceptsFormattedPhone(t *testing.T) {
	req := validShipping()
	req.Phone = "+91 98765-43210"
	assert.NoError(t, ValidateShipping(req))
}

func TestPlaceOrderClearsCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Terracotta Planter", 129900, false)
	f.fillCart(t, 1, p.ID, 2)

	resp, err := f.orders.PlaceOrder(ctx, 1, validShipping())
	require.NoError(t, err)
	assert.Equal(t, StatusPending, resp.Status)
	assert.Equal(t, int64(2*129900), resp.Subtotal)
	assert.Equal(t, int64(4900), resp.DeliveryFee)
	assert.Equal(t, int64(2*129900+4900), resp.TotalAmount)

	summary, err := f.cart.Get(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestPlaceOrderEmptyCart(t *testing.T) {
	f := setup(t)

	_, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "cart", verr.Field)
}

func TestPlaceOrderInvalidShippingKeepsCart(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	req := validShipping()
	req.Pincode = "12"
	_, err := f.orders.PlaceOrder(ctx, 1, req)
	require.Error(t, err)

	summary, err := f.cart.Get(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, summary.Items, 1)
}

func TestPlaceOrderEstimatedDelivery(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)
	assert.Equal(t, resp.OrderDate.AddDate(0, 0, 7), resp.EstimatedDelivery)
}

func TestPlaceOrderSendsConfirmation(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)
	assert.Equal(t, []string{resp.OrderNumber}, f.mailer.sent)
}

func TestPlaceOrderSucceedsWhenMailFails(t *testing.T) {
	f := setup(t)
	f.mailer.err = errors.New("smtp down")
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	_, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	assert.NoError(t, err)
}

func TestOrderSnapshotSurvivesPriceChange(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(ctx, 1, validShipping())
	require.NoError(t, err)

	require.NoError(t, f.db.Model(&catalog.Product{}).Where("id = ?", p.ID).Update("price", 99900).Error)

	got, err := f.orders.Get(1, resp.OrderNumber)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(59900), got.Items[0].Price)
	assert.Equal(t, "Clay Mug", got.Items[0].ProductName)
}

func TestListOrdersNewestFirst(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Clay Mug", 59900, false)

	var numbers []string
	for i := 0; i < 3; i++ {
		f.fillCart(t, 1, p.ID, 1)
		resp, err := f.orders.PlaceOrder(ctx, 1, validShipping())
		require.NoError(t, err)
		numbers = append(numbers, resp.OrderNumber)
	}

	orders, err := f.orders.List(1)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for i := range orders[:len(orders)-1] {
		assert.False(t, orders[i].OrderDate.Before(orders[i+1].OrderDate))
	}
	assert.Contains(t, numbers, orders[0].OrderNumber)
}

func TestGetEnforcesOwnership(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)

	_, err = f.orders.Get(2, resp.OrderNumber)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCancelPendingOrder(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)

	cancelled, err := f.orders.Cancel(1, resp.OrderNumber)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, cancelled.Status)
}

func TestCancelShippedOrderRejected(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(resp.OrderNumber, StatusShipped)
	require.NoError(t, err)

	_, err = f.orders.Cancel(1, resp.OrderNumber)
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestUpdateStatusTransitions(t *testing.T) {
	f := setup(t)
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(context.Background(), 1, validShipping())
	require.NoError(t, err)

	_, err = f.orders.UpdateStatus(resp.OrderNumber, StatusDelivered)
	assert.Error(t, err)

	shipped, err := f.orders.UpdateStatus(resp.OrderNumber, StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, StatusShipped, shipped.Status)

	delivered, err := f.orders.UpdateStatus(resp.OrderNumber, StatusDelivered)
	require.NoError(t, err)
	assert.Equal(t, StatusDelivered, delivered.Status)

	_, err = f.orders.UpdateStatus(resp.OrderNumber, StatusCancelled)
	assert.Error(t, err)
}

func TestUpdateStatusUnknownStatus(t *testing.T) {
	f := setup(t)

	_, err := f.orders.UpdateStatus("whatever", "teleported")
	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Field)
}

func TestDisplayOrderID(t *testing.T) {
	label := DisplayOrderID("3f2c8a1e-7b9d-4e5f-a6c3-1d2e3f4a5b6c")

	assert.Regexp(t, regexp.MustCompile(`^ORD-\d{5}$`), label)
	assert.Equal(t, label, DisplayOrderID("3f2c8a1e-7b9d-4e5f-a6c3-1d2e3f4a5b6c"))
	assert.NotEqual(t, label, DisplayOrderID("different-order-number"))
}

func TestHasPurchasedIgnoresCancelledOrders(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	p := f.seedProduct(t, "Clay Mug", 59900, false)
	f.fillCart(t, 1, p.ID, 1)

	resp, err := f.orders.PlaceOrder(ctx, 1, validShipping())
	require.NoError(t, err)

	bought, err := f.orders.HasPurchased(1, p.ID)
	require.NoError(t, err)
	assert.True(t, bought)

	_, err = f.orders.Cancel(1, resp.OrderNumber)
	require.NoError(t, err)

	bought, err = f.orders.HasPurchased(1, p.ID)
	require.NoError(t, err)
	assert.False(t, bought)

	bought, err = f.orders.HasPurchased(2, p.ID)
	require.NoError(t, err)
	assert.False(t, bought)
}
