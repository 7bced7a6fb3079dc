package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	catalogrepo "github.com/smallbiznis/stockroom/internal/catalog/repository"
	catalogservice "github.com/smallbiznis/stockroom/internal/catalog/service"
	"github.com/smallbiznis/stockroom/internal/clock"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	orderrepo "github.com/smallbiznis/stockroom/internal/order/repository"
	"github.com/smallbiznis/stockroom/internal/pricing"
	"github.com/smallbiznis/stockroom/internal/providers/pdf"
)

type testEnv struct {
	db         *gorm.DB
	orderSvc   orderdomain.Service
	catalogSvc catalogdomain.Service
	clock      *clock.FakeClock
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&catalogdomain.Product{},
		&catalogdomain.PriceTier{},
		&orderdomain.Order{},
		&orderdomain.LineItem{},
	))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	fake := clock.NewFakeClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	engine := pricing.New(decimal.RequireFromString("0.16"))
	catRepo := catalogrepo.Provide()

	catalogSvc := catalogservice.New(catalogservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  catRepo,
	})

	orderSvc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       node,
		Clock:       fake,
		Engine:      engine,
		Repo:        orderrepo.Provide(),
		CatalogRepo: catRepo,
		Metrics:     obsmetrics.New(obsmetrics.NewRegistry()),
		PDF:         &pdf.NoOpProvider{},
	})

	return &testEnv{
		db:         db,
		orderSvc:   orderSvc,
		catalogSvc: catalogSvc,
		clock:      fake,
	}
}

func (e *testEnv) createProduct(t *testing.T, sku string, stock, retailCents int64) *catalogdomain.Response {
	t.Helper()
	resp, err := e.catalogSvc.Create(context.Background(), catalogdomain.CreateRequest{
		SKU:               sku,
		Name:              "Product " + sku,
		Stock:             stock,
		RetailAmountCents: retailCents,
	})
	require.NoError(t, err)
	return resp
}

func (e *testEnv) createOrder(t *testing.T) *orderdomain.Response {
	t.Helper()
	resp, err := e.orderSvc.Create(context.Background(), orderdomain.CreateRequest{
		CustomerName:  "Daw Mya",
		CustomerPhone: "0912345678",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitDecrementsStock(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "SUBMIT-A", 50, 10_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 5)
	require.NoError(t, err)

	resp, err := env.orderSvc.Submit(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusProcessing, resp.Status)
	assert.Equal(t, int64(50_000), resp.SubtotalCents)
	assert.Equal(t, int64(8_000), resp.TaxCents)
	assert.Equal(t, int64(58_000), resp.TotalCents)

	reloaded, err := env.catalogSvc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(45), reloaded.Stock)
}

func TestSubmitRollsBackOnStockShortage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	productA := env.createProduct(t, "SHORT-A", 10, 5_000)
	productB := env.createProduct(t, "SHORT-B", 3, 2_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, productA.ID, 5)
	require.NoError(t, err)
	_, err = env.orderSvc.AddItem(ctx, order.ID, productB.ID, 3)
	require.NoError(t, err)

	// A concurrent sale drains product B between the edit and the submit.
	require.NoError(t, env.db.Exec(`UPDATE products SET stock = 2 WHERE id = ?`, productB.ID).Error)

	_, err = env.orderSvc.Submit(ctx, order.ID)
	var stockErr *pricing.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, int64(3), stockErr.Requested)
	assert.Equal(t, int64(2), stockErr.Available)

	// Product A's decrement must have been rolled back with it.
	reloadedA, err := env.catalogSvc.Get(ctx, productA.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10), reloadedA.Stock)

	reloaded, err := env.orderSvc.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusPending, reloaded.Status)
}

func TestSubmitAllowsUntrackedProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// Stock 0 means the product is not stock-tracked; it must survive the
	// whole add-then-submit path, not just the cart edit.
	product := env.createProduct(t, "UNTRACKED-A", 0, 12_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 4)
	require.NoError(t, err)

	resp, err := env.orderSvc.Submit(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusProcessing, resp.Status)
	assert.Equal(t, int64(48_000), resp.SubtotalCents)

	reloaded, err := env.catalogSvc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), reloaded.Stock)
}

func TestSubmitValidatesRequiredFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	resp, err := env.orderSvc.Create(ctx, orderdomain.CreateRequest{})
	require.NoError(t, err)

	_, err = env.orderSvc.Submit(ctx, resp.ID)
	var validationErr *orderdomain.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.ElementsMatch(t, []string{"customer_name", "customer_phone", "items"}, validationErr.Fields)
}

func TestOrderFrozenAfterSubmit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "FROZEN-A", 20, 3_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = env.orderSvc.Submit(ctx, order.ID)
	require.NoError(t, err)

	_, err = env.orderSvc.AddItem(ctx, order.ID, product.ID, 1)
	assert.ErrorIs(t, err, orderdomain.ErrNotEditable)

	_, err = env.orderSvc.SetDiscount(ctx, order.ID, 100)
	assert.ErrorIs(t, err, orderdomain.ErrNotEditable)
}

func TestDoubleSubmitRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "DOUBLE-A", 20, 3_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 2)
	require.NoError(t, err)
	_, err = env.orderSvc.Submit(ctx, order.ID)
	require.NoError(t, err)

	_, err = env.orderSvc.Submit(ctx, order.ID)
	var transitionErr *orderdomain.TransitionError
	require.ErrorAs(t, err, &transitionErr)

	// Stock was only taken once.
	reloaded, err := env.catalogSvc.Get(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(18), reloaded.Stock)
}

func TestStatusLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	product := env.createProduct(t, "STATUS-A", 20, 3_000)
	order := env.createOrder(t)

	_, err := env.orderSvc.AddItem(ctx, order.ID, product.ID, 1)
	require.NoError(t, err)
	_, err = env.orderSvc.Submit(ctx, order.ID)
	require.NoError(t, err)

	resp, err := env.orderSvc.UpdateStatus(ctx, order.ID, orderdomain.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusShipped, resp.Status)

	resp, err = env.orderSvc.UpdateStatus(ctx, order.ID, orderdomain.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, orderdomain.StatusCompleted, resp.Status)

	_, err = env.orderSvc.UpdateStatus(ctx, order.ID, orderdomain.StatusPending)
	var transitionErr *orderdomain.TransitionError
	assert.ErrorAs(t, err, &transitionErr)
}

func TestListOrdersPaginates(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		env.createOrder(t)
		env.clock.Advance(time.Minute)
	}

	page, err := env.orderSvc.List(ctx, orderdomain.ListRequest{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Orders, 2)
	assert.True(t, page.HasMore)
	require.NotEmpty(t, page.NextPageToken)

	rest, err := env.orderSvc.List(ctx, orderdomain.ListRequest{PageSize: 2, PageToken: page.NextPageToken})
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(rest.Orders), 1)
}

func TestListOrdersRejectsUnknownStatus(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.orderSvc.List(context.Background(), orderdomain.ListRequest{Status: "archived"})
	assert.ErrorIs(t, err, orderdomain.ErrInvalidStatus)
}
