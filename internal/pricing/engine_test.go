package pricing

import (
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(t *testing.T, rate string) *Engine {
	t.Helper()
	taxRate, err := decimal.NewFromString(rate)
	require.NoError(t, err)
	return New(taxRate)
}

func twoTierProduct(retailCents, wholesaleCents, wholesaleMin, stock int64) *catalogdomain.Product {
	node, _ := snowflake.NewNode(1)
	id := node.Generate()
	return &catalogdomain.Product{
		ID:    id,
		Name:  "Bag of beans",
		Stock: stock,
		Tiers: []catalogdomain.PriceTier{
			{ProductID: id, Kind: catalogdomain.TierKindRetail, MinQuantity: 1, UnitAmountCents: retailCents},
			{ProductID: id, Kind: catalogdomain.TierKindWholesale, MinQuantity: wholesaleMin, UnitAmountCents: wholesaleCents},
		},
	}
}

func TestResolveUnitPrice_TierSelection(t *testing.T) {
	eng := newEngine(t, "0.16")
	product := twoTierProduct(10000, 8000, 10, 50)

	for qty := int64(1); qty < 10; qty++ {
		quote, err := eng.ResolveUnitPrice(product, qty)
		require.NoError(t, err)
		assert.Equal(t, int64(10000), quote.UnitAmountCents)
		assert.False(t, quote.Wholesale)
	}

	for _, qty := range []int64{10, 11, 50, 10000} {
		quote, err := eng.ResolveUnitPrice(product, qty)
		require.NoError(t, err)
		assert.Equal(t, int64(8000), quote.UnitAmountCents)
		assert.True(t, quote.Wholesale)
	}
}

func TestResolveUnitPrice_RetailOnly(t *testing.T) {
	eng := newEngine(t, "0.16")
	node, _ := snowflake.NewNode(1)
	product := &catalogdomain.Product{
		ID:   node.Generate(),
		Name: "One-off",
		Tiers: []catalogdomain.PriceTier{
			{Kind: catalogdomain.TierKindRetail, MinQuantity: 1, UnitAmountCents: 1500},
		},
	}

	quote, err := eng.ResolveUnitPrice(product, 99)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), quote.UnitAmountCents)
	assert.False(t, quote.Wholesale)
}

func TestResolveUnitPrice_NoApplicableTier(t *testing.T) {
	eng := newEngine(t, "0.16")
	node, _ := snowflake.NewNode(1)
	product := &catalogdomain.Product{
		ID: node.Generate(),
		Tiers: []catalogdomain.PriceTier{
			// Violates the minimum-quantity-1 retail convention.
			{Kind: catalogdomain.TierKindWholesale, MinQuantity: 10, UnitAmountCents: 8000},
		},
	}

	_, err := eng.ResolveUnitPrice(product, 5)
	assert.ErrorIs(t, err, ErrNoApplicableTier)
}

func TestResolveUnitPrice_InvalidQuantity(t *testing.T) {
	eng := newEngine(t, "0.16")
	product := twoTierProduct(10000, 8000, 10, 50)

	_, err := eng.ResolveUnitPrice(product, 0)
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = eng.ResolveUnitPrice(product, -3)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestRecomputeLine_LocksInTierPrice(t *testing.T) {
	eng := newEngine(t, "0.16")
	product := twoTierProduct(10000, 8000, 10, 50)

	line, err := eng.RecomputeLine(product, 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), line.Quantity)
	assert.Equal(t, int64(10000), line.UnitAmountCents)
	assert.Equal(t, int64(50000), line.LineTotalCents)
	assert.Equal(t, int64(50), line.StockSnapshot)
	assert.False(t, line.Wholesale)

	line, err = eng.RecomputeLine(product, 12)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), line.UnitAmountCents)
	assert.Equal(t, int64(96000), line.LineTotalCents)
	assert.True(t, line.Wholesale)
}

func TestRecomputeLine_StockGuard(t *testing.T) {
	eng := newEngine(t, "0.16")
	product := twoTierProduct(10000, 8000, 10, 8)

	_, err := eng.RecomputeLine(product, 9)
	var stockErr *InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, product.ID, stockErr.ProductID)
	assert.Equal(t, int64(9), stockErr.Requested)
	assert.Equal(t, int64(8), stockErr.Available)

	// Zero stock means the product does not track inventory.
	product.Stock = 0
	line, err := eng.RecomputeLine(product, 9)
	require.NoError(t, err)
	assert.Equal(t, int64(9), line.Quantity)
}

func TestOrderTotals_Scenario(t *testing.T) {
	eng := newEngine(t, "0.16")

	// One line of 960.00, discount 50.00, shipping 20.00.
	totals := eng.OrderTotals([]int64{96000}, 5000, 2000)
	assert.Equal(t, int64(96000), totals.SubtotalCents)
	assert.Equal(t, int64(15360), totals.TaxCents)
	assert.Equal(t, int64(108360), totals.TotalCents)
}

func TestOrderTotals_Idempotent(t *testing.T) {
	eng := newEngine(t, "0.16")
	lines := []int64{12345, 678, 91011}

	first := eng.OrderTotals(lines, 500, 250)
	second := eng.OrderTotals(lines, 500, 250)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(12345+678+91011), first.SubtotalCents)
}

func TestOrderTotals_RoundsTaxHalfUp(t *testing.T) {
	eng := newEngine(t, "0.5")

	totals := eng.OrderTotals([]int64{3}, 0, 0)
	assert.Equal(t, int64(2), totals.TaxCents)
}

func TestOrderTotals_NegativeTotalPassesThrough(t *testing.T) {
	eng := newEngine(t, "0.16")

	totals := eng.OrderTotals([]int64{1000}, 5000, 0)
	assert.Equal(t, int64(1000), totals.SubtotalCents)
	assert.Equal(t, int64(160), totals.TaxCents)
	assert.Equal(t, int64(-3840), totals.TotalCents)
}

func TestOrderTotals_EmptyOrder(t *testing.T) {
	eng := newEngine(t, "0.16")

	totals := eng.OrderTotals(nil, 0, 0)
	assert.Equal(t, Totals{}, totals)
}
