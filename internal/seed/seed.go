package seed

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"gorm.io/gorm"
)

type demoProduct struct {
	sku            string
	name           string
	unit           string
	stock          int64
	retailCents    int64
	wholesaleCents int64
	wholesaleMin   int64
}

var demoProducts = []demoProduct{
	{sku: "RICE-25KG", name: "Rice 25kg Bag", unit: "bag", stock: 120, retailCents: 950_00, wholesaleCents: 800_00, wholesaleMin: 10},
	{sku: "OIL-1L", name: "Cooking Oil 1L", unit: "bottle", stock: 300, retailCents: 65_00, wholesaleCents: 55_00, wholesaleMin: 24},
	{sku: "SUGAR-1KG", name: "Sugar 1kg", unit: "pack", stock: 500, retailCents: 28_00},
	{sku: "NOODLE-BOX", name: "Instant Noodle Box", unit: "box", stock: 80, retailCents: 120_00, wholesaleCents: 96_00, wholesaleMin: 5},
}

// EnsureDemoProducts inserts a small starter catalog when the products table
// is empty. Safe to call on every boot.
func EnsureDemoProducts(db *gorm.DB) error {
	var count int64
	if err := db.Model(&catalogdomain.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	return db.Transaction(func(tx *gorm.DB) error {
		for _, p := range demoProducts {
			product := catalogdomain.Product{
				ID:        node.Generate(),
				Slug:      slug.Make(p.name),
				SKU:       p.sku,
				Name:      p.name,
				Unit:      p.unit,
				Stock:     p.stock,
				Active:    true,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := tx.Create(&product).Error; err != nil {
				return err
			}

			tiers := []catalogdomain.PriceTier{{
				ID:              node.Generate(),
				ProductID:       product.ID,
				Kind:            catalogdomain.TierKindRetail,
				MinQuantity:     1,
				UnitAmountCents: p.retailCents,
				CreatedAt:       now,
				UpdatedAt:       now,
			}}
			if p.wholesaleMin > 1 {
				tiers = append(tiers, catalogdomain.PriceTier{
					ID:              node.Generate(),
					ProductID:       product.ID,
					Kind:            catalogdomain.TierKindWholesale,
					MinQuantity:     p.wholesaleMin,
					UnitAmountCents: p.wholesaleCents,
					CreatedAt:       now,
					UpdatedAt:       now,
				})
			}
			for i := range tiers {
				if err := tx.Create(&tiers[i]).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
}
