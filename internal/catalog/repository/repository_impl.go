package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() catalogdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, product *catalogdomain.Product) error {
	err := db.WithContext(ctx).Exec(
		`INSERT INTO products (
			id, slug, sku, name, description, unit, stock, active, metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ID,
		product.Slug,
		product.SKU,
		product.Name,
		product.Description,
		product.Unit,
		product.Stock,
		product.Active,
		product.Metadata,
		product.CreatedAt,
		product.UpdatedAt,
	).Error
	if err != nil {
		return err
	}

	for i := range product.Tiers {
		tier := &product.Tiers[i]
		err = db.WithContext(ctx).Exec(
			`INSERT INTO price_tiers (
				id, product_id, kind, min_quantity, unit_amount_cents, created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			tier.ID,
			tier.ProductID,
			tier.Kind,
			tier.MinQuantity,
			tier.UnitAmountCents,
			tier.CreatedAt,
			tier.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, product *catalogdomain.Product) error {
	return db.WithContext(ctx).Exec(
		`UPDATE products SET name = ?, description = ?, unit = ?, stock = ?, active = ?, metadata = ?, updated_at = ?
		 WHERE id = ?`,
		product.Name,
		product.Description,
		product.Unit,
		product.Stock,
		product.Active,
		product.Metadata,
		product.UpdatedAt,
		product.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*catalogdomain.Product, error) {
	var product catalogdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, sku, name, description, unit, stock, active, metadata, created_at, updated_at
		 FROM products WHERE id = ?`,
		id,
	).Scan(&product).Error
	if err != nil {
		return nil, err
	}
	if product.ID == 0 {
		return nil, nil
	}
	if err := r.loadTiers(ctx, db, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*catalogdomain.Product, error) {
	var afterID snowflake.ID
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		afterID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
	}

	// Snowflake IDs are time-ordered, so cursoring on id keeps pages in
	// creation order. One extra row signals whether more pages exist.
	var items []*catalogdomain.Product
	err := db.WithContext(ctx).Raw(
		`SELECT id, slug, sku, name, description, unit, stock, active, metadata, created_at, updated_at
		 FROM products WHERE id > ? ORDER BY id ASC LIMIT ?`,
		afterID,
		page.PageSize+1,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	for i := range items {
		if err := r.loadTiers(ctx, db, items[i]); err != nil {
			return nil, err
		}
	}
	return items, nil
}

func (r *repo) DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE products SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND stock >= ?`,
		quantity,
		id,
		quantity,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

// loadTiers normalizes tier rows into the ordered retail-then-wholesale
// shape the pricing engine expects, regardless of how they were written.
func (r *repo) loadTiers(ctx context.Context, db *gorm.DB, product *catalogdomain.Product) error {
	var tiers []catalogdomain.PriceTier
	err := db.WithContext(ctx).Raw(
		`SELECT id, product_id, kind, min_quantity, unit_amount_cents, created_at, updated_at
		 FROM price_tiers WHERE product_id = ? ORDER BY min_quantity ASC`,
		product.ID,
	).Scan(&tiers).Error
	if err != nil {
		return err
	}
	product.Tiers = tiers
	return nil
}
