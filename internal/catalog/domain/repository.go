package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

// Repository reads and writes products with their price tiers. FindByID
// always hits the database so callers see live stock, never a cached
// snapshot.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, product *Product) error
	Update(ctx context.Context, db *gorm.DB, product *Product) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Product, error)

	// FindAll returns up to PageSize+1 products ordered by id so callers
	// can detect whether another page exists.
	FindAll(ctx context.Context, db *gorm.DB, page pagination.Pagination) ([]*Product, error)

	// DecrementStock subtracts quantity from the product's stock only when
	// enough stock remains. It reports whether the row was updated.
	DecrementStock(ctx context.Context, db *gorm.DB, id snowflake.ID, quantity int64) (bool, error)
}
