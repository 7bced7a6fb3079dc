package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, order *Order) error
	Update(ctx context.Context, db *gorm.DB, order *Order) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Order, error)

	// FindAll returns up to PageSize+1 orders, newest first, optionally
	// filtered by status.
	FindAll(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]*Order, error)

	// ReplaceItems rewrites the order's full item list. Lines are owned by
	// the order, so a mutation always persists the whole sequence.
	ReplaceItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID, items []LineItem) error
}
