package repository

import (
	"context"
	"math"

	"github.com/bwmarrin/snowflake"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() orderdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO orders (
			id, number, status, payment_status, payment_method,
			customer_name, customer_phone, customer_address,
			discount_cents, shipping_cents, subtotal_cents, tax_cents, total_cents,
			metadata, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID,
		order.Number,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.DiscountCents,
		order.ShippingCents,
		order.SubtotalCents,
		order.TaxCents,
		order.TotalCents,
		order.Metadata,
		order.CreatedAt,
		order.UpdatedAt,
	).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	return db.WithContext(ctx).Exec(
		`UPDATE orders SET
			status = ?, payment_status = ?, payment_method = ?,
			customer_name = ?, customer_phone = ?, customer_address = ?,
			discount_cents = ?, shipping_cents = ?, subtotal_cents = ?, tax_cents = ?, total_cents = ?,
			metadata = ?, updated_at = ?
		 WHERE id = ?`,
		order.Status,
		order.PaymentStatus,
		order.PaymentMethod,
		order.CustomerName,
		order.CustomerPhone,
		order.CustomerAddress,
		order.DiscountCents,
		order.ShippingCents,
		order.SubtotalCents,
		order.TaxCents,
		order.TotalCents,
		order.Metadata,
		order.UpdatedAt,
		order.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, number, status, payment_status, payment_method,
			customer_name, customer_phone, customer_address,
			discount_cents, shipping_cents, subtotal_cents, tax_cents, total_cents,
			metadata, created_at, updated_at
		 FROM orders WHERE id = ?`,
		id,
	).Scan(&order).Error
	if err != nil {
		return nil, err
	}
	if order.ID == 0 {
		return nil, nil
	}
	if err := r.loadItems(ctx, db, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repo) FindAll(ctx context.Context, db *gorm.DB, filter orderdomain.ListFilter, page pagination.Pagination) ([]*orderdomain.Order, error) {
	// Newest first, so the cursor walks the id space downward.
	beforeID := snowflake.ID(math.MaxInt64)
	if page.PageToken != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return nil, err
		}
		beforeID, err = snowflake.ParseString(cursor.ID)
		if err != nil {
			return nil, err
		}
	}

	status := filter.Status
	if status == "" {
		status = "%"
	}

	var orders []*orderdomain.Order
	err := db.WithContext(ctx).Raw(
		`SELECT id, number, status, payment_status, payment_method,
			customer_name, customer_phone, customer_address,
			discount_cents, shipping_cents, subtotal_cents, tax_cents, total_cents,
			metadata, created_at, updated_at
		 FROM orders WHERE id < ? AND status LIKE ? ORDER BY id DESC LIMIT ?`,
		beforeID,
		status,
		page.PageSize+1,
	).Scan(&orders).Error
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if err := r.loadItems(ctx, db, orders[i]); err != nil {
			return nil, err
		}
	}
	return orders, nil
}

func (r *repo) ReplaceItems(ctx context.Context, db *gorm.DB, orderID snowflake.ID, items []orderdomain.LineItem) error {
	err := db.WithContext(ctx).Exec(`DELETE FROM order_items WHERE order_id = ?`, orderID).Error
	if err != nil {
		return err
	}

	for i := range items {
		item := &items[i]
		err = db.WithContext(ctx).Exec(
			`INSERT INTO order_items (
				id, order_id, product_id, name, quantity,
				unit_amount_cents, line_total_cents, stock_snapshot, wholesale, position,
				created_at, updated_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.Name,
			item.Quantity,
			item.UnitAmountCents,
			item.LineTotalCents,
			item.StockSnapshot,
			item.Wholesale,
			item.Position,
			item.CreatedAt,
			item.UpdatedAt,
		).Error
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) loadItems(ctx context.Context, db *gorm.DB, order *orderdomain.Order) error {
	var items []orderdomain.LineItem
	err := db.WithContext(ctx).Raw(
		`SELECT id, order_id, product_id, name, quantity,
			unit_amount_cents, line_total_cents, stock_snapshot, wholesale, position,
			created_at, updated_at
		 FROM order_items WHERE order_id = ? ORDER BY position ASC`,
		order.ID,
	).Scan(&items).Error
	if err != nil {
		return err
	}
	order.Items = items
	return nil
}
