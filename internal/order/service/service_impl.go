package service

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/oklog/ulid/v2"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/order/cart"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/internal/pricing"
	"github.com/smallbiznis/stockroom/internal/providers/pdf"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Clock       clock.Clock
	Engine      *pricing.Engine
	Repo        orderdomain.Repository
	CatalogRepo catalogdomain.Repository
	Metrics     *obsmetrics.Metrics
	PDF         pdf.Provider
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	clock       clock.Clock
	engine      *pricing.Engine
	repo        orderdomain.Repository
	catalogRepo catalogdomain.Repository
	metrics     *obsmetrics.Metrics
	pdf         pdf.Provider
}

func New(p Params) orderdomain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("order.service"),
		genID:       p.GenID,
		clock:       p.Clock,
		engine:      p.Engine,
		repo:        p.Repo,
		catalogRepo: p.CatalogRepo,
		metrics:     p.Metrics,
		pdf:         p.PDF,
	}
}

func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.Response, error) {
	now := s.clock.Now()
	entity := &orderdomain.Order{
		ID:              s.genID.Generate(),
		Number:          ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		Status:          orderdomain.StatusPending,
		PaymentStatus:   orderdomain.PaymentStatusUnpaid,
		PaymentMethod:   strings.TrimSpace(req.PaymentMethod),
		CustomerName:    strings.TrimSpace(req.CustomerName),
		CustomerPhone:   strings.TrimSpace(req.CustomerPhone),
		CustomerAddress: req.CustomerAddress,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		return nil, err
	}

	s.log.Info("order created",
		zap.String("order_id", entity.ID.String()),
		zap.String("number", entity.Number),
	)
	return s.toResponse(entity), nil
}

func (s *Service) Get(ctx context.Context, id string) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, req orderdomain.ListRequest) (orderdomain.ListResponse, error) {
	status := strings.TrimSpace(req.Status)
	if status != "" && !orderdomain.ValidStatus(status) {
		return orderdomain.ListResponse{}, orderdomain.ErrInvalidStatus
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	orders, err := s.repo.FindAll(ctx, s.db, orderdomain.ListFilter{Status: status}, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return orderdomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(orders, pageSize, func(o *orderdomain.Order) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        o.ID.String(),
			CreatedAt: o.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(orders) > int(pageSize) {
		orders = orders[:pageSize]
	}

	resp := orderdomain.ListResponse{PageInfo: *pageInfo}
	resp.Orders = make([]orderdomain.Response, 0, len(orders))
	for i := range orders {
		resp.Orders = append(resp.Orders, *s.toResponse(orders[i]))
	}
	return resp, nil
}

func (s *Service) AddItem(ctx context.Context, orderID, productID string, quantityDelta int64) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	product, err := s.freshProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).AddOrUpdateItem(product, quantityDelta); err != nil {
		return nil, err
	}
	return s.persistMutation(ctx, entity)
}

func (s *Service) RemoveItem(ctx context.Context, orderID string, index int) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).RemoveItem(index); err != nil {
		return nil, err
	}
	return s.persistMutation(ctx, entity)
}

func (s *Service) SetItemQuantity(ctx context.Context, orderID string, index int, quantity int64) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(entity.Items) {
		return nil, orderdomain.ErrIndexOutOfRange
	}

	// Reprice against the product's current tiers and live stock, not the
	// snapshot captured when the line was written.
	product, err := s.freshProduct(ctx, entity.Items[index].ProductID.String())
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).SetItemQuantity(index, product, quantity); err != nil {
		return nil, err
	}
	return s.persistMutation(ctx, entity)
}

func (s *Service) SetDiscount(ctx context.Context, orderID string, discountCents int64) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).SetDiscount(discountCents); err != nil {
		return nil, err
	}
	return s.persistMutation(ctx, entity)
}

func (s *Service) SetShipping(ctx context.Context, orderID string, shippingCents int64) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).SetShipping(shippingCents); err != nil {
		return nil, err
	}
	return s.persistMutation(ctx, entity)
}

// Submit validates the order, decrements stock for every line and flips the
// order to processing inside one database transaction. Either every stock
// decrement and the status change land together, or none of them do.
func (s *Service) Submit(ctx context.Context, orderID string) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	var missing []string
	if entity.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if entity.CustomerPhone == "" {
		missing = append(missing, "customer_phone")
	}
	if len(entity.Items) == 0 {
		missing = append(missing, "items")
	}
	if len(missing) > 0 {
		return nil, &orderdomain.ValidationError{Fields: missing}
	}

	if err := cart.New(s.engine, entity).Transition(orderdomain.StatusProcessing); err != nil {
		return nil, err
	}
	if entity.PaymentMethod != "" {
		entity.PaymentStatus = orderdomain.PaymentStatusPaid
	}
	entity.UpdatedAt = s.clock.Now()

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range entity.Items {
			item := &entity.Items[i]
			product, findErr := s.catalogRepo.FindByID(ctx, tx, item.ProductID)
			if findErr != nil {
				return findErr
			}
			if product == nil {
				return orderdomain.ErrProductNotFound
			}
			// Stock 0 means the product is untracked; there is nothing to
			// decrement and the conditional update would always miss.
			if product.Stock == 0 {
				continue
			}
			ok, decErr := s.catalogRepo.DecrementStock(ctx, tx, item.ProductID, item.Quantity)
			if decErr != nil {
				return decErr
			}
			if !ok {
				return &pricing.InsufficientStockError{
					ProductID: item.ProductID,
					Requested: item.Quantity,
					Available: product.Stock,
				}
			}
		}
		return s.repo.Update(ctx, tx, entity)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.OrdersSubmitted.Inc()
	s.log.Info("order submitted",
		zap.String("order_id", entity.ID.String()),
		zap.String("number", entity.Number),
		zap.Int64("total_cents", entity.TotalCents),
	)
	return s.toResponse(entity), nil
}

func (s *Service) UpdateStatus(ctx context.Context, orderID, status string) (*orderdomain.Response, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := cart.New(s.engine, entity).Transition(status); err != nil {
		return nil, err
	}
	entity.UpdatedAt = s.clock.Now()

	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return s.toResponse(entity), nil
}

func (s *Service) Receipt(ctx context.Context, orderID string) (io.Reader, error) {
	entity, err := s.loadOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}

	data := pdf.ReceiptData{
		Number:        entity.Number,
		IssuedAt:      entity.UpdatedAt,
		CustomerName:  entity.CustomerName,
		CustomerPhone: entity.CustomerPhone,
		DiscountCents: entity.DiscountCents,
		ShippingCents: entity.ShippingCents,
		SubtotalCents: entity.SubtotalCents,
		TaxCents:      entity.TaxCents,
		TotalCents:    entity.TotalCents,
	}
	for _, item := range entity.Items {
		data.Items = append(data.Items, pdf.ReceiptItem{
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitAmountCents: item.UnitAmountCents,
			LineTotalCents:  item.LineTotalCents,
		})
	}
	return s.pdf.GenerateReceipt(ctx, data)
}

// persistMutation writes the mutated item list and the recomputed totals in
// one transaction so a reader never observes a partially applied edit.
func (s *Service) persistMutation(ctx context.Context, entity *orderdomain.Order) (*orderdomain.Response, error) {
	now := s.clock.Now()
	entity.UpdatedAt = now
	for i := range entity.Items {
		item := &entity.Items[i]
		if item.ID == 0 {
			item.ID = s.genID.Generate()
			item.CreatedAt = now
		}
		item.OrderID = entity.ID
		item.UpdatedAt = now
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.ReplaceItems(ctx, tx, entity.ID, entity.Items); err != nil {
			return err
		}
		return s.repo.Update(ctx, tx, entity)
	})
	if err != nil {
		return nil, err
	}
	return s.toResponse(entity), nil
}

func (s *Service) loadOrder(ctx context.Context, id string) (*orderdomain.Order, error) {
	orderID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, orderdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, orderID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, orderdomain.ErrNotFound
	}
	return entity, nil
}

// freshProduct always reads through to the database so quantity guards see
// live stock.
func (s *Service) freshProduct(ctx context.Context, id string) (*catalogdomain.Product, error) {
	productID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil {
		return nil, orderdomain.ErrProductNotFound
	}

	product, err := s.catalogRepo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, orderdomain.ErrProductNotFound
	}
	return product, nil
}

func (s *Service) toResponse(o *orderdomain.Order) *orderdomain.Response {
	items := make([]orderdomain.ItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderdomain.ItemResponse{
			ID:              item.ID.String(),
			ProductID:       item.ProductID.String(),
			Name:            item.Name,
			Quantity:        item.Quantity,
			UnitAmountCents: item.UnitAmountCents,
			LineTotalCents:  item.LineTotalCents,
			Wholesale:       item.Wholesale,
		})
	}
	return &orderdomain.Response{
		ID:              o.ID.String(),
		Number:          o.Number,
		Status:          o.Status,
		PaymentStatus:   o.PaymentStatus,
		PaymentMethod:   o.PaymentMethod,
		CustomerName:    o.CustomerName,
		CustomerPhone:   o.CustomerPhone,
		CustomerAddress: o.CustomerAddress,
		Items:           items,
		DiscountCents:   o.DiscountCents,
		ShippingCents:   o.ShippingCents,
		SubtotalCents:   o.SubtotalCents,
		TaxCents:        o.TaxCents,
		TotalCents:      o.TotalCents,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
	}
}
