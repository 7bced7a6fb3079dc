package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/internal/clock"
	"github.com/smallbiznis/stockroom/pkg/db"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  catalogdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  catalogdomain.Repository
}

func New(p Params) catalogdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("catalog.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Create(ctx context.Context, req catalogdomain.CreateRequest) (*catalogdomain.Response, error) {
	sku := strings.TrimSpace(req.SKU)
	if sku == "" {
		return nil, catalogdomain.ErrInvalidSKU
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, catalogdomain.ErrInvalidName
	}
	if req.Stock < 0 {
		return nil, catalogdomain.ErrInvalidStock
	}
	if req.RetailAmountCents < 0 {
		return nil, catalogdomain.ErrInvalidRetailPrice
	}
	if (req.WholesaleAmountCents == nil) != (req.WholesaleMinQty == nil) {
		return nil, catalogdomain.ErrInvalidWholesale
	}
	if req.WholesaleMinQty != nil {
		// The wholesale threshold must sit above the retail tier's
		// MinQuantity of 1, and the price may not be negative.
		if *req.WholesaleMinQty <= 1 || *req.WholesaleAmountCents < 0 {
			return nil, catalogdomain.ErrInvalidWholesale
		}
	}

	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	now := s.clock.Now()
	entity := &catalogdomain.Product{
		ID:          s.genID.Generate(),
		Slug:        slug.Make(name),
		SKU:         sku,
		Name:        name,
		Description: req.Description,
		Unit:        unit,
		Stock:       req.Stock,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if req.Metadata != nil {
		entity.Metadata = datatypes.JSONMap(req.Metadata)
	}

	entity.Tiers = []catalogdomain.PriceTier{{
		ID:              s.genID.Generate(),
		ProductID:       entity.ID,
		Kind:            catalogdomain.TierKindRetail,
		MinQuantity:     1,
		UnitAmountCents: req.RetailAmountCents,
		CreatedAt:       now,
		UpdatedAt:       now,
	}}
	if req.WholesaleMinQty != nil {
		entity.Tiers = append(entity.Tiers, catalogdomain.PriceTier{
			ID:              s.genID.Generate(),
			ProductID:       entity.ID,
			Kind:            catalogdomain.TierKindWholesale,
			MinQuantity:     *req.WholesaleMinQty,
			UnitAmountCents: *req.WholesaleAmountCents,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}

	if err := s.repo.Insert(ctx, s.db, entity); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return nil, catalogdomain.ErrSKUExists
		}
		return nil, err
	}

	s.log.Info("product created",
		zap.String("product_id", entity.ID.String()),
		zap.String("sku", entity.SKU),
	)
	return s.toResponse(entity), nil
}

func (s *Service) List(ctx context.Context, req catalogdomain.ListRequest) (catalogdomain.ListResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 50
	}

	items, err := s.repo.FindAll(ctx, s.db, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return catalogdomain.ListResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(items, pageSize, func(p *catalogdomain.Product) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        p.ID.String(),
			CreatedAt: p.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo.HasMore && len(items) > int(pageSize) {
		items = items[:pageSize]
	}

	resp := catalogdomain.ListResponse{PageInfo: *pageInfo}
	resp.Products = make([]catalogdomain.Response, 0, len(items))
	for i := range items {
		resp.Products = append(resp.Products, *s.toResponse(items[i]))
	}
	return resp, nil
}

func (s *Service) Get(ctx context.Context, id string) (*catalogdomain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalogdomain.ErrNotFound
	}
	return s.toResponse(entity), nil
}

func (s *Service) AdjustStock(ctx context.Context, id string, delta int64) (*catalogdomain.Response, error) {
	productID, err := parseID(id)
	if err != nil {
		return nil, catalogdomain.ErrInvalidID
	}

	entity, err := s.repo.FindByID(ctx, s.db, productID)
	if err != nil {
		return nil, err
	}
	if entity == nil {
		return nil, catalogdomain.ErrNotFound
	}
	if entity.Stock+delta < 0 {
		return nil, catalogdomain.ErrInvalidStock
	}

	entity.Stock += delta
	entity.UpdatedAt = s.clock.Now()
	if err := s.repo.Update(ctx, s.db, entity); err != nil {
		return nil, err
	}
	return s.toResponse(entity), nil
}

func (s *Service) toResponse(p *catalogdomain.Product) *catalogdomain.Response {
	tiers := make([]catalogdomain.TierResponse, 0, len(p.Tiers))
	for _, t := range p.Tiers {
		tiers = append(tiers, catalogdomain.TierResponse{
			Kind:            t.Kind,
			MinQuantity:     t.MinQuantity,
			UnitAmountCents: t.UnitAmountCents,
		})
	}
	return &catalogdomain.Response{
		ID:          p.ID.String(),
		Slug:        p.Slug,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		Stock:       p.Stock,
		Active:      p.Active,
		Tiers:       tiers,
		Metadata:    p.Metadata,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func parseID(value string) (snowflake.ID, error) {
	return snowflake.ParseString(strings.TrimSpace(value))
}
