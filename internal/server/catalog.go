package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/pkg/db/pagination"
)

type createProductRequest struct {
	SKU                  string         `json:"sku"`
	Name                 string         `json:"name"`
	Description          *string        `json:"description"`
	Unit                 string         `json:"unit"`
	Stock                int64          `json:"stock"`
	RetailAmountCents    int64          `json:"retail_amount_cents"`
	WholesaleAmountCents *int64         `json:"wholesale_amount_cents"`
	WholesaleMinQty      *int64         `json:"wholesale_min_qty"`
	Metadata             map[string]any `json:"metadata"`
}

func (s *Server) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.Create(c.Request.Context(), catalogdomain.CreateRequest{
		SKU:                  strings.TrimSpace(req.SKU),
		Name:                 strings.TrimSpace(req.Name),
		Description:          req.Description,
		Unit:                 strings.TrimSpace(req.Unit),
		Stock:                req.Stock,
		RetailAmountCents:    req.RetailAmountCents,
		WholesaleAmountCents: req.WholesaleAmountCents,
		WholesaleMinQty:      req.WholesaleMinQty,
		Metadata:             req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProducts(c *gin.Context) {
	var query struct {
		pagination.Pagination
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.List(c.Request.Context(), catalogdomain.ListRequest{
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProduct(c *gin.Context) {
	resp, err := s.catalogSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type adjustStockRequest struct {
	Delta int64 `json:"delta"`
}

func (s *Server) AdjustProductStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.catalogSvc.AdjustStock(c.Request.Context(), c.Param("id"), req.Delta)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func isCatalogValidationError(err error) bool {
	switch err {
	case catalogdomain.ErrInvalidSKU,
		catalogdomain.ErrInvalidName,
		catalogdomain.ErrInvalidStock,
		catalogdomain.ErrInvalidRetailPrice,
		catalogdomain.ErrInvalidWholesale,
		catalogdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}
