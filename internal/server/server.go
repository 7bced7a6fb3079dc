package server

import (
	"context"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/stockroom/internal/blob"
	blobdomain "github.com/smallbiznis/stockroom/internal/blob/domain"
	"github.com/smallbiznis/stockroom/internal/catalog"
	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/observability"
	obslogger "github.com/smallbiznis/stockroom/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/stockroom/internal/observability/metrics"
	"github.com/smallbiznis/stockroom/internal/order"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/internal/providers"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var Module = fx.Module("http.server",
	catalog.Module,
	order.Module,
	blob.Module,
	providers.Module,
	fx.Provide(NewEngine),
	fx.Provide(NewServer),
	fx.Invoke(func(s *Server) {
		s.RegisterRoutes()
	}),
	fx.Invoke(RunHTTP),
)

func NewEngine(obsCfg observability.Config, log *zap.Logger, metrics *obsmetrics.Metrics, registry *prometheus.Registry) *gin.Engine {
	if !obsCfg.Debug() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(obslogger.GinMiddleware(log))
	r.Use(obsmetrics.GinMiddleware(metrics))
	r.Use(ErrorHandlingMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return r
}

type Server struct {
	engine     *gin.Engine
	cfg        config.Config
	db         *gorm.DB
	genID      *snowflake.Node
	catalogSvc catalogdomain.Service
	orderSvc   orderdomain.Service
	blobSvc    blobdomain.Service
}

type ServerParams struct {
	fx.In

	Gin        *gin.Engine
	Cfg        config.Config
	DB         *gorm.DB
	GenID      *snowflake.Node
	CatalogSvc catalogdomain.Service
	OrderSvc   orderdomain.Service
	BlobSvc    blobdomain.Service
}

func NewServer(p ServerParams) *Server {
	return &Server{
		engine:     p.Gin,
		cfg:        p.Cfg,
		db:         p.DB,
		genID:      p.GenID,
		catalogSvc: p.CatalogSvc,
		orderSvc:   p.OrderSvc,
		blobSvc:    p.BlobSvc,
	}
}

func (s *Server) RegisterRoutes() {
	api := s.engine.Group("/api/v1")

	products := api.Group("/products")
	products.POST("", s.CreateProduct)
	products.GET("", s.ListProducts)
	products.GET("/:id", s.GetProduct)
	products.POST("/:id/stock", s.AdjustProductStock)

	orders := api.Group("/orders")
	orders.POST("", s.CreateOrder)
	orders.GET("", s.ListOrders)
	orders.GET("/:id", s.GetOrder)
	orders.POST("/:id/items", s.AddOrderItem)
	orders.DELETE("/:id/items/:index", s.RemoveOrderItem)
	orders.PUT("/:id/items/:index", s.SetOrderItemQuantity)
	orders.PUT("/:id/discount", s.SetOrderDiscount)
	orders.PUT("/:id/shipping", s.SetOrderShipping)
	orders.POST("/:id/submit", s.SubmitOrder)
	orders.PUT("/:id/status", s.UpdateOrderStatus)
	orders.GET("/:id/receipt", s.OrderReceipt)

	attachments := api.Group("/attachments")
	attachments.PUT("/:key", s.SaveAttachment)
	attachments.POST("", s.SaveAttachment)
	attachments.GET("/:key", s.GetAttachment)
	attachments.DELETE("/:key", s.DeleteAttachment)
}

func RunHTTP(lc fx.Lifecycle, cfg config.Config, r *gin.Engine, log *zap.Logger) {
	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: r,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Named("http").Fatal("listen failed", zap.Error(err))
				}
			}()
			log.Named("http").Info("server started", zap.String("addr", cfg.HTTPAddr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	})
}
