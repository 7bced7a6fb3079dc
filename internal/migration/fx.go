package migration

import (
	"strings"

	catalogdomain "github.com/smallbiznis/stockroom/internal/catalog/domain"
	"github.com/smallbiznis/stockroom/internal/config"
	"github.com/smallbiznis/stockroom/internal/docstore"
	orderdomain "github.com/smallbiznis/stockroom/internal/order/domain"
	"github.com/smallbiznis/stockroom/internal/seed"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("migrations",
	fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
		if strings.EqualFold(conn.Dialector.Name(), "postgres") {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := RunMigrations(sqlDB); err != nil {
				return err
			}
		} else {
			// Non-postgres deployments (local sqlite, mysql) fall back to
			// gorm's schema sync.
			err := conn.AutoMigrate(
				&catalogdomain.Product{},
				&catalogdomain.PriceTier{},
				&orderdomain.Order{},
				&orderdomain.LineItem{},
				&docstore.Meta{},
				&docstore.ChunkDoc{},
			)
			if err != nil {
				return err
			}
		}

		if cfg.SeedDemoData {
			return seed.EnsureDemoProducts(conn)
		}
		return nil
	}),
)
