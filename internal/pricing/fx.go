package pricing

import (
	"github.com/smallbiznis/stockroom/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("pricing",
	fx.Provide(func(cfg config.Config) *Engine {
		return New(cfg.TaxRate)
	}),
)
