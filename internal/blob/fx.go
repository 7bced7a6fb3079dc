package blob

import (
	"github.com/smallbiznis/stockroom/internal/blob/service"
	"github.com/smallbiznis/stockroom/internal/docstore"
	"go.uber.org/fx"
)

var Module = fx.Module("blob.service",
	docstore.Module,
	fx.Provide(service.New),
)
