package tenancy

import (
	"github.com/hudsor01/tenant-flow-sub006/internal/tenancy/repository"
	"go.uber.org/fx"
)

var Module = fx.Module("tenancy",
	fx.Provide(repository.Provide),
)
