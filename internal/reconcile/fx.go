package reconcile

import (
	"go.uber.org/fx"

	"github.com/hudsor01/tenant-flow-sub006/internal/reconcile/service"
)

var Module = fx.Module("reconcile.service",
	fx.Provide(service.New),
)
