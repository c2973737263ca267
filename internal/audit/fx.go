package audit

import (
	"github.com/hudsor01/tenant-flow-sub006/internal/audit/service"
	"go.uber.org/fx"
)

var Module = fx.Module("audit.service",
	fx.Provide(service.NewService),
)
