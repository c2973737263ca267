package ledger

import (
	"github.com/hudsor01/tenant-flow-sub006/internal/ledger/service"
	"go.uber.org/fx"
)

var Module = fx.Module("ledger.service",
	fx.Provide(service.NewService),
)
