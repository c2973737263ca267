package subscription

import (
	"go.uber.org/fx"

	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/repository"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/service"
)

var Module = fx.Module("subscription.service",
	fx.Provide(
		repository.New,
		service.New,
		service.NewHandlers,
	),
)
