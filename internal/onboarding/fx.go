package onboarding

import (
	"go.uber.org/fx"

	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding/repository"
	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding/service"
)

var Module = fx.Module("onboarding.service",
	fx.Provide(
		repository.New,
		service.New,
		service.NewHandlers,
	),
)
