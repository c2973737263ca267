package payment

import (
	"go.uber.org/fx"

	"github.com/hudsor01/tenant-flow-sub006/internal/payment/repository"
	"github.com/hudsor01/tenant-flow-sub006/internal/payment/service"
)

var Module = fx.Module("payment.service",
	fx.Provide(
		repository.Provide,
		service.New,
		service.NewHandlers,
	),
)
