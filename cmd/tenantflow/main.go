package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"

	"github.com/hudsor01/tenant-flow-sub006/internal/audit"
	"github.com/hudsor01/tenant-flow-sub006/internal/clock"
	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	"github.com/hudsor01/tenant-flow-sub006/internal/deadletter"
	"github.com/hudsor01/tenant-flow-sub006/internal/ledger"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability"
	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding"
	"github.com/hudsor01/tenant-flow-sub006/internal/payment"
	"github.com/hudsor01/tenant-flow-sub006/internal/reconcile"
	"github.com/hudsor01/tenant-flow-sub006/internal/seed"
	"github.com/hudsor01/tenant-flow-sub006/internal/server"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription"
	"github.com/hudsor01/tenant-flow-sub006/internal/tenancy"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook"
	"github.com/hudsor01/tenant-flow-sub006/pkg/db"
)

func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(registerSnowflake),
		db.Module,
		clock.Module,

		tenancy.Module,
		audit.Module,
		ledger.Module,
		payment.Module,
		subscription.Module,
		onboarding.Module,
		reconcile.Module,
		deadletter.Module,
		webhook.Module,

		seed.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server, engine *gin.Engine) {
			s.RegisterRoutes(engine)
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func registerSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
