package deadletter

import (
	"context"

	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	"github.com/hudsor01/tenant-flow-sub006/internal/deadletter/service"
	"github.com/hudsor01/tenant-flow-sub006/internal/deadletter/worker"
	"go.uber.org/fx"
)

var Module = fx.Module("deadletter",
	fx.Provide(service.NewService),
	fx.Provide(func(cfg config.Config) worker.Config {
		return worker.Config{
			BatchSize:    cfg.DeadLetterBatchSize,
			PollInterval: cfg.DeadLetterPollInterval,
		}
	}),
	fx.Provide(worker.NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, w *worker.Worker) {
	runCtx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go w.RunForever(runCtx)
			return nil
		},
		OnStop: func(context.Context) error {
			cancel()
			return nil
		},
	})
}
