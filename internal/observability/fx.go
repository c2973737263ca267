package observability

import (
	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/metrics"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/tracing"
	"go.opentelemetry.io/otel"
	"go.uber.org/fx"
)

var Module = fx.Module("observability",
	logger.Module,
	fx.Provide(func(cfg config.Config) tracing.Config {
		return tracing.Config{
			Enabled:          cfg.TracingEnabled,
			ServiceName:      cfg.ServiceName,
			ServiceVersion:   cfg.ServiceVersion,
			Environment:      cfg.Environment,
			ExporterEndpoint: cfg.TracingExporterEndpoint,
			ExporterProtocol: cfg.TracingExporterProtocol,
			SamplingRatio:    cfg.TracingSamplingRatio,
		}
	}),
	fx.Invoke(tracing.NewProvider),
	fx.Provide(func(cfg config.Config) metrics.Config {
		return metrics.Config{
			ServiceName: cfg.ServiceName,
			Environment: cfg.Environment,
		}
	}),
	fx.Provide(func(cfg metrics.Config) (*metrics.HTTPMetrics, error) {
		return metrics.NewHTTPMetrics(cfg, otel.GetMeterProvider())
	}),
	fx.Provide(metrics.WebhookWithConfig),
)
