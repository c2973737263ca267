package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/metrics"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/tracing"
	onboardingdomain "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	paymentdomain "github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	subscriptiondomain "github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

// Server holds the HTTP surface: the webhook endpoint plus read-only record
// lookups for operators and dashboards.
type Server struct {
	cfg           config.Config
	db            *gorm.DB
	log           *zap.Logger
	webhooks      webhookdomain.Service
	payments      paymentdomain.Service
	subscriptions subscriptiondomain.Service
	onboarding    onboardingdomain.Service
	limiter       *rateLimiter
}

// Params for fx injection.
type Params struct {
	fx.In

	Cfg           config.Config
	DB            *gorm.DB
	Log           *zap.Logger
	Webhooks      webhookdomain.Service
	Payments      paymentdomain.Service
	Subscriptions subscriptiondomain.Service
	Onboarding    onboardingdomain.Service
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:           p.Cfg,
		db:            p.DB,
		log:           p.Log.Named("server"),
		webhooks:      p.Webhooks,
		payments:      p.Payments,
		subscriptions: p.Subscriptions,
		onboarding:    p.Onboarding,
		limiter:       newRateLimiter(p.Cfg.WebhookRateLimit, p.Cfg.WebhookRateWindow),
	}
}

func NewEngine(cfg config.Config, httpMetrics *metrics.HTTPMetrics) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(tracing.GinMiddleware(cfg.ServiceName))
	engine.Use(logger.GinMiddleware(logger.MiddlewareConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	engine.Use(metrics.GinMiddleware(httpMetrics))
	return engine
}

// RegisterRoutes wires the webhook endpoint and the read-only lookups.
func (s *Server) RegisterRoutes(engine *gin.Engine) {
	engine.POST("/webhooks/payments", s.HandleWebhook)

	engine.GET("/payments/:external_id", s.GetPayment)
	engine.GET("/subscriptions/:external_id", s.GetSubscription)
	engine.GET("/onboarding/:external_id", s.GetOnboarding)

	engine.GET("/healthz", s.Healthz)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// RunHTTP starts the listener under the fx lifecycle with graceful
// shutdown.
func RunHTTP(lc fx.Lifecycle, engine *gin.Engine, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
