package webhook

import (
	"go.uber.org/fx"

	deadletterdomain "github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	onboardingservice "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/service"
	paymentservice "github.com/hudsor01/tenant-flow-sub006/internal/payment/service"
	subscriptionservice "github.com/hudsor01/tenant-flow-sub006/internal/subscription/service"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook/repository"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook/service"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook/verifier"
)

var Module = fx.Module("webhook.service",
	fx.Provide(
		repository.Provide,
		verifier.Provide,
		BuildRegistry,
		service.New,
		func(p *service.Pipeline) domain.Service { return p },
		func(p *service.Pipeline) deadletterdomain.Replayer { return p },
	),
)

// BuildRegistry assembles the routing table from every handler set. Built
// once at startup; the registry itself is immutable.
func BuildRegistry(
	payments *paymentservice.Handlers,
	subscriptions *subscriptionservice.Handlers,
	onboarding *onboardingservice.Handlers,
) *domain.Registry {
	routes := make(map[string]domain.Handler)
	for _, set := range []map[string]domain.Handler{
		payments.Routes(),
		subscriptions.Routes(),
		onboarding.Routes(),
	} {
		for eventType, handler := range set {
			routes[eventType] = handler
		}
	}
	return domain.NewRegistry(routes)
}
