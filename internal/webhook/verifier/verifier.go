// Package verifier authenticates inbound processor events. Verification is
// the sole authentication mechanism for the webhook endpoint.
package verifier

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/fx"
)

// SignatureHeader carries the processor's signed timestamp and digests.
const SignatureHeader = "Stripe-Signature"

type Params struct {
	fx.In

	Cfg config.Config
}

type Verifier struct {
	secret    string
	tolerance time.Duration
}

func Provide(p Params) webhookdomain.Verifier {
	return New(p.Cfg.WebhookSigningSecret, p.Cfg.WebhookTolerance)
}

func New(secret string, tolerance time.Duration) *Verifier {
	if tolerance <= 0 {
		tolerance = 5 * time.Minute
	}
	return &Verifier{secret: strings.TrimSpace(secret), tolerance: tolerance}
}

// Verify checks the signature over the exact raw bytes received, enforces
// the timestamp tolerance window, and returns the normalized event
// envelope. Every failure classifies as a signature rejection: the request
// is not trusted, so nothing about it is recorded.
func (v *Verifier) Verify(ctx context.Context, payload []byte, headers http.Header) (*webhookdomain.Event, error) {
	ectx := errmap.Context{Operation: "verify_signature", ResourceType: "inbound_event"}

	if v.secret == "" {
		return nil, errmap.Newf(errmap.KindTransientFailure, ectx, "webhook signing secret not configured")
	}
	sigHeader := strings.TrimSpace(headers.Get(SignatureHeader))
	if sigHeader == "" {
		return nil, errmap.Newf(errmap.KindSignatureInvalid, ectx, "missing signature header")
	}

	event, err := webhook.ConstructEventWithTolerance(payload, sigHeader, v.secret, v.tolerance)
	if err != nil {
		return nil, errmap.New(errmap.KindSignatureInvalid, ectx, err)
	}

	externalID := strings.TrimSpace(event.ID)
	eventType := strings.TrimSpace(string(event.Type))
	if externalID == "" || eventType == "" {
		return nil, errmap.Newf(errmap.KindSignatureInvalid, ectx, "verified payload missing event id or type")
	}

	occurredAt := time.Unix(event.Created, 0).UTC()
	return &webhookdomain.Event{
		ExternalEventID: externalID,
		Type:            eventType,
		Account:         event.Account,
		OccurredAt:      occurredAt,
		Raw:             event.Data.Raw,
	}, nil
}
