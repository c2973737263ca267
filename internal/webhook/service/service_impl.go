package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/stripe/stripe-go/v82"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/hudsor01/tenant-flow-sub006/internal/clock"
	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	deadletterdomain "github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	obscontext "github.com/hudsor01/tenant-flow-sub006/internal/observability/context"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/logger"
	"github.com/hudsor01/tenant-flow-sub006/internal/observability/metrics"
	"github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

type Pipeline struct {
	repo        domain.Repository
	verifier    domain.Verifier
	registry    *domain.Registry
	deadLetter  deadletterdomain.Sink
	clock       clock.Clock
	genID       *snowflake.Node
	metrics     *metrics.WebhookMetrics
	maxAttempts int
	backoffBase time.Duration
}

// Params for fx injection.
type Params struct {
	fx.In

	Cfg        config.Config
	Repo       domain.Repository
	Verifier   domain.Verifier
	Registry   *domain.Registry
	DeadLetter deadletterdomain.Sink
	Clock      clock.Clock
	GenID      *snowflake.Node
	Metrics    *metrics.WebhookMetrics `optional:"true"`
}

// New creates the webhook ingest pipeline.
func New(p Params) *Pipeline {
	maxAttempts := p.Cfg.RetryAttempts
	if maxAttempts < 1 {
		maxAttempts = 3
	}
	return &Pipeline{
		repo:        p.Repo,
		verifier:    p.Verifier,
		registry:    p.Registry,
		deadLetter:  p.DeadLetter,
		clock:       p.Clock,
		genID:       p.GenID,
		metrics:     p.Metrics,
		maxAttempts: maxAttempts,
		backoffBase: p.Cfg.RetryBackoffBase,
	}
}

// IngestWebhook runs the full pipeline: verify, admit, route, process. A
// signature failure returns before anything is recorded; everything after
// admission is classified and either retried, dead-lettered, or acked.
func (s *Pipeline) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	event, err := s.verifier.Verify(ctx, payload, headers)
	if err != nil {
		return err
	}
	ctx = obscontext.WithEventID(ctx, event.ExternalEventID)
	log := logger.FromContext(ctx).With(
		zap.String("external_event_id", event.ExternalEventID),
		zap.String("event_type", event.Type),
	)
	s.metrics.EventReceived(event.Type)

	row, admit, err := s.admit(ctx, event, payload)
	if err != nil {
		return errmap.Classify(err, errmap.Context{
			ResourceType: "inbound_event",
			ResourceID:   event.ExternalEventID,
			Operation:    "webhook.admit",
		})
	}
	if admit == domain.AlreadyProcessed {
		s.metrics.EventDuplicate()
		log.Info("duplicate event acknowledged")
		return nil
	}
	if admit == domain.AlreadySeenUnprocessed {
		log.Info("re-running event from crashed attempt")
	}

	return s.process(ctx, log, row, event)
}

// admit is the idempotency gate. The insert-or-conflict on the external
// event id is the sole serialization point for concurrent deliveries.
func (s *Pipeline) admit(ctx context.Context, event *domain.Event, payload []byte) (*domain.InboundEvent, domain.AdmitResult, error) {
	row := &domain.InboundEvent{
		ID:              s.genID.Generate(),
		ExternalEventID: event.ExternalEventID,
		EventType:       event.Type,
		ReceivedAt:      s.clock.Now(),
		Payload:         datatypes.JSON(payload),
	}
	inserted, err := s.repo.InsertEvent(ctx, nil, row)
	if err != nil {
		return nil, domain.Admitted, err
	}
	if inserted {
		return row, domain.Admitted, nil
	}

	existing, err := s.repo.FindByExternalID(ctx, nil, event.ExternalEventID)
	if err != nil {
		return nil, domain.Admitted, err
	}
	if existing == nil {
		// Insert conflicted but the row is not visible yet; treat as a
		// transient race and let the sender redeliver.
		return nil, domain.Admitted, errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			ResourceType: "inbound_event",
			ResourceID:   event.ExternalEventID,
			Operation:    "webhook.admit",
		}, "admitted row not readable for %s", event.ExternalEventID)
	}
	if existing.Processed {
		return existing, domain.AlreadyProcessed, nil
	}
	return existing, domain.AlreadySeenUnprocessed, nil
}

// process routes the event and runs its handler under a bounded number of
// internal attempts. The sender's own redelivery is independent of it.
func (s *Pipeline) process(ctx context.Context, log *zap.Logger, row *domain.InboundEvent, event *domain.Event) error {
	handler, ok := s.registry.Lookup(event.Type)
	if !ok {
		// Unknown types are acknowledged, logged, and counted; a new event
		// type must never break ingestion.
		s.metrics.EventUnknownType(event.Type)
		log.Warn("no handler registered for event type")
		if err := s.repo.MarkProcessed(ctx, nil, row.ID, s.clock.Now()); err != nil {
			return errmap.Classify(err, errmap.Context{
				ResourceType: "inbound_event",
				ResourceID:   event.ExternalEventID,
				Operation:    "webhook.ack_unknown",
			})
		}
		return nil
	}

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		lastErr = handler(ctx, event)
		if lastErr == nil {
			if err := s.repo.MarkProcessed(ctx, nil, row.ID, s.clock.Now()); err != nil {
				return errmap.Classify(err, errmap.Context{
					ResourceType: "inbound_event",
					ResourceID:   event.ExternalEventID,
					Operation:    "webhook.mark_processed",
				})
			}
			s.metrics.EventProcessed(event.Type, "success")
			log.Info("event processed", zap.Int("attempts", attempt))
			return nil
		}

		kind := errmap.KindOf(lastErr)
		if err := s.repo.AppendProcessingError(ctx, nil, row.ID, lastErr.Error()); err != nil {
			log.Error("failed to record processing error", zap.Error(err))
		}
		if !errmap.Retryable(kind) {
			break
		}
		if attempt < s.maxAttempts {
			s.metrics.RetryAttempt()
			log.Warn("retrying event",
				zap.Int("attempt", attempt),
				zap.String("kind", string(kind)),
				zap.Error(lastErr),
			)
			if err := sleep(ctx, backoffDelay(s.backoffBase, attempt)); err != nil {
				lastErr = err
				break
			}
		}
	}

	kind := errmap.KindOf(lastErr)
	if err := s.deadLetter.Capture(ctx, deadletterdomain.Entry{
		ExternalEventID: event.ExternalEventID,
		EventType:       event.Type,
		Kind:            string(kind),
		Reason:          lastErr.Error(),
		Payload:         row.Payload,
		Replayable:      errmap.Retryable(kind),
	}); err != nil {
		log.Error("dead-letter capture failed", zap.Error(err))
	}
	s.metrics.EventProcessed(event.Type, "dead_letter")
	return errmap.Classify(lastErr, errmap.Context{
		ResourceType: "inbound_event",
		ResourceID:   event.ExternalEventID,
		Operation:    "webhook.process",
	})
}

// Replay re-runs a previously admitted event by external id, used by the
// dead-letter worker. Processing is idempotent, so a replay racing a live
// redelivery converges on the same state.
func (s *Pipeline) Replay(ctx context.Context, externalEventID string) error {
	row, err := s.repo.FindByExternalID(ctx, nil, externalEventID)
	if err != nil {
		return errmap.Classify(err, errmap.Context{
			ResourceType: "inbound_event",
			ResourceID:   externalEventID,
			Operation:    "webhook.replay",
		})
	}
	if row == nil {
		return errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			ResourceType: "inbound_event",
			ResourceID:   externalEventID,
			Operation:    "webhook.replay",
		}, "no admitted event %s to replay", externalEventID)
	}
	if row.Processed {
		return nil
	}

	event, err := eventFromRow(row)
	if err != nil {
		return err
	}
	ctx = obscontext.WithEventID(ctx, externalEventID)
	log := logger.FromContext(ctx).With(
		zap.String("external_event_id", externalEventID),
		zap.String("event_type", row.EventType),
	)
	return s.process(ctx, log, row, event)
}

// eventFromRow rebuilds the handler envelope from the stored raw payload.
func eventFromRow(row *domain.InboundEvent) (*domain.Event, error) {
	var envelope stripe.Event
	if err := json.Unmarshal(row.Payload, &envelope); err != nil {
		return nil, errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			ResourceType: "inbound_event",
			ResourceID:   row.ExternalEventID,
			Operation:    "webhook.replay",
		}, "stored payload for %s does not parse: %v", row.ExternalEventID, err)
	}
	occurredAt := row.ReceivedAt
	if envelope.Created > 0 {
		occurredAt = time.Unix(envelope.Created, 0).UTC()
	}
	raw := []byte(row.Payload)
	if envelope.Data != nil && len(envelope.Data.Raw) > 0 {
		raw = envelope.Data.Raw
	}
	return &domain.Event{
		ExternalEventID: row.ExternalEventID,
		Type:            row.EventType,
		Account:         envelope.Account,
		OccurredAt:      occurredAt,
		Raw:             raw,
	}, nil
}
