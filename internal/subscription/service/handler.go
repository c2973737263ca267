package service

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/bwmarrin/snowflake"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

// subscriptionPayload is the slice of the processor's subscription object we
// consume. Parsed directly from the event body so the snapshot is always the
// full state the processor sent, independent of SDK struct churn.
type subscriptionPayload struct {
	ID                 string            `json:"id"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	CancelAtPeriodEnd  bool              `json:"cancel_at_period_end"`
	Metadata           map[string]string `json:"metadata"`
}

// Handlers exposes the subscription lifecycle webhook handlers.
type Handlers struct {
	svc domain.Service
}

func NewHandlers(svc domain.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Routes returns the event types this package handles.
func (h *Handlers) Routes() map[string]webhookdomain.Handler {
	return map[string]webhookdomain.Handler{
		"customer.subscription.created": h.handleLifecycle,
		"customer.subscription.updated": h.handleLifecycle,
		"customer.subscription.deleted": h.handleDeleted,
	}
}

func (h *Handlers) handleLifecycle(ctx context.Context, event *webhookdomain.Event) error {
	snap, err := h.snapshotFrom(event)
	if err != nil {
		return err
	}
	_, err = h.svc.Apply(ctx, snap)
	return err
}

// handleDeleted forces terminal status regardless of what the payload says:
// a deleted subscription is canceled even when the final snapshot still
// carries an earlier status string.
func (h *Handlers) handleDeleted(ctx context.Context, event *webhookdomain.Event) error {
	snap, err := h.snapshotFrom(event)
	if err != nil {
		return err
	}
	snap.Status = domain.StatusCanceled
	_, err = h.svc.Apply(ctx, snap)
	return err
}

func (h *Handlers) snapshotFrom(event *webhookdomain.Event) (domain.Snapshot, error) {
	var payload subscriptionPayload
	if err := json.Unmarshal(event.Raw, &payload); err != nil {
		return domain.Snapshot{}, errmap.Classify(err, errmap.Context{
			ResourceType: "subscription_record",
			Operation:    "subscription.parse",
		})
	}
	if payload.ID == "" {
		return domain.Snapshot{}, errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			ResourceType: "subscription_record",
			Operation:    "subscription.parse",
		}, "subscription event %s has no subscription id", event.ExternalEventID)
	}

	snap := domain.Snapshot{
		ExternalSubscriptionID: payload.ID,
		Status:                 mapStatus(payload.Status, payload.CancelAtPeriodEnd),
		CancelAtPeriodEnd:      payload.CancelAtPeriodEnd,
	}
	if payload.CurrentPeriodStart > 0 {
		snap.CurrentPeriodStart = time.Unix(payload.CurrentPeriodStart, 0).UTC()
	}
	if payload.CurrentPeriodEnd > 0 {
		snap.CurrentPeriodEnd = time.Unix(payload.CurrentPeriodEnd, 0).UTC()
	}
	if raw, ok := payload.Metadata["landlord_id"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			snap.OwnerID = snowflake.ID(id)
		}
	}
	return snap, nil
}

// mapStatus folds the processor's status vocabulary into ours. A still-active
// subscription scheduled to cancel is its own state so the scheduled cancel
// is visible without reading the flag.
func mapStatus(status string, cancelAtPeriodEnd bool) domain.SubscriptionStatus {
	switch status {
	case "incomplete":
		return domain.StatusIncomplete
	case "incomplete_expired":
		return domain.StatusIncompleteExpired
	case "trialing", "active":
		if cancelAtPeriodEnd {
			return domain.StatusCanceledAtPeriodEnd
		}
		return domain.StatusActive
	case "past_due", "unpaid":
		return domain.StatusPastDue
	case "canceled":
		return domain.StatusCanceled
	default:
		return domain.SubscriptionStatus(status)
	}
}
