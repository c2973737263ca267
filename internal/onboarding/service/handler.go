package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/stripe/stripe-go/v82"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

// Handlers exposes the account verification webhook handlers.
type Handlers struct {
	svc domain.Service
}

func NewHandlers(svc domain.Service) *Handlers {
	return &Handlers{svc: svc}
}

// Routes returns the event types this package handles.
func (h *Handlers) Routes() map[string]webhookdomain.Handler {
	return map[string]webhookdomain.Handler{
		"account.updated": h.handleAccountUpdated,
	}
}

func (h *Handlers) handleAccountUpdated(ctx context.Context, event *webhookdomain.Event) error {
	var account stripe.Account
	if err := json.Unmarshal(event.Raw, &account); err != nil {
		return errmap.Classify(err, errmap.Context{
			ResourceType: "onboarding_record",
			Operation:    "onboarding.parse",
		})
	}
	if account.ID == "" {
		return errmap.Newf(errmap.KindTransientFailure, errmap.Context{
			ResourceType: "onboarding_record",
			Operation:    "onboarding.parse",
		}, "account event %s has no account id", event.ExternalEventID)
	}

	snap := domain.Snapshot{
		ExternalAccountID: account.ID,
		ChargesEnabled:    account.ChargesEnabled,
		PayoutsEnabled:    account.PayoutsEnabled,
		BusinessType:      string(account.BusinessType),
		Country:           account.Country,
	}
	if account.Requirements != nil {
		snap.RequirementsDue = account.Requirements.CurrentlyDue
		snap.DisabledReason = string(account.Requirements.DisabledReason)
	}
	if raw, ok := account.Metadata["landlord_id"]; ok {
		if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
			snap.OwnerID = snowflake.ID(id)
		}
	}

	_, err := h.svc.Apply(ctx, snap)
	return err
}
