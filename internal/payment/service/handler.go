package service

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/bwmarrin/snowflake"
	"github.com/stripe/stripe-go/v82"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	reconciledomain "github.com/hudsor01/tenant-flow-sub006/internal/reconcile/domain"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

// Handlers exposes the payment intent webhook handlers.
type Handlers struct {
	svc       domain.Service
	reconcile reconciledomain.Service
}

func NewHandlers(svc domain.Service, reconcile reconciledomain.Service) *Handlers {
	return &Handlers{svc: svc, reconcile: reconcile}
}

// Routes returns the event types this package handles.
func (h *Handlers) Routes() map[string]webhookdomain.Handler {
	return map[string]webhookdomain.Handler{
		"payment_intent.created":        h.handleCreated,
		"payment_intent.processing":     h.handleProcessing,
		"payment_intent.succeeded":      h.handleSucceeded,
		"payment_intent.payment_failed": h.handleFailed,
		"payment_intent.canceled":       h.handleCanceled,
	}
}

func (h *Handlers) handleCreated(ctx context.Context, event *webhookdomain.Event) error {
	intent, err := intentFrom(event)
	if err != nil {
		return err
	}
	_, err = h.svc.EnsureRecord(ctx, intent, domain.StatusRequiresPaymentMethod)
	return err
}

func (h *Handlers) handleProcessing(ctx context.Context, event *webhookdomain.Event) error {
	intent, err := intentFrom(event)
	if err != nil {
		return err
	}
	return h.svc.Transition(ctx, intent, domain.StatusProcessing)
}

// handleSucceeded advances the record to processing when the intermediate
// event was lost, then hands settlement to the reconciliation service.
func (h *Handlers) handleSucceeded(ctx context.Context, event *webhookdomain.Event) error {
	intent, err := intentFrom(event)
	if err != nil {
		return err
	}
	record, err := h.svc.EnsureRecord(ctx, intent, domain.StatusProcessing)
	if err != nil {
		return err
	}
	if record.Status == domain.StatusRequiresPaymentMethod ||
		record.Status == domain.StatusRequiresConfirmation {
		if err := h.svc.Transition(ctx, intent, domain.StatusProcessing); err != nil {
			return err
		}
	}
	return h.reconcile.Settle(ctx, reconciledomain.SettleRequest{
		ExternalPaymentID:        intent.ExternalPaymentID,
		AttributedAccount:        intent.AttributedAccount,
		ObservedAmount:           intent.Amount,
		Currency:                 intent.Currency,
		DeclaredLandlordReceives: intent.DeclaredLandlordReceives,
		SettledAt:                event.OccurredAt,
	})
}

func (h *Handlers) handleFailed(ctx context.Context, event *webhookdomain.Event) error {
	intent, err := intentFrom(event)
	if err != nil {
		return err
	}
	return h.svc.Transition(ctx, intent, domain.StatusFailed)
}

func (h *Handlers) handleCanceled(ctx context.Context, event *webhookdomain.Event) error {
	intent, err := intentFrom(event)
	if err != nil {
		return err
	}
	return h.svc.Transition(ctx, intent, domain.StatusCanceled)
}

// intentFrom normalizes the processor's payment intent object. Lease and
// tenant references travel in the intent metadata set by the creating
// request; the platform never derives them from processor-owned fields.
func intentFrom(event *webhookdomain.Event) (domain.Intent, error) {
	ectx := errmap.Context{
		ResourceType: "payment_record",
		Operation:    "payment.parse",
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(event.Raw, &pi); err != nil {
		return domain.Intent{}, errmap.Classify(err, ectx)
	}
	if pi.ID == "" {
		return domain.Intent{}, errmap.Newf(errmap.KindTransientFailure, ectx,
			"payment event %s has no intent id", event.ExternalEventID)
	}

	intent := domain.Intent{
		ExternalPaymentID: pi.ID,
		Amount:            pi.Amount,
		Currency:          string(pi.Currency),
		PaymentType:       domain.PaymentType(pi.Metadata["payment_type"]),
		AttributedAccount: event.Account,
	}
	if intent.PaymentType == "" {
		intent.PaymentType = domain.TypeOneTime
	}
	if pi.TransferData != nil && pi.TransferData.Destination != nil {
		intent.AttributedAccount = pi.TransferData.Destination.ID
	} else if pi.OnBehalfOf != nil {
		intent.AttributedAccount = pi.OnBehalfOf.ID
	}

	if raw, ok := pi.Metadata["lease_id"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Intent{}, errmap.Newf(errmap.KindTransientFailure, ectx,
				"payment %s has malformed lease_id %q", pi.ID, raw)
		}
		intent.LeaseID = snowflake.ID(id)
	}
	if raw, ok := pi.Metadata["tenant_id"]; ok {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return domain.Intent{}, errmap.Newf(errmap.KindTransientFailure, ectx,
				"payment %s has malformed tenant_id %q", pi.ID, raw)
		}
		intent.TenantID = snowflake.ID(id)
	}
	if raw, ok := pi.Metadata["processor_fee"]; ok {
		if fee, err := strconv.ParseInt(raw, 10, 64); err == nil {
			intent.ProcessorFee = fee
		}
	}
	if raw, ok := pi.Metadata["landlord_receives"]; ok {
		if amount, err := strconv.ParseInt(raw, 10, 64); err == nil {
			intent.DeclaredLandlordReceives = &amount
		}
	}
	return intent, nil
}
