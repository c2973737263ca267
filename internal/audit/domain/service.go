package domain

import "context"

// Service records immutable audit rows. Metadata is masked by the caller
// before it reaches this interface; the audit table must never hold secrets
// or payment-method details.
type Service interface {
	Record(ctx context.Context, actorType ActorType, actorID string, action string, targetType string, targetID string, metadata map[string]any) error
}
