// Package errmap translates low-level storage and SDK failures into the
// closed domain error taxonomy. Raw driver errors never cross the domain
// boundary; every handler branches on a Kind.
package errmap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Kind is the closed set of domain error classifications.
type Kind string

const (
	KindSignatureInvalid   Kind = "signature_invalid"
	KindDuplicateEvent     Kind = "duplicate_event"
	KindUnknownEventType   Kind = "unknown_event_type"
	KindIllegalTransition  Kind = "illegal_transition"
	KindOwnershipViolation Kind = "ownership_violation"
	KindAmountMismatch     Kind = "amount_mismatch"
	KindDatabaseConflict   Kind = "database_conflict"
	KindTransientFailure   Kind = "transient_failure"
)

// Context carries structured fields describing where a failure happened.
// Values here are logged; callers must not place secrets or payment-method
// details in it.
type Context struct {
	ResourceType string
	ResourceID   string
	Operation    string
	Actor        string
}

// DomainError is a classified failure with structured context.
type DomainError struct {
	Kind    Kind
	Context Context
	Err     error
}

func (e *DomainError) Error() string {
	if e == nil {
		return ""
	}
	msg := string(e.Kind)
	if e.Context.Operation != "" {
		msg += " op=" + e.Context.Operation
	}
	if e.Context.ResourceType != "" {
		msg += " resource=" + e.Context.ResourceType
		if e.Context.ResourceID != "" {
			msg += "/" + e.Context.ResourceID
		}
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DomainError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is lets errors.Is match two domain errors by kind.
func (e *DomainError) Is(target error) bool {
	other, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e != nil && e.Kind == other.Kind
}

// New builds a classified domain error.
func New(kind Kind, ectx Context, err error) *DomainError {
	return &DomainError{Kind: kind, Context: ectx, Err: err}
}

// Newf builds a classified domain error from a format string.
func Newf(kind Kind, ectx Context, format string, args ...any) *DomainError {
	return &DomainError{Kind: kind, Context: ectx, Err: fmt.Errorf(format, args...)}
}

// KindOf extracts the kind from any error. Unclassified errors are treated
// as transient so redelivery can observe a later, healthier state.
func KindOf(err error) Kind {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Kind
	}
	return classifyRaw(err)
}

// Classify wraps a raw error with the inferred kind and context. Already
// classified errors keep their kind and gain any missing context fields.
func Classify(err error, ectx Context) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		merged := domainErr.Context
		if merged.ResourceType == "" {
			merged.ResourceType = ectx.ResourceType
		}
		if merged.ResourceID == "" {
			merged.ResourceID = ectx.ResourceID
		}
		if merged.Operation == "" {
			merged.Operation = ectx.Operation
		}
		if merged.Actor == "" {
			merged.Actor = ectx.Actor
		}
		return &DomainError{Kind: domainErr.Kind, Context: merged, Err: domainErr.Err}
	}
	return &DomainError{Kind: classifyRaw(err), Context: ectx, Err: err}
}

func classifyRaw(err error) Kind {
	if err == nil {
		return KindTransientFailure
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return KindDuplicateEvent
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return KindTransientFailure
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindTransientFailure
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "duplicate key"):
		return KindDuplicateEvent
	case strings.Contains(msg, "serialization"),
		strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "could not serialize"),
		strings.Contains(msg, "concurrent update"):
		return KindDatabaseConflict
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "insufficient privilege"):
		return KindOwnershipViolation
	case strings.Contains(msg, "invalid input syntax"),
		strings.Contains(msg, "malformed"):
		return KindTransientFailure
	default:
		return KindTransientFailure
	}
}

// Retryable reports whether the internal retry loop may re-run processing
// for an error of this kind. Manual-review kinds are never retried.
func Retryable(kind Kind) bool {
	switch kind {
	case KindDatabaseConflict, KindTransientFailure:
		return true
	default:
		return false
	}
}

// HTTPStatus maps a kind to the webhook endpoint response. The sender is
// only told to redeliver (5xx) for transient internal failures.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindSignatureInvalid:
		return http.StatusBadRequest
	case KindDuplicateEvent,
		KindUnknownEventType,
		KindIllegalTransition,
		KindOwnershipViolation,
		KindAmountMismatch:
		return http.StatusOK
	case KindDatabaseConflict:
		return http.StatusInternalServerError
	case KindTransientFailure:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
