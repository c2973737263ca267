package errmap

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"gorm.io/gorm"
)

func TestKindOfRawErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"duplicated key sentinel", gorm.ErrDuplicatedKey, KindDuplicateEvent},
		{"unique constraint text", errors.New(`ERROR: duplicate key value violates unique constraint "ux_inbound_events_external_id"`), KindDuplicateEvent},
		{"record not found", gorm.ErrRecordNotFound, KindTransientFailure},
		{"serialization failure", errors.New("ERROR: could not serialize access due to concurrent update"), KindDatabaseConflict},
		{"sqlite busy", errors.New("database is locked"), KindDatabaseConflict},
		{"insufficient privilege", errors.New("ERROR: permission denied for table payment_records"), KindOwnershipViolation},
		{"deadline", context.DeadlineExceeded, KindTransientFailure},
		{"unknown", errors.New("connection reset by peer"), KindTransientFailure},
	}
	for _, tc := range cases {
		if got := KindOf(tc.err); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifyPreservesExistingKind(t *testing.T) {
	inner := New(KindAmountMismatch, Context{Operation: "settle_payment"}, errors.New("split does not sum"))
	wrapped := Classify(inner, Context{ResourceType: "payment_record", ResourceID: "pi_123"})

	if wrapped.Kind != KindAmountMismatch {
		t.Fatalf("expected amount_mismatch, got %s", wrapped.Kind)
	}
	if wrapped.Context.Operation != "settle_payment" {
		t.Fatalf("expected original operation, got %q", wrapped.Context.Operation)
	}
	if wrapped.Context.ResourceID != "pi_123" {
		t.Fatalf("expected merged resource id, got %q", wrapped.Context.ResourceID)
	}
}

func TestErrorsIsMatchesByKind(t *testing.T) {
	err := Classify(errors.New("database is locked"), Context{Operation: "update_payment"})
	if !errors.Is(err, &DomainError{Kind: KindDatabaseConflict}) {
		t.Fatalf("expected errors.Is match on kind")
	}
}

func TestRetryable(t *testing.T) {
	if !Retryable(KindDatabaseConflict) || !Retryable(KindTransientFailure) {
		t.Fatalf("expected conflict and transient kinds to be retryable")
	}
	for _, kind := range []Kind{KindSignatureInvalid, KindDuplicateEvent, KindUnknownEventType, KindIllegalTransition, KindOwnershipViolation, KindAmountMismatch} {
		if Retryable(kind) {
			t.Fatalf("expected %s to not be retryable", kind)
		}
	}
}

func TestHTTPStatus(t *testing.T) {
	if got := HTTPStatus(KindSignatureInvalid); got != http.StatusBadRequest {
		t.Fatalf("expected 400 for signature_invalid, got %d", got)
	}
	for _, kind := range []Kind{KindDuplicateEvent, KindUnknownEventType, KindIllegalTransition, KindOwnershipViolation, KindAmountMismatch} {
		if got := HTTPStatus(kind); got != http.StatusOK {
			t.Fatalf("expected 200 for %s, got %d", kind, got)
		}
	}
	if got := HTTPStatus(KindTransientFailure); got != http.StatusBadGateway {
		t.Fatalf("expected 502 for transient_failure, got %d", got)
	}
}
