package verifier

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
)

const testSecret = "whsec_test_secret"

func signedHeader(t *testing.T, payload []byte, ts time.Time, secret string) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func eventPayload(id, eventType string) []byte {
	return []byte(fmt.Sprintf(`{
		"id": %q,
		"object": "event",
		"api_version": %q,
		"created": %d,
		"type": %q,
		"data": {"object": {"id": "pi_123", "amount": 150000}}
	}`, id, stripe.APIVersion, time.Now().Unix(), eventType))
}

func TestVerifyValidSignature(t *testing.T) {
	v := New(testSecret, 5*time.Minute)
	payload := eventPayload("evt_valid", "payment_intent.succeeded")

	headers := http.Header{}
	headers.Set(SignatureHeader, signedHeader(t, payload, time.Now(), testSecret))

	event, err := v.Verify(context.Background(), payload, headers)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if event.ExternalEventID != "evt_valid" {
		t.Fatalf("event id = %s", event.ExternalEventID)
	}
	if event.Type != "payment_intent.succeeded" {
		t.Fatalf("event type = %s", event.Type)
	}
	if len(event.Raw) == 0 {
		t.Fatal("raw data object missing")
	}
}

func TestVerifyTamperedPayload(t *testing.T) {
	v := New(testSecret, 5*time.Minute)
	payload := eventPayload("evt_tampered", "payment_intent.succeeded")

	headers := http.Header{}
	headers.Set(SignatureHeader, signedHeader(t, payload, time.Now(), testSecret))

	tampered := append([]byte(nil), payload...)
	tampered[len(tampered)-2] = ' '
	_, err := v.Verify(context.Background(), tampered, headers)
	if errmap.KindOf(err) != errmap.KindSignatureInvalid {
		t.Fatalf("kind = %s, want signature_invalid", errmap.KindOf(err))
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	v := New(testSecret, 5*time.Minute)
	payload := eventPayload("evt_wrong_secret", "payment_intent.succeeded")

	headers := http.Header{}
	headers.Set(SignatureHeader, signedHeader(t, payload, time.Now(), "whsec_other"))

	_, err := v.Verify(context.Background(), payload, headers)
	if errmap.KindOf(err) != errmap.KindSignatureInvalid {
		t.Fatalf("kind = %s, want signature_invalid", errmap.KindOf(err))
	}
}

func TestVerifyStaleTimestamp(t *testing.T) {
	v := New(testSecret, 5*time.Minute)
	payload := eventPayload("evt_stale", "payment_intent.succeeded")

	headers := http.Header{}
	headers.Set(SignatureHeader, signedHeader(t, payload, time.Now().Add(-time.Hour), testSecret))

	_, err := v.Verify(context.Background(), payload, headers)
	if errmap.KindOf(err) != errmap.KindSignatureInvalid {
		t.Fatalf("kind = %s, want signature_invalid", errmap.KindOf(err))
	}
}

func TestVerifyMissingHeader(t *testing.T) {
	v := New(testSecret, 5*time.Minute)
	payload := eventPayload("evt_no_header", "payment_intent.succeeded")

	_, err := v.Verify(context.Background(), payload, http.Header{})
	if errmap.KindOf(err) != errmap.KindSignatureInvalid {
		t.Fatalf("kind = %s, want signature_invalid", errmap.KindOf(err))
	}
}

func TestVerifyMissingSecretIsNotSenderFault(t *testing.T) {
	v := New("", 5*time.Minute)
	payload := eventPayload("evt_no_secret", "payment_intent.succeeded")

	headers := http.Header{}
	headers.Set(SignatureHeader, signedHeader(t, payload, time.Now(), testSecret))

	_, err := v.Verify(context.Background(), payload, headers)
	if errmap.KindOf(err) != errmap.KindTransientFailure {
		t.Fatalf("kind = %s, want transient_failure", errmap.KindOf(err))
	}
}
