package domain

import (
	"context"
	"net/http"
)

// Service is the webhook ingest pipeline: verify, admit, route, process.
type Service interface {
	IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error
}

// Verifier authenticates a raw payload against the processor's signature
// scheme. It must operate on the exact bytes received; any re-serialization
// before verification invalidates the signature. Pure validation, no side
// effects.
type Verifier interface {
	Verify(ctx context.Context, payload []byte, headers http.Header) (*Event, error)
}
