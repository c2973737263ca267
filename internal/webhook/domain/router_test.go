package domain

import (
	"context"
	"strings"
	"testing"
)

func TestRegistryLookup(t *testing.T) {
	called := ""
	registry := NewRegistry(map[string]Handler{
		"payment_intent.succeeded": func(ctx context.Context, event *Event) error {
			called = event.Type
			return nil
		},
		"": func(ctx context.Context, event *Event) error { return nil },
		"customer.subscription.updated": nil,
	})

	handler, ok := registry.Lookup("payment_intent.succeeded")
	if !ok {
		t.Fatal("registered type must resolve")
	}
	if err := handler(context.Background(), &Event{Type: "payment_intent.succeeded"}); err != nil {
		t.Fatalf("handler: %v", err)
	}
	if called != "payment_intent.succeeded" {
		t.Fatalf("called = %q", called)
	}

	if _, ok := registry.Lookup("customer.subscription.updated"); ok {
		t.Fatal("nil handlers must be dropped at construction")
	}
	if _, ok := registry.Lookup("charge.refunded"); ok {
		t.Fatal("unregistered type must not resolve")
	}
	if types := registry.Types(); len(types) != 1 {
		t.Fatalf("types = %v, want exactly the one valid registration", types)
	}
}

func TestRegistryIgnoresLaterMapMutation(t *testing.T) {
	source := map[string]Handler{
		"account.updated": func(ctx context.Context, event *Event) error { return nil },
	}
	registry := NewRegistry(source)
	source["payment_intent.created"] = func(ctx context.Context, event *Event) error { return nil }

	if _, ok := registry.Lookup("payment_intent.created"); ok {
		t.Fatal("registry must copy the handler map at construction")
	}
}

func TestIdempotencyKeyDeterministic(t *testing.T) {
	first := IdempotencyKey("rent_charge", "lease_303:2026-09")
	second := IdempotencyKey("rent_charge", "lease_303:2026-09")
	if first != second {
		t.Fatalf("same inputs must produce the same key: %q vs %q", first, second)
	}
	if !strings.HasPrefix(first, "int_") {
		t.Fatalf("key %q must carry the internal prefix", first)
	}
	if other := IdempotencyKey("rent_charge", "lease_303:2026-10"); other == first {
		t.Fatal("distinct resources must produce distinct keys")
	}
}
