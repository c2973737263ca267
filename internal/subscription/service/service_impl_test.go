package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/subscription/repository"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

func setupSubscriptionService(t *testing.T) domain.Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.SubscriptionRecord{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return New(Params{
		Repo:  repository.New(repository.Params{DB: db}),
		GenID: node,
	})
}

func periodSnap(status domain.SubscriptionStatus, periodEnd time.Time) domain.Snapshot {
	return domain.Snapshot{
		ExternalSubscriptionID: "sub_test_1",
		OwnerID:                snowflake.ID(42),
		Status:                 status,
		CurrentPeriodStart:     periodEnd.AddDate(0, -1, 0),
		CurrentPeriodEnd:       periodEnd,
	}
}

func TestApplyCreatesRecord(t *testing.T) {
	svc := setupSubscriptionService(t)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	record, err := svc.Apply(context.Background(), periodSnap(domain.StatusIncomplete, end))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if record.Status != domain.StatusIncomplete {
		t.Fatalf("status = %s, want incomplete", record.Status)
	}
	if record.OwnerID != snowflake.ID(42) {
		t.Fatalf("owner = %d, want 42", record.OwnerID)
	}

	stored, err := svc.FindByExternalID(context.Background(), "sub_test_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if !stored.CurrentPeriodEnd.Equal(end) {
		t.Fatalf("period end = %v, want %v", stored.CurrentPeriodEnd, end)
	}
}

func TestApplyStaleSnapshotDropped(t *testing.T) {
	svc := setupSubscriptionService(t)
	janEnd := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	febEnd := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Apply(context.Background(), periodSnap(domain.StatusActive, febEnd)); err != nil {
		t.Fatalf("apply current: %v", err)
	}

	// A late-delivered snapshot from the previous period must not rewind
	// the record.
	record, err := svc.Apply(context.Background(), periodSnap(domain.StatusPastDue, janEnd))
	if err != nil {
		t.Fatalf("apply stale: %v", err)
	}
	if record.Status != domain.StatusActive {
		t.Fatalf("status = %s, want active after stale drop", record.Status)
	}
	if !record.CurrentPeriodEnd.Equal(febEnd) {
		t.Fatalf("period end rewound to %v", record.CurrentPeriodEnd)
	}
}

func TestApplySamePeriodStatusCorrection(t *testing.T) {
	svc := setupSubscriptionService(t)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Apply(context.Background(), periodSnap(domain.StatusActive, end)); err != nil {
		t.Fatalf("apply active: %v", err)
	}
	record, err := svc.Apply(context.Background(), periodSnap(domain.StatusPastDue, end))
	if err != nil {
		t.Fatalf("apply past_due: %v", err)
	}
	if record.Status != domain.StatusPastDue {
		t.Fatalf("status = %s, want past_due", record.Status)
	}
}

func TestApplyIllegalTransition(t *testing.T) {
	svc := setupSubscriptionService(t)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Apply(context.Background(), periodSnap(domain.StatusCanceled, end)); err != nil {
		t.Fatalf("apply canceled: %v", err)
	}

	_, err := svc.Apply(context.Background(), periodSnap(domain.StatusActive, end))
	if err == nil {
		t.Fatal("expected illegal transition error")
	}
	if errmap.KindOf(err) != errmap.KindIllegalTransition {
		t.Fatalf("kind = %s, want illegal_transition", errmap.KindOf(err))
	}
}

func TestApplyReplayIsIdempotent(t *testing.T) {
	svc := setupSubscriptionService(t)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	snap := periodSnap(domain.StatusActive, end)

	if _, err := svc.Apply(context.Background(), snap); err != nil {
		t.Fatalf("first apply: %v", err)
	}
	record, err := svc.Apply(context.Background(), snap)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if record.Status != domain.StatusActive {
		t.Fatalf("status = %s after replay", record.Status)
	}
}

func TestHandleDeletedForcesCanceled(t *testing.T) {
	svc := setupSubscriptionService(t)
	handlers := NewHandlers(svc)
	end := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

	if _, err := svc.Apply(context.Background(), periodSnap(domain.StatusActive, end)); err != nil {
		t.Fatalf("seed active: %v", err)
	}

	handler, ok := handlers.Routes()["customer.subscription.deleted"]
	if !ok {
		t.Fatal("no handler for customer.subscription.deleted")
	}
	err := handler(context.Background(), subscriptionEvent(t, `{
		"id": "sub_test_1",
		"status": "active",
		"current_period_end": `+unixStr(end)+`,
		"metadata": {"landlord_id": "42"}
	}`))
	if err != nil {
		t.Fatalf("handle deleted: %v", err)
	}

	record, err := svc.FindByExternalID(context.Background(), "sub_test_1")
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	if record.Status != domain.StatusCanceled {
		t.Fatalf("status = %s, want canceled", record.Status)
	}
}

func subscriptionEvent(t *testing.T, raw string) *webhookdomain.Event {
	t.Helper()
	return &webhookdomain.Event{
		ExternalEventID: "evt_sub_test",
		Type:            "customer.subscription.deleted",
		OccurredAt:      time.Now().UTC(),
		Raw:             []byte(raw),
	}
}

func unixStr(ts time.Time) string {
	return strconv.FormatInt(ts.Unix(), 10)
}

func TestFindUnknownSubscription(t *testing.T) {
	svc := setupSubscriptionService(t)
	_, err := svc.FindByExternalID(context.Background(), "sub_missing")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("err = %v, want record not found", err)
	}
}
