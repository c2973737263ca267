package service

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
)

func setupSink(t *testing.T) (domain.Sink, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&domain.DeadLetterEvent{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	sink := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
	})
	return sink, db
}

func TestCaptureParksEvent(t *testing.T) {
	sink, db := setupSink(t)

	err := sink.Capture(context.Background(), domain.Entry{
		ExternalEventID: "evt_dl_1",
		EventType:       "payment_intent.succeeded",
		Kind:            string(errmap.KindTransientFailure),
		Reason:          "database timeout",
		Payload:         []byte(`{"id":"evt_dl_1"}`),
		Replayable:      true,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	var row domain.DeadLetterEvent
	if err := db.Where("external_event_id = ?", "evt_dl_1").First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Attempts != 1 {
		t.Fatalf("attempts = %d, want 1", row.Attempts)
	}
	if !row.Replayable {
		t.Fatal("transient failures must be replayable")
	}
	if row.ReplayedAt != nil {
		t.Fatal("replayed_at must start unset")
	}
}

func TestCaptureDuplicateBumpsAttempts(t *testing.T) {
	sink, db := setupSink(t)

	entry := domain.Entry{
		ExternalEventID: "evt_dl_2",
		EventType:       "payment_intent.succeeded",
		Kind:            string(errmap.KindTransientFailure),
		Reason:          "first failure",
		Replayable:      true,
	}
	if err := sink.Capture(context.Background(), entry); err != nil {
		t.Fatalf("first capture: %v", err)
	}
	entry.Reason = "second failure"
	if err := sink.Capture(context.Background(), entry); err != nil {
		t.Fatalf("second capture: %v", err)
	}

	var count int64
	if err := db.Model(&domain.DeadLetterEvent{}).Where("external_event_id = ?", "evt_dl_2").Count(&count).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}

	var row domain.DeadLetterEvent
	if err := db.Where("external_event_id = ?", "evt_dl_2").First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Attempts != 2 {
		t.Fatalf("attempts = %d, want 2", row.Attempts)
	}
	if row.Reason != "second failure" {
		t.Fatalf("reason = %q, want latest failure reason", row.Reason)
	}
}

func TestCaptureManualReviewNotReplayable(t *testing.T) {
	sink, db := setupSink(t)

	err := sink.Capture(context.Background(), domain.Entry{
		ExternalEventID: "evt_dl_3",
		EventType:       "payment_intent.succeeded",
		Kind:            string(errmap.KindAmountMismatch),
		Reason:          "observed amount disagrees with record",
		Replayable:      false,
	})
	if err != nil {
		t.Fatalf("capture: %v", err)
	}

	var row domain.DeadLetterEvent
	if err := db.Where("external_event_id = ?", "evt_dl_3").First(&row).Error; err != nil {
		t.Fatalf("load row: %v", err)
	}
	if row.Replayable {
		t.Fatal("manual-review kinds must park non-replayable")
	}
}

func TestCaptureRejectsEmptyEventID(t *testing.T) {
	sink, _ := setupSink(t)

	err := sink.Capture(context.Background(), domain.Entry{
		ExternalEventID: "  ",
		EventType:       "payment_intent.succeeded",
		Kind:            string(errmap.KindTransientFailure),
	})
	if !errors.Is(err, domain.ErrInvalidEntry) {
		t.Fatalf("err = %v, want ErrInvalidEntry", err)
	}
}
