package service

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditdomain "github.com/hudsor01/tenant-flow-sub006/internal/audit/domain"
	auditservice "github.com/hudsor01/tenant-flow-sub006/internal/audit/service"
	"github.com/hudsor01/tenant-flow-sub006/internal/clock"
	"github.com/hudsor01/tenant-flow-sub006/internal/errmap"
	ledgerdomain "github.com/hudsor01/tenant-flow-sub006/internal/ledger/domain"
	ledgerservice "github.com/hudsor01/tenant-flow-sub006/internal/ledger/service"
	onboardingdomain "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	onboardingrepo "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/repository"
	onboardingservice "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/service"
	paymentdomain "github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	paymentrepo "github.com/hudsor01/tenant-flow-sub006/internal/payment/repository"
	"github.com/hudsor01/tenant-flow-sub006/internal/reconcile/domain"
	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
	tenancyrepo "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/repository"
)

const (
	testLandlordID = 101
	testTenantID   = 202
	testLeaseID    = 303
)

type settleFixture struct {
	db       *gorm.DB
	svc      domain.Service
	payments paymentdomain.Repository
	ledger   ledgerdomain.Service
	node     *snowflake.Node
}

func setupSettleFixture(t *testing.T) *settleFixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&paymentdomain.PaymentRecord{},
		&ledgerdomain.LedgerEntry{},
		&tenancydomain.Lease{},
		&tenancydomain.Tenant{},
		&onboardingdomain.OnboardingRecord{},
		&auditdomain.AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}

	payments := paymentrepo.Provide(paymentrepo.Params{DB: db})
	ledger := ledgerservice.NewService(ledgerservice.Params{DB: db, Log: zap.NewNop(), GenID: node})
	audit := auditservice.NewService(auditservice.Params{DB: db, Log: zap.NewNop(), GenID: node})
	onboarding := onboardingservice.New(onboardingservice.Params{
		Repo:  onboardingrepo.New(onboardingrepo.Params{DB: db}),
		GenID: node,
	})
	tenancy := tenancyrepo.Provide(tenancyrepo.Params{DB: db})

	svc := New(Params{
		DB:         db,
		Payments:   payments,
		Tenancy:    tenancy,
		Onboarding: onboarding,
		Ledger:     ledger,
		Audit:      audit,
		Clock:      clock.Fixed{At: time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)},
		GenID:      node,
	})

	return &settleFixture{db: db, svc: svc, payments: payments, ledger: ledger, node: node}
}

func (f *settleFixture) seedLease(t *testing.T) {
	t.Helper()
	if err := f.db.Create(&tenancydomain.Lease{
		ID:         snowflake.ID(testLeaseID),
		PropertyID: f.node.Generate(),
		LandlordID: snowflake.ID(testLandlordID),
		TenantID:   snowflake.ID(testTenantID),
		RentAmount: 150000,
		StartDate:  time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}).Error; err != nil {
		t.Fatalf("seed lease: %v", err)
	}
}

func (f *settleFixture) seedOnboardedAccount(t *testing.T, account string, ownerID int64) {
	t.Helper()
	if err := f.db.Create(&onboardingdomain.OnboardingRecord{
		ID:                f.node.Generate(),
		ExternalAccountID: account,
		OwnerID:           snowflake.ID(ownerID),
		Status:            onboardingdomain.StatusCompleted,
		ChargesEnabled:    true,
		PayoutsEnabled:    true,
		RequirementsDue:   datatypes.JSON(`[]`),
	}).Error; err != nil {
		t.Fatalf("seed onboarding: %v", err)
	}
}

// seedRentPayment inserts a processing rent payment of $1500.00 with a 3%
// platform fee.
func (f *settleFixture) seedRentPayment(t *testing.T, externalID string) *paymentdomain.PaymentRecord {
	t.Helper()
	record := &paymentdomain.PaymentRecord{
		ID:                f.node.Generate(),
		ExternalPaymentID: externalID,
		TenantID:          snowflake.ID(testTenantID),
		LandlordID:        snowflake.ID(testLandlordID),
		LeaseID:           snowflake.ID(testLeaseID),
		Amount:            150000,
		PlatformFee:       4500,
		ProcessorFee:      1500,
		LandlordReceives:  144000,
		Currency:          "USD",
		Status:            paymentdomain.StatusProcessing,
		PaymentType:       paymentdomain.TypeRent,
	}
	inserted, err := f.payments.Insert(context.Background(), nil, record)
	if err != nil || !inserted {
		t.Fatalf("seed payment: inserted=%v err=%v", inserted, err)
	}
	return record
}

func TestSettleWritesLedgerEntry(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	f.seedOnboardedAccount(t, "acct_landlord", testLandlordID)
	record := f.seedRentPayment(t, "pi_settle_1")

	err := f.svc.Settle(context.Background(), domain.SettleRequest{
		ExternalPaymentID: "pi_settle_1",
		AttributedAccount: "acct_landlord",
		ObservedAmount:    150000,
		Currency:          "usd",
	})
	if err != nil {
		t.Fatalf("settle: %v", err)
	}

	fresh, err := f.payments.FindByExternalID(context.Background(), nil, "pi_settle_1")
	if err != nil {
		t.Fatalf("reload payment: %v", err)
	}
	if fresh.Status != paymentdomain.StatusSucceeded {
		t.Fatalf("status = %s, want succeeded", fresh.Status)
	}
	if fresh.SettledAt == nil {
		t.Fatal("settled_at not set")
	}

	entry, err := f.ledger.FindByPayment(context.Background(), int64(record.ID))
	if err != nil {
		t.Fatalf("find entry: %v", err)
	}
	if entry == nil {
		t.Fatal("no ledger entry written")
	}
	if entry.LandlordReceives != 144000 || entry.PlatformFee != 4500 {
		t.Fatalf("split = %d/%d, want 144000/4500", entry.LandlordReceives, entry.PlatformFee)
	}
}

func TestSettleReplayIsNoOp(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	record := f.seedRentPayment(t, "pi_settle_1")

	req := domain.SettleRequest{ExternalPaymentID: "pi_settle_1", ObservedAmount: 150000}
	if err := f.svc.Settle(context.Background(), req); err != nil {
		t.Fatalf("first settle: %v", err)
	}
	if err := f.svc.Settle(context.Background(), req); err != nil {
		t.Fatalf("replay settle: %v", err)
	}

	var count int64
	if err := f.db.Model(&ledgerdomain.LedgerEntry{}).
		Where("payment_record_id = ?", record.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 1 {
		t.Fatalf("ledger entries = %d, want exactly 1", count)
	}
}

func TestSettleAmountMismatch(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	record := f.seedRentPayment(t, "pi_settle_1")

	declared := int64(150000) // claims the full amount with no fees taken
	err := f.svc.Settle(context.Background(), domain.SettleRequest{
		ExternalPaymentID:        "pi_settle_1",
		ObservedAmount:           150000,
		DeclaredLandlordReceives: &declared,
	})
	if errmap.KindOf(err) != errmap.KindAmountMismatch {
		t.Fatalf("kind = %s, want amount_mismatch (err=%v)", errmap.KindOf(err), err)
	}

	// The payment must stay untouched and no ledger entry may exist.
	fresh, _ := f.payments.FindByExternalID(context.Background(), nil, "pi_settle_1")
	if fresh.Status != paymentdomain.StatusProcessing {
		t.Fatalf("status = %s, want processing", fresh.Status)
	}
	entry, _ := f.ledger.FindByPayment(context.Background(), int64(record.ID))
	if entry != nil {
		t.Fatal("ledger entry written despite mismatch")
	}

	var audits int64
	f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionAmountMismatch).
		Count(&audits)
	if audits != 1 {
		t.Fatalf("audit rows = %d, want 1", audits)
	}
}

func TestSettleOwnershipViolation(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	f.seedOnboardedAccount(t, "acct_other", 999) // not the lease's landlord
	f.seedRentPayment(t, "pi_settle_1")

	err := f.svc.Settle(context.Background(), domain.SettleRequest{
		ExternalPaymentID: "pi_settle_1",
		AttributedAccount: "acct_other",
		ObservedAmount:    150000,
	})
	if errmap.KindOf(err) != errmap.KindOwnershipViolation {
		t.Fatalf("kind = %s, want ownership_violation (err=%v)", errmap.KindOf(err), err)
	}

	var audits int64
	f.db.Model(&auditdomain.AuditLog{}).
		Where("action = ?", auditdomain.ActionOwnershipViolation).
		Count(&audits)
	if audits != 1 {
		t.Fatalf("audit rows = %d, want 1", audits)
	}
}

func TestSettleMissingLease(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedRentPayment(t, "pi_settle_1")

	err := f.svc.Settle(context.Background(), domain.SettleRequest{
		ExternalPaymentID: "pi_settle_1",
		ObservedAmount:    150000,
	})
	if errmap.KindOf(err) != errmap.KindOwnershipViolation {
		t.Fatalf("kind = %s, want ownership_violation", errmap.KindOf(err))
	}
}

func TestSettleFromTerminalFailureIsIllegal(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	record := f.seedRentPayment(t, "pi_settle_1")
	if err := f.payments.UpdateStatus(context.Background(), nil, record, paymentdomain.StatusFailed); err != nil {
		t.Fatalf("move to failed: %v", err)
	}

	err := f.svc.Settle(context.Background(), domain.SettleRequest{
		ExternalPaymentID: "pi_settle_1",
		ObservedAmount:    150000,
	})
	if errmap.KindOf(err) != errmap.KindIllegalTransition {
		t.Fatalf("kind = %s, want illegal_transition", errmap.KindOf(err))
	}
}

// A version conflict whose fresh read shows a terminal status must abandon
// the settlement, not retry the write against the re-read row.
func TestSettleConflictRetryHonorsTerminalState(t *testing.T) {
	f := setupSettleFixture(t)
	f.seedLease(t)
	record := f.seedRentPayment(t, "pi_settle_1")

	// A concurrent failure event commits processing -> failed after this
	// settlement loaded the record.
	stale := *record
	if err := f.payments.UpdateStatus(context.Background(), nil, record, paymentdomain.StatusFailed); err != nil {
		t.Fatalf("concurrent failure: %v", err)
	}

	svc := f.svc.(*service)
	entry := &ledgerdomain.LedgerEntry{
		ID:                f.node.Generate(),
		PaymentRecordID:   stale.ID,
		ExternalPaymentID: stale.ExternalPaymentID,
		LeaseID:           stale.LeaseID,
		LandlordID:        stale.LandlordID,
		Amount:            stale.Amount,
		PlatformFee:       stale.PlatformFee,
		ProcessorFee:      stale.ProcessorFee,
		LandlordReceives:  stale.LandlordReceives,
		Currency:          stale.Currency,
		SettledAt:         time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC),
	}
	err := svc.settleOnce(context.Background(), &stale, entry, errmap.Context{
		ResourceType: "payment_record",
		ResourceID:   stale.ExternalPaymentID,
		Operation:    "reconcile.settle",
	})
	if errmap.KindOf(err) != errmap.KindIllegalTransition {
		t.Fatalf("kind = %s, want illegal_transition (err=%v)", errmap.KindOf(err), err)
	}

	fresh, ferr := f.payments.FindByExternalID(context.Background(), nil, "pi_settle_1")
	if ferr != nil {
		t.Fatalf("reload payment: %v", ferr)
	}
	if fresh.Status != paymentdomain.StatusFailed {
		t.Fatalf("status = %s, failed payment must stay failed", fresh.Status)
	}

	var count int64
	if err := f.db.Model(&ledgerdomain.LedgerEntry{}).
		Where("payment_record_id = ?", stale.ID).
		Count(&count).Error; err != nil {
		t.Fatalf("count entries: %v", err)
	}
	if count != 0 {
		t.Fatalf("entries = %d, no ledger entry may exist for a failed payment", count)
	}
}
