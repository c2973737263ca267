// Package db opens the database and keeps the schema current. Postgres in
// deployment; in-memory sqlite when no DSN is configured, for local runs.
package db

import (
	"strings"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	auditdomain "github.com/hudsor01/tenant-flow-sub006/internal/audit/domain"
	"github.com/hudsor01/tenant-flow-sub006/internal/config"
	deadletterdomain "github.com/hudsor01/tenant-flow-sub006/internal/deadletter/domain"
	ledgerdomain "github.com/hudsor01/tenant-flow-sub006/internal/ledger/domain"
	onboardingdomain "github.com/hudsor01/tenant-flow-sub006/internal/onboarding/domain"
	paymentdomain "github.com/hudsor01/tenant-flow-sub006/internal/payment/domain"
	subscriptiondomain "github.com/hudsor01/tenant-flow-sub006/internal/subscription/domain"
	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
	webhookdomain "github.com/hudsor01/tenant-flow-sub006/internal/webhook/domain"
)

var Module = fx.Module("db",
	fx.Provide(Open),
	fx.Invoke(Migrate),
)

func Open(cfg config.Config, log *zap.Logger) (*gorm.DB, error) {
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	}

	dsn := strings.TrimSpace(cfg.DatabaseDSN)
	var dialector gorm.Dialector
	switch {
	case dsn == "":
		log.Warn("no database dsn configured, using in-memory sqlite")
		dialector = sqlite.Open("file::memory:?cache=shared")
	case strings.HasPrefix(dsn, "file:") || strings.HasSuffix(dsn, ".db"):
		dialector = sqlite.Open(dsn)
	default:
		dialector = postgres.Open(dsn)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate keeps the schema current. Core tables are append-heavy and never
// dropped; AutoMigrate only adds what is missing.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&webhookdomain.InboundEvent{},
		&paymentdomain.PaymentRecord{},
		&subscriptiondomain.SubscriptionRecord{},
		&onboardingdomain.OnboardingRecord{},
		&ledgerdomain.LedgerEntry{},
		&deadletterdomain.DeadLetterEvent{},
		&auditdomain.AuditLog{},
		&tenancydomain.Lease{},
		&tenancydomain.Tenant{},
	)
}
