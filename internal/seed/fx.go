package seed

import (
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/hudsor01/tenant-flow-sub006/internal/config"
)

var Module = fx.Module("seed",
	fx.Invoke(func(cfg config.Config, db *gorm.DB) error {
		if cfg.IsProduction() {
			return nil
		}
		return EnsureDemoLease(db)
	}),
)
