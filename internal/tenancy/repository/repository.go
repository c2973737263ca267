package repository

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/hudsor01/tenant-flow-sub006/internal/cache"
	tenancydomain "github.com/hudsor01/tenant-flow-sub006/internal/tenancy/domain"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// Lease rows change rarely relative to webhook traffic, so lookups are
// cached briefly. The TTL keeps a landlord change visible within a minute.
const lookupTTL = time.Minute

type Params struct {
	fx.In

	DB *gorm.DB
}

type Repository struct {
	db         *gorm.DB
	leaseCache *cache.TTLCache[snowflake.ID, tenancydomain.Lease]
}

func Provide(p Params) tenancydomain.Repository {
	return &Repository{
		db:         p.DB,
		leaseCache: cache.New[snowflake.ID, tenancydomain.Lease](lookupTTL),
	}
}

func (r *Repository) FindLease(ctx context.Context, leaseID snowflake.ID) (*tenancydomain.Lease, error) {
	if cached, ok := r.leaseCache.Get(leaseID); ok {
		lease := cached
		return &lease, nil
	}

	var lease tenancydomain.Lease
	err := r.db.WithContext(ctx).Where("id = ?", leaseID).Take(&lease).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenancydomain.ErrLeaseNotFound
		}
		return nil, err
	}
	r.leaseCache.Put(leaseID, lease)
	return &lease, nil
}

func (r *Repository) FindTenant(ctx context.Context, tenantID snowflake.ID) (*tenancydomain.Tenant, error) {
	var tenant tenancydomain.Tenant
	err := r.db.WithContext(ctx).Where("id = ?", tenantID).Take(&tenant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, tenancydomain.ErrTenantNotFound
		}
		return nil, err
	}
	return &tenant, nil
}
