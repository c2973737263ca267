package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
)

// Repository is the inward collaborator contract: read-only lookups used
// for ownership verification.
type Repository interface {
	// FindLease returns the lease, or ErrLeaseNotFound.
	FindLease(ctx context.Context, leaseID snowflake.ID) (*Lease, error)

	// FindTenant returns the tenant, or ErrTenantNotFound.
	FindTenant(ctx context.Context, tenantID snowflake.ID) (*Tenant, error)
}

var (
	ErrLeaseNotFound  = errors.New("lease_not_found")
	ErrTenantNotFound = errors.New("tenant_not_found")
)
