package auth

import (
	"context"

	"smarthousing-backend/sections/models"
)

// CentralStore reads the platform database: tenant registry, domain mappings
// and super-admin accounts. Lookups that match nothing return ErrNoRecord.
type CentralStore interface {
	DomainExists(ctx context.Context, host string) (bool, error)
	TenantByDomain(ctx context.Context, domain string) (*models.Tenant, error)
	// TenantByDomainPattern matches "slug.%" or the bare slug.
	TenantByDomainPattern(ctx context.Context, slug string) (*models.Tenant, error)
	ActiveDetailBySlug(ctx context.Context, slug string) (*models.TenantDetail, error)
	TenantByID(ctx context.Context, id string) (*models.Tenant, error)
	Tenants(ctx context.Context) ([]models.Tenant, error)

	SuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error)
	SuperAdminByID(ctx context.Context, id uint) (*models.SuperAdmin, error)
	TouchSuperAdminLogin(ctx context.Context, id uint) error
}

// TenantStore reads and writes a single tenant's isolated database. Instances
// are only valid for the lifetime of the TenantContext that produced them.
type TenantStore interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id uint) (*models.User, error)
	UserExistsByEmail(ctx context.Context, email string) (bool, error)
	TouchUserLogin(ctx context.Context, id uint) error
	RecordAudit(ctx context.Context, entry *models.AuditLog) error
	RecordActivity(ctx context.Context, entry *models.ActivityLog) error
}

// TokenStore persists access-token records in the central database.
type TokenStore interface {
	Create(ctx context.Context, token *models.AccessToken) error
	StampTenant(ctx context.Context, recordID, tenantID string) error
	Exists(ctx context.Context, recordID string) (bool, error)
	DeleteByID(ctx context.Context, recordID string) error
	DeleteForPrincipal(ctx context.Context, principalType string, principalID uint) error
}

// ConnectionProvider maps a derived tenant database name to a ready-to-use
// store plus a release function restoring the platform default connection.
type ConnectionProvider interface {
	UseTenant(ctx context.Context, dbName string) (TenantStore, func() error, error)
	Evict(dbName string)
}

// ScanLimiter gates the linear all-tenants email scan.
type ScanLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}
