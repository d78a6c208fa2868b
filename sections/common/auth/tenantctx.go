package auth

import (
	"context"
	"fmt"
	"log/slog"

	"smarthousing-backend/sections/models"
)

// TenantContext is the request-scoped selection of which tenant database is
// active. It is a value handed through the call chain, never a package-level
// global; each request builds its own and must release it.
type TenantContext struct {
	Tenant  *models.Tenant
	DBName  string
	Store   TenantStore
	release func() error
}

// Release restores the platform default connection. Safe to call on nil and
// more than once.
func (t *TenantContext) Release() error {
	if t == nil || t.release == nil {
		return nil
	}
	release := t.release
	t.release = nil
	return release()
}

// Initializer switches the data-source layer to a resolved tenant's isolated
// database.
type Initializer struct {
	store    CentralStore
	provider ConnectionProvider
	dbPrefix string
	dbSuffix string
	logger   *slog.Logger
}

// NewInitializer creates a tenant context initializer
func NewInitializer(store CentralStore, provider ConnectionProvider, dbPrefix, dbSuffix string) *Initializer {
	return &Initializer{
		store:    store,
		provider: provider,
		dbPrefix: dbPrefix,
		dbSuffix: dbSuffix,
		logger:   slog.With("component", "Initializer"),
	}
}

// Init establishes the tenant context for a request. If prev already holds an
// initialized context for the same tenant it is reused, making initialization
// idempotent regardless of whether tenancy middleware ran first. Otherwise the
// tenant row is re-read from the central store — an in-memory tenant object
// may have been loaded before earlier connection switching and cannot be
// trusted for this step — and the tenant slot is pointed at the derived
// database. Any failure is fatal for the request: proceeding without certainty
// about which database is active risks cross-tenant leakage.
func (i *Initializer) Init(ctx context.Context, tenant *models.Tenant, prev *TenantContext) (*TenantContext, error) {
	if tenant == nil {
		return nil, fmt.Errorf("cannot initialize tenant context without a tenant")
	}

	if prev != nil && prev.Tenant != nil && prev.Tenant.ID == tenant.ID {
		i.logger.Debug("Tenant context already initialized", "tenant", tenant.ID)
		return prev, nil
	}

	fresh, err := i.store.TenantByID(ctx, tenant.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload tenant %s: %w", tenant.ID, err)
	}

	dbName := fresh.DatabaseName(i.dbPrefix, i.dbSuffix)
	store, release, err := i.provider.UseTenant(ctx, dbName)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tenant database %s: %w", dbName, err)
	}

	i.logger.Debug("Tenant context initialized", "tenant", fresh.ID, "database", dbName)
	return &TenantContext{
		Tenant:  fresh,
		DBName:  dbName,
		Store:   store,
		release: release,
	}, nil
}
