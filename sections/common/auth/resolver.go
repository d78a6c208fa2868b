package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"smarthousing-backend/monitoring"
	"smarthousing-backend/sections/models"
)

// Resolution strategy labels (metrics)
const (
	StrategyDomain        = "domain"
	StrategyDomainPort    = "domain_with_port"
	StrategyDetailSlug    = "detail_slug"
	StrategyDomainPattern = "domain_pattern"
)

// Resolver maps a classified host to a concrete tenant record.
type Resolver struct {
	store    CentralStore
	provider ConnectionProvider
	limiter  ScanLimiter
	dbPrefix string
	dbSuffix string
	logger   *slog.Logger
}

// NewResolver creates a tenant resolver
func NewResolver(store CentralStore, provider ConnectionProvider, limiter ScanLimiter, dbPrefix, dbSuffix string) *Resolver {
	return &Resolver{
		store:    store,
		provider: provider,
		limiter:  limiter,
		dbPrefix: dbPrefix,
		dbSuffix: dbSuffix,
		logger:   slog.With("component", "Resolver"),
	}
}

// Resolve tries each strategy in order and returns the first tenant that
// matches, along with the strategy that found it. Misses on every strategy
// return ErrTenantNotFound; callers surface a generic 404 without revealing
// which strategies were tried.
func (r *Resolver) Resolve(ctx context.Context, normalized, raw string) (*models.Tenant, string, error) {
	// 1. Exact domain match on the port-stripped host.
	tenant, err := r.store.TenantByDomain(ctx, normalized)
	if err == nil {
		monitoring.TenantResolutions.WithLabelValues(StrategyDomain).Inc()
		return tenant, StrategyDomain, nil
	}
	if !errors.Is(err, ErrNoRecord) {
		return nil, "", err
	}

	// 2. Some registered domains legitimately include a port.
	if raw != "" && raw != normalized {
		tenant, err = r.store.TenantByDomain(ctx, raw)
		if err == nil {
			monitoring.TenantResolutions.WithLabelValues(StrategyDomainPort).Inc()
			return tenant, StrategyDomainPort, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return nil, "", err
		}
	}

	if isLoopbackHost(normalized) {
		slug := strings.Split(normalized, ".")[0]

		// 3. Active slug in the tenant-detail registry.
		detail, err := r.store.ActiveDetailBySlug(ctx, slug)
		if err == nil {
			tenant, err = r.store.TenantByID(ctx, detail.TenantID)
			if err == nil {
				monitoring.TenantResolutions.WithLabelValues(StrategyDetailSlug).Inc()
				return tenant, StrategyDetailSlug, nil
			}
			if !errors.Is(err, ErrNoRecord) {
				return nil, "", err
			}
		} else if !errors.Is(err, ErrNoRecord) {
			return nil, "", err
		}

		// 4. Domain rows matching "slug.%" or the bare slug.
		tenant, err = r.store.TenantByDomainPattern(ctx, slug)
		if err == nil {
			monitoring.TenantResolutions.WithLabelValues(StrategyDomainPattern).Inc()
			return tenant, StrategyDomainPattern, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return nil, "", err
		}
	}

	r.logger.Debug("No tenant matched host", "host", normalized)
	return nil, "", ErrTenantNotFound
}

// ResolveByEmail scans every tenant database for a user with the given email.
// Linear in tenant count and reconnects per tenant, so it is rate-limited and
// only ever used to enrich the rejection message on a failed super-admin
// login. Unreachable tenant databases are skipped.
func (r *Resolver) ResolveByEmail(ctx context.Context, email string) (*models.Tenant, error) {
	allowed, err := r.limiter.Allow(ctx, "email-scan")
	if err != nil {
		r.logger.Warn("Email scan limiter unavailable, skipping scan", "error", err)
		return nil, ErrTenantNotFound
	}
	if !allowed {
		r.logger.Warn("Email scan rate limit reached, skipping scan")
		return nil, ErrTenantNotFound
	}

	tenants, err := r.store.Tenants(ctx)
	if err != nil {
		return nil, err
	}

	for i := range tenants {
		tenant := &tenants[i]
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		dbName := tenant.DatabaseName(r.dbPrefix, r.dbSuffix)
		found, err := r.probeTenant(ctx, dbName, email)
		if err != nil {
			r.logger.Warn("Skipping tenant during email scan", "tenant", tenant.ID, "error", err)
			r.provider.Evict(dbName)
			continue
		}
		if found {
			return tenant, nil
		}
	}
	return nil, ErrTenantNotFound
}

func (r *Resolver) probeTenant(ctx context.Context, dbName, email string) (bool, error) {
	store, release, err := r.provider.UseTenant(ctx, dbName)
	if err != nil {
		return false, err
	}
	defer func() {
		if err := release(); err != nil {
			r.logger.Error("Failed to release tenant connection", "database", dbName, "error", err)
		}
	}()
	return store.UserExistsByEmail(ctx, email)
}
