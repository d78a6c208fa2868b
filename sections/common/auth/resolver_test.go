package auth

import (
	"context"
	"testing"

	"smarthousing-backend/sections/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestResolver(central *memCentralStore, provider *memProvider, limiter ScanLimiter) *Resolver {
	if limiter == nil {
		limiter = &stubLimiter{allow: true}
	}
	return NewResolver(central, provider, limiter, "", "_smart_housing")
}

func TestResolveByExactDomain(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addDomain("acme.platform.com", "acme")

	resolver := newTestResolver(central, newMemProvider(), nil)

	tenant, strategy, err := resolver.Resolve(context.Background(), "acme.platform.com", "acme.platform.com")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, StrategyDomain, strategy)
}

func TestResolveByDomainWithPort(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addDomain("acme.platform.com:8443", "acme")

	resolver := newTestResolver(central, newMemProvider(), nil)

	tenant, strategy, err := resolver.Resolve(context.Background(), "acme.platform.com", "acme.platform.com:8443")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, StrategyDomainPort, strategy)
}

func TestResolveBySlugDetail(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addDetail("acme", "acme", models.TenantStatusActive)

	resolver := newTestResolver(central, newMemProvider(), nil)

	tenant, strategy, err := resolver.Resolve(context.Background(), "acme.localhost", "acme.localhost:8000")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, StrategyDetailSlug, strategy)
}

func TestResolveBySlugDomainPattern(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addDomain("acme.example.org", "acme")

	resolver := newTestResolver(central, newMemProvider(), nil)

	// No detail row for the slug; the domain pattern fallback should match.
	tenant, strategy, err := resolver.Resolve(context.Background(), "acme.localhost", "acme.localhost")
	require.NoError(t, err)
	assert.Equal(t, "acme", tenant.ID)
	assert.Equal(t, StrategyDomainPattern, strategy)
}

func TestResolveInactiveSlugIsNotFound(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addDetail("acme", "acme", models.TenantStatusInactive)

	resolver := newTestResolver(central, newMemProvider(), nil)

	_, _, err := resolver.Resolve(context.Background(), "acme.localhost", "acme.localhost")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveMissReturnsNotFound(t *testing.T) {
	resolver := newTestResolver(newMemCentralStore(), newMemProvider(), nil)

	_, _, err := resolver.Resolve(context.Background(), "nobody.platform.com", "nobody.platform.com")
	assert.ErrorIs(t, err, ErrTenantNotFound)
}

func TestResolveByEmailFindsOwningTenant(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")
	central.addTenant("teachers-coop")

	provider := newMemProvider()
	provider.addStore("acme_smart_housing", newMemTenantStore())
	coop := newMemTenantStore()
	coop.addUser(activeUser(7, "teacher@coop.test", "pw"))
	provider.addStore("teachers-coop_smart_housing", coop)

	resolver := newTestResolver(central, provider, nil)

	tenant, err := resolver.ResolveByEmail(context.Background(), "teacher@coop.test")
	require.NoError(t, err)
	assert.Equal(t, "teachers-coop", tenant.ID)
	assert.Equal(t, testPlatformConn, provider.activeConn())
}

func TestResolveByEmailSkipsUnreachableTenant(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("broken")
	central.addTenant("teachers-coop")

	provider := newMemProvider()
	provider.broken["broken_smart_housing"] = true
	coop := newMemTenantStore()
	coop.addUser(activeUser(7, "teacher@coop.test", "pw"))
	provider.addStore("teachers-coop_smart_housing", coop)

	resolver := newTestResolver(central, provider, nil)

	tenant, err := resolver.ResolveByEmail(context.Background(), "teacher@coop.test")
	require.NoError(t, err)
	assert.Equal(t, "teachers-coop", tenant.ID)
}

func TestResolveByEmailRateLimited(t *testing.T) {
	central := newMemCentralStore()
	central.addTenant("acme")

	limiter := &stubLimiter{allow: false}
	resolver := newTestResolver(central, newMemProvider(), limiter)

	_, err := resolver.ResolveByEmail(context.Background(), "user@acme.test")
	assert.ErrorIs(t, err, ErrTenantNotFound)
	assert.Equal(t, 1, limiter.calls)
}
