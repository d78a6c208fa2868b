package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
)

// NormalizeHost strips a trailing :port and normalizes an incoming
// Host/X-Forwarded-Host header value. Host names are lower-cased and a
// trailing dot is removed; DNS is case-insensitive and this keeps domain
// comparisons against the registry deterministic.
func NormalizeHost(raw string) string {
	host := strings.TrimSpace(raw)
	if i := strings.Index(host, ":"); i != -1 {
		host = host[:i]
	}
	host = strings.TrimSuffix(host, ".")
	return strings.ToLower(host)
}

func isLoopbackHost(host string) bool {
	return strings.Contains(host, "localhost") || strings.Contains(host, "127.0.0.1")
}

// Classifier decides whether a normalized host targets a tenant organization
// or the main platform.
type Classifier struct {
	store  CentralStore
	logger *slog.Logger
}

// NewClassifier creates a host classifier backed by the central store
func NewClassifier(store CentralStore) *Classifier {
	return &Classifier{
		store:  store,
		logger: slog.With("component", "Classifier"),
	}
}

// IsTenantHost applies three checks in order, short-circuiting on the first
// match: the local-dev subdomain pattern, an exact domain-registry match, and
// the active-slug fallback for loopback hosts.
func (c *Classifier) IsTenantHost(ctx context.Context, host string) (bool, error) {
	// Local dev: "acme.localhost" style hosts are tenant subdomains without
	// needing DNS or Domain rows. Bare loopback hosts are the platform itself.
	if isLoopbackHost(host) && host != "localhost" && host != "127.0.0.1" {
		parts := strings.Split(host, ".")
		if len(parts) >= 2 && parts[0] != "localhost" && parts[0] != "127" {
			c.logger.Debug("Host classified as tenant via subdomain pattern", "host", host)
			return true, nil
		}
	}

	found, err := c.store.DomainExists(ctx, host)
	if err != nil {
		return false, err
	}
	if found {
		c.logger.Debug("Host classified as tenant via domain registry", "host", host)
		return true, nil
	}

	if isLoopbackHost(host) {
		slug := strings.Split(host, ".")[0]
		_, err := c.store.ActiveDetailBySlug(ctx, slug)
		if err == nil {
			c.logger.Debug("Host classified as tenant via slug registry", "host", host, "slug", slug)
			return true, nil
		}
		if !errors.Is(err, ErrNoRecord) {
			return false, err
		}
	}

	return false, nil
}
