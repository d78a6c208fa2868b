package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TenancyMiddleware resolves the tenant from the request host before handlers
// run and stores the initialized TenantContext in the Gin context. The context
// is released after the handler chain completes, so the platform default
// connection is restored even when a handler returns early or panics.
// Handlers stay correct without this middleware: tenant-context
// initialization is idempotent on its own.
func (h *Handler) TenancyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		rawHost := strings.ToLower(strings.TrimSpace(requestHost(c)))
		normalized := NormalizeHost(rawHost)

		isTenant, err := h.classifier.IsTenantHost(ctx, normalized)
		if err != nil {
			h.serverError(c, err)
			return
		}
		if !isTenant {
			c.Next()
			return
		}

		tenant, _, err := h.resolver.Resolve(ctx, normalized, rawHost)
		if err != nil {
			if errors.Is(err, ErrTenantNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error":          "tenant_not_found",
					"message":        "Tenant not found.",
					"host":           normalized,
					"forwarded_host": c.GetHeader("X-Forwarded-Host"),
					"origin":         c.GetHeader("Origin"),
				})
				return
			}
			h.serverError(c, err)
			return
		}

		tctx, err := h.init.Init(ctx, tenant, nil)
		if err != nil {
			h.serverError(c, err)
			return
		}
		defer func() {
			if err := tctx.Release(); err != nil {
				h.logger.Error("Failed to release tenant context", "tenant", tenant.ID, "error", err)
			}
		}()

		c.Set(tenantContextKey, tctx)
		c.Next()
	}
}

// BearerAuthMiddleware validates the JWT and checks that its persisted token
// record still exists; logout revokes tokens by deleting the record.
func (h *Handler) BearerAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		claims, err := h.jwt.ValidateToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		exists, err := h.tokens.Exists(c.Request.Context(), claims.ID)
		if err != nil {
			h.serverError(c, err)
			return
		}
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrInvalidToken.Error()})
			return
		}

		c.Set(claimsContextKey, claims)
		c.Next()
	}
}

// TenantContextFromGin retrieves the tenant context set by TenancyMiddleware.
func TenantContextFromGin(c *gin.Context) *TenantContext {
	value, exists := c.Get(tenantContextKey)
	if !exists {
		return nil
	}
	tctx, ok := value.(*TenantContext)
	if !ok {
		return nil
	}
	return tctx
}

// ClaimsFromGin retrieves the JWT claims set by BearerAuthMiddleware.
func ClaimsFromGin(c *gin.Context) (*Claims, bool) {
	value, exists := c.Get(claimsContextKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*Claims)
	return claims, ok
}

// RegisterRoutes registers all auth-related routes
func RegisterRoutes(r *gin.Engine, h *Handler) {
	public := r.Group("/api/v1/auth")
	public.Use(h.TenancyMiddleware())
	{
		public.POST("/login", h.Login)
		public.POST("/logout", h.Logout)
	}

	protected := r.Group("/api/v1/users")
	protected.Use(h.BearerAuthMiddleware())
	{
		protected.GET("/me", h.Me)
	}
}
