package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"smarthousing-backend/monitoring"
	"smarthousing-backend/sections"
	"smarthousing-backend/sections/models"
	"smarthousing-backend/storage"

	"github.com/gin-gonic/gin"
)

// Gin context keys
const (
	tenantContextKey = "tenantContext"
	claimsContextKey = "claims"
)

// Login flow labels (metrics)
const (
	flowTenant   = "tenant"
	flowPlatform = "platform"
)

// Handler orchestrates login, logout and profile requests across both
// principal kinds.
type Handler struct {
	logger     *slog.Logger
	cfg        handlerConfig
	classifier *Classifier
	resolver   *Resolver
	init       *Initializer
	auth       *Authenticator
	issuer     *TokenIssuer
	tokens     TokenStore
	central    CentralStore
	jwt        *JWTManager
}

type handlerConfig struct {
	loginTimeout time.Duration
	debugErrors  bool
}

// NewHandler creates the auth handler wired to the real stores.
func NewHandler(deps *sections.Dependencies, jwtManager *JWTManager) *Handler {
	cfg := deps.Config
	central := NewGormCentralStore(deps.DB.Central)
	provider := &GormProvider{DB: deps.DB}
	limiter := storage.NewRateLimiter(deps.Redis, cfg.RedisPrefix, cfg.EmailScanPerMinute, time.Minute)
	tokens := NewGormTokenStore(deps.DB.Central)
	return newHandler(
		handlerConfig{loginTimeout: cfg.LoginTimeout(), debugErrors: cfg.DebugErrors},
		central,
		provider,
		limiter,
		tokens,
		jwtManager,
		cfg.TenantDBPrefix,
		cfg.TenantDBSuffix,
	)
}

func newHandler(cfg handlerConfig, central CentralStore, provider ConnectionProvider, limiter ScanLimiter, tokens TokenStore, jwtManager *JWTManager, dbPrefix, dbSuffix string) *Handler {
	return &Handler{
		logger:     slog.With("handler", "AuthHandler"),
		cfg:        cfg,
		classifier: NewClassifier(central),
		resolver:   NewResolver(central, provider, limiter, dbPrefix, dbSuffix),
		init:       NewInitializer(central, provider, dbPrefix, dbSuffix),
		auth:       NewAuthenticator(central),
		issuer:     NewTokenIssuer(jwtManager, tokens),
		tokens:     tokens,
		central:    central,
		jwt:        jwtManager,
	}
}

func requestHost(c *gin.Context) string {
	if forwarded := c.GetHeader("X-Forwarded-Host"); forwarded != "" {
		return forwarded
	}
	return c.Request.Host
}

// Login authenticates either a tenant user or a super-admin depending on the
// host the request arrived on.
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.cfg.loginTimeout)
	defer cancel()

	start := time.Now()
	defer func() {
		monitoring.LoginDuration.Observe(time.Since(start).Seconds())
	}()

	rawHost := strings.ToLower(strings.TrimSpace(requestHost(c)))
	normalized := NormalizeHost(rawHost)

	isTenant, err := h.classifier.IsTenantHost(ctx, normalized)
	if err != nil {
		monitoring.Logins.WithLabelValues(flowTenant, "internal_error").Inc()
		h.serverError(c, err)
		return
	}

	if isTenant {
		h.loginTenant(c, ctx, req, normalized, rawHost)
	} else {
		h.loginPlatform(c, ctx, req)
	}
}

func (h *Handler) loginTenant(c *gin.Context, ctx context.Context, req LoginRequest, normalized, rawHost string) {
	tenant, strategy, err := h.resolver.Resolve(ctx, normalized, rawHost)
	if err != nil {
		if errors.Is(err, ErrTenantNotFound) {
			monitoring.Logins.WithLabelValues(flowTenant, "tenant_not_found").Inc()
			c.JSON(http.StatusNotFound, gin.H{
				"error":          "tenant_not_found",
				"message":        "Tenant not found.",
				"host":           normalized,
				"forwarded_host": c.GetHeader("X-Forwarded-Host"),
				"origin":         c.GetHeader("Origin"),
			})
			return
		}
		monitoring.Logins.WithLabelValues(flowTenant, "internal_error").Inc()
		h.serverError(c, err)
		return
	}

	prev := TenantContextFromGin(c)
	tctx, err := h.init.Init(ctx, tenant, prev)
	if err != nil {
		monitoring.Logins.WithLabelValues(flowTenant, "internal_error").Inc()
		h.serverError(c, err)
		return
	}
	if tctx != prev {
		defer func() {
			if err := tctx.Release(); err != nil {
				h.logger.Error("Failed to release tenant context", "tenant", tenant.ID, "error", err)
			}
		}()
	}

	user, err := h.auth.AuthenticateTenantUser(ctx, req.Email, req.Password, tctx)
	if err != nil {
		h.rejectCredentials(c, flowTenant, err)
		return
	}

	// Post-authentication side effects are individually best-effort: a logging
	// or bookkeeping outage never blocks a legitimate login.
	if err := tctx.Store.TouchUserLogin(ctx, user.ID); err != nil {
		h.logger.Warn("Failed to update last login", "user_id", user.ID, "error", err)
	}
	if err := tctx.Store.RecordAudit(ctx, &models.AuditLog{
		UserID:    user.ID,
		Event:     "login",
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}); err != nil {
		h.logger.Warn("Failed to record audit log", "user_id", user.ID, "error", err)
	}
	if err := tctx.Store.RecordActivity(ctx, &models.ActivityLog{
		UserID: user.ID,
		Action: "login",
		Detail: "Logged in",
	}); err != nil {
		h.logger.Warn("Failed to record activity log", "user_id", user.ID, "error", err)
	}

	issued, err := h.issuer.Issue(ctx, user, tenant.ID)
	if err != nil {
		monitoring.Logins.WithLabelValues(flowTenant, "internal_error").Inc()
		h.serverError(c, err)
		return
	}

	monitoring.Logins.WithLabelValues(flowTenant, "success").Inc()
	h.logger.Info("Tenant user logged in",
		"user_id", user.ID,
		"tenant", tenant.ID,
		"strategy", strategy)

	c.JSON(http.StatusOK, LoginResponse{
		Message:   "Login successful",
		User:      toUserResponse(user, tenant.ID),
		Token:     issued.Value,
		TokenType: "Bearer",
	})
}

func (h *Handler) loginPlatform(c *gin.Context, ctx context.Context, req LoginRequest) {
	admin, err := h.auth.AuthenticateSuperAdmin(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrBadCredentials) {
			// Diagnostic only: if the email lives in some tenant database, tell
			// the user to log in there instead of returning a bare 401.
			tenant, scanErr := h.resolver.ResolveByEmail(ctx, req.Email)
			if scanErr == nil {
				wrongDomain := &WrongLoginDomainError{TenantID: tenant.ID}
				h.logger.Info("Tenant credentials used on platform login", "detail", wrongDomain.Error())
				monitoring.Logins.WithLabelValues(flowPlatform, "wrong_login_domain").Inc()
				c.JSON(http.StatusBadRequest, gin.H{
					"error":   "wrong_login_domain",
					"message": "This account belongs to a tenant organization. Please log in from your tenant subdomain instead.",
				})
				return
			}
			if !errors.Is(scanErr, ErrTenantNotFound) {
				h.logger.Warn("Email scan failed", "error", scanErr)
			}
		}
		h.rejectCredentials(c, flowPlatform, err)
		return
	}

	if err := h.central.TouchSuperAdminLogin(ctx, admin.ID); err != nil {
		h.logger.Warn("Failed to update last login", "admin_id", admin.ID, "error", err)
	}

	issued, err := h.issuer.Issue(ctx, admin, "")
	if err != nil {
		monitoring.Logins.WithLabelValues(flowPlatform, "internal_error").Inc()
		h.serverError(c, err)
		return
	}

	monitoring.Logins.WithLabelValues(flowPlatform, "success").Inc()
	h.logger.Info("Super-admin logged in", "admin_id", admin.ID)

	c.JSON(http.StatusOK, LoginResponse{
		Message:   "Login successful",
		User:      toSuperAdminResponse(admin),
		Token:     issued.Value,
		TokenType: "Bearer",
	})
}

func (h *Handler) rejectCredentials(c *gin.Context, flow string, err error) {
	switch {
	case errors.Is(err, ErrAccountInactive):
		monitoring.Logins.WithLabelValues(flow, "account_inactive").Inc()
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "account_inactive",
			"message": "Your account is inactive. Please contact support.",
		})
	case errors.Is(err, ErrBadCredentials):
		monitoring.Logins.WithLabelValues(flow, "bad_credentials").Inc()
		c.JSON(http.StatusUnauthorized, gin.H{
			"error":   "bad_credentials",
			"message": "Invalid email or password.",
		})
	default:
		monitoring.Logins.WithLabelValues(flow, "internal_error").Inc()
		h.serverError(c, err)
	}
}

// Logout deletes the caller's current token record, or all of the principal's
// records with ?all=true. Idempotent: an already-revoked or missing token
// still reports success.
func (h *Handler) Logout(c *gin.Context) {
	if claims := h.claimsFromRequest(c); claims != nil {
		ctx := c.Request.Context()
		var err error
		if c.Query("all") == "true" {
			err = h.tokens.DeleteForPrincipal(ctx, claims.PrincipalType, claims.PrincipalID)
		} else {
			err = h.tokens.DeleteByID(ctx, claims.ID)
		}
		if err != nil {
			h.logger.Warn("Failed to delete token records", "error", err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

// Me returns the authenticated principal's profile.
func (h *Handler) Me(c *gin.Context) {
	claims, ok := ClaimsFromGin(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	ctx := c.Request.Context()

	switch claims.PrincipalType {
	case models.PrincipalTypeSuperAdmin:
		admin, err := h.central.SuperAdminByID(ctx, claims.PrincipalID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, toSuperAdminResponse(admin))

	case models.PrincipalTypeUser:
		tenant, err := h.central.TenantByID(ctx, claims.TenantID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "tenant not found"})
			return
		}
		prev := TenantContextFromGin(c)
		tctx, err := h.init.Init(ctx, tenant, prev)
		if err != nil {
			h.serverError(c, err)
			return
		}
		if tctx != prev {
			defer func() {
				if err := tctx.Release(); err != nil {
					h.logger.Error("Failed to release tenant context", "tenant", tenant.ID, "error", err)
				}
			}()
		}
		user, err := tctx.Store.UserByID(ctx, claims.PrincipalID)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusOK, toUserResponse(user, tenant.ID))

	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	}
}

// claimsFromRequest parses the bearer token leniently: any failure yields nil
// instead of an error response.
func (h *Handler) claimsFromRequest(c *gin.Context) *Claims {
	authHeader := c.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return nil
	}
	claims, err := h.jwt.ValidateToken(parts[1])
	if err != nil {
		return nil
	}
	return claims
}

func (h *Handler) serverError(c *gin.Context, err error) {
	h.logger.Error("Request failed", "error", err)
	message := "internal error"
	if h.cfg.debugErrors {
		message = err.Error()
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":   "internal_error",
		"message": message,
	})
}
