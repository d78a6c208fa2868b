package auth

import (
	"context"
	"errors"
	"log/slog"

	"smarthousing-backend/sections/models"

	"golang.org/x/crypto/bcrypt"
)

// Authenticator validates credentials for both principal kinds. Each method
// consults exactly one store: super-admins live only in the central database,
// tenant users only in their tenant's database. Emails colliding across the
// two stores must never let one kind authenticate through the other's path.
type Authenticator struct {
	central CentralStore
	logger  *slog.Logger
}

// NewAuthenticator creates a credential authenticator
func NewAuthenticator(central CentralStore) *Authenticator {
	return &Authenticator{
		central: central,
		logger:  slog.With("component", "Authenticator"),
	}
}

// AuthenticateSuperAdmin validates credentials against the central store only.
func (a *Authenticator) AuthenticateSuperAdmin(ctx context.Context, email, password string) (*models.SuperAdmin, error) {
	admin, err := a.central.SuperAdminByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	if !admin.IsActive {
		return nil, ErrAccountInactive
	}

	return admin, nil
}

// AuthenticateTenantUser validates credentials against the already-initialized
// tenant connection only.
func (a *Authenticator) AuthenticateTenantUser(ctx context.Context, email, password string, tctx *TenantContext) (*models.User, error) {
	if tctx == nil || tctx.Store == nil {
		return nil, errors.New("tenant context not initialized")
	}

	user, err := tctx.Store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNoRecord) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}

	if user.Status != models.UserStatusActive {
		return nil, ErrAccountInactive
	}

	return user, nil
}
