package auth

import (
	"errors"
	"fmt"
)

var (
	// ErrTenantNotFound means no resolution strategy mapped the host to a tenant.
	ErrTenantNotFound = errors.New("tenant not found")
	// ErrBadCredentials collapses unknown-email and wrong-password so callers
	// cannot enumerate accounts.
	ErrBadCredentials = errors.New("invalid credentials")
	// ErrAccountInactive means the credentials were correct but the account is
	// disabled. Surfaced to the user, unlike ErrBadCredentials detail.
	ErrAccountInactive = errors.New("account inactive")
	// ErrNoRecord is returned by stores when a lookup matches nothing.
	ErrNoRecord = errors.New("no matching record")
)

// WrongLoginDomainError is returned when super-admin authentication fails but
// the email belongs to a tenant organization; the user should log in from
// their tenant subdomain instead.
type WrongLoginDomainError struct {
	TenantID string
}

func (e *WrongLoginDomainError) Error() string {
	return fmt.Sprintf("account belongs to tenant %s", e.TenantID)
}
