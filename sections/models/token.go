package models

import (
	"time"
)

// AccessToken is the persisted record behind a bearer token. The record id is
// embedded in the JWT as the jti claim, so logout can revoke a token by
// deleting its row. Tenant-scoped tokens carry a non-null TenantID.
type AccessToken struct {
	ID            string     `gorm:"primaryKey;size:36" json:"id"` // UUID, JWT jti
	TokenHash     string     `gorm:"size:64;not null;uniqueIndex" json:"-"`
	PrincipalType string     `gorm:"size:20;not null;index:idx_token_principal" json:"principalType"`
	PrincipalID   uint       `gorm:"not null;index:idx_token_principal" json:"principalId"`
	TenantID      *string    `gorm:"size:64" json:"tenantId,omitempty"`
	CreatedAt     time.Time  `json:"createdAt"`
	LastUsedAt    *time.Time `json:"lastUsedAt,omitempty"`
}

// TableName returns the central table name
func (AccessToken) TableName() string {
	return "access_tokens"
}
