package models

import (
	"time"
)

// Tenant is the platform-level registry record for a customer organization.
// Each tenant owns an isolated database whose name is derived from the tenant
// id (see DatabaseName). Rows are created by provisioning; this service only
// reads them.
type Tenant struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	Domains []Domain      `gorm:"foreignKey:TenantID" json:"domains,omitempty"`
	Detail  *TenantDetail `gorm:"foreignKey:TenantID" json:"detail,omitempty"`
}

// TableName returns the central table name
func (Tenant) TableName() string {
	return "tenants"
}

// DatabaseName derives the tenant's isolated database name.
func (t *Tenant) DatabaseName(prefix, suffix string) string {
	return prefix + t.ID + suffix
}

// Domain maps a custom domain or platform-assigned subdomain to a tenant.
type Domain struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Domain    string    `gorm:"size:255;not null;uniqueIndex" json:"domain"`
	TenantID  string    `gorm:"size:64;not null;index" json:"tenantId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the central table name
func (Domain) TableName() string {
	return "domains"
}

// Tenant detail status values
const (
	TenantStatusActive   = "active"
	TenantStatusInactive = "inactive"
)

// TenantDetail carries the human-readable slug used for subdomain-pattern
// resolution in environments without explicit Domain rows (local dev).
type TenantDetail struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	TenantID  string    `gorm:"size:64;not null;index" json:"tenantId"`
	Slug      string    `gorm:"size:63;not null;uniqueIndex" json:"slug"`
	Name      string    `gorm:"size:255" json:"name"`
	Status    string    `gorm:"size:20;not null;default:'active'" json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName returns the central table name
func (TenantDetail) TableName() string {
	return "tenant_details"
}
