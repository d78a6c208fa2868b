package models

import (
	"gorm.io/gorm"
)

// AuditLog records security-relevant events inside a tenant database.
// Writes are best-effort; an audit outage never blocks a login.
type AuditLog struct {
	gorm.Model
	UserID    uint   `gorm:"index" json:"userId"`
	Event     string `gorm:"size:100;not null" json:"event"`
	IPAddress string `gorm:"size:64" json:"ipAddress"`
	UserAgent string `gorm:"size:512" json:"userAgent"`
}

// TableName returns the tenant-scoped table name
func (AuditLog) TableName() string {
	return "audit_logs"
}

// ActivityLog records user-facing activity inside a tenant database.
type ActivityLog struct {
	gorm.Model
	UserID uint   `gorm:"index" json:"userId"`
	Action string `gorm:"size:100;not null" json:"action"`
	Detail string `gorm:"type:text" json:"detail"`
}

// TableName returns the tenant-scoped table name
func (ActivityLog) TableName() string {
	return "activity_logs"
}
