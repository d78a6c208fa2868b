package models

import (
	"time"

	"gorm.io/gorm"
)

// Principal kinds recorded on access tokens
const (
	PrincipalTypeSuperAdmin = "super-admin"
	PrincipalTypeUser       = "user"
)

// Principal is the capability shared by both account kinds. The two kinds
// never share a table or an id-space; a successful authentication binds
// exactly one of them.
type Principal interface {
	PrincipalID() uint
	PrincipalEmail() string
	PrincipalType() string
}

// SuperAdmin is a platform-level administrator. Lives in the central database
// only.
type SuperAdmin struct {
	gorm.Model
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	IsActive     bool       `gorm:"default:true" json:"isActive"`
	Permissions  string     `gorm:"type:jsonb" json:"-"` // JSON array of permission names
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName returns the central table name
func (SuperAdmin) TableName() string {
	return "super_admins"
}

func (a *SuperAdmin) PrincipalID() uint      { return a.ID }
func (a *SuperAdmin) PrincipalEmail() string { return a.Email }
func (a *SuperAdmin) PrincipalType() string  { return PrincipalTypeSuperAdmin }

// User status values (tenant databases)
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// User is a tenant-organization member. Lives inside the tenant's isolated
// database; emails are unique per tenant, not globally.
type User struct {
	gorm.Model
	Email        string     `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	FirstName    string     `gorm:"size:100" json:"firstName"`
	LastName     string     `gorm:"size:100" json:"lastName"`
	Phone        string     `gorm:"size:50" json:"phone"`
	Status       string     `gorm:"size:20;not null;default:'active'" json:"status"`
	Role         string     `gorm:"size:50;default:'member'" json:"role"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// TableName returns the tenant-scoped table name
func (User) TableName() string {
	return "users"
}

func (u *User) PrincipalID() uint      { return u.ID }
func (u *User) PrincipalEmail() string { return u.Email }
func (u *User) PrincipalType() string  { return PrincipalTypeUser }
