package auth

import (
	"encoding/json"
	"time"

	"smarthousing-backend/sections/models"
)

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents a successful login
type LoginResponse struct {
	Message   string      `json:"message"`
	User      interface{} `json:"user"`
	Token     string      `json:"token"`
	TokenType string      `json:"token_type"`
}

// UserResponse projects a tenant user into API responses
type UserResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	FirstName   string     `json:"firstName"`
	LastName    string     `json:"lastName"`
	Phone       string     `json:"phone,omitempty"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	TenantID    string     `json:"tenantId"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// SuperAdminResponse projects a super-admin into API responses. The role is
// synthesized; super-admins have no role column.
type SuperAdminResponse struct {
	ID          uint       `json:"id"`
	Email       string     `json:"email"`
	Role        string     `json:"role"`
	Permissions []string   `json:"permissions"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

func toUserResponse(user *models.User, tenantID string) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Phone:       user.Phone,
		Role:        user.Role,
		Status:      user.Status,
		TenantID:    tenantID,
		LastLoginAt: user.LastLoginAt,
	}
}

func toSuperAdminResponse(admin *models.SuperAdmin) SuperAdminResponse {
	permissions := []string{}
	if admin.Permissions != "" {
		// Stored as a JSON array; an unreadable value degrades to an empty list.
		_ = json.Unmarshal([]byte(admin.Permissions), &permissions)
	}
	return SuperAdminResponse{
		ID:          admin.ID,
		Email:       admin.Email,
		Role:        models.PrincipalTypeSuperAdmin,
		Permissions: permissions,
		LastLoginAt: admin.LastLoginAt,
	}
}
