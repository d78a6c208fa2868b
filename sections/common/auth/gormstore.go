package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"smarthousing-backend/db"
	"smarthousing-backend/sections/models"

	"gorm.io/gorm"
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNoRecord
	}
	return err
}

// GormCentralStore implements CentralStore against the central database.
type GormCentralStore struct {
	db *gorm.DB
}

// NewGormCentralStore creates a central store backed by gorm
func NewGormCentralStore(g *gorm.DB) *GormCentralStore {
	return &GormCentralStore{db: g}
}

func (s *GormCentralStore) DomainExists(ctx context.Context, host string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Domain{}).Where("domain = ?", host).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query domains: %w", err)
	}
	return count > 0, nil
}

func (s *GormCentralStore) TenantByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	var row models.Domain
	if err := s.db.WithContext(ctx).Where("domain = ?", domain).First(&row).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return s.TenantByID(ctx, row.TenantID)
}

func (s *GormCentralStore) TenantByDomainPattern(ctx context.Context, slug string) (*models.Tenant, error) {
	var row models.Domain
	err := s.db.WithContext(ctx).
		Where("domain LIKE ? OR domain = ?", slug+".%", slug).
		First(&row).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s.TenantByID(ctx, row.TenantID)
}

func (s *GormCentralStore) ActiveDetailBySlug(ctx context.Context, slug string) (*models.TenantDetail, error) {
	var detail models.TenantDetail
	err := s.db.WithContext(ctx).
		Where("slug = ? AND status = ?", slug, models.TenantStatusActive).
		First(&detail).Error
	if err != nil {
		return nil, translateNotFound(err)
	}
	return &detail, nil
}

func (s *GormCentralStore) TenantByID(ctx context.Context, id string) (*models.Tenant, error) {
	var tenant models.Tenant
	if err := s.db.WithContext(ctx).First(&tenant, "id = ?", id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &tenant, nil
}

func (s *GormCentralStore) Tenants(ctx context.Context) ([]models.Tenant, error) {
	var tenants []models.Tenant
	if err := s.db.WithContext(ctx).Find(&tenants).Error; err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	return tenants, nil
}

func (s *GormCentralStore) SuperAdminByEmail(ctx context.Context, email string) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&admin).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &admin, nil
}

func (s *GormCentralStore) SuperAdminByID(ctx context.Context, id uint) (*models.SuperAdmin, error) {
	var admin models.SuperAdmin
	if err := s.db.WithContext(ctx).First(&admin, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &admin, nil
}

func (s *GormCentralStore) TouchSuperAdminLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.SuperAdmin{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

// GormTenantStore implements TenantStore against one tenant database.
type GormTenantStore struct {
	db *gorm.DB
}

// NewGormTenantStore creates a tenant store backed by gorm
func NewGormTenantStore(g *gorm.DB) *GormTenantStore {
	return &GormTenantStore{db: g}
}

func (s *GormTenantStore) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (s *GormTenantStore) UserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translateNotFound(err)
	}
	return &user, nil
}

func (s *GormTenantStore) UserExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query users: %w", err)
	}
	return count > 0, nil
}

func (s *GormTenantStore) TouchUserLogin(ctx context.Context, id uint) error {
	return s.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Update("last_login_at", time.Now()).Error
}

func (s *GormTenantStore) RecordAudit(ctx context.Context, entry *models.AuditLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

func (s *GormTenantStore) RecordActivity(ctx context.Context, entry *models.ActivityLog) error {
	return s.db.WithContext(ctx).Create(entry).Error
}

// GormTokenStore implements TokenStore against the central database.
type GormTokenStore struct {
	db *gorm.DB
}

// NewGormTokenStore creates a token store backed by gorm
func NewGormTokenStore(g *gorm.DB) *GormTokenStore {
	return &GormTokenStore{db: g}
}

func (s *GormTokenStore) Create(ctx context.Context, token *models.AccessToken) error {
	return s.db.WithContext(ctx).Create(token).Error
}

func (s *GormTokenStore) StampTenant(ctx context.Context, recordID, tenantID string) error {
	return s.db.WithContext(ctx).
		Model(&models.AccessToken{}).
		Where("id = ?", recordID).
		Update("tenant_id", tenantID).Error
}

func (s *GormTokenStore) Exists(ctx context.Context, recordID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.AccessToken{}).Where("id = ?", recordID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to query access tokens: %w", err)
	}
	return count > 0, nil
}

func (s *GormTokenStore) DeleteByID(ctx context.Context, recordID string) error {
	return s.db.WithContext(ctx).Delete(&models.AccessToken{}, "id = ?", recordID).Error
}

func (s *GormTokenStore) DeleteForPrincipal(ctx context.Context, principalType string, principalID uint) error {
	return s.db.WithContext(ctx).
		Delete(&models.AccessToken{}, "principal_type = ? AND principal_id = ?", principalType, principalID).Error
}

// GormProvider adapts the keyed tenant connection pool to ConnectionProvider.
type GormProvider struct {
	DB *db.DB
}

func (p *GormProvider) UseTenant(ctx context.Context, dbName string) (TenantStore, func() error, error) {
	handle, release, err := p.DB.UseTenant(ctx, dbName)
	if err != nil {
		return nil, nil, err
	}
	return NewGormTenantStore(handle), release, nil
}

func (p *GormProvider) Evict(dbName string) {
	p.DB.Evict(dbName)
}
