package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"smarthousing-backend/sections/models"
)

// In-memory store fakes shared by the package tests.

type memCentralStore struct {
	mu          sync.Mutex
	tenants     map[string]models.Tenant
	domains     map[string]string // domain -> tenant id
	details     map[string]models.TenantDetail
	superAdmins map[string]models.SuperAdmin // email -> admin
	touched     []uint
}

func newMemCentralStore() *memCentralStore {
	return &memCentralStore{
		tenants:     map[string]models.Tenant{},
		domains:     map[string]string{},
		details:     map[string]models.TenantDetail{},
		superAdmins: map[string]models.SuperAdmin{},
	}
}

func (s *memCentralStore) addTenant(id string) {
	s.tenants[id] = models.Tenant{ID: id}
}

func (s *memCentralStore) addDomain(domain, tenantID string) {
	s.domains[domain] = tenantID
}

func (s *memCentralStore) addDetail(slug, tenantID, status string) {
	s.details[slug] = models.TenantDetail{Slug: slug, TenantID: tenantID, Status: status}
}

func (s *memCentralStore) addSuperAdmin(admin models.SuperAdmin) {
	s.superAdmins[admin.Email] = admin
}

func (s *memCentralStore) DomainExists(_ context.Context, host string) (bool, error) {
	_, ok := s.domains[host]
	return ok, nil
}

func (s *memCentralStore) TenantByDomain(ctx context.Context, domain string) (*models.Tenant, error) {
	id, ok := s.domains[domain]
	if !ok {
		return nil, ErrNoRecord
	}
	return s.TenantByID(ctx, id)
}

func (s *memCentralStore) TenantByDomainPattern(ctx context.Context, slug string) (*models.Tenant, error) {
	for domain, id := range s.domains {
		if domain == slug || (len(domain) > len(slug) && domain[:len(slug)+1] == slug+".") {
			return s.TenantByID(ctx, id)
		}
	}
	return nil, ErrNoRecord
}

func (s *memCentralStore) ActiveDetailBySlug(_ context.Context, slug string) (*models.TenantDetail, error) {
	detail, ok := s.details[slug]
	if !ok || detail.Status != models.TenantStatusActive {
		return nil, ErrNoRecord
	}
	return &detail, nil
}

func (s *memCentralStore) TenantByID(_ context.Context, id string) (*models.Tenant, error) {
	tenant, ok := s.tenants[id]
	if !ok {
		return nil, ErrNoRecord
	}
	return &tenant, nil
}

func (s *memCentralStore) Tenants(_ context.Context) ([]models.Tenant, error) {
	out := make([]models.Tenant, 0, len(s.tenants))
	for _, t := range s.tenants {
		out = append(out, t)
	}
	return out, nil
}

func (s *memCentralStore) SuperAdminByEmail(_ context.Context, email string) (*models.SuperAdmin, error) {
	admin, ok := s.superAdmins[email]
	if !ok {
		return nil, ErrNoRecord
	}
	return &admin, nil
}

func (s *memCentralStore) SuperAdminByID(_ context.Context, id uint) (*models.SuperAdmin, error) {
	for _, admin := range s.superAdmins {
		if admin.ID == id {
			return &admin, nil
		}
	}
	return nil, ErrNoRecord
}

func (s *memCentralStore) TouchSuperAdminLogin(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, id)
	return nil
}

type memTenantStore struct {
	mu         sync.Mutex
	users      map[string]models.User // email -> user
	audits     []models.AuditLog
	activities []models.ActivityLog
	touched    []uint
}

func newMemTenantStore() *memTenantStore {
	return &memTenantStore{users: map[string]models.User{}}
}

func (s *memTenantStore) addUser(user models.User) {
	s.users[user.Email] = user
}

func (s *memTenantStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.users[email]
	if !ok {
		return nil, ErrNoRecord
	}
	return &user, nil
}

func (s *memTenantStore) UserByID(_ context.Context, id uint) (*models.User, error) {
	for _, user := range s.users {
		if user.ID == id {
			return &user, nil
		}
	}
	return nil, ErrNoRecord
}

func (s *memTenantStore) UserExistsByEmail(_ context.Context, email string) (bool, error) {
	_, ok := s.users[email]
	return ok, nil
}

func (s *memTenantStore) TouchUserLogin(_ context.Context, id uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, id)
	return nil
}

func (s *memTenantStore) RecordAudit(_ context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audits = append(s.audits, *entry)
	return nil
}

func (s *memTenantStore) RecordActivity(_ context.Context, entry *models.ActivityLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities = append(s.activities, *entry)
	return nil
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]models.AccessToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]models.AccessToken{}}
}

func (s *memTokenStore) Create(_ context.Context, token *models.AccessToken) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.ID] = *token
	return nil
}

func (s *memTokenStore) StampTenant(_ context.Context, recordID, tenantID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	token, ok := s.tokens[recordID]
	if !ok {
		return ErrNoRecord
	}
	token.TenantID = &tenantID
	s.tokens[recordID] = token
	return nil
}

func (s *memTokenStore) Exists(_ context.Context, recordID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tokens[recordID]
	return ok, nil
}

func (s *memTokenStore) DeleteByID(_ context.Context, recordID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, recordID)
	return nil
}

func (s *memTokenStore) DeleteForPrincipal(_ context.Context, principalType string, principalID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, token := range s.tokens {
		if token.PrincipalType == principalType && token.PrincipalID == principalID {
			delete(s.tokens, id)
		}
	}
	return nil
}

func (s *memTokenStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tokens)
}

const testPlatformConn = "central"

// memProvider mimics the keyed connection pool, tracking which database the
// tenant slot currently targets so tests can assert restoration.
type memProvider struct {
	mu     sync.Mutex
	stores map[string]*memTenantStore // db name -> store
	broken map[string]bool            // db names that fail to connect
	active string
	evicts []string
}

func newMemProvider() *memProvider {
	return &memProvider{
		stores: map[string]*memTenantStore{},
		broken: map[string]bool{},
		active: testPlatformConn,
	}
}

func (p *memProvider) addStore(dbName string, store *memTenantStore) {
	p.stores[dbName] = store
}

func (p *memProvider) UseTenant(_ context.Context, dbName string) (TenantStore, func() error, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.broken[dbName] {
		return nil, nil, errors.New("connection refused")
	}
	store, ok := p.stores[dbName]
	if !ok {
		store = newMemTenantStore()
		p.stores[dbName] = store
	}
	p.active = dbName
	release := func() error {
		p.mu.Lock()
		defer p.mu.Unlock()
		p.active = testPlatformConn
		return nil
	}
	return store, release, nil
}

func (p *memProvider) Evict(dbName string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.evicts = append(p.evicts, dbName)
}

func (p *memProvider) activeConn() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

type stubLimiter struct {
	allow bool
	err   error
	calls int
}

func (l *stubLimiter) Allow(context.Context, string) (bool, error) {
	l.calls++
	return l.allow, l.err
}

func activeUser(id uint, email, password string) models.User {
	user := models.User{
		Email:        email,
		PasswordHash: hashPassword(password),
		Status:       models.UserStatusActive,
		Role:         "member",
	}
	user.ID = id
	user.CreatedAt = time.Now()
	return user
}
