package db

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"smarthousing-backend/common"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB holds the central (platform) connection and a pool of per-tenant
// connections keyed by derived database name. The pool replaces the
// mutate-the-default-connection pattern: tenant selection is a value handed to
// the caller, never shared configuration flipped in place. The only shared
// state left is the bookkeeping of which database the "tenant" slot currently
// targets, guarded by mu and restored by the release function UseTenant hands
// out.
type DB struct {
	Central *gorm.DB

	databaseURL  string
	platformConn string
	debug        bool

	mu      sync.Mutex
	tenants map[string]*gorm.DB
	active  string // database the tenant slot currently targets

	// openFn is swapped out in tests; defaults to a real postgres open.
	openFn func(dsn string) (*gorm.DB, error)
}

// Connect establishes the central database connection.
func Connect(cfg *common.Config) (*DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	gormConfig := &gorm.Config{}
	if cfg.DBDebug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	central, err := gorm.Open(postgres.Open(cfg.DatabaseURL), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("Central database connection established")

	db := &DB{
		Central:      central,
		databaseURL:  cfg.DatabaseURL,
		platformConn: cfg.PlatformConnName,
		debug:        cfg.DBDebug,
		tenants:      make(map[string]*gorm.DB),
		active:       cfg.PlatformConnName,
	}
	db.openFn = db.openPostgres
	return db, nil
}

func (db *DB) openPostgres(dsn string) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if db.debug {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	return gorm.Open(postgres.Open(dsn), gormConfig)
}

// TenantDSN rewrites the central database URL to point at a tenant database.
func (db *DB) TenantDSN(dbName string) (string, error) {
	u, err := url.Parse(db.databaseURL)
	if err != nil {
		return "", fmt.Errorf("failed to parse database URL: %w", err)
	}
	if u.Scheme == "" || !strings.Contains(u.Scheme, "postgres") {
		return "", fmt.Errorf("unsupported database URL scheme: %q", u.Scheme)
	}
	u.Path = "/" + dbName
	return u.String(), nil
}

// UseTenant points the tenant slot at the named database and returns the
// handle together with a release function. The caller must invoke release
// (defer it) so the slot is restored to the platform default even on early
// return or panic; leaving it pointed at a tenant database across requests is
// an isolation bug.
func (db *DB) UseTenant(ctx context.Context, dbName string) (*gorm.DB, func() error, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	handle, ok := db.tenants[dbName]
	if !ok {
		dsn, err := db.TenantDSN(dbName)
		if err != nil {
			return nil, nil, err
		}
		handle, err = db.openFn(dsn)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to tenant database %s: %w", dbName, err)
		}
		db.tenants[dbName] = handle
		slog.Info("Tenant database connection established", "database", dbName)
	}

	db.active = dbName
	released := false
	release := func() error {
		db.mu.Lock()
		defer db.mu.Unlock()
		if released {
			return nil
		}
		released = true
		db.active = db.platformConn
		return nil
	}
	return handle, release, nil
}

// Evict drops a pooled tenant connection so the next use reconnects fresh.
// Used when a tenant database turns out to be unreachable.
func (db *DB) Evict(dbName string) {
	db.mu.Lock()
	defer db.mu.Unlock()

	handle, ok := db.tenants[dbName]
	if !ok {
		return
	}
	delete(db.tenants, dbName)
	if sqlDB, err := handle.DB(); err == nil {
		_ = sqlDB.Close()
	}
	slog.Debug("Tenant database connection evicted", "database", dbName)
}

// ActiveConnection reports which database the tenant slot currently targets;
// the platform connection name when no tenant work is in flight.
func (db *DB) ActiveConnection() string {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.active
}

// PlatformConnection returns the platform default connection name.
func (db *DB) PlatformConnection() string {
	return db.platformConn
}

// Close closes the central connection and every pooled tenant connection.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for name, handle := range db.tenants {
		if sqlDB, err := handle.DB(); err == nil {
			_ = sqlDB.Close()
		}
		delete(db.tenants, name)
	}

	if db.Central == nil {
		return nil
	}
	sqlDB, err := db.Central.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying DB: %w", err)
	}
	return sqlDB.Close()
}
