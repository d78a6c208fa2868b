package common

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"strings"
	"time"
)

type Config struct {
	ListenAddr string `json:"listen_addr"`

	// DatabaseURL points at the central (platform) database. Tenant databases
	// share the same server; only the database name differs.
	DatabaseURL      string `json:"database_url"`
	TenantDBPrefix   string `json:"tenant_db_prefix"`
	TenantDBSuffix   string `json:"tenant_db_suffix"`
	PlatformConnName string `json:"platform_conn_name"`

	RedisAddr     string `json:"redis_addr"`
	RedisPassword string `json:"redis_password"`
	RedisPrefix   string `json:"redis_prefix"`

	LoginTimeoutSeconds int `json:"login_timeout_seconds"`
	EmailScanPerMinute  int `json:"email_scan_per_minute"`

	JWTIssuer      string `json:"jwt_issuer"`
	JWTExpiryHours int    `json:"jwt_expiry_hours"`

	DebugErrors bool `json:"debug_errors"`
	DBDebug     bool `json:"db_debug"`
}

func LoadConfig(dir string) (*Config, error) {
	cfg := DefaultConfig()

	// Load config (JSON + env overrides)
	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = DEFAULT_CONFIG_FILE
	}

	if !strings.HasPrefix(configPath, "/") && dir != "" {
		configPath = path.Join(dir, configPath)
	}

	if _, err := os.Stat(configPath); err == nil {
		fileCfg, err := LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.applyConfigOverrides(fileCfg)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

func LoadConfigFile(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		f, err := os.Open(path)
		if err == nil {
			defer f.Close()
			dec := json.NewDecoder(f)
			_ = dec.Decode(&cfg) // ignore error, fallback to env/defaults
		}
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		ListenAddr:          DEFAULT_LISTEN_ADDR,
		DatabaseURL:         "",
		TenantDBPrefix:      "",
		TenantDBSuffix:      DEFAULT_DB_SUFFIX,
		PlatformConnName:    DEFAULT_PLATFORM_CONN,
		RedisAddr:           DEFAULT_REDIS_ADDR,
		RedisPassword:       "",
		RedisPrefix:         DEFAULT_REDIS_PREFIX,
		LoginTimeoutSeconds: DEFAULT_LOGIN_TIMEOUT_SECONDS,
		EmailScanPerMinute:  DEFAULT_EMAIL_SCAN_PER_MINUTE,
		JWTIssuer:           DEFAULT_JWT_ISSUER,
		JWTExpiryHours:      DEFAULT_JWT_EXPIRY_HOURS,
		DebugErrors:         false,
		DBDebug:             false,
	}
}

// LoginTimeout bounds the full login flow for a single request.
func (c *Config) LoginTimeout() time.Duration {
	secs := c.LoginTimeoutSeconds
	if secs <= 0 {
		secs = DEFAULT_LOGIN_TIMEOUT_SECONDS
	}
	return time.Duration(secs) * time.Second
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("TENANT_DB_PREFIX"); v != "" {
		c.TenantDBPrefix = v
	}
	if v := os.Getenv("TENANT_DB_SUFFIX"); v != "" {
		c.TenantDBSuffix = v
	}
	if v := os.Getenv("PLATFORM_CONN_NAME"); v != "" {
		c.PlatformConnName = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.RedisPassword = v
	}
	if v := os.Getenv("REDIS_PREFIX"); v != "" {
		c.RedisPrefix = v
	}
	if v := os.Getenv("LOGIN_TIMEOUT_SECONDS"); v != "" {
		c.LoginTimeoutSeconds = atoiOrDefault(v, c.LoginTimeoutSeconds)
	}
	if v := os.Getenv("EMAIL_SCAN_PER_MINUTE"); v != "" {
		c.EmailScanPerMinute = atoiOrDefault(v, c.EmailScanPerMinute)
	}
	if v := os.Getenv("JWT_ISSUER"); v != "" {
		c.JWTIssuer = v
	}
	if v := os.Getenv("JWT_EXPIRY_HOURS"); v != "" {
		c.JWTExpiryHours = atoiOrDefault(v, c.JWTExpiryHours)
	}
	if v := os.Getenv("DEBUG_ERRORS"); v != "" {
		c.DebugErrors = strings.ToLower(v) == "true" || v == "1"
	}
	if v := os.Getenv("DB_DEBUG"); v != "" {
		c.DBDebug = strings.ToLower(v) == "true" || v == "1"
	}
}

func (c *Config) applyConfigOverrides(cfg *Config) {
	if cfg.ListenAddr != "" {
		c.ListenAddr = cfg.ListenAddr
	}
	if cfg.DatabaseURL != "" {
		c.DatabaseURL = cfg.DatabaseURL
	}
	if cfg.TenantDBPrefix != "" {
		c.TenantDBPrefix = cfg.TenantDBPrefix
	}
	if cfg.TenantDBSuffix != "" {
		c.TenantDBSuffix = cfg.TenantDBSuffix
	}
	if cfg.PlatformConnName != "" {
		c.PlatformConnName = cfg.PlatformConnName
	}
	if cfg.RedisAddr != "" {
		c.RedisAddr = cfg.RedisAddr
	}
	if cfg.RedisPassword != "" {
		c.RedisPassword = cfg.RedisPassword
	}
	if cfg.RedisPrefix != "" {
		c.RedisPrefix = cfg.RedisPrefix
	}
	if cfg.LoginTimeoutSeconds != 0 {
		c.LoginTimeoutSeconds = cfg.LoginTimeoutSeconds
	}
	if cfg.EmailScanPerMinute != 0 {
		c.EmailScanPerMinute = cfg.EmailScanPerMinute
	}
	if cfg.JWTIssuer != "" {
		c.JWTIssuer = cfg.JWTIssuer
	}
	if cfg.JWTExpiryHours != 0 {
		c.JWTExpiryHours = cfg.JWTExpiryHours
	}
	c.DebugErrors = cfg.DebugErrors
	c.DBDebug = cfg.DBDebug
}

func atoiOrDefault(s string, def int) int {
	var n int
	_, err := fmt.Sscanf(s, "%d", &n)
	if err != nil {
		return def
	}
	return n
}
