package common

const (
	PRIVATE_CREDENTIALS_DOTENV = ".env.private"
	DEFAULT_CONFIG_DIR         = ".config/"
	DEFAULT_CONFIG_FILE        = "config.json"

	DEFAULT_LISTEN_ADDR   = ":4000"
	DEFAULT_REDIS_ADDR    = "localhost:6379"
	DEFAULT_REDIS_PREFIX  = "smarthousing:"
	DEFAULT_DB_SUFFIX     = "_smart_housing"
	DEFAULT_PLATFORM_CONN = "central"

	DEFAULT_LOGIN_TIMEOUT_SECONDS = 15
	DEFAULT_EMAIL_SCAN_PER_MINUTE = 3

	DEFAULT_JWT_ISSUER       = "smarthousing-backend"
	DEFAULT_JWT_EXPIRY_HOURS = 24
)
