package config

const (
	EnvPrefix = "LAWSCHED"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	EnvAppEnv                  = "LAWSCHED_APP_ENV"
	EnvPort                    = "LAWSCHED_APP_PORT"
	EnvDBDSN                   = "LAWSCHED_DB_DSN"
	EnvDBHost                  = "LAWSCHED_DB_HOST"
	EnvDBUser                  = "LAWSCHED_DB_USER"
	EnvDBName                  = "LAWSCHED_DB_NAME"
	EnvRedisURL                = "LAWSCHED_REDIS_URL"
	EnvJWTSecret               = "LAWSCHED_JWT_SECRET"
	EnvJWTIssuer               = "LAWSCHED_JWT_ISSUER"
	EnvJWTExpMins              = "LAWSCHED_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes  = "LAWSCHED_REFRESH_TOKEN_TTL_MINUTES"
	EnvUseSQLite               = "LAWSCHED_USE_SQLITE"
	EnvCORSAllowedOrigins      = "LAWSCHED_CORS_ALLOWED_ORIGINS"
	EnvIntakeRateLimitIPLimit  = "LAWSCHED_INTAKE_RATE_LIMIT_IP_LIMIT"
	EnvIntakeRateLimitWindow   = "LAWSCHED_INTAKE_RATE_LIMIT_WINDOW"
	EnvAllowAdminBootstrapFlag = "LAWSCHED_ALLOW_ADMIN_BOOTSTRAP"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
