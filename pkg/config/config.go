package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App             AppConfig
	DB              DBConfig
	Redis           RedisConfig
	JWT             JWTConfig
	Password        PasswordConfig
	AuthRateLimit   AuthRateLimitConfig
	IntakeRateLimit IntakeRateLimitConfig
	CORS            CORSConfig
	FeatureFlags    FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"LAWSCHED_APP_ENV" required:"true"`
	Port         string `envconfig:"LAWSCHED_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"LAWSCHED_LOG_LEVEL" default:"info"`
	LogFormat    string `envconfig:"LAWSCHED_LOG_FORMAT" default:"json"`
	LogWarnStack bool   `envconfig:"LAWSCHED_LOG_WARN_STACK" default:"false"`
	LoginPath    string `envconfig:"LAWSCHED_LOGIN_PATH" default:"/login"`

	// TrustProxyHeaders takes the client address from X-Forwarded-For. Enable
	// only behind a proxy that overwrites that header.
	TrustProxyHeaders bool `envconfig:"LAWSCHED_TRUST_PROXY_HEADERS" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN        string `envconfig:"LAWSCHED_DB_DSN"`
	Driver     string `envconfig:"LAWSCHED_DB_DRIVER" default:"postgres"`
	SQLitePath string `envconfig:"LAWSCHED_DB_SQLITE_PATH" default:"lawscheduling.db"`

	LegacyHost     string `envconfig:"LAWSCHED_DB_HOST"`
	LegacyPort     int    `envconfig:"LAWSCHED_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"LAWSCHED_DB_USER"`
	LegacyPassword string `envconfig:"LAWSCHED_DB_PASSWORD"`
	LegacyName     string `envconfig:"LAWSCHED_DB_NAME"`
	LegacySSLMode  string `envconfig:"LAWSCHED_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"LAWSCHED_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"LAWSCHED_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"LAWSCHED_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"LAWSCHED_DB_CONN_MAX_IDLE_TIME" default:"10m"`
	SlowQuery       time.Duration `envconfig:"LAWSCHED_DB_SLOW_QUERY" default:"200ms"`
}

type RedisConfig struct {
	URL          string        `envconfig:"LAWSCHED_REDIS_URL"`
	Address      string        `envconfig:"LAWSCHED_REDIS_ADDR"`
	Password     string        `envconfig:"LAWSCHED_REDIS_PASSWORD"`
	DB           int           `envconfig:"LAWSCHED_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"LAWSCHED_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"LAWSCHED_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"LAWSCHED_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"LAWSCHED_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"LAWSCHED_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"LAWSCHED_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"LAWSCHED_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"LAWSCHED_JWT_EXPIRATION_MINUTES" default:"60"`
	RefreshTokenTTLMinutes int    `envconfig:"LAWSCHED_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	MinLength        int `envconfig:"LAWSCHED_PASSWORD_MIN_LENGTH" default:"8"`
	ArgonMemoryKB    int `envconfig:"LAWSCHED_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"LAWSCHED_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"LAWSCHED_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"LAWSCHED_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"LAWSCHED_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow      time.Duration `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit  int           `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit     int           `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	SignupWindow     time.Duration `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_SIGNUP_WINDOW" default:"5m"`
	SignupEmailLimit int           `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_SIGNUP_EMAIL_LIMIT" default:"3"`
	SignupIPLimit    int           `envconfig:"LAWSCHED_AUTH_RATE_LIMIT_SIGNUP_IP_LIMIT" default:"20"`
}

// IntakeRateLimitConfig throttles anonymous submissions to the public intake form.
type IntakeRateLimitConfig struct {
	Window  time.Duration `envconfig:"LAWSCHED_INTAKE_RATE_LIMIT_WINDOW" default:"10m"`
	IPLimit int           `envconfig:"LAWSCHED_INTAKE_RATE_LIMIT_IP_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"LAWSCHED_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite           bool `envconfig:"LAWSCHED_USE_SQLITE" default:"false"`
	AutoMigrate         bool `envconfig:"LAWSCHED_AUTO_MIGRATE" default:"false"`
	AllowAdminBootstrap bool `envconfig:"LAWSCHED_ALLOW_ADMIN_BOOTSTRAP" default:"false"`
}

func (db *DBConfig) ensureDSN(useSQLite bool) error {
	if useSQLite {
		db.Driver = DriverSQLite
		if db.DSN == "" {
			db.DSN = db.SQLitePath
		}
		return nil
	}
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
