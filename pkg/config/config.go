package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Outbox        OutboxConfig
	Sales         SalesConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DIRECTSALES_APP_ENV" required:"true"`
	Port         string `envconfig:"DIRECTSALES_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DIRECTSALES_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DIRECTSALES_LOG_WARN_STACK" default:"false"`
	CORSOrigins  string `envconfig:"DIRECTSALES_CORS_ORIGINS" default:"*"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

// AllowedOrigins splits the comma separated CORS origin list.
func (a AppConfig) AllowedOrigins() []string {
	parts := strings.Split(a.CORSOrigins, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

type DBConfig struct {
	DSN    string `envconfig:"DIRECTSALES_DB_DSN"`
	Driver string `envconfig:"DIRECTSALES_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DIRECTSALES_DB_HOST"`
	LegacyPort     int    `envconfig:"DIRECTSALES_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DIRECTSALES_DB_USER"`
	LegacyPassword string `envconfig:"DIRECTSALES_DB_PASSWORD"`
	LegacyName     string `envconfig:"DIRECTSALES_DB_NAME"`
	LegacySSLMode  string `envconfig:"DIRECTSALES_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DIRECTSALES_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DIRECTSALES_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DIRECTSALES_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DIRECTSALES_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DIRECTSALES_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DIRECTSALES_REDIS_ADDR"`
	Password     string        `envconfig:"DIRECTSALES_REDIS_PASSWORD"`
	DB           int           `envconfig:"DIRECTSALES_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DIRECTSALES_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DIRECTSALES_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DIRECTSALES_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DIRECTSALES_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DIRECTSALES_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DIRECTSALES_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DIRECTSALES_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DIRECTSALES_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DIRECTSALES_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DIRECTSALES_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DIRECTSALES_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DIRECTSALES_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DIRECTSALES_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DIRECTSALES_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DIRECTSALES_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DIRECTSALES_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DIRECTSALES_AUTO_MIGRATE" default:"false"`
	// EmitEvents toggles writing domain events to the outbox from request paths.
	EmitEvents bool `envconfig:"DIRECTSALES_EMIT_EVENTS" default:"true"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DIRECTSALES_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DIRECTSALES_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DIRECTSALES_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	SalesTopic     string `envconfig:"DIRECTSALES_PUBSUB_SALES_TOPIC" default:"ds-sales-events"`
	InventoryTopic string `envconfig:"DIRECTSALES_PUBSUB_INVENTORY_TOPIC" default:"ds-inventory-events"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"DIRECTSALES_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"DIRECTSALES_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"DIRECTSALES_OUTBOX_MAX_ATTEMPTS" default:"10"`
	Retention      time.Duration `envconfig:"DIRECTSALES_OUTBOX_RETENTION" default:"720h"`
}

type SalesConfig struct {
	IdempotencyTTL       time.Duration `envconfig:"DIRECTSALES_SALES_IDEMPOTENCY_TTL" default:"24h"`
	OrphanGracePeriod    time.Duration `envconfig:"DIRECTSALES_SALES_ORPHAN_GRACE" default:"15m"`
	SubscriptionCacheTTL time.Duration `envconfig:"DIRECTSALES_SUBSCRIPTION_CACHE_TTL" default:"5m"`
	DefaultMinStock      int           `envconfig:"DIRECTSALES_INVENTORY_DEFAULT_MIN_STOCK" default:"2"`
}

type CronConfig struct {
	Interval         time.Duration `envconfig:"DIRECTSALES_CRON_INTERVAL" default:"5m"`
	LockTTL          time.Duration `envconfig:"DIRECTSALES_CRON_LOCK_TTL" default:"4m"`
	AdjustmentsBatch int           `envconfig:"DIRECTSALES_CRON_ADJUSTMENTS_BATCH" default:"100"`
	MaxAdjustTries   int           `envconfig:"DIRECTSALES_CRON_ADJUSTMENT_MAX_ATTEMPTS" default:"20"`
}

func (db *DBConfig) ensureDSN() error {
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
