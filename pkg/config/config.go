package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Booking      BookingConfig
	Cron         CronConfig
	API          APIConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if cfg.FeatureFlags.UseSQLite {
		cfg.DB.Driver = DriverSQLite
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DISCOPE_APP_ENV" required:"true"`
	Port         string `envconfig:"DISCOPE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DISCOPE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DISCOPE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DISCOPE_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DISCOPE_DB_DSN"`
	Driver string `envconfig:"DISCOPE_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DISCOPE_DB_HOST"`
	LegacyPort     int    `envconfig:"DISCOPE_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DISCOPE_DB_USER"`
	LegacyPassword string `envconfig:"DISCOPE_DB_PASSWORD"`
	LegacyName     string `envconfig:"DISCOPE_DB_NAME"`
	LegacySSLMode  string `envconfig:"DISCOPE_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DISCOPE_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DISCOPE_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DISCOPE_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DISCOPE_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DISCOPE_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DISCOPE_REDIS_ADDR"`
	Password     string        `envconfig:"DISCOPE_REDIS_PASSWORD"`
	DB           int           `envconfig:"DISCOPE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DISCOPE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DISCOPE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DISCOPE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DISCOPE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DISCOPE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// JWTConfig holds the verification settings for tokens issued by the
// identity provider. Tokens are never minted here outside of tests.
type JWTConfig struct {
	Secret            string `envconfig:"DISCOPE_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DISCOPE_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"DISCOPE_JWT_EXPIRATION_MINUTES" default:"60"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DISCOPE_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DISCOPE_AUTO_MIGRATE" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DISCOPE_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DISCOPE_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DISCOPE_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingsTopic string `envconfig:"DISCOPE_PUBSUB_BOOKINGS_TOPIC" default:"discope-booking-events"`
	PaymentsTopic string `envconfig:"DISCOPE_PUBSUB_PAYMENTS_TOPIC" default:"discope-payment-events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"DISCOPE_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"DISCOPE_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"DISCOPE_OUTBOX_MAX_ATTEMPTS" default:"10"`
	RetentionDays  int `envconfig:"DISCOPE_OUTBOX_RETENTION_DAYS" default:"30"`
}

// BookingConfig carries the defaults the refresh cascade and the workflow
// fall back to when the catalog does not say otherwise.
type BookingConfig struct {
	OptionValidityDays int    `envconfig:"DISCOPE_BOOKING_OPTION_VALIDITY_DAYS" default:"10"`
	DefaultTimeFrom    string `envconfig:"DISCOPE_BOOKING_DEFAULT_TIME_FROM" default:"14:00"`
	DefaultTimeTo      string `envconfig:"DISCOPE_BOOKING_DEFAULT_TIME_TO" default:"10:00"`
	DefaultType        string `envconfig:"DISCOPE_BOOKING_DEFAULT_TYPE" default:"TP"`
	ArchiveAfterDays   int    `envconfig:"DISCOPE_BOOKING_ARCHIVE_AFTER_DAYS" default:"365"`
	DepositPercent     int    `envconfig:"DISCOPE_BOOKING_DEPOSIT_PERCENT" default:"30"`
	BalanceDaysBefore  int    `envconfig:"DISCOPE_BOOKING_BALANCE_DAYS_BEFORE" default:"30"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"DISCOPE_CRON_INTERVAL" default:"1h"`
	LockKey  string        `envconfig:"DISCOPE_CRON_LOCK_KEY" default:"discope:cron:lock"`
	LockTTL  time.Duration `envconfig:"DISCOPE_CRON_LOCK_TTL" default:"55m"`
}

type APIConfig struct {
	CORSOrigins       []string      `envconfig:"DISCOPE_API_CORS_ORIGINS" default:"http://localhost:4200"`
	ImportRateLimit   int           `envconfig:"DISCOPE_API_IMPORT_RATE_LIMIT" default:"30"`
	ImportRateWindow  time.Duration `envconfig:"DISCOPE_API_IMPORT_RATE_WINDOW" default:"1m"`
	CommandRateLimit  int           `envconfig:"DISCOPE_API_COMMAND_RATE_LIMIT" default:"600"`
	CommandRateWindow time.Duration `envconfig:"DISCOPE_API_COMMAND_RATE_WINDOW" default:"1m"`
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
