package config

// EnvPrefix is handed to envconfig; every field also declares its full name.
const EnvPrefix = "DISCOPE"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const (
	EnvAppEnv        = "DISCOPE_APP_ENV"
	EnvPort          = "DISCOPE_APP_PORT"
	EnvLogLevel      = "DISCOPE_LOG_LEVEL"
	EnvDBDSN         = "DISCOPE_DB_DSN"
	EnvDBHost        = "DISCOPE_DB_HOST"
	EnvDBPort        = "DISCOPE_DB_PORT"
	EnvDBUser        = "DISCOPE_DB_USER"
	EnvDBPassword    = "DISCOPE_DB_PASSWORD"
	EnvDBName        = "DISCOPE_DB_NAME"
	EnvRedisURL      = "DISCOPE_REDIS_URL"
	EnvJWTSecret     = "DISCOPE_JWT_SECRET"
	EnvJWTIssuer     = "DISCOPE_JWT_ISSUER"
	EnvUseSQLite     = "DISCOPE_USE_SQLITE"
	EnvOptionDays    = "DISCOPE_BOOKING_OPTION_VALIDITY_DAYS"
	EnvBookingsTopic = "DISCOPE_PUBSUB_BOOKINGS_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
