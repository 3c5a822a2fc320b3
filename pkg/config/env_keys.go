package config

// EnvPrefix is intentionally empty: every variable spells out its full
// COOP_-prefixed name in its envconfig tag.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv     = "COOP_APP_ENV"
	EnvAppPort    = "COOP_APP_PORT"
	EnvDBDSN      = "COOP_DB_DSN"
	EnvDBHost     = "COOP_DB_HOST"
	EnvDBUser     = "COOP_DB_USER"
	EnvDBName     = "COOP_DB_NAME"
	EnvRedisURL   = "COOP_REDIS_URL"
	EnvJWTSecret  = "COOP_JWT_SECRET"
	EnvJWTIssuer  = "COOP_JWT_ISSUER"
	EnvJWTExpMins = "COOP_JWT_EXPIRATION_MINUTES"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
