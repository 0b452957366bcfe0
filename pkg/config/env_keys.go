package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "KUMIKO"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv   = "KUMIKO_APP_ENV"
	EnvPort     = "KUMIKO_APP_PORT"
	EnvRedisURL = "KUMIKO_REDIS_URL"

	EnvJWTSecret  = "KUMIKO_JWT_SECRET"
	EnvJWTIssuer  = "KUMIKO_JWT_ISSUER"
	EnvJWTExpMins = "KUMIKO_JWT_EXPIRATION_MINUTES"

	EnvDBDSN  = "KUMIKO_DB_DSN"
	EnvDBHost = "KUMIKO_DB_HOST"
	EnvDBUser = "KUMIKO_DB_USER"
	EnvDBName = "KUMIKO_DB_NAME"
)

var componentDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
