package config

// EnvPrefix is left empty because every field tag spells out its full variable name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "DIRECTSALES_APP_ENV"
	EnvPort                   = "DIRECTSALES_APP_PORT"
	EnvDBDSN                  = "DIRECTSALES_DB_DSN"
	EnvDBHost                 = "DIRECTSALES_DB_HOST"
	EnvDBUser                 = "DIRECTSALES_DB_USER"
	EnvDBName                 = "DIRECTSALES_DB_NAME"
	EnvDBPassword             = "DIRECTSALES_DB_PASSWORD"
	EnvRedisURL               = "DIRECTSALES_REDIS_URL"
	EnvJWTSecret              = "DIRECTSALES_JWT_SECRET"
	EnvJWTIssuer              = "DIRECTSALES_JWT_ISSUER"
	EnvJWTExpMins             = "DIRECTSALES_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "DIRECTSALES_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "DIRECTSALES_GCP_PROJECT_ID"
	EnvPubSubSalesTopic       = "DIRECTSALES_PUBSUB_SALES_TOPIC"
	EnvPubSubInventoryTopic   = "DIRECTSALES_PUBSUB_INVENTORY_TOPIC"
	EnvSalesOrphanGrace       = "DIRECTSALES_SALES_ORPHAN_GRACE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
