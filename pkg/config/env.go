package config

// EnvPrefix namespaces every variable read by envconfig.
const EnvPrefix = "CATALOG"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	StorageDriverLocal = "local"
	StorageDriverGCS   = "gcs"
)

const (
	EnvAppEnv      = "CATALOG_APP_ENV"
	EnvPort        = "CATALOG_APP_PORT"
	EnvDBDSN       = "CATALOG_DB_DSN"
	EnvDBHost      = "CATALOG_DB_HOST"
	EnvDBUser      = "CATALOG_DB_USER"
	EnvDBName      = "CATALOG_DB_NAME"
	EnvUseSQLite   = "CATALOG_USE_SQLITE"
	EnvRedisURL    = "CATALOG_REDIS_URL"
	EnvJWTSecret   = "CATALOG_JWT_SECRET"
	EnvJWTIssuer   = "CATALOG_JWT_ISSUER"
	EnvJWTExpMins  = "CATALOG_JWT_EXPIRATION_MINUTES"
	EnvStorage     = "CATALOG_STORAGE_DRIVER"
	EnvUploadDir   = "CATALOG_UPLOAD_DIR"
	EnvGCSBucket   = "CATALOG_GCS_BUCKET_NAME"
	EnvCORSOrigins = "CATALOG_CORS_ALLOWED_ORIGINS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
