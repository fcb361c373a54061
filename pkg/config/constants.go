package config

const (
	// EnvPrefix scopes envconfig processing; individual fields carry the
	// fully-qualified variable names so the prefix stays empty.
	EnvPrefix = ""

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "PULPPIXELS_DB_DSN"
	EnvDBHost = "PULPPIXELS_DB_HOST"
	EnvDBUser = "PULPPIXELS_DB_USER"
	EnvDBName = "PULPPIXELS_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
