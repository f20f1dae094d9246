package config

// EnvPrefix scopes every environment variable the service reads.
const EnvPrefix = "dataflex"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "DATAFLEX_DB_DSN"
	EnvDBHost = "DATAFLEX_DB_HOST"
	EnvDBUser = "DATAFLEX_DB_USER"
	EnvDBName = "DATAFLEX_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
