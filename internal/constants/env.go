package constants

const (
	// EnvDBConnection holds a full Postgres connection string, password allowed
	EnvDBConnection = "TIMEBOX_DB_CONNECTION"
	// EnvAddr overrides the default listen address of the web surface
	EnvAddr = "TIMEBOX_ADDR"

	// Discrete Postgres settings, read when no connection string is given
	EnvDBName     = "DB_NAME"
	EnvDBUser     = "DB_USER"
	EnvDBPassword = "DB_PASSWORD"
	EnvDBHost     = "DB_HOST"
	EnvDBPort     = "DB_PORT"
	EnvDBSSLMode  = "DB_SSLMODE"
)
