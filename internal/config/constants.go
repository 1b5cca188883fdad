package config

import "time"

const (
	// DefaultConfigPath is used when --config is not provided.
	DefaultConfigPath = "config.yml"
	defaultPort       = 2333
	defaultEnv        = "development"

	// developmentSecret keys the token signer only when env is development.
	developmentSecret = "newsletter-dev-secret-change-me"

	defaultDBDriver   = "mysql"
	defaultDBHost     = "127.0.0.1"
	defaultDBPort     = 3306
	defaultDBUser     = "root"
	defaultDBPassword = "password"
	defaultDBName     = "newsletter"
	defaultDBCharset  = "utf8mb4"
	defaultDBLoc      = "Local"
	defaultRedisHost  = "localhost"
	defaultRedisPort  = 6379
	defaultRedisDB    = 0
	defaultSMTPPort   = 587

	defaultBasePath        = "/newsletter"
	defaultRateLimitMax    = 10
	defaultRateLimitWindow = time.Minute
	defaultLogsSubdir      = "logs"
)
