// Package config manages environment variables.
//
// It reads variables from the `.env` file, loads them into structured Go
// types, and validates that required values are present so they can be
// reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional blocks (observability, cache, jobs).
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process env before any variable is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

/*
	Env vars are read using the prefix CONSULTDESK_.
	Keys are lowercased, the prefix is removed, and "." is the nesting
	delimiter, so CONSULTDESK_SERVER.PORT -> server.port -> Config.Server.Port.
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "CONSULTDESK_"

// Config is the root configuration object for the application.
//
// Observability, Cache and Jobs are pointers because they are optional.
// When they are missing, defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Storage       StorageConfig        `koanf:"storage" validate:"required"`
	Cache         *CacheConfig         `koanf:"cache"`
	Jobs          *JobsConfig          `koanf:"jobs"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// RateLimit is the sustained number of requests per second allowed per
	// client IP. Zero disables the limiter.
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the bucket size of the limiter.
	RateBurst int `koanf:"rate_burst"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address  string `koanf:"address" validate:"required"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

// AuthConfig controls the session cookie and the optional bootstrap admin.
type AuthConfig struct {
	// CookieName is the name of the cookie carrying the opaque session token.
	CookieName string `koanf:"cookie_name" validate:"required"`

	// SessionTTL is how long a fresh session stays valid, e.g. "12h".
	SessionTTL time.Duration `koanf:"session_ttl" validate:"required,min=1m"`

	// CookieSecure sets the Secure flag. Leave it on outside local development.
	CookieSecure bool `koanf:"cookie_secure"`

	// BootstrapAdminEmail and BootstrapAdminPassword create the first admin
	// account when the users table is empty. Both must be set to take effect.
	BootstrapAdminEmail    string `koanf:"bootstrap_admin_email"`
	BootstrapAdminPassword string `koanf:"bootstrap_admin_password"`
}

// StorageConfig selects where uploaded attachment bytes live.
type StorageConfig struct {
	// Driver is "fs" (local directory) or "s3" (AWS S3 / MinIO).
	Driver string `koanf:"driver" validate:"required,oneof=fs s3"`

	// LocalDir is the root directory for the fs driver.
	LocalDir string `koanf:"local_dir" validate:"required_if=Driver fs"`

	// MaxUploadBytes caps a single uploaded file.
	MaxUploadBytes int64 `koanf:"max_upload_bytes" validate:"required,min=1"`

	S3 S3Config `koanf:"s3"`
}

// S3Config is only read when Storage.Driver is "s3".
type S3Config struct {
	Bucket    string `koanf:"bucket"`
	Region    string `koanf:"region"`
	Endpoint  string `koanf:"endpoint"`
	PathStyle bool   `koanf:"path_style"`

	// AccessKeyID and SecretAccessKey are static credentials for MinIO and
	// similar servers. Empty means the default AWS credential chain.
	AccessKeyID     string `koanf:"access_key_id"`
	SecretAccessKey string `koanf:"secret_access_key"`
}

// LoadConfig loads configuration from environment variables, unmarshals it
// into Config, validates it, applies defaults, and returns the result.
//
// Like the rest of the bootstrap path it exits the process on bad config:
// there is nothing useful the server can do without it.
func LoadConfig() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	k := koanf.New(".")

	// CONSULTDESK_DATABASE.HOST -> "database.host"
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("could not load initial env variables")
	}

	mainConfig := &Config{}

	if err = k.Unmarshal("", mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("could not unmarshal main config")
	}

	validate := validator.New()

	if err = validate.Struct(mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("config validation failed")
	}

	mainConfig.applyDefaults()

	if err := mainConfig.Storage.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid storage config")
	}

	if err := mainConfig.Cache.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid cache config")
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid observability config")
	}

	return mainConfig, nil
}

// applyDefaults fills the optional blocks and forces the service identity
// used by logs and traces.
func (c *Config) applyDefaults() {
	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}

	c.Observability.ServiceName = "consultdesk"
	c.Observability.Environment = c.Primary.Env

	if c.Cache == nil {
		c.Cache = DefaultCacheConfig()
	}

	if c.Jobs == nil {
		c.Jobs = DefaultJobsConfig()
	}

	if c.Server.RateLimit > 0 && c.Server.RateBurst <= 0 {
		c.Server.RateBurst = int(c.Server.RateLimit) * 2
	}
}

// IsLocal reports whether the app runs on a developer machine.
func (c *Config) IsLocal() bool {
	return c.Primary.Env == "local"
}
