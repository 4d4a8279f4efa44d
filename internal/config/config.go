// Package config manages environment variables.
//
// It reads variables from the process environment (and a `.env` file
// when present), loads them into structured Go types and validates that
// required values are present so they can be reused across the
// application runtime.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads `.env` into the process env before any read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix is the prefix every configuration variable carries.
//
// Nested keys use "." after the prefix, e.g.
//
//	TOURS_SERVER.PORT=8080      -> server.port
//	TOURS_AUTH.JWT_SECRET=...   -> auth.jwt_secret
const EnvPrefix = "TOURS_"

// Database drivers understood by DatabaseConfig.Driver.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// Config is the root configuration object for the application.
//
// Pointer sections are optional; defaults are injected by LoadConfig.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration"`
	Storage       StorageConfig        `koanf:"storage"`
	RateLimit     *RateLimitConfig     `koanf:"rate_limit"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// IsProduction reports whether errors must be masked for clients.
func (p Primary) IsProduction() bool {
	return p.Env == "production"
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig describes the document store.
//
// With Driver "memory" the API runs against the in-process repository and
// URI/Name are ignored.
type DatabaseConfig struct {
	Driver         string        `koanf:"driver" validate:"omitempty,oneof=mongo memory"`
	URI            string        `koanf:"uri" validate:"required_unless=Driver memory"`
	Name           string        `koanf:"name" validate:"required_unless=Driver memory"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// RedisConfig contains Redis connection details ("host:port").
// An empty address disables the Redis backed rate limit store and jobs.
type RedisConfig struct {
	Address string `koanf:"address"`
}

// AuthConfig stores token and password settings.
type AuthConfig struct {
	JWTSecret        string        `koanf:"jwt_secret" validate:"required,min=32"`
	JWTExpiresIn     time.Duration `koanf:"jwt_expires_in"`
	PasswordResetTTL time.Duration `koanf:"password_reset_ttl"`
	BcryptCost       int           `koanf:"bcrypt_cost" validate:"omitempty,min=4,max=31"`
}

// IntegrationConfig holds third-party provider credentials.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key"`
	EmailFrom    string `koanf:"email_from"`
}

// StorageConfig configures the S3 compatible bucket used for user photos.
// Uploads are disabled when Endpoint is empty.
type StorageConfig struct {
	Endpoint  string `koanf:"endpoint"`
	AccessKey string `koanf:"access_key"`
	SecretKey string `koanf:"secret_key"`
	Bucket    string `koanf:"bucket"`
	UseSSL    bool   `koanf:"use_ssl"`
}

// Enabled reports whether object storage is configured.
func (s StorageConfig) Enabled() bool {
	return s.Endpoint != "" && s.Bucket != ""
}

// RateLimitConfig caps requests per client on the API prefix.
type RateLimitConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Requests int           `koanf:"requests" validate:"min=1"`
	Window   time.Duration `koanf:"window" validate:"min=1s"`
}

// DefaultRateLimitConfig allows 10 requests per client per hour.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		Enabled:  true,
		Requests: 10,
		Window:   time.Hour,
	}
}

const (
	defaultJWTExpiresIn     = 90 * 24 * time.Hour
	defaultPasswordResetTTL = 90 * time.Minute
	defaultBcryptCost       = 12
	defaultConnectTimeout   = 10 * time.Second
	defaultEmailFrom        = "Tours API <onboarding@resend.dev>"
)

// LoadConfig loads configuration from environment variables, validates it,
// applies defaults for optional blocks and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := &Config{}
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	mainConfig.applyDefaults()

	if err := validator.New().Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	return mainConfig, nil
}

func (c *Config) applyDefaults() {
	if c.Database.Driver == "" {
		c.Database.Driver = DriverMongo
	}
	if c.Database.ConnectTimeout == 0 {
		c.Database.ConnectTimeout = defaultConnectTimeout
	}

	if c.Auth.JWTExpiresIn == 0 {
		c.Auth.JWTExpiresIn = defaultJWTExpiresIn
	}
	if c.Auth.PasswordResetTTL == 0 {
		c.Auth.PasswordResetTTL = defaultPasswordResetTTL
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = defaultBcryptCost
	}

	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = defaultEmailFrom
	}

	if c.RateLimit == nil {
		c.RateLimit = DefaultRateLimitConfig()
	}

	if c.Observability == nil {
		c.Observability = DefaultObservabilityConfig()
	}
	// Service name and environment always follow the primary config.
	c.Observability.ServiceName = ServiceName
	c.Observability.Environment = c.Primary.Env
}
