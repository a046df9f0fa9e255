package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable read by Load.
const EnvPrefix = "FOCUS"

// DefaultAdminPassword is the bootstrap password used when none is configured.
const DefaultAdminPassword = "admin123456"

// DefaultJWTSecret is only accepted outside production.
const DefaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the application configuration
type Config struct {
	// Database connection string (DSN). postgres://, mysql:// or a sqlite path.
	DatabaseURL string

	// Server bind address (host:port)
	ServerAddr string

	// Deployment environment (development, production, test)
	AppEnv string

	// Maximum database connection pool size
	MaxDBConnections int

	// Enable debug logging
	Debug bool

	// Take the client address from X-Forwarded-For / X-Real-IP. Only enable
	// behind a reverse proxy that overwrites those headers.
	TrustProxy bool

	Auth      AuthConfig
	AI        AIConfig
	Log       LogConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Telemetry TelemetryConfig
	Admin     AdminConfig
}

// AuthConfig configures password hashing and bearer tokens.
type AuthConfig struct {
	// JWTSecret signs every issued token. Rotating it invalidates all outstanding tokens.
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// AIConfig configures storage of AI provider credentials.
type AIConfig struct {
	// EncryptionKey is a base64 encoded 32 byte key used to seal provider API keys.
	// When empty a random key is generated at startup and sealed keys do not survive a restart.
	EncryptionKey string
}

// LogConfig configures zerolog output.
type LogConfig struct {
	Level  string
	Pretty bool
	// Dir holds focusapi.log and focusapi_error.log. Empty disables file output.
	Dir string
}

// RateLimitConfig configures the fixed window limiter.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string
}

// TelemetryConfig configures OpenTelemetry tracing.
// Tracing is disabled when OTLPEndpoint is empty.
type TelemetryConfig struct {
	OTLPEndpoint string
	OTLPInsecure bool
	ServiceName  string
}

// AdminConfig is the account created by `focusapi admin bootstrap`.
type AdminConfig struct {
	Email    string
	Password string
}

// IsProduction reports whether the server runs with production safeguards.
func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database_url", "file:./data/focus.db?cache=shared")
	v.SetDefault("server_addr", "localhost:8000")
	v.SetDefault("app_env", "development")
	v.SetDefault("max_db_connections", 25)
	v.SetDefault("debug", false)
	v.SetDefault("trust_proxy", false)

	v.SetDefault("auth.jwt_secret", DefaultJWTSecret)
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("auth.bcrypt_cost", 12)

	v.SetDefault("ai.encryption_key", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
	v.SetDefault("log.dir", "./logs")

	v.SetDefault("rate_limit.requests", 100)
	v.SetDefault("rate_limit.window", time.Minute)

	v.SetDefault("cors.allowed_origins", []string{"http://localhost:3000", "http://localhost:5173"})

	v.SetDefault("telemetry.otlp_endpoint", "")
	v.SetDefault("telemetry.otlp_insecure", false)
	v.SetDefault("telemetry.service_name", "focusapi")

	v.SetDefault("admin.email", "admin@admin.com")
	v.SetDefault("admin.password", DefaultAdminPassword)
}

// LoadDotEnv loads KEY=VALUE files into the process environment.
// Missing files are ignored; variables already set are not overridden.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	return nil
}

// Load reads configuration from the global viper instance.
// Environment variables (FOCUS_*) take precedence over a config file read
// beforehand with viper.SetConfigFile/ReadInConfig, which takes precedence over defaults.
func Load() (*Config, error) {
	v := viper.GetViper()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:      v.GetString("database_url"),
		ServerAddr:       v.GetString("server_addr"),
		AppEnv:           v.GetString("app_env"),
		MaxDBConnections: v.GetInt("max_db_connections"),
		Debug:            v.GetBool("debug"),
		TrustProxy:       v.GetBool("trust_proxy"),
		Auth: AuthConfig{
			JWTSecret:  v.GetString("auth.jwt_secret"),
			TokenTTL:   v.GetDuration("auth.token_ttl"),
			BcryptCost: v.GetInt("auth.bcrypt_cost"),
		},
		AI: AIConfig{
			EncryptionKey: v.GetString("ai.encryption_key"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Pretty: v.GetBool("log.pretty"),
			Dir:    v.GetString("log.dir"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetStringSlice("cors.allowed_origins")),
		},
		Telemetry: TelemetryConfig{
			OTLPEndpoint: v.GetString("telemetry.otlp_endpoint"),
			OTLPInsecure: v.GetBool("telemetry.otlp_insecure"),
			ServiceName:  v.GetString("telemetry.service_name"),
		},
		Admin: AdminConfig{
			Email:    v.GetString("admin.email"),
			Password: v.GetString("admin.password"),
		},
	}

	if cfg.Debug {
		cfg.Log.Level = "debug"
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("%s_DATABASE_URL is required", EnvPrefix)
	}
	if c.ServerAddr == "" {
		return fmt.Errorf("%s_SERVER_ADDR is required", EnvPrefix)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("%s_AUTH_JWT_SECRET is required", EnvPrefix)
	}
	if c.IsProduction() && c.Auth.JWTSecret == DefaultJWTSecret {
		return fmt.Errorf("%s_AUTH_JWT_SECRET must be changed from the default in production", EnvPrefix)
	}
	if c.IsProduction() && c.AI.EncryptionKey == "" {
		return fmt.Errorf("%s_AI_ENCRYPTION_KEY is required in production", EnvPrefix)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("%s_AUTH_TOKEN_TTL must be positive", EnvPrefix)
	}
	if c.RateLimit.Requests < 0 {
		return fmt.Errorf("%s_RATE_LIMIT_REQUESTS must not be negative", EnvPrefix)
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("%s_RATE_LIMIT_WINDOW must be positive", EnvPrefix)
	}
	return nil
}

// splitList accepts both YAML lists and a single comma separated env value.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
