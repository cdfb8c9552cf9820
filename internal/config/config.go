package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// MinSigningKeyBytes is the shortest accepted HS256 signing key.
const MinSigningKeyBytes = 32

// ErrConfiguration marks configuration that must stop the process at startup.
var ErrConfiguration = errors.New("configuration error")

// Config aggregates runtime configuration for the service.
type Config struct {
	App      AppConfig
	Postgres PostgresConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Auth     AuthConfig
	OAuth    OAuthConfig
}

// AppConfig controls server level behavior.
type AppConfig struct {
	Name                  string
	Env                   string
	Host                  string
	Port                  string
	Version               string
	RequestTimeoutSeconds int
	CORSAllowedOrigins    string
}

// PostgresConfig holds DB connection values.
type PostgresConfig struct {
	DSN            string
	MaxConns       int32
	MinConns       int32
	RunMigrations  bool
	ConnMaxIdleSec int32
	ConnMaxLifeSec int32
}

// RedisConfig holds Redis connection values.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// LoggerConfig configures logging behavior.
type LoggerConfig struct {
	Level string
}

// AuthConfig defines authentication parameters.
type AuthConfig struct {
	JWTSecret              string
	TokenTTLSeconds        int
	BcryptCost             int
	FrontendURL            string
	DefaultPassword        string
	ResolveRolePerRequest  bool
	RoleCacheTTLSeconds    int
	RoleCacheSize          int
	BootstrapAdminUsername string
	BootstrapAdminPassword string
}

// OAuthConfig holds the federated login client. Federated login is disabled
// when ClientID is empty.
type OAuthConfig struct {
	ClientID        string
	ClientSecret    string
	RedirectURL     string
	StateTTLSeconds int
}

// Load reads configuration from environment variables, applying defaults where possible.
func Load() (*Config, error) {
	_ = godotenv.Load()

	redisDB, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := &Config{
		App: AppConfig{
			Name:                  getEnv("APP_NAME", "gym-gateway"),
			Env:                   getEnv("APP_ENV", "development"),
			Host:                  getEnv("APP_HOST", "0.0.0.0"),
			Port:                  getEnv("APP_PORT", "8080"),
			Version:               getEnv("APP_VERSION", "dev"),
			RequestTimeoutSeconds: getEnvAsInt("HTTP_REQUEST_TIMEOUT_SECONDS", 30),
			CORSAllowedOrigins:    getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Postgres: PostgresConfig{
			DSN:            os.Getenv("POSTGRES_DSN"),
			MaxConns:       int32(getEnvAsInt("POSTGRES_MAX_CONNS", 10)),
			MinConns:       int32(getEnvAsInt("POSTGRES_MIN_CONNS", 2)),
			RunMigrations:  getEnvAsBool("POSTGRES_RUN_MIGRATIONS", true),
			ConnMaxIdleSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_IDLE_SECONDS", 30)),
			ConnMaxLifeSec: int32(getEnvAsInt("POSTGRES_CONN_MAX_LIFE_SECONDS", 300)),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Auth: AuthConfig{
			JWTSecret:              os.Getenv("AUTH_JWT_SECRET"),
			TokenTTLSeconds:        getEnvAsInt("AUTH_TOKEN_TTL_SECONDS", 3600),
			BcryptCost:             getEnvAsInt("AUTH_BCRYPT_COST", 10),
			FrontendURL:            getEnv("AUTH_FRONTEND_URL", "http://localhost:3000"),
			DefaultPassword:        os.Getenv("AUTH_DEFAULT_PASSWORD"),
			ResolveRolePerRequest:  getEnvAsBool("AUTH_RESOLVE_ROLE_PER_REQUEST", false),
			RoleCacheTTLSeconds:    getEnvAsInt("AUTH_ROLE_CACHE_TTL_SECONDS", 30),
			RoleCacheSize:          getEnvAsInt("AUTH_ROLE_CACHE_SIZE", 1024),
			BootstrapAdminUsername: os.Getenv("AUTH_BOOTSTRAP_ADMIN_USERNAME"),
			BootstrapAdminPassword: os.Getenv("AUTH_BOOTSTRAP_ADMIN_PASSWORD"),
		},
		OAuth: OAuthConfig{
			ClientID:        os.Getenv("OAUTH_GOOGLE_CLIENT_ID"),
			ClientSecret:    os.Getenv("OAUTH_GOOGLE_CLIENT_SECRET"),
			RedirectURL:     getEnv("OAUTH_GOOGLE_REDIRECT_URL", "http://localhost:8080/oauth2/callback/google"),
			StateTTLSeconds: getEnvAsInt("OAUTH_STATE_TTL_SECONDS", 600),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configuration the service cannot safely run with.
func (c *Config) Validate() error {
	if len(c.Auth.JWTSecret) == 0 {
		return fmt.Errorf("%w: AUTH_JWT_SECRET is required", ErrConfiguration)
	}
	if len(c.Auth.JWTSecret) < MinSigningKeyBytes {
		return fmt.Errorf("%w: AUTH_JWT_SECRET must be at least %d bytes", ErrConfiguration, MinSigningKeyBytes)
	}
	if c.Auth.TokenTTLSeconds <= 0 {
		return fmt.Errorf("%w: AUTH_TOKEN_TTL_SECONDS must be positive", ErrConfiguration)
	}
	if _, err := url.ParseRequestURI(c.Auth.FrontendURL); err != nil {
		return fmt.Errorf("%w: invalid AUTH_FRONTEND_URL: %v", ErrConfiguration, err)
	}
	if c.OAuth.Enabled() {
		if c.OAuth.ClientSecret == "" {
			return fmt.Errorf("%w: OAUTH_GOOGLE_CLIENT_SECRET is required when OAUTH_GOOGLE_CLIENT_ID is set", ErrConfiguration)
		}
		if c.Auth.DefaultPassword == "" {
			return fmt.Errorf("%w: AUTH_DEFAULT_PASSWORD is required when federated login is enabled", ErrConfiguration)
		}
	}
	if (c.Auth.BootstrapAdminUsername == "") != (c.Auth.BootstrapAdminPassword == "") {
		return fmt.Errorf("%w: AUTH_BOOTSTRAP_ADMIN_USERNAME and AUTH_BOOTSTRAP_ADMIN_PASSWORD must be set together", ErrConfiguration)
	}
	return nil
}

// Addr returns the HTTP bind address.
func (a AppConfig) Addr() string {
	return fmt.Sprintf("%s:%s", a.Host, a.Port)
}

// RequestTimeout returns the configured request timeout duration.
func (a AppConfig) RequestTimeout() time.Duration {
	if a.RequestTimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RequestTimeoutSeconds) * time.Second
}

// TokenTTL returns the session token lifetime.
func (a AuthConfig) TokenTTL() time.Duration {
	return time.Duration(a.TokenTTLSeconds) * time.Second
}

// RoleCacheTTL bounds how long a resolved role may be reused. Zero disables
// caching.
func (a AuthConfig) RoleCacheTTL() time.Duration {
	if a.RoleCacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(a.RoleCacheTTLSeconds) * time.Second
}

// Enabled reports whether federated login is configured.
func (o OAuthConfig) Enabled() bool {
	return strings.TrimSpace(o.ClientID) != ""
}

// StateTTL returns how long an authorization request may stay pending.
func (o OAuthConfig) StateTTL() time.Duration {
	if o.StateTTLSeconds <= 0 {
		return 10 * time.Minute
	}
	return time.Duration(o.StateTTLSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return fallback
	}
	return parsed
}
