package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries all runtime settings. Values come from the environment;
// a local .env file is honoured for development.
type Config struct {
	AppPort  string `env:"APP_PORT" envDefault:"3000"`
	AppEnv   string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Public base URL of this service, used to build the OAuth redirect URI.
	BaseURL string `env:"APP_BASE_URL" envDefault:"http://localhost:3000"`

	OIDCIssuer       string   `env:"OIDC_ISSUER,required"`
	OIDCClientID     string   `env:"OIDC_CLIENT_ID,required"`
	OIDCClientSecret string   `env:"OIDC_CLIENT_SECRET"`
	OIDCScopes       []string `env:"OIDC_SCOPES" envSeparator:" " envDefault:"openid profile email"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`

	// Backend REST API serving project and standards data.
	BackendURL string `env:"BACKEND_API_URL" envDefault:"http://localhost:3001"`

	SessionTTL time.Duration `env:"SESSION_TTL" envDefault:"4h"`
	VisitorTTL time.Duration `env:"VISITOR_TTL" envDefault:"24h"`
	LoginTTL   time.Duration `env:"LOGIN_TTL" envDefault:"10m"`

	SecureCookies bool `env:"SECURE_COOKIES" envDefault:"true"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	// Best-effort: absence of a .env file is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// RedirectURL is the OAuth callback endpoint registered with the identity
// provider.
func (c Config) RedirectURL() string {
	return c.BaseURL + "/auth"
}

// IsProduction reports whether the service runs with production settings.
func (c Config) IsProduction() bool {
	return c.AppEnv == "production"
}
