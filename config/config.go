package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every runtime setting of the relay. It is built once at
// startup and handed to each component; nothing reads the environment later.
type Config struct {
	HTTPAddr    string `env:"HTTP_ADDR" envDefault:":8080"`
	Environment string `env:"ENVIRONMENT" envDefault:"development"`

	SlackClientID     string   `env:"SLACK_CLIENT_ID"`
	SlackClientSecret string   `env:"SLACK_CLIENT_SECRET"`
	SlackRedirectURI  string   `env:"SLACK_REDIRECT_URI"`
	SlackBotToken     string   `env:"SLACK_BOT_TOKEN"`
	SlackAPIURL       string   `env:"SLACK_API_URL" envDefault:"https://slack.com/api/"`
	SlackAuthorizeURL string   `env:"SLACK_AUTHORIZE_URL" envDefault:"https://slack.com/oauth/v2/authorize"`
	SlackUserScopes   []string `env:"SLACK_USER_SCOPES" envSeparator:"," envDefault:"chat:write,channels:history,groups:history,im:history,mpim:history,users:read"`
	SlackBotScopes    []string `env:"SLACK_BOT_SCOPES" envSeparator:"," envDefault:"chat:write,channels:history,groups:history"`

	FrontendURL   string `env:"FRONTEND_URL"`
	SessionSecret string `env:"SESSION_SECRET"`
	CookieSecure  bool   `env:"COOKIE_SECURE" envDefault:"true"`

	MongoURI      string `env:"MONGODB_URI" envDefault:"mongodb://localhost:27017"`
	MongoDatabase string `env:"MONGODB_DATABASE" envDefault:"chatrelay"`

	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	SessionTTL        time.Duration `env:"SESSION_TTL" envDefault:"720h"`
	StateTTL          time.Duration `env:"STATE_TTL" envDefault:"10m"`
	HTTPClientTimeout time.Duration `env:"HTTP_CLIENT_TIMEOUT" envDefault:"10s"`
}

// Load reads a .env file when present, then parses the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return Parse(env.Options{})
}

// Parse builds a Config from the environment using opts, which lets tests
// supply an explicit Environment map.
func Parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.SlackUserScopes = trimCSV(cfg.SlackUserScopes)
	cfg.SlackBotScopes = trimCSV(cfg.SlackBotScopes)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports every missing required setting at once.
func (c Config) Validate() error {
	var errs []error
	required := map[string]string{
		"SLACK_CLIENT_ID":     c.SlackClientID,
		"SLACK_CLIENT_SECRET": c.SlackClientSecret,
		"SLACK_REDIRECT_URI":  c.SlackRedirectURI,
		"FRONTEND_URL":        c.FrontendURL,
		"SESSION_SECRET":      c.SessionSecret,
	}
	for _, key := range []string{"SLACK_CLIENT_ID", "SLACK_CLIENT_SECRET", "SLACK_REDIRECT_URI", "FRONTEND_URL", "SESSION_SECRET"} {
		if strings.TrimSpace(required[key]) == "" {
			errs = append(errs, fmt.Errorf("%s is required", key))
		}
	}
	if c.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.StateTTL <= 0 {
		errs = append(errs, errors.New("STATE_TTL must be positive"))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether the relay runs with development defaults.
func (c Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func trimCSV(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
