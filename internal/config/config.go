package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Budget"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"budget"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		JWKSURL    string        `envconfig:"AUTH_JWKS_URL"`
		Issuer     string        `envconfig:"AUTH_ISSUER"`
		Audience   string        `envconfig:"AUTH_AUDIENCE"`
		HMACSecret string        `envconfig:"AUTH_HMAC_SECRET"`
		CacheTTL   time.Duration `envconfig:"AUTH_JWKS_CACHE_TTL" default:"1h"`
	}

	CORS struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	}

	Budget struct {
		Timezone              string `envconfig:"BUDGET_TIMEZONE" default:"UTC"`
		TransferSignRule      string `envconfig:"BUDGET_TRANSFER_SIGN_RULE" default:"outflow"`
		DashboardTransferRule string `envconfig:"BUDGET_DASHBOARD_TRANSFER_RULE" default:"excluded"`
	}

	Log struct {
		Level  string `envconfig:"LOG_LEVEL" default:"info"`
		Format string `envconfig:"LOG_FORMAT" default:"text"`
	}

	TUI struct {
		UserID string `envconfig:"TUI_USER_ID"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

// Location is the reference timezone that decides what "today" is.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Budget.Timezone)
	if err != nil {
		return nil, fmt.Errorf("BUDGET_TIMEZONE: %w", err)
	}

	return loc, nil
}

func (c *Config) TransferSignRule() (transaction.TransferRule, error) {
	return transaction.ParseTransferRule(c.Budget.TransferSignRule)
}

func (c *Config) DashboardTransferRule() (transaction.TransferRule, error) {
	return transaction.ParseTransferRule(c.Budget.DashboardTransferRule)
}

// Validate checks the settings the API cannot start without.
func (c *Config) Validate() error {
	var problems []string

	if c.App.Port <= 0 || c.App.Port > 65535 {
		problems = append(problems, fmt.Sprintf("PORT %d out of range", c.App.Port))
	}

	if c.Auth.JWKSURL == "" && c.Auth.HMACSecret == "" {
		problems = append(problems, "one of AUTH_JWKS_URL or AUTH_HMAC_SECRET is required")
	}

	if _, err := c.Location(); err != nil {
		problems = append(problems, err.Error())
	}

	if _, err := c.TransferSignRule(); err != nil {
		problems = append(problems, "BUDGET_TRANSFER_SIGN_RULE: "+err.Error())
	}

	if _, err := c.DashboardTransferRule(); err != nil {
		problems = append(problems, "BUDGET_DASHBOARD_TRANSFER_RULE: "+err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
