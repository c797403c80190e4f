package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budget/internal/config"
	"github.com/MrJamesThe3rd/budget/internal/transaction"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "Budget", cfg.App.Name)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, time.Hour, cfg.Auth.CacheTTL)
	assert.Equal(t, []string{"*"}, cfg.CORS.AllowedOrigins)

	sign, err := cfg.TransferSignRule()
	require.NoError(t, err)
	assert.Equal(t, transaction.TransferOutflow, sign)

	dash, err := cfg.DashboardTransferRule()
	require.NoError(t, err)
	assert.Equal(t, transaction.TransferExcluded, dash)

	assert.Equal(t, "postgres://postgres:@localhost:5432/budget?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("AUTH_HMAC_SECRET", "s3cret")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("BUDGET_TIMEZONE", "Europe/Lisbon")
	t.Setenv("BUDGET_DASHBOARD_TRANSFER_RULE", "outflow")

	cfg, err := config.Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Lisbon", loc.String())

	dash, err := cfg.DashboardTransferRule()
	require.NoError(t, err)
	assert.Equal(t, transaction.TransferOutflow, dash)
}

func TestValidate(t *testing.T) {
	type testCase struct {
		name string
		env  map[string]string
	}

	tests := []testCase{
		{name: "NoKeySource", env: map[string]string{}},
		{name: "BadTimezone", env: map[string]string{"AUTH_HMAC_SECRET": "x", "BUDGET_TIMEZONE": "Mars/Olympus"}},
		{name: "BadSignRule", env: map[string]string{"AUTH_HMAC_SECRET": "x", "BUDGET_TRANSFER_SIGN_RULE": "sideways"}},
		{name: "BadPort", env: map[string]string{"AUTH_HMAC_SECRET": "x", "PORT": "70000"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := config.Load()
			require.NoError(t, err)
			assert.Error(t, cfg.Validate())
		})
	}
}
