package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
version: "1.0"
mode: dev
database:
  host: localhost
  port: 3306
  user: app
  dbname: library
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 168, cfg.Auth.TokenExpiryHours)
	assert.Equal(t, 14, cfg.Lending.LoanDays)
	assert.Equal(t, 7, cfg.Lending.RenewalDays)
	assert.Equal(t, 2, cfg.Lending.MaxRenewals)
	assert.Equal(t, int64(1), cfg.Lending.FineRatePerDay)
	assert.Equal(t, 7, cfg.Lending.ReservationDays)
	assert.Equal(t, "library", cfg.DB.DBName)
}

func TestLoadConfigExplicitValuesKept(t *testing.T) {
	path := writeConfig(t, `
mode: release
server:
  addr: ":9090"
auth:
  jwt_secret: yaml-secret
  token_expiry_hours: 24
lending:
  loan_days: 21
  renewal_days: 14
  max_renewals: 1
  fine_rate_per_day: 5
  reservation_days: 3
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Addr)
	assert.Equal(t, 24, cfg.Auth.TokenExpiryHours)
	assert.Equal(t, 21, cfg.Lending.LoanDays)
	assert.Equal(t, 14, cfg.Lending.RenewalDays)
	assert.Equal(t, 1, cfg.Lending.MaxRenewals)
	assert.Equal(t, int64(5), cfg.Lending.FineRatePerDay)
	assert.Equal(t, 3, cfg.Lending.ReservationDays)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("DB_PASSWORD", "env-db-pass")
	t.Setenv("FINE_RATE_PER_DAY", "3")

	path := writeConfig(t, `
mode: dev
auth:
  jwt_secret: yaml-secret
database:
  password: yaml-pass
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "env-secret", cfg.Auth.JWTSecret)
	assert.Equal(t, "env-db-pass", cfg.DB.Password)
	assert.Equal(t, int64(3), cfg.Lending.FineRatePerDay)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
