package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "homeops-backend", cfg.App.Name)
	assert.Equal(t, "development", cfg.App.Env)
	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ReadTimeout)
	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 1.0, cfg.Telemetry.SamplingRatio)
	assert.Equal(t, 30*time.Second, cfg.Proposal.RenderTimeout)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[app]
name = "homeops-test"
env = "test"
port = "9090"

[database]
host = "db.internal"
port = 5433
user = "svc"
dbname = "homeops_test"

[log]
level = "debug"
format = "json"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "homeops-test", cfg.App.Name)
	assert.Equal(t, "9090", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 5433, cfg.Database.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	// Unset keys still fall back to defaults
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	defer os.Chdir(wd)

	t.Setenv("HOMEOPS_DATABASE_PASSWORD", "s3cret")
	t.Setenv("HOMEOPS_APP_PORT", "7070")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, "7070", cfg.App.Port)
}

func TestDatabaseDSN(t *testing.T) {
	c := DatabaseConfig{
		Host: "localhost", Port: 5432,
		User: "u", Password: "p", DBName: "d", SSLMode: "disable",
	}
	assert.Equal(t, "host=localhost port=5432 user=u password=p dbname=d sslmode=disable", c.DSN())
	assert.Equal(t, "postgres://u:p@localhost:5432/d?sslmode=disable", c.URL())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"empty port", func(c *Config) { c.App.Port = "" }, true},
		{"missing db host", func(c *Config) { c.Database.Host = "" }, true},
		{"jwt secret required in production", func(c *Config) {
			c.App.Env = "production"
			c.JWT.Enabled = true
			c.JWT.Secret = ""
		}, true},
		{"sampling ratio out of range", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				App:      AppConfig{Name: "x", Env: "development", Port: "8080"},
				Database: DatabaseConfig{Host: "localhost", DBName: "homeops"},
				Telemetry: TelemetryConfig{
					SamplingRatio: 1.0,
				},
			}
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
