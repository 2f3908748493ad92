package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BlundaBranco/SweetCookies-Manager/internal/config"
)

const testSecret = "0123456789abcdef0123"

func TestNewConfig_Defaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_SECRET", testSecret)

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.App.Port)
	assert.Equal(t, config.StoragePostgres, cfg.Storage.Driver)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, int32(10), cfg.Postgres.MaxConns)
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "sweetcookies_session", cfg.Auth.CookieName)
}

func TestNewConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("APP_PORT", "8081")
	t.Setenv("STORAGE_DRIVER", "memory")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("DB_MAX_CONNS", "25")
	t.Setenv("APP_OPEN_BROWSER", "true")
	t.Setenv("APP_ALLOWED_ORIGINS", "http://localhost:3000, http://127.0.0.1:5000")
	t.Setenv("ADMIN_USERNAME", "admin")
	t.Setenv("ADMIN_PASSWORD", "admin123")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "8081", cfg.App.Port)
	assert.Equal(t, config.StorageMemory, cfg.Storage.Driver)
	assert.Equal(t, 2*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, int32(25), cfg.Postgres.MaxConns)
	assert.True(t, cfg.App.OpenBrowser)
	assert.Equal(t, []string{"http://localhost:3000", "http://127.0.0.1:5000"}, cfg.App.AllowedOrigins)
	assert.Equal(t, "admin", cfg.Auth.AdminUsername)
}

func TestNewConfig_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
app:
  port: "6000"
postgres:
  host: db.internal
  dbname: bakery
  max_conn_lifetime: 10m
auth:
  session_secret: from-file-secret-value
  session_ttl: 12h
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("DB_NAME", "bakery_override")

	cfg, err := config.NewConfig()
	require.NoError(t, err)

	assert.Equal(t, "6000", cfg.App.Port)
	assert.Equal(t, "db.internal", cfg.Postgres.Host)
	assert.Equal(t, "bakery_override", cfg.Postgres.DBName)
	assert.Equal(t, 10*time.Minute, cfg.Postgres.MaxConnLifetime)
	assert.Equal(t, 12*time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "5432", cfg.Postgres.Port, "unset keys keep defaults")
}

func TestNewConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing_secret", env: map[string]string{"SESSION_SECRET": ""}},
		{name: "short_secret", env: map[string]string{"SESSION_SECRET": "short"}},
		{name: "bad_port", env: map[string]string{"SESSION_SECRET": testSecret, "APP_PORT": "70000"}},
		{name: "bad_duration", env: map[string]string{"SESSION_SECRET": testSecret, "SESSION_TTL": "soon"}},
		{name: "unknown_driver", env: map[string]string{"SESSION_SECRET": testSecret, "STORAGE_DRIVER": "sqlite"}},
		{name: "admin_without_password", env: map[string]string{"SESSION_SECRET": testSecret, "ADMIN_USERNAME": "admin"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CONFIG_PATH", "")
			t.Setenv("ADMIN_USERNAME", "")
			t.Setenv("ADMIN_PASSWORD", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.NewConfig()
			assert.Error(t, err)
		})
	}
}

func TestPostgresConfig_DSN(t *testing.T) {
	p := config.PostgresConfig{Host: "h", Port: "5432", User: "u", Password: "p", DBName: "d", SSLMode: "disable"}
	assert.Equal(t, "host=h port=5432 user=u password=p dbname=d sslmode=disable", p.DSN())
}
