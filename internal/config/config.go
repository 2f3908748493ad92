package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	minSessionSecretLen = 16
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Storage  StorageConfig  `yaml:"storage"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

type AppConfig struct {
	Name           string   `yaml:"name"`
	Port           string   `yaml:"port"`
	OpenBrowser    bool     `yaml:"open_browser"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"`
}

type PostgresConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	DBName          string        `yaml:"dbname"`
	SSLMode         string        `yaml:"sslmode"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

// DSN returns a key/value connection string understood by pgx.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.DBName, p.SSLMode)
}

type AuthConfig struct {
	SessionSecret      string        `yaml:"session_secret"`
	SessionTTL         time.Duration `yaml:"session_ttl"`
	CookieName         string        `yaml:"cookie_name"`
	CookieSecure       bool          `yaml:"cookie_secure"`
	AdminUsername      string        `yaml:"admin_username"`
	AdminPassword      string        `yaml:"admin_password"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"`
	LoginBurst         int           `yaml:"login_burst"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

func Default() *Config {
	return &Config{
		App: AppConfig{
			Name: "sweetcookies",
			Port: "5000",
		},
		Storage: StorageConfig{Driver: StoragePostgres},
		Postgres: PostgresConfig{
			Host:            "localhost",
			Port:            "5432",
			User:            "postgres",
			DBName:          "sweetcookies",
			SSLMode:         "disable",
			MaxConns:        10,
			MinConns:        2,
			MaxConnLifetime: 30 * time.Minute,
		},
		Auth: AuthConfig{
			SessionTTL:         24 * time.Hour,
			CookieName:         "sweetcookies_session",
			LoginRatePerMinute: 10,
			LoginBurst:         5,
		},
		Log: LogConfig{
			Level:  "info",
			Pretty: true,
		},
	}
}

// NewConfig builds the configuration from defaults, an optional YAML file
// named by CONFIG_PATH, and environment variables (a .env file is loaded first
// when present). Environment variables win over the file.
func NewConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	cfg := Default()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(c); err != nil {
		return fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.App.Port, "APP_PORT")
	setString(&c.Storage.Driver, "STORAGE_DRIVER")
	setString(&c.Postgres.Host, "DB_HOST")
	setString(&c.Postgres.Port, "DB_PORT")
	setString(&c.Postgres.User, "DB_USER")
	setString(&c.Postgres.Password, "DB_PASSWORD")
	setString(&c.Postgres.DBName, "DB_NAME")
	setString(&c.Postgres.SSLMode, "DB_SSLMODE")
	setString(&c.Auth.SessionSecret, "SESSION_SECRET")
	setString(&c.Auth.CookieName, "SESSION_COOKIE_NAME")
	setString(&c.Auth.AdminUsername, "ADMIN_USERNAME")
	setString(&c.Auth.AdminPassword, "ADMIN_PASSWORD")
	setString(&c.Log.Level, "LOG_LEVEL")

	if v, ok := os.LookupEnv("APP_ALLOWED_ORIGINS"); ok {
		c.App.AllowedOrigins = splitList(v)
	}

	var errs []error
	errs = append(errs,
		setBool(&c.App.OpenBrowser, "APP_OPEN_BROWSER"),
		setBool(&c.Auth.CookieSecure, "SESSION_COOKIE_SECURE"),
		setBool(&c.Log.Pretty, "LOG_PRETTY"),
		setInt32(&c.Postgres.MaxConns, "DB_MAX_CONNS"),
		setInt32(&c.Postgres.MinConns, "DB_MIN_CONNS"),
		setDuration(&c.Postgres.MaxConnLifetime, "DB_MAX_CONN_LIFETIME"),
		setDuration(&c.Auth.SessionTTL, "SESSION_TTL"),
		setInt(&c.Auth.LoginRatePerMinute, "LOGIN_RATE_PER_MINUTE"),
		setInt(&c.Auth.LoginBurst, "LOGIN_BURST"),
	)

	return errors.Join(errs...)
}

func (c *Config) Validate() error {
	port, err := strconv.Atoi(c.App.Port)
	if err != nil || port < 1 || port > 65535 {
		return fmt.Errorf("invalid app port %q: must be a number between 1 and 65535", c.App.Port)
	}

	if len(c.Auth.SessionSecret) < minSessionSecretLen {
		return fmt.Errorf("SESSION_SECRET is required and must be at least %d characters", minSessionSecretLen)
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("session ttl must be positive")
	}
	if c.Auth.CookieName == "" {
		return errors.New("session cookie name cannot be empty")
	}
	if c.Auth.LoginRatePerMinute <= 0 || c.Auth.LoginBurst <= 0 {
		return errors.New("login rate and burst must be positive")
	}
	if (c.Auth.AdminUsername == "") != (c.Auth.AdminPassword == "") {
		return errors.New("ADMIN_USERNAME and ADMIN_PASSWORD must be set together")
	}

	switch c.Storage.Driver {
	case StorageMemory:
	case StoragePostgres:
		if c.Postgres.Host == "" {
			return errors.New("DB_HOST is required")
		}
		if c.Postgres.Port == "" {
			return errors.New("DB_PORT is required")
		}
		if c.Postgres.User == "" {
			return errors.New("DB_USER is required")
		}
		if c.Postgres.DBName == "" {
			return errors.New("DB_NAME is required")
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setBool(dst *bool, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = b
	return nil
}

func setInt(dst *int, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setInt32(dst *int32, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = int32(n)
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = d
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
