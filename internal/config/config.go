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

// Config holds the server configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	Auth   AuthConfig   `yaml:"auth"`
	Log    LogConfig    `yaml:"log"`
	NATS   NATSConfig   `yaml:"nats"`
}

// ServerConfig holds HTTP settings
type ServerConfig struct {
	Port           int      `yaml:"port"`
	BaseURL        string   `yaml:"base_url"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only enable it behind a reverse proxy that sets those headers.
	TrustProxy bool `yaml:"trust_proxy"`
}

// StoreConfig selects the repository implementation
type StoreConfig struct {
	Driver string `yaml:"driver"` // sqlite|memory
	DSN    string `yaml:"dsn"`
}

// AuthConfig holds session settings
type AuthConfig struct {
	AdminPassword string        `yaml:"admin_password"`
	JWTSecret     string        `yaml:"jwt_secret"`
	SessionTTL    time.Duration `yaml:"session_ttl"`
	LoginRate     float64       `yaml:"login_rate"` // per minute per IP
	LoginBurst    int           `yaml:"login_burst"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	HTTP   bool   `yaml:"http"`
}

// NATSConfig enables optional NATS fan-out. Empty URL disables it.
type NATSConfig struct {
	URL           string `yaml:"url"`
	SubjectPrefix string `yaml:"subject_prefix"`
}

const (
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Default returns the configuration used when nothing is set
func Default() *Config {
	return &Config{
		Server: ServerConfig{Port: 8080},
		Store:  StoreConfig{Driver: DriverSQLite, DSN: "ldtab.db"},
		Auth: AuthConfig{
			SessionTTL: 24 * time.Hour,
			LoginRate:  30,
			LoginBurst: 5,
		},
		Log:  LogConfig{Level: "info", Format: "text"},
		NATS: NATSConfig{SubjectPrefix: "ldtab"},
	}
}

// Load reads .env, then the YAML file at path if it exists, then LDTAB_*
// environment overrides, and validates the result
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to unmarshal config: %w", err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.fillDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("LDTAB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LDTAB_PORT value: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("LDTAB_BASE_URL"); v != "" {
		c.Server.BaseURL = v
	}
	if v := os.Getenv("LDTAB_ALLOWED_ORIGINS"); v != "" {
		c.Server.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LDTAB_TRUST_PROXY"); v != "" {
		c.Server.TrustProxy = v == "true" || v == "1"
	}
	if v := os.Getenv("LDTAB_STORE_DRIVER"); v != "" {
		c.Store.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("LDTAB_STORE_DSN"); v != "" {
		c.Store.DSN = v
	}
	if v := os.Getenv("LDTAB_ADMIN_PASSWORD"); v != "" {
		c.Auth.AdminPassword = v
	}
	if v := os.Getenv("LDTAB_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("LDTAB_SESSION_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid LDTAB_SESSION_TTL value: %w", err)
		}
		c.Auth.SessionTTL = d
	}
	if v := os.Getenv("LDTAB_LOGIN_RATE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid LDTAB_LOGIN_RATE value: %w", err)
		}
		c.Auth.LoginRate = f
	}
	if v := os.Getenv("LDTAB_LOGIN_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LDTAB_LOGIN_BURST value: %w", err)
		}
		c.Auth.LoginBurst = n
	}
	if v := os.Getenv("LDTAB_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("LDTAB_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := os.Getenv("LDTAB_LOG_HTTP"); v != "" {
		c.Log.HTTP = v == "true" || v == "1"
	}
	if v := os.Getenv("LDTAB_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("LDTAB_NATS_SUBJECT_PREFIX"); v != "" {
		c.NATS.SubjectPrefix = v
	}
	return nil
}

// fillDefaults restores defaults for fields a file or the environment blanked out
func (c *Config) fillDefaults() {
	d := Default()
	if c.Server.Port == 0 {
		c.Server.Port = d.Server.Port
	}
	if c.Server.BaseURL == "" {
		c.Server.BaseURL = fmt.Sprintf("http://localhost:%d", c.Server.Port)
	}
	if c.Store.Driver == "" {
		c.Store.Driver = d.Store.Driver
	}
	if c.Store.DSN == "" && c.Store.Driver == DriverSQLite {
		c.Store.DSN = d.Store.DSN
	}
	if c.Auth.SessionTTL == 0 {
		c.Auth.SessionTTL = d.Auth.SessionTTL
	}
	if c.Auth.LoginRate == 0 {
		c.Auth.LoginRate = d.Auth.LoginRate
	}
	if c.Auth.LoginBurst == 0 {
		c.Auth.LoginBurst = d.Auth.LoginBurst
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
	if c.NATS.SubjectPrefix == "" {
		c.NATS.SubjectPrefix = d.NATS.SubjectPrefix
	}
}

// Validate rejects settings the server cannot start with
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	switch c.Store.Driver {
	case DriverSQLite, DriverMemory:
	default:
		return fmt.Errorf("store.driver must be %q or %q, got %q", DriverSQLite, DriverMemory, c.Store.Driver)
	}
	if c.Auth.SessionTTL < 0 {
		return fmt.Errorf("auth.session_ttl must not be negative")
	}
	if c.Auth.LoginRate < 0 || c.Auth.LoginBurst < 0 {
		return fmt.Errorf("auth.login_rate and auth.login_burst must not be negative")
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
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
