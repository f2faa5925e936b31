package internal

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env           string              `mapstructure:"env"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Storage       StorageConfig       `mapstructure:"storage"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port"`
	BaseURL           string        `mapstructure:"base_url"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
	SecureCookies     bool          `mapstructure:"secure_cookies"`
}

type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver" validate:"oneof=postgres mysql sqlite"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source"`
	LogQueries      bool          `mapstructure:"log_queries"`
}

type SecurityConfig struct {
	BCryptCost         int           `mapstructure:"bcrypt_cost" validate:"required,min=10,max=15"`
	SessionSecret      string        `mapstructure:"session_secret" validate:"required,min=32"`
	SessionTTL         time.Duration `mapstructure:"session_ttl"`
	SessionCookie      string        `mapstructure:"session_cookie"`
	LoginRatePerMinute int           `mapstructure:"login_rate_per_minute"`
	AllowRegistration  bool          `mapstructure:"allow_registration"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"required,oneof=json text"`
}

// StorageConfig selects where archived reports are written. An empty or
// "none" provider disables archiving.
type StorageConfig struct {
	Provider  string `mapstructure:"provider" validate:"oneof=none local s3"`
	LocalDir  string `mapstructure:"local_dir"`
	Bucket    string `mapstructure:"bucket"`
	Region    string `mapstructure:"region"`
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

const (
	DefaultSessionTTL         = time.Hour
	DefaultSessionCookie      = "staff_session"
	DefaultLoginRatePerMinute = 10
	DefaultMetricsPath        = "/metrics"
	DefaultReportPrefix       = "reports"
)

// LoadConfigFromEnv builds the configuration from plain environment
// variables, used for container deployments where no config file is mounted.
func LoadConfigFromEnv() *Config {
	cfg := &Config{
		Env: getEnv("APP_ENV", "production"),
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 3000),
			BaseURL:           getEnv("BASE_URL", ""),
			ReadHeaderTimeout: getEnvAsDuration("HTTP_READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("HTTP_READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("HTTP_IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("HTTP_WRITE_TIMEOUT", 15*time.Second),
			SecureCookies:     getEnvAsBool("SECURE_COOKIES", true),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
			LogQueries:      getEnvAsBool("DB_LOG_QUERIES", false),
		},
		Security: SecurityConfig{
			BCryptCost:         getEnvAsInt("BCRYPT_COST", 10),
			SessionSecret:      getEnv("SESSION_SECRET", ""),
			SessionTTL:         getEnvAsDuration("SESSION_TTL", DefaultSessionTTL),
			SessionCookie:      getEnv("SESSION_COOKIE", DefaultSessionCookie),
			LoginRatePerMinute: getEnvAsInt("LOGIN_RATE_PER_MINUTE", DefaultLoginRatePerMinute),
			AllowRegistration:  getEnvAsBool("ALLOW_REGISTRATION", false),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", DefaultMetricsPath),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
		Storage: StorageConfig{
			Provider:  getEnv("STORAGE_PROVIDER", "none"),
			LocalDir:  getEnv("STORAGE_LOCAL_DIR", "./data"),
			Bucket:    getEnv("STORAGE_BUCKET", ""),
			Region:    getEnv("STORAGE_REGION", "us-east-1"),
			Endpoint:  getEnv("STORAGE_ENDPOINT", ""),
			AccessKey: getEnv("STORAGE_ACCESS_KEY", ""),
			SecretKey: getEnv("STORAGE_SECRET_KEY", ""),
			Prefix:    getEnv("STORAGE_PREFIX", DefaultReportPrefix),
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero values that have a sensible default.
func (c *Config) ApplyDefaults() {
	if c.Env == "" {
		c.Env = "development"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 3000
	}
	if c.Database.Driver == "" {
		c.Database.Driver = "postgres"
	}
	if c.Database.MaxOpenConns == 0 {
		c.Database.MaxOpenConns = 10
	}
	if c.Database.MaxIdleConns == 0 {
		c.Database.MaxIdleConns = c.Database.MaxOpenConns
	}
	if c.Security.BCryptCost == 0 {
		c.Security.BCryptCost = 10
	}
	if c.Security.SessionTTL <= 0 {
		c.Security.SessionTTL = DefaultSessionTTL
	}
	if c.Security.SessionCookie == "" {
		c.Security.SessionCookie = DefaultSessionCookie
	}
	if c.Security.LoginRatePerMinute <= 0 {
		c.Security.LoginRatePerMinute = DefaultLoginRatePerMinute
	}
	if c.Observability.Metrics.Enabled && c.Observability.Metrics.Path == "" {
		c.Observability.Metrics.Path = DefaultMetricsPath
	}
	if c.Storage.Provider == "" {
		c.Storage.Provider = "none"
	}
	if c.Storage.Prefix == "" {
		c.Storage.Prefix = DefaultReportPrefix
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

func (c *Config) Validate() error {
	var errs []string

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

func (c *DatabaseConfig) Validate() error {
	switch c.Driver {
	case "postgres", "mysql", "sqlite":
	default:
		return fmt.Errorf("unsupported driver %q", c.Driver)
	}
	if c.Source == "" {
		return errors.New("source is required")
	}
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *SecurityConfig) Validate() error {
	if len(c.SessionSecret) < 32 {
		return errors.New("session secret must be at least 32 characters")
	}
	if c.BCryptCost < 4 || c.BCryptCost > 31 {
		return fmt.Errorf("bcrypt_cost %d out of range", c.BCryptCost)
	}
	return nil
}

func (c *StorageConfig) Validate() error {
	switch c.Provider {
	case "", "none":
		return nil
	case "local":
		if c.LocalDir == "" {
			return errors.New("local_dir is required for the local provider")
		}
	case "s3":
		if c.Bucket == "" {
			return errors.New("bucket is required for the s3 provider")
		}
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider)
	}
	return nil
}

// Enabled reports whether reports should be archived at all.
func (c *StorageConfig) Enabled() bool {
	return c.Provider != "" && c.Provider != "none"
}
