package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/inkstone-site/inkstone/internal/usecase"
)

// Config represents application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Logging   LoggingConfig   `json:"logging"`
	Security  SecurityConfig  `json:"security"`
	RateLimit RateLimitConfig `json:"rate_limit"`
	Content   ContentConfig   `json:"content"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port         string        `json:"port"`
	Host         string        `json:"host"`
	ReadTimeout  time.Duration `json:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout"`
	IdleTimeout  time.Duration `json:"idle_timeout"`
	Environment  string        `json:"environment"`
	// TrustProxy controls whether X-Forwarded-For is believed for the
	// client address. Only enable behind a reverse proxy that sets it.
	TrustProxy bool `json:"trust_proxy"`
}

// DatabaseConfig represents the live comment store. The database is
// optional: with Enabled false the site runs read-only off the static
// content index and inbound writes fail as retryable.
type DatabaseConfig struct {
	Enabled        bool          `json:"enabled"`
	Host           string        `json:"host"`
	Port           int           `json:"port"`
	User           string        `json:"user"`
	Password       string        `json:"password"`
	DBName         string        `json:"dbname"`
	SSLMode        string        `json:"sslmode"`
	MaxConnections int           `json:"max_connections"`
	MaxIdleTime    time.Duration `json:"max_idle_time"`
	ConnectTimeout time.Duration `json:"connect_timeout"`
	MigrationsPath string        `json:"migrations_path"`
}

// RedisConfig represents the rate-limit counter store. Optional: with
// Enabled false the limiter falls back to an in-process counter.
type RedisConfig struct {
	Enabled  bool          `json:"enabled"`
	Host     string        `json:"host"`
	Port     int           `json:"port"`
	Password string        `json:"password"`
	DB       int           `json:"db"`
	Timeout  time.Duration `json:"timeout"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"` // json, text
}

// SecurityConfig represents session and hashing configuration
type SecurityConfig struct {
	SessionSecret      string `json:"-"`
	IdentityHashSecret string `json:"-"`
	CredentialsFile    string `json:"credentials_file"`
}

// RateLimitConfig holds the per-dimension submission budgets.
type RateLimitConfig struct {
	CommentIPLimit     int           `json:"comment_ip_limit"`
	CommentIPWindow    time.Duration `json:"comment_ip_window"`
	CommentSlugLimit   int           `json:"comment_slug_limit"`
	CommentSlugWindow  time.Duration `json:"comment_slug_window"`
	ContactIPLimit     int           `json:"contact_ip_limit"`
	ContactIPWindow    time.Duration `json:"contact_ip_window"`
	ContactEmailLimit  int           `json:"contact_email_limit"`
	ContactEmailWindow time.Duration `json:"contact_email_window"`
}

// ContentConfig points at the static content index snapshot.
type ContentConfig struct {
	StaticIndexFile string `json:"static_index_file"`
}

// Load loads configuration from environment variables and defaults.
// A local .env file is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second),
			IdleTimeout:  getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second),
			Environment:  getEnv("ENVIRONMENT", "development"),
			TrustProxy:   getEnvBool("TRUST_PROXY", false),
		},
		Database: DatabaseConfig{
			Enabled:        getEnvBool("DB_ENABLED", true),
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			DBName:         getEnv("DB_NAME", "inkstone"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConnections: getEnvInt("DB_MAX_CONNECTIONS", 10),
			MaxIdleTime:    getEnvDuration("DB_MAX_IDLE_TIME", 30*time.Minute),
			ConnectTimeout: getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnvInt("REDIS_PORT", 6379),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			Timeout:  getEnvDuration("REDIS_TIMEOUT", 5*time.Second),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Security: SecurityConfig{
			SessionSecret:      getEnv("SESSION_SECRET", ""),
			IdentityHashSecret: getEnv("IDENTITY_HASH_SECRET", ""),
			CredentialsFile:    getEnv("STAFF_CREDENTIALS", "./staff.json"),
		},
		RateLimit: RateLimitConfig{
			CommentIPLimit:     getEnvInt("RATE_COMMENT_IP_LIMIT", 5),
			CommentIPWindow:    getEnvDuration("RATE_COMMENT_IP_WINDOW", time.Minute),
			CommentSlugLimit:   getEnvInt("RATE_COMMENT_SLUG_LIMIT", 30),
			CommentSlugWindow:  getEnvDuration("RATE_COMMENT_SLUG_WINDOW", time.Minute),
			ContactIPLimit:     getEnvInt("RATE_CONTACT_IP_LIMIT", 3),
			ContactIPWindow:    getEnvDuration("RATE_CONTACT_IP_WINDOW", 10*time.Minute),
			ContactEmailLimit:  getEnvInt("RATE_CONTACT_EMAIL_LIMIT", 3),
			ContactEmailWindow: getEnvDuration("RATE_CONTACT_EMAIL_WINDOW", 10*time.Minute),
		},
		Content: ContentConfig{
			StaticIndexFile: getEnv("CONTENT_INDEX_FILE", "./content_index.json"),
		},
	}

	// Identity hashing defaults to the session secret so a single-secret
	// deployment still hashes emails and IPs.
	if config.Security.IdentityHashSecret == "" {
		config.Security.IdentityHashSecret = config.Security.SessionSecret
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}

	if c.Security.SessionSecret == "" {
		return fmt.Errorf("SESSION_SECRET is required")
	}

	if c.Database.Enabled {
		if c.Database.Host == "" {
			return fmt.Errorf("database host is required")
		}
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.DBName == "" {
			return fmt.Errorf("database name is required")
		}
	}

	return nil
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

// GetDatabaseURL returns the database connection string
func (c *Config) GetDatabaseURL() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s connect_timeout=%d",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
		int(c.Database.ConnectTimeout.Seconds()),
	)
}

// GetRedisURL returns the Redis connection URL
func (c *Config) GetRedisURL() string {
	if c.Redis.Password != "" {
		return fmt.Sprintf("redis://:%s@%s:%d/%d", c.Redis.Password, c.Redis.Host, c.Redis.Port, c.Redis.DB)
	}
	return fmt.Sprintf("redis://%s:%d/%d", c.Redis.Host, c.Redis.Port, c.Redis.DB)
}

// SubmissionLimits converts the rate-limit section for the submission
// pipeline.
func (c *Config) SubmissionLimits() usecase.SubmissionLimits {
	return usecase.SubmissionLimits{
		CommentIPLimit:     c.RateLimit.CommentIPLimit,
		CommentIPWindow:    c.RateLimit.CommentIPWindow,
		CommentSlugLimit:   c.RateLimit.CommentSlugLimit,
		CommentSlugWindow:  c.RateLimit.CommentSlugWindow,
		ContactIPLimit:     c.RateLimit.ContactIPLimit,
		ContactIPWindow:    c.RateLimit.ContactIPWindow,
		ContactEmailLimit:  c.RateLimit.ContactEmailLimit,
		ContactEmailWindow: c.RateLimit.ContactEmailWindow,
	}
}

// Helper functions for environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
