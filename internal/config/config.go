package config

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"
	CacheBackendNone   = "none"
)

type DatabaseOptions struct {
	Host        string `env:"DB_HOST" envDefault:"localhost"`
	Port        string `env:"DB_PORT" envDefault:"5432"`
	User        string `env:"DB_USER" envDefault:"postgres"`
	Password    string `env:"DB_PASSWORD" envDefault:"postgres"`
	Name        string `env:"DB_NAME" envDefault:"postgres"`
	SSLMode     string `env:"DB_SSLMODE" envDefault:"disable"`
	AutoMigrate bool   `env:"DB_AUTO_MIGRATE" envDefault:"true"`
}

// DSN builds the postgres connection URL.
func (d DatabaseOptions) DSN() string {
	return "postgres://" + d.User + ":" + d.Password + "@" + d.Host + ":" + d.Port + "/" + d.Name + "?sslmode=" + d.SSLMode
}

type CacheOptions struct {
	Backend  string        `env:"CACHE_BACKEND" envDefault:"memory"` // memory, redis or none
	RedisURL string        `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	TTL      time.Duration `env:"CACHE_TTL" envDefault:"5m"`
}

type WorkflowOptions struct {
	LockTimeout       time.Duration `env:"LOCK_TIMEOUT" envDefault:"30s"`
	AdminEmails       []string      `env:"ADMIN_EMAILS" envSeparator:","`
	ITReviewForms     []string      `env:"IT_REVIEW_FORMS" envSeparator:","`
	OperationsMailbox string        `env:"OPERATIONS_MAILBOX" envDefault:"operations@example.com"`
}

type Configuration struct {
	Database DatabaseOptions
	Cache    CacheOptions
	Workflow WorkflowOptions

	Port        string   `env:"PORT" envDefault:"8080"`
	JWTSecret   string   `env:"JWT_SECRET"`
	GinMode     string   `env:"GIN_MODE" envDefault:"debug"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`
	MetricsPath string   `env:"METRICS_PATH" envDefault:"/metrics"`
}

// Load reads the given .env files (missing files are skipped) and parses the
// environment into a Configuration.
func Load(envFiles ...string) (*Configuration, error) {
	existing := make([]string, 0, len(envFiles))
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) > 0 {
		if err := godotenv.Load(existing...); err != nil {
			log.Println("failed to load env files:", err)
		}
	}

	c := &Configuration{}
	if err := env.Parse(c); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	c.normalize()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Configuration) normalize() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	c.Workflow.AdminEmails = trimAll(c.Workflow.AdminEmails, strings.ToLower)
	c.Workflow.ITReviewForms = trimAll(c.Workflow.ITReviewForms, func(s string) string {
		return strings.TrimLeft(s, "0")
	})
	c.Workflow.OperationsMailbox = strings.ToLower(strings.TrimSpace(c.Workflow.OperationsMailbox))
}

// Validate checks the configuration for errors
func (c *Configuration) Validate() error {
	switch c.Cache.Backend {
	case CacheBackendMemory, CacheBackendNone:
	case CacheBackendRedis:
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("REDIS_URL is required when CACHE_BACKEND is 'redis'")
		}
	default:
		return fmt.Errorf("CACHE_BACKEND must be 'memory', 'redis' or 'none', got '%s'", c.Cache.Backend)
	}
	if c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.Cache.TTL)
	}
	if c.Workflow.LockTimeout <= 0 {
		return fmt.Errorf("LOCK_TIMEOUT must be positive, got %s", c.Workflow.LockTimeout)
	}
	if c.GinMode == "release" && c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required in release mode")
	}
	return nil
}

// Secret returns the JWT signing secret, falling back to a development key
// outside release mode.
func (c *Configuration) Secret() []byte {
	if c.JWTSecret == "" {
		return []byte("default_super_secret_key") // Development fallback only
	}
	return []byte(c.JWTSecret)
}

func trimAll(values []string, fn func(string) string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = fn(strings.TrimSpace(v))
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
