// Package config loads flightholdd settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// AppConfig is the full process configuration. Nested groups take their
// variables from the prefix declared on the field.
type AppConfig struct {
	Services string `env:"SERVICES" envDefault:"api,worker,reaper"`
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	StoreBackend string `env:"STORE_BACKEND" envDefault:"memory"`
	QueueBackend string `env:"QUEUE_BACKEND" envDefault:"memory"`

	Postgres PostgresConfig `envPrefix:"POSTGRES_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`

	Workers      int           `env:"WORKERS"       envDefault:"4"`
	ClaimTimeout time.Duration `env:"CLAIM_TIMEOUT" envDefault:"5s"`
	ResultTTL    time.Duration `env:"RESULT_TTL"    envDefault:"1h"`

	Executor ExecutorConfig `envPrefix:"EXECUTOR_"`
	Reaper   ReaperConfig   `envPrefix:"REAPER_"`
	Amadeus  AmadeusConfig  `envPrefix:"AMADEUS_"`

	TravelerProfilePath string `env:"TRAVELER_PROFILE_PATH" envDefault:"configs/traveler_profile.example.json"`
}

type PostgresConfig struct {
	DSN           string `env:"DSN"`
	RunMigrations bool   `env:"RUN_MIGRATIONS" envDefault:"true"`
}

type RedisConfig struct {
	Addr          string `env:"ADDR"           envDefault:"localhost:6379"`
	Password      string `env:"PASSWORD"`
	DB            int    `env:"DB"             envDefault:"0"`
	QueueKey      string `env:"QUEUE_KEY"      envDefault:"flight-hold:queue"`
	ProcessingKey string `env:"PROCESSING_KEY" envDefault:"flight-hold:processing"`
}

type ExecutorConfig struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"1"`
	RetryDelay  time.Duration `env:"RETRY_DELAY"  envDefault:"10s"`
}

type ReaperConfig struct {
	Interval       time.Duration `env:"INTERVAL"        envDefault:"30s"`
	RunningTimeout time.Duration `env:"RUNNING_TIMEOUT" envDefault:"15m"`
}

type AmadeusConfig struct {
	ClientID     string        `env:"CLIENT_ID"`
	ClientSecret string        `env:"CLIENT_SECRET"`
	BaseURL      string        `env:"BASE_URL"   envDefault:"https://test.api.amadeus.com"`
	Timeout      time.Duration `env:"TIMEOUT"    envDefault:"30s"`
	Currency     string        `env:"CURRENCY"   envDefault:"USD"`
	MaxOffers    int           `env:"MAX_OFFERS" envDefault:"5"`
}

// Load reads an optional .env file and then the process environment.
func Load() (AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return AppConfig{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	var cfg AppConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Sanitize applies guardrails to values loaded from env.
func (c *AppConfig) Sanitize() {
	c.StoreBackend = strings.ToLower(strings.TrimSpace(c.StoreBackend))
	c.QueueBackend = strings.ToLower(strings.TrimSpace(c.QueueBackend))

	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ClaimTimeout <= 0 {
		c.ClaimTimeout = 5 * time.Second
	}
	if c.ResultTTL <= 0 {
		c.ResultTTL = time.Hour
	}
	if c.Executor.MaxAttempts <= 0 {
		c.Executor.MaxAttempts = 1
	}
	if c.Executor.RetryDelay <= 0 {
		c.Executor.RetryDelay = 10 * time.Second
	}
	if c.Reaper.Interval <= 0 {
		c.Reaper.Interval = 30 * time.Second
	}
	if c.Reaper.RunningTimeout <= 0 {
		c.Reaper.RunningTimeout = 15 * time.Minute
	}
	if c.Amadeus.MaxOffers <= 0 {
		c.Amadeus.MaxOffers = 5
	}
}

// Validate reports combinations that cannot start.
func (c *AppConfig) Validate() error {
	services, err := c.EnabledServices()
	if err != nil {
		return err
	}

	switch c.StoreBackend {
	case BackendMemory:
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("POSTGRES_DSN is required when STORE_BACKEND=postgres")
		}
	default:
		return fmt.Errorf("invalid STORE_BACKEND %q (valid options: postgres, memory)", c.StoreBackend)
	}

	switch c.QueueBackend {
	case BackendMemory, BackendRedis:
	default:
		return fmt.Errorf("invalid QUEUE_BACKEND %q (valid options: redis, memory)", c.QueueBackend)
	}

	// Memory backends live inside one process; splitting roles across
	// processes would leave each with its own private store.
	if (c.StoreBackend == BackendMemory || c.QueueBackend == BackendMemory) && !services[ServiceAPI] {
		return errors.New("memory backends require the api service in the same process")
	}

	// A job waiting out its retry delay is not updated; a longer delay than
	// the reaper's running timeout would get healthy jobs reaped.
	if c.Reaper.RunningTimeout > 0 && c.Executor.RetryDelay >= c.Reaper.RunningTimeout {
		return fmt.Errorf("EXECUTOR_RETRY_DELAY (%s) must be shorter than REAPER_RUNNING_TIMEOUT (%s)",
			c.Executor.RetryDelay, c.Reaper.RunningTimeout)
	}

	if services[ServiceWorker] && (c.Amadeus.ClientID == "" || c.Amadeus.ClientSecret == "") {
		return errors.New("AMADEUS_CLIENT_ID and AMADEUS_CLIENT_SECRET are required for the worker service")
	}
	return nil
}

func (c *AppConfig) EnabledServices() (map[ServiceMode]bool, error) {
	return ParseServices(c.Services)
}

var dsnPassword = regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)

// RedactDSN masks the password in a postgres URL, user:pass@ -> user:****@.
// DSNs without a password are returned unchanged.
func RedactDSN(dsn string) string {
	return dsnPassword.ReplaceAllString(dsn, `://$1:****@`)
}
