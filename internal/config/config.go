package config

import (
	"errors"
	"fmt"
	"os"
	"time"
	_ "time/tzdata"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type AppConfig struct {
	Port        string `env:"APP_PORT" envDefault:"8080"`
	StoreDriver string `env:"STORE_DRIVER" envDefault:"postgres"`
	Timezone    string `env:"TIMEZONE" envDefault:"Africa/Cairo"`
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Pretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

type PostgresConfig struct {
	Host            string        `env:"DB_HOST" envDefault:"localhost"`
	Port            string        `env:"DB_PORT" envDefault:"5432"`
	User            string        `env:"DB_USER" envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"`
	DBName          string        `env:"DB_NAME" envDefault:"orders"`
	SSLMode         string        `env:"DB_SSLMODE" envDefault:"disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	MinConns        int32         `env:"DB_MIN_CONNS" envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	MigrationsPath  string        `env:"MIGRATIONS_PATH" envDefault:"migrations"`
	AutoMigrate     bool          `env:"DB_AUTO_MIGRATE" envDefault:"false"`
}

type RateLimitConfig struct {
	Window        time.Duration `env:"RATE_LIMIT_WINDOW" envDefault:"15m"`
	MaxRequests   int           `env:"RATE_LIMIT_MAX" envDefault:"100"`
	SweepInterval time.Duration `env:"RATE_LIMIT_SWEEP" envDefault:"5m"`
}

type ShopConfig struct {
	UnitPrice      string `env:"UNIT_PRICE" envDefault:"350"`
	WhatsAppNumber string `env:"WHATSAPP_NUMBER"`
	ProductName    string `env:"PRODUCT_NAME"`
}

type Config struct {
	App       AppConfig
	Log       LogConfig
	Postgres  PostgresConfig
	RateLimit RateLimitConfig
	Shop      ShopConfig
}

// NewConfig loads an optional .env file (path from ENV_FILE, default ".env")
// and then reads the process environment.
func NewConfig() (*Config, error) {
	path := os.Getenv("ENV_FILE")
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	return Parse()
}

// Parse reads the configuration from the environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.App.StoreDriver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, c.App.StoreDriver)
	}

	if _, err := c.UnitPrice(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.RateLimit.Window <= 0 {
		return errors.New("RATE_LIMIT_WINDOW must be positive")
	}
	if c.RateLimit.MaxRequests <= 0 {
		return errors.New("RATE_LIMIT_MAX must be positive")
	}

	return nil
}

func (c *Config) UnitPrice() (decimal.Decimal, error) {
	price, err := decimal.NewFromString(c.Shop.UnitPrice)
	if err != nil {
		return decimal.Zero, fmt.Errorf("UNIT_PRICE %q is not a number: %w", c.Shop.UnitPrice, err)
	}
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("UNIT_PRICE must not be negative, got %s", price)
	}
	return price, nil
}

func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.App.Timezone, err)
	}
	return loc, nil
}
