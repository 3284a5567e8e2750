package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rgehrsitz/dispo/internal/domain"
	"github.com/shopspring/decimal"
)

// Settings are the process-level options read from the environment (and an
// optional .env file). Asset data never comes from here.
type Settings struct {
	Env string

	DBDriver string // sqlite, postgres or mysql
	DBDSN    string

	RedisAddr   string // empty disables the change stream
	RedisDB     int
	RedisStream string

	DiscountRate   *decimal.Decimal // overrides the asset's rate when set
	OverridePolicy domain.OverridePolicy
	PersistTimeout time.Duration
}

// LoadSettings reads settings from the environment after loading the given
// .env files. Missing .env files are ignored.
func LoadSettings(envFiles ...string) (*Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	s := &Settings{
		Env:         getEnv("DISPO_ENV", "development"),
		DBDriver:    getEnv("DISPO_DB_DRIVER", "sqlite"),
		DBDSN:       getEnv("DISPO_DB_DSN", "dispo.db"),
		RedisAddr:   getEnv("DISPO_REDIS_ADDR", ""),
		RedisStream: getEnv("DISPO_REDIS_STREAM", "dispo:changes"),
	}

	if v := os.Getenv("DISPO_REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPO_REDIS_DB %q: %w", v, err)
		}
		s.RedisDB = n
	}

	if v := os.Getenv("DISPO_DISCOUNT_RATE"); v != "" {
		rate, err := decimal.NewFromString(v)
		if err != nil {
			return nil, fmt.Errorf("invalid DISPO_DISCOUNT_RATE %q: %w", v, err)
		}
		s.DiscountRate = &rate
	}

	s.OverridePolicy = domain.OverridePolicy(getEnv("DISPO_OVERRIDE_POLICY", ""))

	timeout, err := time.ParseDuration(getEnv("DISPO_PERSIST_TIMEOUT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DISPO_PERSIST_TIMEOUT: %w", err)
	}
	s.PersistTimeout = timeout

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the settings for values no component could use
func (s *Settings) Validate() error {
	switch s.DBDriver {
	case "sqlite", "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported DISPO_DB_DRIVER %q (want sqlite, postgres or mysql)", s.DBDriver)
	}
	if s.DBDSN == "" {
		return fmt.Errorf("missing DISPO_DB_DSN")
	}
	switch s.OverridePolicy {
	case "", domain.OverrideClamp, domain.OverrideReject:
	default:
		return fmt.Errorf("unsupported DISPO_OVERRIDE_POLICY %q", s.OverridePolicy)
	}
	if s.PersistTimeout <= 0 {
		return fmt.Errorf("DISPO_PERSIST_TIMEOUT must be positive")
	}
	return nil
}

// ApplyTo copies the process-level overrides onto an asset copy
func (s *Settings) ApplyTo(asset *domain.Asset) *domain.Asset {
	out := asset.DeepCopy()
	if s.DiscountRate != nil {
		out.Assumptions.DiscountRate = *s.DiscountRate
	}
	if s.OverridePolicy != "" {
		out.Assumptions.OverridePolicy = s.OverridePolicy
	}
	return out
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}
