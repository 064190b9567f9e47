package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Env         string
	Addr        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	DBMaxConns  int
	LogLevel    string

	// Scheduling knobs. These are tunable defaults, not contracts.
	ExcludeLast   int
	Alpha         float64
	UnseenOffset  float64
	JitterCeiling float64
	OptionCount   int
	RetryAttempts int

	RateLimitRPS   float64
	RateLimitBurst int

	// AdminToken guards /api/admin. Empty leaves the admin routes unmounted.
	AdminToken string

	ReconcileCron string
	WorkerCount   int
	QueueSize     int
}

// NewViper returns a viper instance with defaults applied, a .env file (if present)
// loaded into the environment, and an optional config.yaml merged in.
func NewViper() (*viper.Viper, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("app_env", "local")
	v.SetDefault("addr", ":8080")
	v.SetDefault("db_driver", DriverSQLite)
	v.SetDefault("db_path", "file:wordflash.db")
	v.SetDefault("database_url", "")
	v.SetDefault("db_max_conns", 10)
	v.SetDefault("log_level", "INFO")
	v.SetDefault("exclude_last", 5)
	v.SetDefault("alpha", 2.0)
	v.SetDefault("unseen_offset", 100.0)
	v.SetDefault("jitter_ceiling", 0.01)
	v.SetDefault("option_count", 7)
	v.SetDefault("retry_attempts", 3)
	v.SetDefault("rate_limit_rps", 10.0)
	v.SetDefault("rate_limit_burst", 20)
	v.SetDefault("admin_token", "")
	v.SetDefault("reconcile_cron", "")
	v.SetDefault("worker_count", 1)
	v.SetDefault("queue_size", 8)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}
	return v, nil
}

// Load reads configuration from a .env file (if present), an optional config.yaml and
// environment variables, applying defaults when values are missing.
func Load() (Config, error) {
	v, err := NewViper()
	if err != nil {
		return Config{}, err
	}
	return FromViper(v), nil
}

// FromViper builds a Config from an already prepared viper instance, so that CLI flags
// bound to the same keys take precedence.
func FromViper(v *viper.Viper) Config {
	return Config{
		Env:            v.GetString("app_env"),
		Addr:           v.GetString("addr"),
		DBDriver:       strings.ToLower(v.GetString("db_driver")),
		DBPath:         v.GetString("db_path"),
		DatabaseURL:    v.GetString("database_url"),
		DBMaxConns:     v.GetInt("db_max_conns"),
		LogLevel:       v.GetString("log_level"),
		ExcludeLast:    v.GetInt("exclude_last"),
		Alpha:          v.GetFloat64("alpha"),
		UnseenOffset:   v.GetFloat64("unseen_offset"),
		JitterCeiling:  v.GetFloat64("jitter_ceiling"),
		OptionCount:    v.GetInt("option_count"),
		RetryAttempts:  v.GetInt("retry_attempts"),
		RateLimitRPS:   v.GetFloat64("rate_limit_rps"),
		RateLimitBurst: v.GetInt("rate_limit_burst"),
		AdminToken:     v.GetString("admin_token"),
		ReconcileCron:  v.GetString("reconcile_cron"),
		WorkerCount:    v.GetInt("worker_count"),
		QueueSize:      v.GetInt("queue_size"),
	}
}

// IsProduction reports whether the app runs with production logging.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	var errs []error

	if c.Addr == "" {
		errs = append(errs, errors.New("ADDR cannot be empty"))
	}

	switch c.DBDriver {
	case DriverSQLite:
		if c.DBPath == "" {
			errs = append(errs, errors.New("DB_PATH cannot be empty"))
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.DBDriver))
	}

	if c.DBMaxConns < 1 {
		errs = append(errs, fmt.Errorf("DB_MAX_CONNS must be at least 1, got %d", c.DBMaxConns))
	}
	if c.ExcludeLast < 0 {
		errs = append(errs, fmt.Errorf("EXCLUDE_LAST cannot be negative, got %d", c.ExcludeLast))
	}
	if c.Alpha < 0 {
		errs = append(errs, fmt.Errorf("ALPHA cannot be negative, got %g", c.Alpha))
	}
	if c.UnseenOffset < 0 {
		errs = append(errs, fmt.Errorf("UNSEEN_OFFSET cannot be negative, got %g", c.UnseenOffset))
	}
	if c.JitterCeiling < 0 || c.JitterCeiling >= 1 {
		errs = append(errs, fmt.Errorf("JITTER_CEILING must be in [0, 1), got %g", c.JitterCeiling))
	}
	if c.OptionCount < 1 {
		errs = append(errs, fmt.Errorf("OPTION_COUNT must be at least 1, got %d", c.OptionCount))
	}
	if c.RetryAttempts < 1 || c.RetryAttempts > 10 {
		errs = append(errs, fmt.Errorf("RETRY_ATTEMPTS must be between 1 and 10, got %d", c.RetryAttempts))
	}
	if c.RateLimitRPS < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_RPS cannot be negative, got %g", c.RateLimitRPS))
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled, got %d", c.RateLimitBurst))
	}
	if c.WorkerCount < 1 {
		errs = append(errs, fmt.Errorf("WORKER_COUNT must be at least 1, got %d", c.WorkerCount))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("QUEUE_SIZE must be at least 1, got %d", c.QueueSize))
	}
	if c.ReconcileCron != "" {
		if _, err := cron.ParseStandard(c.ReconcileCron); err != nil {
			errs = append(errs, fmt.Errorf("RECONCILE_CRON is not a valid cron expression: %v", err))
		}
	}

	return errors.Join(errs...)
}
