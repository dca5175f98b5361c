package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/2beens/gymbalance/internal/workouts"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
)

type Config struct {
	Environment string `toml:"environment"`
	Host        string `toml:"host"`
	Port        int    `toml:"port"`
	// logging
	LogLevel      string `toml:"log_level"`
	LogsPath      string `toml:"logs_path"`
	LogToStdout   bool   `toml:"log_to_stdout"`
	LogFormatJSON bool   `toml:"log_format_json"`
	SentryEnabled bool   `toml:"sentry_enabled"`
	// workouts
	WorkoutsCsvPath    string          `toml:"workouts_csv_path"`
	Limits             workouts.Limits `toml:"limits"`
	NeglectRatio       float64         `toml:"neglect_ratio"`
	SummaryCacheSizeMB int             `toml:"summary_cache_size_mb"`
	WeeklyReportCron   string          `toml:"weekly_report_cron"`
	// http
	AllowedOrigins        []string `toml:"allowed_origins"`
	SaveRateLimitPerMin   int      `toml:"save_rate_limit_per_min"`
	RedisHost             string   `toml:"redis_host"`
	RedisPort             string   `toml:"redis_port"`
	PrometheusMetricsHost string   `toml:"prometheus_metrics_host"`
	PrometheusMetricsPort string   `toml:"prometheus_metrics_port"`
	// archive (optional)
	PostgresHost   string `toml:"postgres_host"`
	PostgresPort   string `toml:"postgres_port"`
	PostgresDBName string `toml:"postgres_db_name"`
}

const (
	DefaultSummaryCacheSizeMB = 4
	DefaultWeeklyReportCron   = "0 8 * * 1"
	DefaultSaveRateLimit      = 30
)

type Toml struct {
	Development *Config
	Production  *Config
}

func (t *Toml) Get(env string) (*Config, error) {
	var cfg *Config
	switch strings.ToLower(env) {
	case "dev", "development":
		cfg = t.Development
		if cfg != nil && cfg.Environment == "" {
			cfg.Environment = "development"
		}
	case "prod", "production":
		cfg = t.Production
		if cfg != nil && cfg.Environment == "" {
			cfg.Environment = "production"
		}
	default:
		return nil, fmt.Errorf("unknown env: %s", env)
	}
	if cfg == nil {
		return nil, fmt.Errorf("no config section for env: %s", env)
	}
	return cfg, nil
}

// Load reads the TOML config file, picks the section for env, applies defaults and validates it.
// A .env file next to the binary, if present, is loaded into the process environment first.
func Load(env, path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var t Toml
	if _, err := toml.DecodeFile(path, &t); err != nil {
		return nil, fmt.Errorf("decode config file %s: %w", path, err)
	}

	cfg, err := t.Get(env)
	if err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Limits == (workouts.Limits{}) {
		c.Limits = workouts.DefaultLimits
	}
	if c.NeglectRatio == 0 {
		c.NeglectRatio = workouts.DefaultNeglectRatio
	}
	if c.SummaryCacheSizeMB == 0 {
		c.SummaryCacheSizeMB = DefaultSummaryCacheSizeMB
	}
	if c.WeeklyReportCron == "" {
		c.WeeklyReportCron = DefaultWeeklyReportCron
	}
	if c.SaveRateLimitPerMin == 0 {
		c.SaveRateLimitPerMin = DefaultSaveRateLimit
	}
}

func (c *Config) Validate() error {
	var err error
	if c.Port <= 0 || c.Port > 65535 {
		err = multierr.Append(err, fmt.Errorf("port %d out of range", c.Port))
	}
	if c.WorkoutsCsvPath == "" {
		err = multierr.Append(err, errors.New("workouts_csv_path is required"))
	}
	if c.Limits.MinSets < 1 || c.Limits.MaxSets < c.Limits.MinSets {
		err = multierr.Append(err, fmt.Errorf("invalid sets limits [%d, %d]", c.Limits.MinSets, c.Limits.MaxSets))
	}
	if c.Limits.MinReps < 1 || c.Limits.MaxReps < c.Limits.MinReps {
		err = multierr.Append(err, fmt.Errorf("invalid reps limits [%d, %d]", c.Limits.MinReps, c.Limits.MaxReps))
	}
	if c.Limits.MinWeight < 0 || c.Limits.MaxWeight < c.Limits.MinWeight {
		err = multierr.Append(err, fmt.Errorf("invalid weight limits [%g, %g]", c.Limits.MinWeight, c.Limits.MaxWeight))
	}
	if c.NeglectRatio <= 0 || c.NeglectRatio >= 1 {
		err = multierr.Append(err, fmt.Errorf("neglect_ratio %g must be in (0, 1)", c.NeglectRatio))
	}
	if c.SummaryCacheSizeMB < 0 {
		err = multierr.Append(err, errors.New("summary_cache_size_mb cannot be negative"))
	}
	if c.SaveRateLimitPerMin < 0 {
		err = multierr.Append(err, errors.New("save_rate_limit_per_min cannot be negative"))
	}
	return err
}

// RedisEnabled reports whether save requests should be rate limited through redis.
func (c *Config) RedisEnabled() bool {
	return c.RedisHost != ""
}

// ArchiveEnabled reports whether saved entries are mirrored to postgres.
func (c *Config) ArchiveEnabled() bool {
	return c.PostgresHost != ""
}
