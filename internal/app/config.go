package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/platform/envutil"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
	"github.com/yungbote/lo-analysis-backend/internal/services"
)

type WorkerConfig struct {
	Concurrency  int           `yaml:"concurrency"`
	PollInterval time.Duration `yaml:"poll_interval"`
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryDelay   time.Duration `yaml:"retry_delay"`
	StaleRunning time.Duration `yaml:"stale_running"`
}

type AnalysisConfig struct {
	StrandConcurrency    int    `yaml:"strand_concurrency"`
	Fanout               string `yaml:"fanout"`
	EmptyStrandPolicy    string `yaml:"empty_strand_policy"`
	MalformedTokenPolicy string `yaml:"malformed_token_policy"`
}

type TokenizerConfig struct {
	Kind    string        `yaml:"kind"`
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

type RedisConfig struct {
	Addr    string `yaml:"addr"`
	Channel string `yaml:"channel"`
}

type OtelConfig struct {
	Enabled     bool    `yaml:"enabled"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	LogMode        string          `yaml:"log_mode"`
	Port           string          `yaml:"port"`
	ServiceName    string          `yaml:"service_name"`
	MetricsEnabled bool            `yaml:"metrics_enabled"`
	CORSOrigins    []string        `yaml:"cors_allowed_origins"`
	DB             db.Config       `yaml:"db"`
	Redis          RedisConfig     `yaml:"redis"`
	Worker         WorkerConfig    `yaml:"worker"`
	Analysis       AnalysisConfig  `yaml:"analysis"`
	Tokenizer      TokenizerConfig `yaml:"tokenizer"`
	Otel           OtelConfig      `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		LogMode:        "development",
		Port:           "8080",
		ServiceName:    "lo-analysis-backend",
		MetricsEnabled: true,
		DB: db.Config{
			Driver: db.DriverPostgres,
			Postgres: db.PostgresConfig{
				Host: "localhost",
				Port: "5432",
				User: "postgres",
				Name: "lo_analysis",
			},
			SQLitePath: "lo_analysis.db",
		},
		Redis: RedisConfig{Channel: "lo-analysis.jobs"},
		Worker: WorkerConfig{
			Concurrency:  2,
			PollInterval: time.Second,
			MaxAttempts:  3,
			RetryDelay:   30 * time.Second,
			StaleRunning: 30 * time.Minute,
		},
		Analysis: AnalysisConfig{
			StrandConcurrency:    4,
			Fanout:               "inline",
			EmptyStrandPolicy:    "error",
			MalformedTokenPolicy: "reject",
		},
		Tokenizer: TokenizerConfig{Kind: "prose", Timeout: 10 * time.Second},
		Otel:      OtelConfig{SampleRatio: 1},
	}
}

// LoadConfig builds the config from defaults, then the YAML file named by
// CONFIG_FILE, then the environment. Environment variables win.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()
	if path := envutil.String("CONFIG_FILE", ""); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		if log != nil {
			log.Info("Loaded config file", "path", path)
		}
	}
	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.LogMode = envutil.String("LOG_MODE", cfg.LogMode)
	cfg.Port = envutil.String("PORT", cfg.Port)
	cfg.ServiceName = envutil.String("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.MetricsEnabled = envutil.Bool("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.CORSOrigins = envutil.List("CORS_ALLOWED_ORIGINS", cfg.CORSOrigins)

	cfg.DB.Driver = strings.ToLower(envutil.String("DB_DRIVER", cfg.DB.Driver))
	cfg.DB.Postgres.Host = envutil.String("POSTGRES_HOST", cfg.DB.Postgres.Host)
	cfg.DB.Postgres.Port = envutil.String("POSTGRES_PORT", cfg.DB.Postgres.Port)
	cfg.DB.Postgres.User = envutil.String("POSTGRES_USER", cfg.DB.Postgres.User)
	cfg.DB.Postgres.Password = envutil.String("POSTGRES_PASSWORD", cfg.DB.Postgres.Password)
	cfg.DB.Postgres.Name = envutil.String("POSTGRES_NAME", cfg.DB.Postgres.Name)
	cfg.DB.Postgres.SSLMode = envutil.String("POSTGRES_SSLMODE", cfg.DB.Postgres.SSLMode)
	cfg.DB.SQLitePath = envutil.String("SQLITE_PATH", cfg.DB.SQLitePath)

	cfg.Redis.Addr = envutil.String("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Channel = envutil.String("REDIS_CHANNEL", cfg.Redis.Channel)

	cfg.Worker.Concurrency = envutil.Int("WORKER_CONCURRENCY", cfg.Worker.Concurrency)
	cfg.Worker.PollInterval = envutil.Duration("WORKER_POLL_INTERVAL", cfg.Worker.PollInterval)
	cfg.Worker.MaxAttempts = envutil.Int("JOB_MAX_ATTEMPTS", cfg.Worker.MaxAttempts)
	cfg.Worker.RetryDelay = envutil.Duration("JOB_RETRY_DELAY", cfg.Worker.RetryDelay)
	cfg.Worker.StaleRunning = envutil.Duration("JOB_STALE_RUNNING", cfg.Worker.StaleRunning)

	cfg.Analysis.StrandConcurrency = envutil.Int("ANALYSIS_STRAND_CONCURRENCY", cfg.Analysis.StrandConcurrency)
	cfg.Analysis.Fanout = envutil.String("ANALYSIS_FANOUT", cfg.Analysis.Fanout)
	cfg.Analysis.EmptyStrandPolicy = envutil.String("EMPTY_STRAND_POLICY", cfg.Analysis.EmptyStrandPolicy)
	cfg.Analysis.MalformedTokenPolicy = envutil.String("MALFORMED_TOKEN_POLICY", cfg.Analysis.MalformedTokenPolicy)

	cfg.Tokenizer.Kind = strings.ToLower(envutil.String("TOKENIZER", cfg.Tokenizer.Kind))
	cfg.Tokenizer.URL = envutil.String("TOKENIZER_URL", cfg.Tokenizer.URL)
	cfg.Tokenizer.Timeout = envutil.Duration("TOKENIZER_TIMEOUT", cfg.Tokenizer.Timeout)

	cfg.Otel.Enabled = envutil.Bool("OTEL_ENABLED", cfg.Otel.Enabled)
	cfg.Otel.Endpoint = envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint)
	cfg.Otel.Headers = envutil.String("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers)
	cfg.Otel.SampleRatio = envutil.Float("OTEL_SAMPLER_RATIO", cfg.Otel.SampleRatio)
}

func (c *Config) validate() error {
	fanout, err := services.ParseFanout(c.Analysis.Fanout)
	if err != nil {
		return err
	}
	c.Analysis.Fanout = fanout
	switch c.DB.Driver {
	case db.DriverPostgres, db.DriverSQLite:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DB.Driver)
	}
	switch c.Tokenizer.Kind {
	case "prose":
	case "remote":
		if c.Tokenizer.URL == "" {
			return fmt.Errorf("TOKENIZER=remote requires TOKENIZER_URL")
		}
	default:
		return fmt.Errorf("unknown TOKENIZER %q", c.Tokenizer.Kind)
	}
	return nil
}
