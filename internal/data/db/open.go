package db

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	Driver     string         `yaml:"driver"`
	Postgres   PostgresConfig `yaml:"postgres"`
	SQLitePath string         `yaml:"sqlite_path"`
}

// Open connects to the configured driver. Unknown drivers are an error.
func Open(cfg Config, log *logger.Logger) (*gorm.DB, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", DriverPostgres:
		svc, err := NewPostgresService(cfg.Postgres, log)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	case DriverSQLite:
		svc, err := NewSQLiteService(cfg.SQLitePath, log)
		if err != nil {
			return nil, err
		}
		return svc.DB(), nil
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

// IsPostgres reports whether db speaks the postgres dialect.
func IsPostgres(db *gorm.DB) bool {
	return db != nil && db.Dialector != nil && db.Dialector.Name() == DriverPostgres
}

// NowUTC is the clock for autoCreateTime columns. SQLite compares times as
// text, so every timestamp is written in one zone.
func NowUTC() time.Time { return time.Now().UTC() }
