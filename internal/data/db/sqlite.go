package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

// SQLiteService backs local development, the CLI and tests. SQLite has a
// single writer, so the pool is pinned to one connection; callers inside
// a transaction must use that transaction for every query.
type SQLiteService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSQLiteService(path string, logg *logger.Logger) (*SQLiteService, error) {
	return openSQLite(path, newGormLogger(), logg)
}

// NewSQLiteServiceSilent is NewSQLiteService with gorm's logger muted.
func NewSQLiteServiceSilent(path string, logg *logger.Logger) (*SQLiteService, error) {
	return openSQLite(path, gormLogger.Default.LogMode(gormLogger.Silent), logg)
}

func openSQLite(path string, gl gormLogger.Interface, logg *logger.Logger) (*SQLiteService, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		path = "file:lo_analysis.db?cache=shared"
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gl,
		NowFunc:                                  NowUTC,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.Exec("PRAGMA busy_timeout = 5000").Error; err != nil {
		return nil, fmt.Errorf("sqlite busy_timeout: %w", err)
	}
	return &SQLiteService{db: db, log: logg.With("service", "SQLiteService")}, nil
}

func (s *SQLiteService) DB() *gorm.DB { return s.db }
