package testutil

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/lo-analysis-backend/internal/data/db"
	"github.com/yungbote/lo-analysis-backend/internal/platform/dbctx"
	"github.com/yungbote/lo-analysis-backend/internal/platform/logger"
)

var (
	logOnce sync.Once
	logg    *logger.Logger

	dbSeq atomic.Int64
)

// Logger returns a shared test logger. LOG_TESTS=1 switches from the
// no-op logger to the development console encoder.
func Logger(tb testing.TB) *logger.Logger {
	tb.Helper()
	logOnce.Do(func() {
		if strings.TrimSpace(os.Getenv("LOG_TESTS")) == "1" {
			if l, err := logger.New("test"); err == nil {
				logg = l
				return
			}
		}
		logg = logger.Nop()
	})
	return logg
}

// DB returns a freshly migrated database private to the calling test.
// TEST_POSTGRES_DSN selects postgres; otherwise a named in-memory sqlite
// database is used and closed on cleanup.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()
	if dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN")); dsn != "" {
		return postgresDB(tb, dsn)
	}

	name := fmt.Sprintf("file:lotest_%d_%s?mode=memory&cache=shared", dbSeq.Add(1), sanitizeName(tb.Name()))
	svc, err := db.NewSQLiteServiceSilent(name, Logger(tb))
	if err != nil {
		tb.Fatalf("open sqlite: %v", err)
	}
	gdb := svc.DB()
	if err := db.AutoMigrateAll(gdb); err != nil {
		tb.Fatalf("migrate: %v", err)
	}
	tb.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return gdb
}

var (
	pgOnce sync.Once
	pgDB   *gorm.DB
	pgErr  error
)

func postgresDB(tb testing.TB, dsn string) *gorm.DB {
	tb.Helper()
	pgOnce.Do(func() {
		pgDB, pgErr = gorm.Open(postgres.Open(dsn), &gorm.Config{
			DisableForeignKeyConstraintWhenMigrating: true,
			Logger:                                   gormLogger.Default.LogMode(gormLogger.Silent),
			NowFunc:                                  db.NowUTC,
		})
		if pgErr != nil {
			return
		}
		pgErr = db.AutoMigrateAll(pgDB)
	})
	if pgErr != nil {
		tb.Fatalf("failed to init test db: %v", pgErr)
	}
	return pgDB
}

// Tx opens a transaction that is rolled back when the test ends.
func Tx(tb testing.TB, gdb *gorm.DB) *gorm.DB {
	tb.Helper()
	tx := gdb.Begin()
	if tx.Error != nil {
		tb.Fatalf("begin tx: %v", tx.Error)
	}
	tb.Cleanup(func() {
		_ = tx.Rollback().Error
	})
	return tx
}

// Ctx wraps tx for repo calls.
func Ctx(tb testing.TB, tx *gorm.DB) dbctx.Context {
	tb.Helper()
	return dbctx.Context{Ctx: tb.Context(), Tx: tx}
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
