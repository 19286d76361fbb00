package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(domain.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureIndexes(db)
}

// EnsureIndexes creates the indexes gorm tags cannot express.
func EnsureIndexes(db *gorm.DB) error {
	stmts := []struct{ name, sql string }{
		{"idx_strand_curriculum_position", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_strand_curriculum_position
			ON strand (curriculum_id, position);`},
		{"idx_learning_outcome_strand_index", `
			CREATE INDEX IF NOT EXISTS idx_learning_outcome_strand_index
			ON learning_outcome (strand_id, lo_index);`},
		{"idx_strand_analysis_curriculum_strand", `
			CREATE UNIQUE INDEX IF NOT EXISTS idx_strand_analysis_curriculum_strand
			ON strand_analysis (curriculum_analysis_id, strand_id);`},
		{"idx_lo_analysis_strand_index", `
			CREATE INDEX IF NOT EXISTS idx_lo_analysis_strand_index
			ON learning_outcome_analysis (strand_analysis_id, learning_outcome_index);`},
		{"idx_job_run_status_created", `
			CREATE INDEX IF NOT EXISTS idx_job_run_status_created
			ON job_run (status, created_at);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}

	if IsPostgres(db) {
		if err := db.Exec(`
			CREATE INDEX IF NOT EXISTS idx_job_run_runnable
			ON job_run (created_at)
			WHERE status IN ('queued', 'failed', 'running');
		`).Error; err != nil {
			return fmt.Errorf("create idx_job_run_runnable: %w", err)
		}
	}
	return nil
}
