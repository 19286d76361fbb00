package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want domain.ErrorCode
	}{
		{"not found", gorm.ErrRecordNotFound, domain.CodeNotFound},
		{"wrapped not found", fmt.Errorf("get: %w", gorm.ErrRecordNotFound), domain.CodeNotFound},
		{"pg unique", &pgconn.PgError{Code: "23505"}, domain.CodeConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, domain.CodePreconditionFailed},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, domain.CodeRetryable},
		{"sqlite unique", errors.New("UNIQUE constraint failed: verb_category.taxonomy_id, verb_category.level"), domain.CodeConflict},
		{"sqlite locked", errors.New("database is locked"), domain.CodeRetryable},
		{"canceled", context.Canceled, domain.CodeRetryable},
		{"other", errors.New("boom"), domain.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := MapError("op", tc.err)
			if code := domain.CodeOf(got); code != tc.want {
				t.Fatalf("code=%q want %q (err=%v)", code, tc.want, got)
			}
		})
	}

	coded := domain.NotFound("svc.get", "strand")
	if MapError("other", coded) != coded {
		t.Fatalf("coded errors must pass through")
	}
	if MapError("op", nil) != nil {
		t.Fatalf("nil must stay nil")
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("pg 23505 not detected")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: non_cat_verb.title")) {
		t.Fatalf("sqlite unique not detected")
	}
	if IsUniqueViolation(errors.New("boom")) || IsUniqueViolation(nil) {
		t.Fatalf("false positive")
	}
}
