package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodes(t *testing.T) {
	err := fmt.Errorf("create category: %w", NewError(CodeDuplicateLevel, "taxonomy.create_category", "level 1 already used", nil))

	if !errors.Is(err, ErrDuplicateLevel) {
		t.Fatalf("errors.Is(ErrDuplicateLevel) = false for %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("duplicate level should not match not found")
	}
	if got := CodeOf(err); got != CodeDuplicateLevel {
		t.Fatalf("CodeOf=%q", got)
	}
	if !IsCode(err, CodeDuplicateLevel) {
		t.Fatalf("IsCode false")
	}
}

func TestWrapKeepsExistingCode(t *testing.T) {
	inner := NotFound("strand.get", "strand")
	if got := CodeOf(Wrap(CodeInternal, "outer", inner)); got != CodeNotFound {
		t.Fatalf("Wrap replaced code: %q", got)
	}
	if Wrap(CodeInternal, "op", nil) != nil {
		t.Fatalf("Wrap(nil) should be nil")
	}
	plain := errors.New("boom")
	if got := CodeOf(Wrap(CodeRetryable, "op", plain)); got != CodeRetryable {
		t.Fatalf("CodeOf(wrapped plain)=%q", got)
	}
}
