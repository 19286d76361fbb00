package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/yungbote/lo-analysis-backend/internal/domain"
)

func TestFromError(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", domain.NotFound("get", "strand"), http.StatusNotFound, "not_found"},
		{"duplicate level", fmt.Errorf("wrap: %w", domain.NewError(domain.CodeDuplicateLevel, "op", "taken", nil)), http.StatusConflict, "duplicate_level"},
		{"malformed", domain.NewError(domain.CodeMalformedToken, "parse", "(who", nil), http.StatusBadRequest, "malformed_verb_list_token"},
		{"empty strand", domain.NewError(domain.CodeEmptyStrand, "avg", "", nil), http.StatusUnprocessableEntity, "empty_strand"},
		{"plain", errors.New("boom"), http.StatusInternalServerError, "internal"},
		{"explicit", New(http.StatusTeapot, "teapot", nil), http.StatusTeapot, "teapot"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := FromError(tc.err)
			if got.Status != tc.status || got.Code != tc.code {
				t.Fatalf("FromError=%d/%s want %d/%s", got.Status, got.Code, tc.status, tc.code)
			}
		})
	}
	if FromError(nil) != nil {
		t.Fatalf("FromError(nil) should be nil")
	}
}
