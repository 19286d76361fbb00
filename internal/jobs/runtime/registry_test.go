package runtime

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type namedHandler string

func (h namedHandler) Type() string           { return string(h) }
func (h namedHandler) Run(ctx *Context) error { return nil }

func TestNewRegistryReportsEveryRejection(t *testing.T) {
	r, err := NewRegistry(namedHandler("strand_analysis"), namedHandler(""), namedHandler("curriculum_analysis"), namedHandler("strand_analysis"))
	if !errors.Is(err, ErrDuplicateJobType) {
		t.Fatalf("err=%v want duplicate job type", err)
	}
	if diff := cmp.Diff([]string{"curriculum_analysis", "strand_analysis"}, r.Types()); diff != "" {
		t.Fatalf("types (-want +got):\n%s", diff)
	}
	if _, ok := r.Get("strand_analysis"); !ok {
		t.Fatalf("accepted handler missing")
	}
	if _, ok := r.Get(""); ok {
		t.Fatalf("empty job type registered")
	}
}

func TestRegisterNil(t *testing.T) {
	r, err := NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	if err := r.Register(nil); err == nil {
		t.Fatalf("nil handler accepted")
	}
}
