package runtime

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Handler executes one job type. Handlers report their outcome through the
// Context; a returned error is treated as a failure of the run.
type Handler interface {
	Type() string
	Run(ctx *Context) error
}

var ErrDuplicateJobType = errors.New("job type already registered")

// Registry maps job_run.job_type to the handler that runs it.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry registers every handler and reports all rejected ones at once.
// The returned registry holds the handlers that were accepted.
func NewRegistry(hs ...Handler) (*Registry, error) {
	r := &Registry{handlers: make(map[string]Handler, len(hs))}
	var errs []error
	for _, h := range hs {
		if err := r.Register(h); err != nil {
			errs = append(errs, err)
		}
	}
	return r, errors.Join(errs...)
}

func (r *Registry) Register(h Handler) error {
	if h == nil {
		return errors.New("register job handler: nil handler")
	}
	jobType := h.Type()
	if jobType == "" {
		return fmt.Errorf("register job handler %T: empty job type", h)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.handlers[jobType]; exists {
		return fmt.Errorf("register job handler %T: %w: %s", h, ErrDuplicateJobType, jobType)
	}
	r.handlers[jobType] = h
	return nil
}

func (r *Registry) Get(jobType string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[jobType]
	return h, ok
}

// Types lists the registered job types in sorted order, for startup logs.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.handlers))
	for t := range r.handlers {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}
