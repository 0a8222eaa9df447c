package report

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/source"
)

// DefaultIdleTTL is how long a session's controller is kept without use.
const DefaultIdleTTL = 30 * time.Minute

// Registry holds one Controller per session subject. Controllers unused for
// longer than the idle TTL are evicted on later calls to For.
type Registry struct {
	records source.RecordFetcher
	opts    []Option
	logger  *log.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu          sync.Mutex
	controllers map[string]*entry
	lastSweep   time.Time
}

type entry struct {
	controller *Controller
	lastUsed   time.Time
}

// NewRegistry constructs a Registry whose controllers read from records and
// are configured with opts.
func NewRegistry(records source.RecordFetcher, opts ...Option) *Registry {
	return &Registry{
		records:     records,
		opts:        opts,
		logger:      log.New(log.Writer(), "[registry] ", log.LstdFlags|log.Lshortfile),
		idleTTL:     DefaultIdleTTL,
		now:         time.Now,
		controllers: make(map[string]*entry),
	}
}

// SetIdleTTL changes the idle eviction bound. Zero or less disables eviction.
func (r *Registry) SetIdleTTL(d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.idleTTL = d
}

// For returns the controller of session, creating it on first use. A session
// whose role or branch changed gets a fresh controller.
func (r *Registry) For(session auth.Session) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	r.sweepLocked(now)
	if e, ok := r.controllers[session.Subject]; ok && e.controller.Session() == session {
		e.lastUsed = now
		return e.controller
	}
	c := NewController(session, r.records, r.opts...)
	r.controllers[session.Subject] = &entry{controller: c, lastUsed: now}
	return c
}

// sweepLocked evicts idle controllers, at most once per quarter TTL. A
// controller with a cycle in flight is kept.
func (r *Registry) sweepLocked(now time.Time) {
	if r.idleTTL <= 0 || now.Sub(r.lastSweep) < r.idleTTL/4 {
		return
	}
	r.lastSweep = now
	for subject, e := range r.controllers {
		if now.Sub(e.lastUsed) < r.idleTTL || e.controller.Snapshot().State == StateLoading {
			continue
		}
		delete(r.controllers, subject)
	}
}

// Len returns the number of controllers held.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.controllers)
}

// ReloadMatching reloads every controller whose current filter could include a
// record dated at date in branch. A nil date matches every year. It returns the
// number of controllers reloaded.
func (r *Registry) ReloadMatching(ctx context.Context, date *time.Time, branch string) (int, error) {
	r.mu.Lock()
	targets := make([]*Controller, 0, len(r.controllers))
	for _, e := range r.controllers {
		if filter, ok := e.controller.Filter(); ok && filter.Covers(date, branch) {
			targets = append(targets, e.controller)
		}
	}
	r.mu.Unlock()

	var g errgroup.Group
	g.SetLimit(4)
	for _, c := range targets {
		g.Go(func() error {
			_, err := c.Reload(ctx)
			if errors.Is(err, ErrSuperseded) {
				return nil
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		r.logger.Printf("reload after change in branch %q: %v", branch, err)
		return len(targets), err
	}
	return len(targets), nil
}
