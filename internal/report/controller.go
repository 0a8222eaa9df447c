package report

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"example.com/sahakari/internal/auth"
	"example.com/sahakari/internal/document"
	"example.com/sahakari/internal/domain"
	"example.com/sahakari/internal/observability"
	"example.com/sahakari/internal/source"
)

var (
	// ErrNotReady is returned by Export outside the Ready state.
	ErrNotReady = errors.New("report is not ready for export")
	// ErrNoFilter is returned by Reload before any filter has been applied.
	ErrNoFilter = errors.New("no report filter has been applied")
	// ErrSuperseded is returned by a cycle whose result was discarded because a
	// newer cycle started while it was fetching.
	ErrSuperseded = errors.New("report cycle superseded by a newer filter")
)

// View is a point-in-time copy of a Controller's state.
type View struct {
	State      State
	Filter     *domain.ReportFilter
	Summary    *domain.ReportSummary
	Clusters   []domain.ActivityCluster
	Message    string
	Generation uint64
	UpdatedAt  time.Time
}

// Controller owns the report state of one session. Summary and clusters are
// always replaced together.
type Controller struct {
	session   auth.Session
	records   source.RecordFetcher
	summaries source.SummaryFetcher
	composer  *document.Composer
	timeout   time.Duration
	logger    *log.Logger
	now       func() time.Time

	mu         sync.Mutex
	state      State
	filter     domain.ReportFilter
	hasFilter  bool
	summary    domain.ReportSummary
	clusters   []domain.ActivityCluster
	err        error
	generation uint64
	cancel     context.CancelFunc
	updatedAt  time.Time
}

// Option configures a Controller.
type Option func(*Controller)

// WithSummaryFetcher makes the controller take the breakdown from an external
// summary service instead of aggregating locally.
func WithSummaryFetcher(f source.SummaryFetcher) Option {
	return func(c *Controller) { c.summaries = f }
}

// WithTimeout bounds each fetch. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Controller) { c.timeout = d }
}

// WithComposer overrides the document composer used by Export.
func WithComposer(composer *document.Composer) Option {
	return func(c *Controller) {
		if composer != nil {
			c.composer = composer
		}
	}
}

// WithLogger overrides the controller logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewController constructs an idle Controller for session.
func NewController(session auth.Session, records source.RecordFetcher, opts ...Option) *Controller {
	composer, _ := document.NewComposer(document.DefaultLayout())
	c := &Controller{
		session:  session,
		records:  records,
		composer: composer,
		timeout:  15 * time.Second,
		logger:   log.New(log.Writer(), "[controller] ", log.LstdFlags|log.Lshortfile),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Session returns the session the controller was built for.
func (c *Controller) Session() auth.Session {
	return c.session
}

// Apply validates filter and runs a report cycle for it. An invalid filter
// returns a *domain.ValidationError and leaves the controller untouched. If a
// newer cycle starts before this one resolves, its result is discarded and
// ErrSuperseded is returned together with the newest view.
func (c *Controller) Apply(ctx context.Context, filter domain.ReportFilter) (View, error) {
	if err := filter.Validate(); err != nil {
		return c.Snapshot(), err
	}
	return c.run(ctx, c.pin(filter))
}

// Ensure returns the current view when filter is already applied and Ready,
// and runs Apply otherwise.
func (c *Controller) Ensure(ctx context.Context, filter domain.ReportFilter) (View, error) {
	if err := filter.Validate(); err != nil {
		return c.Snapshot(), err
	}
	filter = c.pin(filter)
	c.mu.Lock()
	current := c.hasFilter && c.filter == filter && c.state == StateReady
	view := c.viewLocked()
	c.mu.Unlock()
	if current {
		return view, nil
	}
	return c.run(ctx, filter)
}

// Reload re-runs the current filter.
func (c *Controller) Reload(ctx context.Context) (View, error) {
	c.mu.Lock()
	filter, ok := c.filter, c.hasFilter
	c.mu.Unlock()
	if !ok {
		return c.Snapshot(), ErrNoFilter
	}
	return c.run(ctx, filter)
}

// Snapshot returns the current view.
func (c *Controller) Snapshot() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewLocked()
}

// Filter returns the last applied filter.
func (c *Controller) Filter() (domain.ReportFilter, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.filter, c.hasFilter
}

// Export composes the Ready report into a Document.
func (c *Controller) Export() (*document.Document, error) {
	c.mu.Lock()
	if c.state != StateReady {
		state := c.state
		c.mu.Unlock()
		return nil, fmt.Errorf("%w (state %s)", ErrNotReady, state)
	}
	summary, clusters := c.summary, c.clusters
	c.mu.Unlock()
	return c.composer.Compose(summary, clusters), nil
}

// Records returns the filtered records of the Ready report in cluster order.
func (c *Controller) Records() ([]domain.ParticipationRecord, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != StateReady {
		return nil, ErrNotReady
	}
	out := make([]domain.ParticipationRecord, 0, domain.ClusterTotal(c.clusters))
	for _, cluster := range c.clusters {
		out = append(out, cluster.Records...)
	}
	return out, nil
}

// Statistics tallies the records matching filter. The Ready report is reused
// when filter is the one applied; otherwise the records are fetched for this
// call alone. The controller's report state is never changed.
func (c *Controller) Statistics(ctx context.Context, filter domain.ReportFilter) (domain.ReportFilter, domain.Stats, error) {
	if err := filter.Validate(); err != nil {
		return filter, domain.Stats{}, err
	}
	filter = c.pin(filter)

	c.mu.Lock()
	current := c.hasFilter && c.filter == filter && c.state == StateReady
	c.mu.Unlock()
	if current {
		if records, err := c.Records(); err == nil {
			return filter, domain.Tally(records), nil
		}
	}

	fetchCtx, cancel := c.fetchContext(ctx)
	defer cancel()
	started := time.Now()
	records, err := c.records.FetchRecords(fetchCtx, filter)
	observability.ObserveFetch("records", started, err)
	if err != nil {
		return filter, domain.Stats{}, &domain.FetchError{Op: "fetch participation records", Err: err}
	}
	return filter, domain.Tally(domain.Filter(records, filter)), nil
}

// pin overrides the branch of filter for branch-role sessions.
func (c *Controller) pin(filter domain.ReportFilter) domain.ReportFilter {
	if pinned := c.session.PinnedBranch(); pinned != "" {
		filter.Branch = pinned
	}
	return filter
}

func (c *Controller) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout > 0 {
		return context.WithTimeout(ctx, c.timeout)
	}
	return context.WithCancel(ctx)
}

func (c *Controller) run(ctx context.Context, filter domain.ReportFilter) (View, error) {
	gen, fetchCtx, cancel := c.begin(ctx, filter)
	defer cancel()

	summary, clusters, err := c.load(fetchCtx, filter)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		observability.RecordStale()
		c.logger.Printf("discarding result of cycle %d, current is %d", gen, c.generation)
		return c.viewLocked(), ErrSuperseded
	}
	c.cancel = nil
	c.updatedAt = c.now()
	if err != nil {
		c.state = StateError
		c.err = err
		observability.RecordCycle("error")
		c.logger.Printf("cycle %d for %s failed: %v", gen, describe(filter), err)
		return c.viewLocked(), err
	}
	c.state = StateReady
	c.summary, c.clusters = summary, clusters
	observability.RecordCycle("ready")
	return c.viewLocked(), nil
}

// begin moves the controller to Loading for a new generation, clearing the
// previous result and cancelling any cycle still in flight.
func (c *Controller) begin(ctx context.Context, filter domain.ReportFilter) (uint64, context.Context, context.CancelFunc) {
	fetchCtx, cancel := c.fetchContext(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
	}
	c.generation++
	c.cancel = cancel
	c.state = StateLoading
	c.filter, c.hasFilter = filter, true
	c.summary, c.clusters, c.err = domain.ReportSummary{}, nil, nil
	c.updatedAt = c.now()
	return c.generation, fetchCtx, cancel
}

// load fetches records (and the external summary when configured) and derives
// the summary/cluster pair from one filtered snapshot.
func (c *Controller) load(ctx context.Context, filter domain.ReportFilter) (domain.ReportSummary, []domain.ActivityCluster, error) {
	var (
		records  []domain.ParticipationRecord
		external domain.ReportSummary
		extErr   error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		started := time.Now()
		var err error
		records, err = c.records.FetchRecords(gctx, filter)
		observability.ObserveFetch("records", started, err)
		if err != nil {
			return &domain.FetchError{Op: "fetch participation records", Err: err}
		}
		return nil
	})
	if c.summaries != nil {
		g.Go(func() error {
			started := time.Now()
			external, extErr = c.summaries.FetchSummary(gctx, filter)
			observability.ObserveFetch("summary", started, extErr)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.ReportSummary{}, nil, err
	}
	if err := ctx.Err(); err != nil {
		return domain.ReportSummary{}, nil, &domain.FetchError{Op: "fetch participation records", Err: err}
	}

	filtered := domain.Filter(records, filter)
	clusters := domain.Group(filtered)

	if c.summaries != nil {
		if extErr == nil {
			summary := domain.NormalizeSummary(external, filter)
			extErr = domain.Reconcile(summary, clusters)
			if extErr == nil {
				return summary, clusters, nil
			}
		}
		observability.RecordSummaryFallback()
		c.logger.Printf("using local aggregation for %s: %v", describe(filter), extErr)
	}
	return domain.Summarize(filtered, filter), clusters, nil
}

func (c *Controller) viewLocked() View {
	v := View{
		State:      c.state,
		Generation: c.generation,
		UpdatedAt:  c.updatedAt,
	}
	if c.hasFilter {
		f := c.filter
		v.Filter = &f
	}
	switch c.state {
	case StateReady:
		s := c.summary
		v.Summary = &s
		v.Clusters = c.clusters
	case StateError:
		v.Message = userMessage(c.err)
	}
	return v
}

func userMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return "Fetching participation records timed out. Please retry."
	}
	return "Failed to fetch participation records. Please retry."
}

func describe(f domain.ReportFilter) string {
	s := fmt.Sprintf("year=%d branch=%s", f.Year, f.BranchLabel())
	if f.Activity != "" {
		s += " activity=" + f.Activity
	}
	return s
}
