package filter

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/harrisonrobin/taskdeck/pkg/cache"
	"github.com/harrisonrobin/taskdeck/pkg/gateway"
	"github.com/harrisonrobin/taskdeck/pkg/model"
	"github.com/harrisonrobin/taskdeck/pkg/session"
)

// DefaultMinLoading is how long the loading state stays visible at minimum.
// Purely perceptual feedback, not a correctness requirement.
const DefaultMinLoading = 500 * time.Millisecond

// Engine applies named filters against the gateway and publishes the
// validated result to the task cache. Applications are not serialized:
// overlapping fetches race on the network, and the sequence number decides
// which response is allowed to publish — anything but the latest issued is
// discarded.
type Engine struct {
	gw      *gateway.Client
	session *session.Store
	cache   *cache.TaskCache

	// MinLoading can be lowered in tests; zero disables the floor.
	MinLoading time.Duration

	dir string

	seq     atomic.Uint64
	loading atomic.Bool

	mu     sync.Mutex
	active Selection
}

func NewEngine(gw *gateway.Client, sess *session.Store, c *cache.TaskCache, dir string) *Engine {
	return &Engine{
		gw:         gw,
		session:    sess,
		cache:      c,
		MinLoading: DefaultMinLoading,
		dir:        dir,
		active:     Selection{Name: All},
	}
}

// Loading reports whether a filter application is visibly in flight.
func (e *Engine) Loading() bool {
	return e.loading.Load()
}

// Active returns the currently selected filter.
func (e *Engine) Active() Selection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

// Apply selects and applies a filter. The selection is remembered (and
// persisted when non-default) before the fetch, matching how the UI treats
// the chosen filter as current even while its result is loading. The
// previously visible list stays in place until the new result publishes.
func (e *Engine) Apply(ctx context.Context, sel Selection) error {
	if !e.session.IsAuthenticated() {
		return cache.ErrNoSession
	}

	pred, err := predicateFor(sel, e.session.User().ID)
	if err != nil {
		return err
	}

	e.remember(sel)

	seq := e.seq.Add(1)
	e.loading.Store(true)
	started := time.Now()

	tasks, fetchErr := e.gw.GetTasks(ctx, e.session.Token(), e.filtersFor(sel))

	// A newer application was issued while this one was in flight; its
	// response owns the visible set and the loading flag now.
	if e.seq.Load() != seq {
		return nil
	}

	if fetchErr == nil {
		e.cache.Replace(Revalidate(tasks, pred))
	} else {
		e.cache.SetError("failed to load tasks for filter '" + string(sel.Name) + "'")
	}

	if rem := e.MinLoading - time.Since(started); rem > 0 {
		time.Sleep(rem)
	}
	if e.seq.Load() == seq {
		e.loading.Store(false)
	}
	return fetchErr
}

// ApplyName is Apply for the filters that take no arguments.
func (e *Engine) ApplyName(ctx context.Context, name Name) error {
	return e.Apply(ctx, Selection{Name: name})
}

// ApplyStatus applies the arbitrary-status filter.
func (e *Engine) ApplyStatus(ctx context.Context, status model.Status) error {
	return e.Apply(ctx, Selection{Name: ByStatus, Status: status})
}

// ApplyPriority applies the arbitrary-priority filter.
func (e *Engine) ApplyPriority(ctx context.Context, priority model.Priority) error {
	return e.Apply(ctx, Selection{Name: ByPriority, Priority: priority})
}

// Restore re-applies a persisted non-default filter selection, if any. Call
// it once after the session is restored and before first render.
func (e *Engine) Restore(ctx context.Context) error {
	sel, ok, err := loadSelection(e.dir)
	if err != nil {
		return err
	}
	if !ok || sel.Name == All {
		return nil
	}
	return e.Apply(ctx, sel)
}

func (e *Engine) remember(sel Selection) {
	e.mu.Lock()
	e.active = sel
	e.mu.Unlock()

	if sel.Name == All {
		clearSelection(e.dir)
		return
	}
	saveSelection(e.dir, sel)
}

// filtersFor encodes the server-side half of a selection. The gateway is
// asked for the same slice the predicate checks, but its answer is not
// trusted to be exact.
func (e *Engine) filtersFor(sel Selection) *gateway.TaskFilters {
	if sel.Name == All {
		return nil
	}

	filters := &gateway.TaskFilters{AssignedToUserID: e.session.User().ID}
	switch sel.Name {
	case MyPending:
		status := model.StatusPending
		filters.Status = &status
	case MyCompleted:
		status := model.StatusCompleted
		filters.Status = &status
	case MyHighPriority:
		priority := model.PriorityHigh
		filters.Priority = &priority
	case ByStatus:
		status := sel.Status
		filters.Status = &status
	case ByPriority:
		priority := sel.Priority
		filters.Priority = &priority
	}
	return filters
}
