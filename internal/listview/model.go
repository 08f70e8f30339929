package listview

import (
	"context"
	"errors"
	"sync"

	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/projection"
)

// ErrSuperseded is returned by a fetch whose response arrived after a newer
// fetch had been issued. Its result is discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// ErrBadPageSize is returned for a page size below 1.
var ErrBadPageSize = errors.New("page size must be at least 1")

// State is the orchestrator's lifecycle position.
type State int

const (
	Idle State = iota
	Loading
	Loaded
	Errored
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Errored:
		return "errored"
	default:
		return "unknown"
	}
}

// Fetcher retrieves one page of rows for the given filters.
type Fetcher[R any] func(ctx context.Context, filters portal.FilterSet, page portal.PageRequest, token string) (portal.ResultPage[R], error)

// TokenSource supplies the current session token. An empty token means no
// session.
type TokenSource interface {
	Token() string
}

// View is a consistent snapshot of a Model.
type View[R any] struct {
	State   State
	Filters portal.FilterSet
	Page    portal.PageRequest
	// Result is nil until a fetch for the current filters succeeds.
	Result *portal.ResultPage[R]
	Groups []projection.Group
	Shares []projection.Share
	Err    string
}

// Model coordinates filter state, remote fetches and derived projections for
// one list. It is safe for concurrent use; every fetch is tagged with a
// generation and only the newest generation may write the result slot.
type Model[R any] struct {
	mu      sync.Mutex
	filters *FilterState
	fetch   Fetcher[R]
	tokens  TokenSource
	groupBy func(R) string
	logger  logging.Logger
	name    string

	state     State
	result    *portal.ResultPage[R]
	groups    []projection.Group
	shares    []projection.Share
	errMsg    string
	gen       uint64
	lastToken string
}

// Config wires a Model.
type Config[R any] struct {
	Name    string
	Schema  []Field
	PerPage int
	Fetch   Fetcher[R]
	Tokens  TokenSource
	// GroupBy selects the category used for the grouped-count projection.
	// Nil disables projections.
	GroupBy func(R) string
	Logger  logging.Logger
}

// New creates an idle Model.
func New[R any](cfg Config[R]) *Model[R] {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Model[R]{
		filters: NewFilterState(cfg.Schema, cfg.PerPage),
		fetch:   cfg.Fetch,
		tokens:  cfg.Tokens,
		groupBy: cfg.GroupBy,
		logger:  logger,
		name:    cfg.Name,
	}
}

// Snapshot returns the current view.
func (m *Model[R]) Snapshot() View[R] {
	m.mu.Lock()
	defer m.mu.Unlock()

	return View[R]{
		State:   m.state,
		Filters: m.filters.Filters(),
		Page:    m.filters.Page(),
		Result:  m.result,
		Groups:  m.groups,
		Shares:  m.shares,
		Err:     m.errMsg,
	}
}

// Schema returns the filter fields of this list.
func (m *Model[R]) Schema() []Field { return m.filters.Schema() }

// Refresh issues one fetch for the current filters and page. With no session
// token it does nothing and returns nil. When the response shows the
// requested page lies past the end, the last page is fetched instead so the
// rows always belong to the page the cursor names.
func (m *Model[R]) Refresh(ctx context.Context) error {
	return m.refresh(ctx, true)
}

func (m *Model[R]) refresh(ctx context.Context, followClamp bool) error {
	m.mu.Lock()
	token := ""
	if m.tokens != nil {
		token = m.tokens.Token()
	}
	if token == "" {
		m.mu.Unlock()
		m.logger.Debug("listview", "fetch skipped: no session token", map[string]interface{}{"list": m.name})
		return nil
	}

	m.gen++
	gen := m.gen
	prev := m.state
	m.state = Loading
	m.lastToken = token
	filters := m.filters.Filters()
	page := m.filters.Page()
	m.mu.Unlock()

	m.logger.Debug("listview", "fetch issued", map[string]interface{}{
		"list":       m.name,
		"generation": gen,
		"page":       page.Page,
	})

	res, err := m.fetch(ctx, filters, page, token)

	m.mu.Lock()

	if latest := m.gen; gen != latest {
		m.mu.Unlock()
		m.logger.Debug("listview", "stale response discarded", map[string]interface{}{
			"list":       m.name,
			"generation": gen,
			"latest":     latest,
		})
		return ErrSuperseded
	}

	if errors.Is(err, portal.ErrNoToken) {
		m.state = prev
		m.mu.Unlock()
		return nil
	}

	if err != nil {
		m.state = Errored
		m.errMsg = err.Error()
		m.mu.Unlock()
		return err
	}

	m.filters.clamp(res.TotalPages)
	if moved := m.filters.Page().Page != page.Page; moved && followClamp {
		m.mu.Unlock()
		m.logger.Debug("listview", "page past the end, fetching last page", map[string]interface{}{
			"list":        m.name,
			"requested":   page.Page,
			"total_pages": res.TotalPages,
		})
		return m.refresh(ctx, false)
	}

	m.result = &res
	m.errMsg = ""
	m.state = Loaded
	m.project()
	m.mu.Unlock()
	return nil
}

// project recomputes the derived series from the result slot. Callers hold mu.
func (m *Model[R]) project() {
	if m.groupBy == nil || m.result == nil {
		m.groups, m.shares = nil, nil
		return
	}
	m.groups = projection.GroupCount(m.result.Rows, m.groupBy)
	m.shares = projection.Fractions(m.groups)
}

// dropResult empties the result slot so rows computed against old filters are
// never shown. Callers hold mu.
func (m *Model[R]) dropResult() {
	m.result = nil
	m.groups = nil
	m.shares = nil
}

// SetFilter changes one filter, returns to page 1 and refetches.
func (m *Model[R]) SetFilter(ctx context.Context, field, value string) error {
	m.mu.Lock()
	if err := m.filters.SetFilter(field, value); err != nil {
		m.mu.Unlock()
		return err
	}
	m.dropResult()
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// Apply sets several filters and a page as one transition: a single fetch
// is issued for the combined state. A page below 1 means page 1.
func (m *Model[R]) Apply(ctx context.Context, filters portal.FilterSet, page int) error {
	m.mu.Lock()
	for field := range filters {
		if err := m.filters.check(field); err != nil {
			m.mu.Unlock()
			return err
		}
	}
	for field, value := range filters {
		_ = m.filters.SetFilter(field, value)
	}
	m.filters.SetPage(page)
	if len(filters) > 0 {
		m.dropResult()
	}
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// ClearFilters restores the defaults, returns to page 1 and refetches.
func (m *Model[R]) ClearFilters(ctx context.Context) error {
	m.mu.Lock()
	m.filters.ClearFilters()
	m.dropResult()
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// SetPage moves to page n and refetches. The current rows stay visible until
// the new page arrives. Once a result is loaded, n is held within its page
// count.
func (m *Model[R]) SetPage(ctx context.Context, n int) error {
	m.mu.Lock()
	m.filters.SetPage(n)
	if m.result != nil {
		m.filters.clamp(m.result.TotalPages)
	}
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// SetPerPage changes the page size, returns to page 1 and refetches.
func (m *Model[R]) SetPerPage(ctx context.Context, n int) error {
	if n < 1 {
		return ErrBadPageSize
	}
	m.mu.Lock()
	m.filters.SetPerPage(n)
	m.mu.Unlock()
	return m.Refresh(ctx)
}

// TokenChanged refetches when the session token differs from the one used by
// the last fetch. Losing the token clears the result slot.
func (m *Model[R]) TokenChanged(ctx context.Context) error {
	m.mu.Lock()
	token := ""
	if m.tokens != nil {
		token = m.tokens.Token()
	}
	if token == m.lastToken {
		m.mu.Unlock()
		return nil
	}
	if token == "" {
		m.dropResult()
		m.state = Idle
		m.errMsg = ""
		m.lastToken = ""
		m.mu.Unlock()
		return nil
	}
	m.mu.Unlock()
	return m.Refresh(ctx)
}
