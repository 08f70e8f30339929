// Package sections describes the analytics sections of the portal and binds
// each one's row type to a generic list view model.
package sections

import (
	"context"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/listview"
	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/projection"
)

// Column renders one table column of a row.
type Column[R any] struct {
	Title string
	Value func(R) string
}

// Chart is an auxiliary summary endpoint, such as a yearly trend.
type Chart struct {
	Title string
	Path  string
}

// Info is the row-type independent description of a section.
type Info struct {
	Key          string
	Title        string
	ListPath     string
	SummaryPath  string
	OptionsPath  string
	DefaultError string
	GroupLabel   string
	Filters      []listview.Field
	Charts       []Chart
}

// Section is a section over rows of type R.
type Section[R any] struct {
	Info
	Columns []Column[R]
	GroupBy func(R) string
}

// Descriptor is implemented by every Section regardless of its row type.
type Descriptor interface {
	Describe() Info
	Open(client *api.Client, tokens listview.TokenSource, perPage int, logger logging.Logger) Browser
}

func (s *Section[R]) Describe() Info { return s.Info }

// Open creates an idle browser over the section's list endpoint.
func (s *Section[R]) Open(client *api.Client, tokens listview.TokenSource, perPage int, logger logging.Logger) Browser {
	path, msg := s.ListPath, s.DefaultError
	model := listview.New(listview.Config[R]{
		Name:    s.Key,
		Schema:  s.Filters,
		PerPage: perPage,
		Tokens:  tokens,
		GroupBy: s.GroupBy,
		Logger:  logger,
		Fetch: func(ctx context.Context, f portal.FilterSet, p portal.PageRequest, token string) (portal.ResultPage[R], error) {
			return api.FetchPage[R](ctx, client, path, f, p, token, msg)
		},
	})
	return &browser[R]{section: s, model: model}
}

// Table is a rendered snapshot of a browser.
type Table struct {
	State      listview.State
	Filters    portal.FilterSet
	Page       int
	PerPage    int
	Total      int
	TotalPages int
	// Loaded is false until a fetch for the current filters has succeeded.
	Loaded  bool
	Headers []string
	Rows    [][]string
	Groups  []projection.Group
	Shares  []projection.Share
	Err     string
}

// Browser drives one section's list interactively.
type Browser interface {
	Refresh(ctx context.Context) error
	SetFilter(ctx context.Context, field, value string) error
	ClearFilters(ctx context.Context) error
	Apply(ctx context.Context, filters portal.FilterSet, page int) error
	SetPage(ctx context.Context, n int) error
	SetPerPage(ctx context.Context, n int) error
	Table() Table
	Info() Info
}

type browser[R any] struct {
	section *Section[R]
	model   *listview.Model[R]
}

func (b *browser[R]) Refresh(ctx context.Context) error {
	return b.model.Refresh(ctx)
}

func (b *browser[R]) SetFilter(ctx context.Context, field, value string) error {
	return b.model.SetFilter(ctx, field, value)
}

func (b *browser[R]) ClearFilters(ctx context.Context) error {
	return b.model.ClearFilters(ctx)
}

func (b *browser[R]) Apply(ctx context.Context, filters portal.FilterSet, page int) error {
	return b.model.Apply(ctx, filters, page)
}

func (b *browser[R]) SetPage(ctx context.Context, n int) error {
	return b.model.SetPage(ctx, n)
}

func (b *browser[R]) SetPerPage(ctx context.Context, n int) error {
	return b.model.SetPerPage(ctx, n)
}

func (b *browser[R]) Info() Info { return b.section.Info }

func (b *browser[R]) Table() Table {
	v := b.model.Snapshot()
	t := Table{
		State:   v.State,
		Filters: v.Filters,
		Page:    v.Page.Page,
		PerPage: v.Page.PerPage,
		Groups:  v.Groups,
		Shares:  v.Shares,
		Err:     v.Err,
		Headers: make([]string, len(b.section.Columns)),
	}
	for i, c := range b.section.Columns {
		t.Headers[i] = c.Title
	}
	if v.Result == nil {
		return t
	}

	t.Loaded = true
	t.Total = v.Result.Total
	t.TotalPages = v.Result.TotalPages
	t.Rows = make([][]string, 0, len(v.Result.Rows))
	for _, r := range v.Result.Rows {
		cells := make([]string, len(b.section.Columns))
		for i, c := range b.section.Columns {
			cells[i] = c.Value(r)
		}
		t.Rows = append(t.Rows, cells)
	}
	return t
}
