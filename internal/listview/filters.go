// Package listview implements the filtered, paginated list view model
// shared by every analytics section.
package listview

import (
	"fmt"

	"github.com/runnerr0/dataportal/internal/portal"
)

// SearchField is the free-text filter present on every list.
const SearchField = "search"

// Field is one filter in a section's schema.
type Field struct {
	Name    string
	Label   string
	Default string // portal.All or ""
	// OptionsKey names the filter-options enumeration offering values.
	OptionsKey string
}

// FilterState holds the current filter values and page cursor for one view.
type FilterState struct {
	schema []Field
	values portal.FilterSet
	page   portal.PageRequest
}

// NewFilterState creates a state with every field at its default and the
// cursor on page 1.
func NewFilterState(schema []Field, perPage int) *FilterState {
	fs := &FilterState{
		schema: schema,
		page:   portal.PageRequest{Page: 1, PerPage: perPage},
	}
	fs.values = fs.defaults()
	return fs
}

func (fs *FilterState) defaults() portal.FilterSet {
	values := make(portal.FilterSet, len(fs.schema))
	for _, f := range fs.schema {
		values[f.Name] = f.Default
	}
	return values
}

// Filters returns a copy of the current filter values.
func (fs *FilterState) Filters() portal.FilterSet { return fs.values.Clone() }

// Page returns the current cursor.
func (fs *FilterState) Page() portal.PageRequest { return fs.page }

// Schema returns the fields this state was built with.
func (fs *FilterState) Schema() []Field { return fs.schema }

// SetFilter updates exactly one field and resets the page to 1, even when the
// value is unchanged.
func (fs *FilterState) SetFilter(field, value string) error {
	if err := fs.check(field); err != nil {
		return err
	}
	fs.values[field] = value
	fs.page.Page = 1
	return nil
}

func (fs *FilterState) check(field string) error {
	if _, ok := fs.values[field]; !ok {
		return fmt.Errorf("unknown filter %q", field)
	}
	return nil
}

// ClearFilters restores every field to its default and resets the page to 1.
func (fs *FilterState) ClearFilters() {
	fs.values = fs.defaults()
	fs.page.Page = 1
}

// SetPage moves the cursor. Filters are left untouched.
func (fs *FilterState) SetPage(n int) {
	if n < 1 {
		n = 1
	}
	fs.page.Page = n
}

// SetPerPage changes the page size and returns to page 1.
func (fs *FilterState) SetPerPage(n int) {
	if n < 1 {
		return
	}
	fs.page.PerPage = n
	fs.page.Page = 1
}

// clamp keeps the cursor within [1, totalPages]. An empty result pins it
// to page 1.
func (fs *FilterState) clamp(totalPages int) {
	if totalPages < 1 {
		totalPages = 1
	}
	if fs.page.Page > totalPages {
		fs.page.Page = totalPages
	}
	if fs.page.Page < 1 {
		fs.page.Page = 1
	}
}
