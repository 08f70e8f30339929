package api

import (
	"net/url"
	"strconv"

	"github.com/runnerr0/dataportal/internal/portal"
)

// DefaultPerPage is sent when the cursor carries no page size.
const DefaultPerPage = 10

// BuildQuery serialises filters and the page cursor into query parameters.
// Unconstrained fields ("All" or empty) are left out entirely; page and
// per_page are always present.
func BuildQuery(filters portal.FilterSet, page portal.PageRequest) url.Values {
	q := url.Values{}
	for field, value := range filters {
		if portal.Unconstrained(value) {
			continue
		}
		q.Set(field, value)
	}

	p := page.Page
	if p < 1 {
		p = 1
	}
	perPage := page.PerPage
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	q.Set("page", strconv.Itoa(p))
	q.Set("per_page", strconv.Itoa(perPage))
	return q
}

// FilterQuery serialises filters alone, for trend and distribution
// endpoints that are not paginated.
func FilterQuery(filters portal.FilterSet) url.Values {
	q := url.Values{}
	for field, value := range filters {
		if portal.Unconstrained(value) {
			continue
		}
		q.Set(field, value)
	}
	return q
}
