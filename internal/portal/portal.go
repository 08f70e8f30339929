// Package portal holds the types shared by the API client and the list
// views: filter sets, page cursors, result pages and the per-section rows.
package portal

import "errors"

// All is the filter sentinel meaning "unconstrained".
const All = "All"

// ErrNoToken reports that an authenticated call was attempted without a
// session token. Callers treat it as a skipped action, not a failure.
var ErrNoToken = errors.New("no session token")

// FilterSet maps filter field names to their selected values.
type FilterSet map[string]string

// Clone returns an independent copy.
func (f FilterSet) Clone() FilterSet {
	out := make(FilterSet, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Unconstrained reports whether value leaves its field unconstrained.
func Unconstrained(value string) bool {
	return value == "" || value == All
}

// PageRequest is a 1-based pagination cursor.
type PageRequest struct {
	Page    int
	PerPage int
}

// ResultPage is one fetched slice of rows plus pagination metadata.
type ResultPage[R any] struct {
	Rows       []R
	Total      int
	TotalPages int
}

// User is the profile returned alongside a session token.
type User struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	RoleID      int    `json:"role_id"`
	RoleName    string `json:"role_name,omitempty"`
}
