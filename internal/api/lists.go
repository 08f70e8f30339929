package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/runnerr0/dataportal/internal/portal"
)

type pagination struct {
	Page       int `json:"page"`
	PerPage    int `json:"per_page"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type listEnvelope[R any] struct {
	Data       []R        `json:"data"`
	Pagination pagination `json:"pagination"`
}

// FetchPage requests one page of a list endpoint. Unconstrained filters are
// omitted from the query; an empty token fails with portal.ErrNoToken before
// any request is made.
func FetchPage[R any](ctx context.Context, c *Client, path string, filters portal.FilterSet, page portal.PageRequest, token, defaultMsg string) (portal.ResultPage[R], error) {
	var env listEnvelope[R]
	err := c.do(ctx, request{
		method:       http.MethodGet,
		path:         path,
		token:        token,
		query:        BuildQuery(filters, page),
		defaultMsg:   defaultMsg,
		authRequired: true,
	}, &env)
	if err != nil {
		return portal.ResultPage[R]{}, err
	}

	rows := env.Data
	if rows == nil {
		rows = []R{}
	}

	totalPages := env.Pagination.TotalPages
	if totalPages == 0 && env.Pagination.Total > 0 {
		perPage := env.Pagination.PerPage
		if perPage < 1 {
			perPage = page.PerPage
		}
		if perPage > 0 {
			totalPages = (env.Pagination.Total + perPage - 1) / perPage
		}
	}

	return portal.ResultPage[R]{
		Rows:       rows,
		Total:      env.Pagination.Total,
		TotalPages: totalPages,
	}, nil
}

// FilterOptions fetches the enumerations offered for each filter field,
// keyed by field. Results are cached per path when the cache is enabled;
// callers always receive their own copy.
func (c *Client) FilterOptions(ctx context.Context, path, token, defaultMsg string) (map[string][]string, error) {
	if token == "" {
		return nil, portal.ErrNoToken
	}
	if c.options != nil {
		if v, ok := c.options.Get(path); ok {
			return copyOptions(v.(map[string][]string)), nil
		}
	}

	var raw map[string]json.RawMessage
	if err := c.GetJSON(ctx, path, token, nil, defaultMsg, &raw); err != nil {
		return nil, err
	}

	opts, err := decodeOptions(raw)
	if err != nil {
		return nil, &FetchError{Status: 200, Message: "Unexpected response from server", Err: err}
	}

	if c.options != nil {
		c.options.Set(path, copyOptions(opts), cache.DefaultExpiration)
	}
	return opts, nil
}

func copyOptions(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// decodeOptions flattens {"field": [values...]} into strings. Object values
// are read through their name or value keys; non-list entries are ignored.
func decodeOptions(raw map[string]json.RawMessage) (map[string][]string, error) {
	out := make(map[string][]string, len(raw))
	for field, msg := range raw {
		var items []json.RawMessage
		if err := json.Unmarshal(msg, &items); err != nil {
			continue
		}
		values := make([]string, 0, len(items))
		for _, item := range items {
			s, err := optionString(item)
			if err != nil {
				return nil, fmt.Errorf("option %s: %w", field, err)
			}
			if s != "" {
				values = append(values, s)
			}
		}
		out[field] = values
	}
	return out, nil
}

func optionString(item json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(item, &n); err == nil {
		return n.String(), nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(item, &obj); err == nil {
		for _, k := range []string{"name", "value", "label"} {
			if v, ok := obj[k]; ok && v != nil {
				return strings.TrimSpace(fmt.Sprint(v)), nil
			}
		}
		return "", nil
	}
	return "", fmt.Errorf("unsupported value %s", string(item))
}
