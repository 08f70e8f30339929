package sections

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/dataportal/internal/api"
)

// Card is one headline figure of a summary endpoint.
type Card struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Point is one (name, value) pair of a chart. Values keep their fraction;
// revenue trends are rarely whole numbers.
type Point struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// Text formats the value for display: thousands separators, and up to two
// decimals when the value is fractional.
func (p Point) Text() string {
	if p.Value == math.Trunc(p.Value) && math.Abs(p.Value) < 1e15 {
		return humanize.Comma(int64(p.Value))
	}
	return humanize.CommafWithDigits(p.Value, 2)
}

// Series is a labelled list of points for a chart.
type Series struct {
	Title  string  `json:"title"`
	Points []Point `json:"points"`
}

// Summary is everything the summary view shows for a section.
type Summary struct {
	Cards  []Card   `json:"cards"`
	Series []Series `json:"series"`
	// Errors holds chart endpoints that failed; the rest still render.
	Errors map[string]string `json:"errors,omitempty"`
}

// FetchSummary loads the section's summary endpoint and every chart
// endpoint. The summary endpoint must succeed; chart failures are collected.
func FetchSummary(ctx context.Context, c *api.Client, token string, info Info) (*Summary, error) {
	var raw map[string]json.RawMessage
	if err := c.GetJSON(ctx, info.SummaryPath, token, nil, "Failed to fetch summary", &raw); err != nil {
		return nil, err
	}

	s := &Summary{Errors: map[string]string{}}
	s.Cards, s.Series = decodeSummary(raw)

	for _, ch := range info.Charts {
		var body json.RawMessage
		if err := c.GetJSON(ctx, ch.Path, token, nil, "Failed to fetch chart data", &body); err != nil {
			s.Errors[ch.Title] = err.Error()
			continue
		}
		points, err := decodePoints(body)
		if err != nil {
			s.Errors[ch.Title] = err.Error()
			continue
		}
		s.Series = append(s.Series, Series{Title: ch.Title, Points: points})
	}
	return s, nil
}

// decodeSummary turns scalar members into cards and list members into
// series. Keys are visited in sorted order so output is stable.
func decodeSummary(raw map[string]json.RawMessage) ([]Card, []Series) {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var cards []Card
	var series []Series
	for _, k := range keys {
		msg := raw[k]
		var v interface{}
		if err := json.Unmarshal(msg, &v); err != nil {
			continue
		}
		switch t := v.(type) {
		case string, float64, bool:
			cards = append(cards, Card{Label: label(k), Value: scalar(t)})
		case []interface{}:
			if points, err := decodePoints(msg); err == nil && len(points) > 0 {
				series = append(series, Series{Title: label(k), Points: points})
			}
		}
	}
	return cards, series
}

// decodePoints accepts a list of objects, optionally wrapped in {"data": [...]}.
// Each object contributes its first string-ish member as the name and its
// first numeric member as the value.
func decodePoints(body json.RawMessage) ([]Point, error) {
	var items []map[string]interface{}
	if err := json.Unmarshal(body, &items); err != nil {
		var wrapped struct {
			Data []map[string]interface{} `json:"data"`
		}
		if werr := json.Unmarshal(body, &wrapped); werr != nil {
			return nil, fmt.Errorf("unexpected chart payload")
		}
		items = wrapped.Data
	}

	points := make([]Point, 0, len(items))
	for _, item := range items {
		keys := make([]string, 0, len(item))
		for k := range item {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		var name string
		var value float64
		haveName, haveValue := false, false
		for _, k := range preferNameKeys(keys) {
			switch v := item[k].(type) {
			case string:
				if !haveName {
					name, haveName = v, true
				}
			case float64:
				if isNameKey(k) && !haveName {
					name, haveName = scalar(v), true
				} else if !haveValue {
					value, haveValue = v, true
				}
			}
		}
		if haveName && haveValue {
			points = append(points, Point{Name: name, Value: value})
		}
	}
	return points, nil
}

var nameKeys = []string{"name", "label", "year", "month", "department", "type", "event_type", "publication_type"}

func isNameKey(k string) bool {
	for _, n := range nameKeys {
		if n == k {
			return true
		}
	}
	return false
}

// preferNameKeys moves known label keys to the front.
func preferNameKeys(keys []string) []string {
	out := make([]string, 0, len(keys))
	for _, n := range nameKeys {
		for _, k := range keys {
			if k == n {
				out = append(out, k)
			}
		}
	}
	for _, k := range keys {
		if !isNameKey(k) {
			out = append(out, k)
		}
	}
	return out
}

func label(key string) string {
	words := strings.Split(key, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%.2f", t)
	default:
		return fmt.Sprint(t)
	}
}
