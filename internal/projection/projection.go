// Package projection turns a page of rows into chart-ready series.
package projection

// Group is one (category, count) pair.
type Group struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// Share is a Group plus its fraction of the total.
type Share struct {
	Name     string  `json:"name"`
	Value    int     `json:"value"`
	Fraction float64 `json:"fraction"`
}

// GroupCount groups rows by key and counts them. Groups come out in the
// order their first row appears; rows are never re-sorted.
func GroupCount[R any](rows []R, key func(R) string) []Group {
	index := make(map[string]int)
	groups := []Group{}

	for _, r := range rows {
		k := key(r)
		if i, ok := index[k]; ok {
			groups[i].Value++
			continue
		}
		index[k] = len(groups)
		groups = append(groups, Group{Name: k, Value: 1})
	}

	return groups
}

// Fractions computes each group's share of the summed counts. Empty input
// yields an empty slice; no zero-count entries are synthesised.
func Fractions(groups []Group) []Share {
	total := 0
	for _, g := range groups {
		total += g.Value
	}

	shares := make([]Share, 0, len(groups))
	for _, g := range groups {
		if g.Value == 0 {
			continue
		}
		shares = append(shares, Share{
			Name:     g.Name,
			Value:    g.Value,
			Fraction: float64(g.Value) / float64(total),
		})
	}

	return shares
}
