package cli

import (
	"context"

	"github.com/runnerr0/dataportal/internal/listview"
	"github.com/runnerr0/dataportal/internal/projection"
	"github.com/runnerr0/dataportal/internal/sections"
)

// listJSON is the JSON output structure for the list command.
type listJSON struct {
	Section    string              `json:"section"`
	Filters    map[string]string   `json:"filters"`
	Page       int                 `json:"page"`
	PerPage    int                 `json:"per_page"`
	Total      int                 `json:"total"`
	TotalPages int                 `json:"total_pages"`
	Rows       []map[string]string `json:"rows"`
	Groups     []projection.Group  `json:"groups,omitempty"`
	Shares     []projection.Share  `json:"shares,omitempty"`
}

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *ListCommand) run(ctx context.Context, env *appEnv) error {
	d, ok, err := openSection(env, c.Args.Section)
	if !ok {
		return err
	}

	filters, err := parseFilters(c.Filter)
	if err != nil {
		return err
	}
	if c.Search != "" {
		filters[listview.SearchField] = c.Search
	}

	perPage := c.PerPage
	if perPage <= 0 {
		perPage = env.cfg.Display.PerPage
	}

	b := d.Open(env.client, env.session, perPage, env.log)
	if err := b.Apply(ctx, filters, c.Page); err != nil {
		if t := b.Table(); t.State == listview.Errored {
			return userFacing(err)
		}
		return err
	}

	t := b.Table()
	info := b.Info()
	if env.json {
		return writeJSON(env.out, toListJSON(t, info, c.Chart))
	}

	renderSectionTable(env.out, t, info)
	if c.Chart {
		renderChart(env.out, t, info, env.cfg.Display.ChartWidth)
	}
	return nil
}

func toListJSON(t sections.Table, info sections.Info, chart bool) listJSON {
	out := listJSON{
		Section:    info.Key,
		Filters:    t.Filters,
		Page:       t.Page,
		PerPage:    t.PerPage,
		Total:      t.Total,
		TotalPages: t.TotalPages,
		Rows:       make([]map[string]string, len(t.Rows)),
	}
	for i, row := range t.Rows {
		m := make(map[string]string, len(row))
		for j, cell := range row {
			m[t.Headers[j]] = cell
		}
		out.Rows[i] = m
	}
	if chart {
		out.Groups = t.Groups
		out.Shares = t.Shares
	}
	return out
}
