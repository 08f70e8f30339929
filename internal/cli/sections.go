package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/runnerr0/dataportal/internal/sections"
	"github.com/runnerr0/dataportal/internal/session"
)

// Execute implements the go-flags Commander interface for SectionsCommand.
func (c *SectionsCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *SectionsCommand) run(ctx context.Context, env *appEnv) error {
	if ok, err := requireRoute(env, session.RouteHome); !ok {
		return err
	}
	renderHome(env)
	return nil
}

// openSection resolves a section key after checking the session may browse.
func openSection(env *appEnv, key string) (sections.Descriptor, bool, error) {
	ok, err := requireRoute(env, session.RouteSections)
	if !ok {
		return nil, false, err
	}
	d, err := sections.Lookup(key)
	if err != nil {
		return nil, false, err
	}
	return d, true, nil
}

// Execute implements the go-flags Commander interface for SummaryCommand.
func (c *SummaryCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *SummaryCommand) run(ctx context.Context, env *appEnv) error {
	d, ok, err := openSection(env, c.Args.Section)
	if !ok {
		return err
	}
	info := d.Describe()

	sum, err := sections.FetchSummary(ctx, env.client, env.session.Token(), info)
	if err != nil {
		return userFacing(err)
	}

	if env.json {
		return writeJSON(env.out, sum)
	}

	title(env.out, info.Title)
	labelWidth := 0
	for _, card := range sum.Cards {
		if len(card.Label) > labelWidth {
			labelWidth = len(card.Label)
		}
	}
	for _, card := range sum.Cards {
		fmt.Fprintf(env.out, "%s  %s\n", pad(card.Label+":", labelWidth+1), card.Value)
	}

	for _, s := range sum.Series {
		fmt.Fprintln(env.out)
		fmt.Fprintln(env.out, titleStyle.Sprint(s.Title))
		renderBars(env.out, pointBars(s.Points), env.cfg.Display.ChartWidth)
	}

	if len(sum.Errors) > 0 {
		fmt.Fprintln(env.out)
		names := make([]string, 0, len(sum.Errors))
		for name := range sum.Errors {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintln(env.out, warnStyle.Sprintf("%s: %s", name, sum.Errors[name]))
		}
	}
	return nil
}

// Execute implements the go-flags Commander interface for OptionsCommand.
func (c *OptionsCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *OptionsCommand) run(ctx context.Context, env *appEnv) error {
	d, ok, err := openSection(env, c.Args.Section)
	if !ok {
		return err
	}
	info := d.Describe()

	byField := map[string][]string{}
	if info.OptionsPath != "" {
		opts, err := env.client.FilterOptions(ctx, info.OptionsPath, env.session.Token(), "Failed to fetch filter options")
		if err != nil {
			return userFacing(err)
		}
		for _, f := range info.Filters {
			if f.OptionsKey != "" {
				byField[f.Name] = opts[f.OptionsKey]
			}
		}
	}

	if env.json {
		return writeJSON(env.out, map[string]interface{}{"section": info.Key, "options": byField})
	}

	title(env.out, info.Title+" filters")
	for _, f := range info.Filters {
		if f.OptionsKey == "" {
			fmt.Fprintf(env.out, "%-18s %s\n", f.Name, dimStyle.Sprint("free text"))
			continue
		}
		values := byField[f.Name]
		if len(values) == 0 {
			fmt.Fprintf(env.out, "%-18s %s\n", f.Name, dimStyle.Sprint("(no values offered)"))
			continue
		}
		fmt.Fprintf(env.out, "%-18s %s\n", f.Name, strings.Join(append([]string{f.Default}, values...), ", "))
	}
	return nil
}
