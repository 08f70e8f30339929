package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/listview"
)

const browseHelp = `Commands:
  filter <field> <value>   set one filter (use All to clear it)
  search <text>            free-text search (no text clears it)
  clear                    reset every filter
  page <n> | next | prev   move between pages
  perpage <n>              rows per page (back to page 1)
  chart                    grouped counts for this page
  refresh                  fetch the current page again
  fields                   list filter fields
  help                     this text
  quit                     leave`

// Execute implements the go-flags Commander interface for BrowseCommand.
func (c *BrowseCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *BrowseCommand) run(ctx context.Context, env *appEnv) error {
	d, ok, err := openSection(env, c.Args.Section)
	if !ok {
		return err
	}

	perPage := c.PerPage
	if perPage <= 0 {
		perPage = env.cfg.Display.PerPage
	}
	b := d.Open(env.client, env.session, perPage, env.log)

	show := func(err error) {
		renderSectionTable(env.out, b.Table(), b.Info())
		var fe *api.FetchError
		switch {
		case err == nil, errors.Is(err, listview.ErrSuperseded):
		case !errors.As(err, &fe):
			// Fetch failures already show in the table; this is anything else.
			fmt.Fprintln(env.out, errorStyle.Sprint(err.Error()))
		case fe.Unauthorized():
			fmt.Fprintln(env.out, warnStyle.Sprint("Your session may have expired; run 'dataportal login' again."))
		}
	}

	show(b.Refresh(ctx))
	fmt.Fprintln(env.out, dimStyle.Sprint("Type 'help' for commands."))

	for {
		line, err := env.prompt("> ")
		if err != nil {
			return nil
		}
		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch strings.ToLower(cmd) {
		case "":
			continue
		case "quit", "exit", "q":
			return nil
		case "help", "?":
			fmt.Fprintln(env.out, browseHelp)
		case "fields":
			for _, f := range b.Info().Filters {
				fmt.Fprintf(env.out, "  %-18s %s\n", f.Name, f.Label)
			}
		case "filter":
			field, value, ok := strings.Cut(rest, " ")
			if !ok {
				fmt.Fprintln(env.out, warnStyle.Sprint("usage: filter <field> <value>"))
				continue
			}
			show(b.SetFilter(ctx, field, strings.TrimSpace(value)))
		case "search":
			show(b.SetFilter(ctx, listview.SearchField, rest))
		case "clear":
			show(b.ClearFilters(ctx))
		case "page":
			n, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Fprintln(env.out, warnStyle.Sprint("usage: page <n>"))
				continue
			}
			show(b.SetPage(ctx, n))
		case "perpage":
			n, err := strconv.Atoi(rest)
			if err != nil {
				fmt.Fprintln(env.out, warnStyle.Sprint("usage: perpage <n>"))
				continue
			}
			show(b.SetPerPage(ctx, n))
		case "next":
			show(b.SetPage(ctx, b.Table().Page+1))
		case "prev":
			show(b.SetPage(ctx, b.Table().Page-1))
		case "refresh":
			show(b.Refresh(ctx))
		case "chart":
			renderChart(env.out, b.Table(), b.Info(), env.cfg.Display.ChartWidth)
		default:
			fmt.Fprintln(env.out, warnStyle.Sprintf("unknown command %q, type 'help'", cmd))
		}
	}
}
