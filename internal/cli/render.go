package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/runnerr0/dataportal/internal/projection"
	"github.com/runnerr0/dataportal/internal/sections"
	"github.com/runnerr0/dataportal/internal/session"
)

var (
	titleStyle  = color.New(color.Bold)
	headerStyle = color.New(color.Bold, color.FgCyan)
	errorStyle  = color.New(color.FgRed)
	warnStyle   = color.New(color.FgYellow)
	okStyle     = color.New(color.FgGreen)
	dimStyle    = color.New(color.Faint)
	barStyle    = color.New(color.FgBlue)
)

const maxCellWidth = 36

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func title(w io.Writer, s string) {
	fmt.Fprintln(w, titleStyle.Sprint(s))
	fmt.Fprintln(w, strings.Repeat("=", utf8.RuneCountInString(s)))
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n-1]) + "…"
}

func pad(s string, n int) string {
	if gap := n - utf8.RuneCountInString(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}

// renderTable prints rows under headers with columns padded to the widest
// cell. Padding is computed on plain text so colour codes never skew it.
func renderTable(w io.Writer, headers []string, rows [][]string) {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	cells := make([][]string, len(rows))
	for r, row := range rows {
		cells[r] = make([]string, len(headers))
		for i := range headers {
			if i < len(row) {
				cells[r][i] = truncate(row[i], maxCellWidth)
			}
			if n := utf8.RuneCountInString(cells[r][i]); n > widths[i] {
				widths[i] = n
			}
		}
	}

	parts := make([]string, len(headers))
	for i, h := range headers {
		parts[i] = headerStyle.Sprint(pad(h, widths[i]))
	}
	fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))

	for _, row := range cells {
		for i, c := range row {
			parts[i] = pad(c, widths[i])
		}
		fmt.Fprintln(w, strings.TrimRight(strings.Join(parts, "  "), " "))
	}
}

// bar is one row of a bar chart.
type bar struct {
	label string
	value float64
	text  string
}

func groupBars(groups []projection.Group) []bar {
	out := make([]bar, len(groups))
	for i, g := range groups {
		out[i] = bar{label: g.Name, value: float64(g.Value), text: humanize.Comma(int64(g.Value))}
	}
	return out
}

func pointBars(points []sections.Point) []bar {
	out := make([]bar, len(points))
	for i, p := range points {
		out[i] = bar{label: p.Name, value: p.Value, text: p.Text()}
	}
	return out
}

// renderBars draws a horizontal bar per entry, scaled so the largest value
// spans width cells.
func renderBars(w io.Writer, bars []bar, width int) {
	if len(bars) == 0 {
		fmt.Fprintln(w, dimStyle.Sprint("  (no data)"))
		return
	}
	if width < 1 {
		width = 40
	}

	top, labelWidth := 0.0, 0
	for _, b := range bars {
		if b.value > top {
			top = b.value
		}
		if n := utf8.RuneCountInString(truncate(b.label, maxCellWidth)); n > labelWidth {
			labelWidth = n
		}
	}

	for _, b := range bars {
		n := 0
		if top > 0 && b.value > 0 {
			n = int(b.value / top * float64(width))
			if n == 0 {
				n = 1
			}
		}
		fmt.Fprintf(w, "  %s  %s %s\n",
			pad(truncate(b.label, maxCellWidth), labelWidth),
			barStyle.Sprint(strings.Repeat("█", n)),
			b.text)
	}
}

// renderShares lists each group's share of the page.
func renderShares(w io.Writer, shares []projection.Share) {
	for _, s := range shares {
		fmt.Fprintf(w, "  %-*s %5.1f%%\n", maxCellWidth, truncate(s.Name, maxCellWidth), s.Fraction*100)
	}
}

func renderLoginView(env *appEnv) {
	if env.json {
		_ = writeJSON(env.out, map[string]interface{}{"logged_in": false, "route": string(session.RouteLogin)})
		return
	}
	title(env.out, "Log in")
	fmt.Fprintln(env.out, "You are not logged in.")
	fmt.Fprintln(env.out, "  dataportal login --email you@example.edu")
	fmt.Fprintln(env.out, "  dataportal signup --email you@example.edu --username you --name \"Your Name\"")
}

// renderHome prints the sections and the privileged actions of the current
// role.
func renderHome(env *appEnv) {
	sess := env.session.Current()
	roleID := 0
	if sess != nil {
		roleID = sess.User.RoleID
	}

	var actions []string
	if session.CanAccess(session.RouteUpload, roleID) {
		actions = append(actions, string(session.RouteUpload))
	}
	if session.CanAccess(session.RouteCreateUser, roleID) {
		actions = append(actions, string(session.RouteCreateUser))
	}

	all := sections.All()
	if env.json {
		keys := make([]map[string]string, len(all))
		for i, d := range all {
			info := d.Describe()
			keys[i] = map[string]string{"key": info.Key, "title": info.Title}
		}
		_ = writeJSON(env.out, map[string]interface{}{"sections": keys, "actions": actions})
		return
	}

	heading := "Data Portal"
	if sess != nil && sess.User.DisplayName != "" {
		heading = "Data Portal: " + sess.User.DisplayName
	}
	title(env.out, heading)
	rows := make([][]string, len(all))
	for i, d := range all {
		info := d.Describe()
		rows[i] = []string{info.Key, info.Title}
	}
	renderTable(env.out, []string{"SECTION", "TITLE"}, rows)

	if len(actions) > 0 {
		fmt.Fprintln(env.out)
		fmt.Fprintf(env.out, "Actions: %s\n", strings.Join(actions, ", "))
	}
}

// renderSectionTable prints a browser snapshot: heading, active filters,
// table and pagination footer.
func renderSectionTable(w io.Writer, t sections.Table, info sections.Info) {
	title(w, info.Title)

	var active []string
	for _, f := range info.Filters {
		if v := t.Filters[f.Name]; v != "" && v != f.Default {
			active = append(active, fmt.Sprintf("%s=%s", f.Name, v))
		}
	}
	if len(active) > 0 {
		fmt.Fprintf(w, "Filters: %s\n", strings.Join(active, ", "))
	}

	if t.Err != "" {
		fmt.Fprintln(w, errorStyle.Sprint("Error: "+t.Err))
	}
	if !t.Loaded {
		if t.Err == "" {
			fmt.Fprintln(w, dimStyle.Sprint("(nothing loaded)"))
		}
		return
	}
	if len(t.Rows) == 0 {
		fmt.Fprintln(w, dimStyle.Sprint("No matching records."))
	} else {
		renderTable(w, t.Headers, t.Rows)
	}

	pages := t.TotalPages
	if pages < 1 {
		pages = 1
	}
	fmt.Fprintln(w, dimStyle.Sprintf("Page %d of %d, %s records", t.Page, pages, humanize.Comma(int64(t.Total))))
}

func renderChart(w io.Writer, t sections.Table, info sections.Info, width int) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Sprintf("By %s (this page)", strings.ToLower(info.GroupLabel)))
	renderBars(w, groupBars(t.Groups), width)
	if len(t.Shares) > 0 {
		fmt.Fprintln(w)
		renderShares(w, t.Shares)
	}
}
