package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/session"
	"github.com/runnerr0/dataportal/internal/upload"
)

// Execute implements the go-flags Commander interface for UploadCommand.
func (c *UploadCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *UploadCommand) run(ctx context.Context, env *appEnv) error {
	ok, err := requireRoute(env, session.RouteUpload)
	if !ok {
		return err
	}
	if c.Table == "" {
		return fmt.Errorf("--table is required for upload")
	}
	if !upload.ValidTable(c.Table) {
		return fmt.Errorf("%w %q", upload.ErrUnknownTable, c.Table)
	}
	if c.File == "" {
		return fmt.Errorf("--file is required for upload")
	}

	svc := upload.NewService(env.client, env.store, env.log)

	if !c.SkipPreview && !env.json {
		preview, perr := svc.PreviewFile(c.File)
		if perr != nil {
			// The backend does the real parse; a bad preview only warns.
			fmt.Fprintln(env.out, warnStyle.Sprintf("Could not preview %s: %v", filepath.Base(c.File), perr))
		} else {
			renderPreview(env, preview)
		}
	}

	if !c.Yes && !env.json {
		if !env.confirm(fmt.Sprintf("Upload %s to table %q?", filepath.Base(c.File), c.Table)) {
			fmt.Fprintln(env.out, "Upload cancelled.")
			return nil
		}
	}

	uploader := ""
	if sess := env.session.Current(); sess != nil {
		uploader = sess.User.Username
	}

	resp, err := svc.Upload(ctx, upload.Request{
		Table:      c.Table,
		Path:       c.File,
		Token:      env.session.Token(),
		UploadedBy: uploader,
	})
	if errors.Is(err, portal.ErrNoToken) {
		renderLoginView(env)
		return nil
	}
	if err != nil {
		return userFacing(err)
	}

	if env.json {
		return writeJSON(env.out, map[string]interface{}{
			"uploaded":      true,
			"table":         c.Table,
			"message":       resp.Message,
			"rows_affected": resp.RowsAffected,
		})
	}

	msg := resp.Message
	if msg == "" {
		msg = "Upload complete"
	}
	fmt.Fprintln(env.out, okStyle.Sprint(msg))
	if resp.RowsAffected > 0 {
		fmt.Fprintf(env.out, "Rows affected: %s\n", humanize.Comma(int64(resp.RowsAffected)))
	}
	return nil
}

func renderPreview(env *appEnv, p *upload.Preview) {
	fmt.Fprintln(env.out, titleStyle.Sprint("Preview"))
	renderTable(env.out, p.Header, p.Rows)
	if p.Truncated {
		fmt.Fprintln(env.out, dimStyle.Sprintf("(first %d rows shown)", upload.PreviewRows))
	}
	for _, w := range p.Warnings {
		fmt.Fprintln(env.out, warnStyle.Sprint(w))
	}
	fmt.Fprintln(env.out)
}
