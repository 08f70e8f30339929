package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/dataportal/internal/storage"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version           string           `json:"version"`
	ConfigPath        string           `json:"config_path,omitempty"`
	APIBaseURL        string           `json:"api_base_url"`
	DatabasePath      string           `json:"database_path,omitempty"`
	DatabaseSizeBytes int64            `json:"database_size_bytes"`
	LoggedIn          bool             `json:"logged_in"`
	User              string           `json:"user,omitempty"`
	RoleID            int              `json:"role_id,omitempty"`
	TotalUploads      int64            `json:"total_uploads"`
	FailedUploads     int64            `json:"failed_uploads"`
	LastUpload        string           `json:"last_upload,omitempty"`
	TopTables         []tableCountJSON `json:"top_tables"`
	RecentUploads     []uploadJSON     `json:"recent_uploads"`
}

type tableCountJSON struct {
	Table string `json:"table"`
	Count int64  `json:"count"`
}

type uploadJSON struct {
	ID         string `json:"id"`
	Table      string `json:"table"`
	FileName   string `json:"file_name"`
	ByteSize   int64  `json:"byte_size"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	UploadedAt string `json:"uploaded_at"`
}

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *StatusCommand) run(ctx context.Context, env *appEnv) error {
	stats, err := env.store.GetStats(ctx)
	if err != nil {
		return fmt.Errorf("get stats: %w", err)
	}
	recent, err := env.store.RecentUploads(ctx, c.Recent)
	if err != nil {
		return fmt.Errorf("recent uploads: %w", err)
	}

	dbSize := stats.DatabaseSizeBytes
	if env.dbPath != "" {
		if info, err := os.Stat(env.dbPath); err == nil {
			dbSize = info.Size()
		}
	}

	if env.json {
		return c.printStatusJSON(env, stats, recent, dbSize)
	}
	return c.printStatusHuman(env, stats, recent, dbSize)
}

func (c *StatusCommand) printStatusHuman(env *appEnv, stats *storage.Stats, recent []storage.Upload, dbSize int64) error {
	w := env.out
	title(w, "Data Portal Status")
	fmt.Fprintf(w, "Version:       %s\n", c.version)
	if env.configPath != "" {
		fmt.Fprintf(w, "Config:        %s\n", env.configPath)
	}
	fmt.Fprintf(w, "Backend:       %s\n", env.client.BaseURL())
	if env.dbPath != "" {
		fmt.Fprintf(w, "Database:      %s (%s)\n", env.dbPath, humanize.Bytes(uint64(dbSize)))
	} else {
		fmt.Fprintf(w, "Database:      %s\n", humanize.Bytes(uint64(dbSize)))
	}

	if sess := env.session.Current(); sess != nil {
		fmt.Fprintf(w, "Session:       %s, %s\n", sess.User.Email, roleLabel(sess.User))
	} else {
		fmt.Fprintln(w, "Session:       not logged in")
	}

	fmt.Fprintf(w, "Uploads:       %s", humanize.Comma(stats.TotalUploads))
	if stats.FailedUploads > 0 {
		fmt.Fprintf(w, " (%s failed)", humanize.Comma(stats.FailedUploads))
	}
	fmt.Fprintln(w)
	if !stats.LastUpload.IsZero() {
		fmt.Fprintf(w, "Last upload:   %s\n", humanize.Time(stats.LastUpload))
	}

	if len(stats.TopTables) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Top Tables:")
		for _, t := range stats.TopTables {
			fmt.Fprintf(w, "  %-20s %s\n", t.Table, humanize.Comma(t.Count))
		}
	}

	if len(recent) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Recent Uploads:")
		rows := make([][]string, len(recent))
		for i, u := range recent {
			status := okStyle.Sprint(u.Status)
			if u.Status == storage.UploadFailed {
				status = errorStyle.Sprint(u.Status)
			}
			rows[i] = []string{
				u.UploadedAt.Local().Format("2006-01-02 15:04"),
				u.Table,
				u.FileName,
				humanize.Bytes(uint64(u.ByteSize)),
				status,
				u.Message,
			}
		}
		renderTable(w, []string{"WHEN", "TABLE", "FILE", "SIZE", "STATUS", "MESSAGE"}, rows)
	}
	return nil
}

func (c *StatusCommand) printStatusJSON(env *appEnv, stats *storage.Stats, recent []storage.Upload, dbSize int64) error {
	out := statusJSON{
		Version:           c.version,
		ConfigPath:        env.configPath,
		APIBaseURL:        env.client.BaseURL(),
		DatabasePath:      env.dbPath,
		DatabaseSizeBytes: dbSize,
		TotalUploads:      stats.TotalUploads,
		FailedUploads:     stats.FailedUploads,
		TopTables:         make([]tableCountJSON, len(stats.TopTables)),
		RecentUploads:     make([]uploadJSON, len(recent)),
	}

	if sess := env.session.Current(); sess != nil {
		out.LoggedIn = true
		out.User = sess.User.Email
		out.RoleID = sess.User.RoleID
	}
	if !stats.LastUpload.IsZero() {
		out.LastUpload = stats.LastUpload.UTC().Format(time.RFC3339)
	}
	for i, t := range stats.TopTables {
		out.TopTables[i] = tableCountJSON{Table: t.Table, Count: t.Count}
	}
	for i, u := range recent {
		out.RecentUploads[i] = uploadJSON{
			ID:         u.ID,
			Table:      u.Table,
			FileName:   u.FileName,
			ByteSize:   u.ByteSize,
			Status:     u.Status,
			Message:    u.Message,
			UploadedAt: u.UploadedAt.UTC().Format(time.RFC3339),
		}
	}

	return writeJSON(env.out, out)
}
