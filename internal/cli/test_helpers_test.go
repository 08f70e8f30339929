package cli

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dataportal/internal/config"
	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestEnv builds an environment over an in-memory database and a fake
// backend served by h. Output goes to the returned buffer.
func newTestEnv(t *testing.T, h http.HandlerFunc) (*appEnv, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	if h == nil {
		h = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusTeapot)
		}
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	// A second pooled connection would see a different in-memory database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	cfg := config.DefaultConfig()
	cfg.API.BaseURL = srv.URL
	cfg.Display.ChartWidth = 10

	env, err := newEnv(cfg, db, logging.NewNop(), &GlobalFlags{})
	require.NoError(t, err)
	t.Cleanup(func() { env.store.Close() })

	var out bytes.Buffer
	env.out = &out
	env.in = bufio.NewReader(strings.NewReader(""))
	return env, &out
}

// loginAs stores a session for a user with the given role.
func loginAs(t *testing.T, env *appEnv, roleID int) {
	t.Helper()
	require.NoError(t, env.session.Begin(context.Background(), "test-token", portal.User{
		ID:          7,
		Email:       "asha@uni.edu",
		Username:    "asha",
		DisplayName: "Asha Rao",
		RoleID:      roleID,
	}))
}

func withInput(env *appEnv, input string) {
	env.in = bufio.NewReader(strings.NewReader(input))
}

func writeJSONResponse(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
