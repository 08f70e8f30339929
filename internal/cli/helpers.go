package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/config"
	"github.com/runnerr0/dataportal/internal/logging"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/session"
	"github.com/runnerr0/dataportal/internal/storage"
)

// appEnv is everything a command needs: configuration, the local store, the
// restored session and an API client.
type appEnv struct {
	cfg        *config.Config
	configPath string
	dbPath     string
	db         *sql.DB
	store      *storage.SQLiteStore
	session    *session.Manager
	client     *api.Client
	log        logging.Logger
	out        io.Writer
	in         *bufio.Reader
	json       bool
}

// openEnv loads configuration, opens and migrates the SQLite store and
// restores the stored session.
func openEnv(globals *GlobalFlags) (*appEnv, error) {
	configPath := globals.Config
	if configPath == "" {
		configPath = config.DefaultConfigPath
	}
	configPath, err := config.ExpandPath(configPath)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadOrCreateAt(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(cfg, globals.EnvFile); err != nil {
		return nil, err
	}

	if globals.NoColor || !cfg.Display.Color {
		color.NoColor = true
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	logPath, err := cfg.LogPath()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{
		File:       logPath,
		Level:      cfg.Logging.Level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
		Verbose:    globals.Verbose,
	})
	if err != nil {
		return nil, fmt.Errorf("init logging: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	env, err := newEnv(cfg, db, logger, globals)
	if err != nil {
		db.Close()
		return nil, err
	}
	env.configPath = configPath
	env.dbPath = dbPath
	return env, nil
}

// newEnv wires an environment around an already-open database.
func newEnv(cfg *config.Config, db *sql.DB, logger logging.Logger, globals *GlobalFlags) (*appEnv, error) {
	runner := storage.NewMigrationRunner(db).WithJournalMode(cfg.Storage.SQLiteJournalMode)
	if err := runner.Run(); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	store, err := storage.NewSQLiteStore(db)
	if err != nil {
		return nil, fmt.Errorf("create store: %w", err)
	}

	mgr := session.NewManager(store, logger)
	if err := mgr.Restore(context.Background()); err != nil {
		store.Close()
		return nil, fmt.Errorf("restore session: %w", err)
	}

	client := api.New(cfg.API.BaseURL, cfg.API.Timeout(),
		api.WithLogger(logger),
		api.WithOptionsTTL(cfg.API.OptionsTTL()),
	)

	return &appEnv{
		cfg:     cfg,
		db:      db,
		store:   store,
		session: mgr,
		client:  client,
		log:     logger,
		out:     os.Stdout,
		in:      bufio.NewReader(os.Stdin),
		json:    globals != nil && globals.JSON,
	}, nil
}

func (e *appEnv) Close() error {
	_ = e.log.Sync()
	if err := e.store.Close(); err != nil {
		return err
	}
	return e.db.Close()
}

// withEnv runs fn against the injected environment, or opens (and closes) the
// default one.
func withEnv(globals *GlobalFlags, injected *appEnv, fn func(ctx context.Context, env *appEnv) error) error {
	ctx := context.Background()
	if injected != nil {
		return fn(ctx, injected)
	}
	env, err := openEnv(globals)
	if err != nil {
		return err
	}
	defer env.Close()
	return fn(ctx, env)
}

// prompt prints label and reads one trimmed line of input.
func (e *appEnv) prompt(label string) (string, error) {
	fmt.Fprint(e.out, label)
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("aborted: no input received")
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but y or yes is a no.
func (e *appEnv) confirm(question string) bool {
	answer, err := e.prompt(question + " [y/N]: ")
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

// userFacing turns an error into the line shown to the user. A rejected
// token gets a hint; the stored session is left alone.
func userFacing(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (your session may have expired; run 'dataportal login' again)", err)
	}
	return err
}

// requireRoute resolves route against the current session. It returns false
// when the command must stop: without a session the login view is shown and
// nil returned; a role that may not open the route sees the home view and
// gets ErrForbiddenRoute.
func requireRoute(env *appEnv, route session.Route) (bool, error) {
	sess := env.session.Current()
	switch session.Resolve(route, sess) {
	case route:
		return true, nil
	case session.RouteLogin:
		renderLoginView(env)
		return false, nil
	default:
		env.log.Info("cli", "route redirected home", map[string]interface{}{
			"route":   string(route),
			"role_id": sess.User.RoleID,
		})
		renderHome(env)
		return false, session.ErrForbiddenRoute
	}
}

// parseFilters turns field=value pairs into a FilterSet.
func parseFilters(pairs []string) (portal.FilterSet, error) {
	out := portal.FilterSet{}
	for _, p := range pairs {
		field, value, ok := strings.Cut(p, "=")
		field = strings.TrimSpace(field)
		if !ok || field == "" {
			return nil, fmt.Errorf("invalid filter %q: want field=value", p)
		}
		out[field] = strings.TrimSpace(value)
	}
	return out, nil
}
