package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/pembukuan-dev/pembukuan/internal/activitylog"
	"github.com/pembukuan-dev/pembukuan/internal/config"
	"github.com/pembukuan-dev/pembukuan/internal/ledgerapi"
	"github.com/pembukuan-dev/pembukuan/internal/log"
	"github.com/pembukuan-dev/pembukuan/internal/session"
	"github.com/pembukuan-dev/pembukuan/internal/storage"
)

const dbFile = "pembukuan.db"

// app is the per-invocation runtime: configuration, logger, local state
// and the session manager for the selected profile.
type app struct {
	cfg      *config.Config
	profile  string
	endpoint config.Profile
	stateDir string
	log      *log.Logger
	db       *storage.DB
	sessions *session.Manager
}

func newApp(cmd *cobra.Command, opts *globalOptions) (*app, error) {
	if err := config.LoadEnv(opts.envFile); err != nil {
		return nil, err
	}
	cfg, err := config.LoadOrDefault(opts.configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	endpoint, err := cfg.Profile(opts.profile)
	if err != nil {
		return nil, err
	}

	stateDir, err := cfg.ResolveStateDir()
	if err != nil {
		return nil, err
	}

	logCfg := log.DefaultConfig()
	logCfg.Component = log.ComponentCLI
	logCfg.Output = cmd.ErrOrStderr()
	if opts.debug {
		logCfg.Level = slog.LevelDebug
	}
	logger := log.New(logCfg).With(log.FieldProfile, opts.profile)

	db, err := storage.Open(filepath.Join(stateDir, dbFile))
	if err != nil {
		return nil, fmt.Errorf("opening local state: %w", err)
	}

	return &app{
		cfg:      cfg,
		profile:  opts.profile,
		endpoint: endpoint,
		stateDir: stateDir,
		log:      logger,
		db:       db,
		sessions: session.NewManager(db.Sessions()),
	}, nil
}

// withApp wraps a RunE body with app setup and teardown.
func withApp(opts *globalOptions, fn func(cmd *cobra.Command, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, opts)
		if err != nil {
			return err
		}
		defer a.db.Close()
		return fn(cmd, a, args)
	}
}

func (a *app) clientConfig() ledgerapi.Config {
	cfg := ledgerapi.Config{
		BaseURL: a.endpoint.BaseURL,
		Timeout: a.endpoint.Timeout,
		Logger:  a.log,
	}
	if ttl := a.cfg.Cache.AccountsTTL; ttl > 0 {
		cfg.AccountCache = a.db.AccountCache(ttl)
	}
	return cfg
}

// anonClient is a client without a session, for login and registration.
func (a *app) anonClient() *ledgerapi.Client {
	return ledgerapi.New(a.clientConfig(), nil)
}

// client returns a client bound to the profile's live session. A 401
// from the API ends the session.
func (a *app) client(ctx context.Context) (*ledgerapi.Client, error) {
	sess, err := a.sessions.Current(ctx, a.profile)
	switch {
	case errors.Is(err, session.ErrNoSession):
		return nil, fmt.Errorf("%w: run pembukuan login --profile %s", err, a.profile)
	case errors.Is(err, session.ErrExpired):
		return nil, fmt.Errorf("%w: log in again", err)
	case err != nil:
		return nil, err
	}

	cfg := a.clientConfig()
	cfg.OnUnauthorized = func(ctx context.Context, s *session.Session) {
		a.log.WarnContext(ctx, "session rejected by API, logging out")
		if err := a.sessions.End(ctx, s.Profile); err != nil {
			a.log.ErrorContext(ctx, "ending session failed", log.FieldError, err)
		}
	}
	return ledgerapi.New(cfg, sess), nil
}

// adminClient is a client restricted to admin sessions.
func (a *app) adminClient(ctx context.Context) (*ledgerapi.Client, error) {
	c, err := a.client(ctx)
	if err != nil {
		return nil, err
	}
	if c.Session().Role != session.RoleAdmin {
		return nil, errors.New("admin commands require an admin session (use --profile admin)")
	}
	return c, nil
}

// record appends to the activity log. Failures are only logged.
func (a *app) record(ctx context.Context, action, details string, ref int) {
	e := activitylog.Entry{
		Timestamp: time.Now().UTC(),
		Profile:   a.profile,
		Action:    action,
		Details:   details,
	}
	if ref != 0 {
		e.Ref = strconv.Itoa(ref)
	}
	if err := activitylog.Append(a.stateDir, e); err != nil {
		a.log.WarnContext(ctx, "writing activity log failed", log.FieldError, err)
	}
}
