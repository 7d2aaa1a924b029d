package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/zjrosen/acquire/internal/activation"
	"github.com/zjrosen/acquire/internal/config"
	"github.com/zjrosen/acquire/internal/flags"
	"github.com/zjrosen/acquire/internal/infrastructure/sqlite"
	"github.com/zjrosen/acquire/internal/log"
	"github.com/zjrosen/acquire/internal/paths"
	"github.com/zjrosen/acquire/internal/presentation"
	"github.com/zjrosen/acquire/internal/project"
	"github.com/zjrosen/acquire/internal/pubsub"
	"github.com/zjrosen/acquire/internal/registry"
	"github.com/zjrosen/acquire/internal/resolver"
	"github.com/zjrosen/acquire/internal/selector"
	"github.com/zjrosen/acquire/internal/session"
	"github.com/zjrosen/acquire/internal/ui/confirm"
)

// Deps are the inputs needed to assemble a Runtime.
type Deps struct {
	Config config.Config
	Env    config.Env
	Flags  *flags.Registry

	// Environ seeds the activation environment. Nil means os.Environ.
	Environ []string

	// UserRegistryDir holds extra index files. Empty means registry.UserRegistryDir.
	UserRegistryDir string
}

// Runtime is the assembled object graph shared by the commands.
type Runtime struct {
	cfg     config.Config
	flags   *flags.Registry
	session *session.Session
	orch    *activation.Orchestrator
	opts    registry.Options
	defs    []config.RegistryConfig
	db      *sqlite.DB
	events  *pubsub.Broker[activation.Event]

	cancel context.CancelFunc
}

// Open builds the global resolver from configured and user registries, opens the
// session store when persistence is on, and loads the session's active set.
func Open(ctx context.Context, deps Deps) (*Runtime, error) {
	cfg := deps.Config

	userDir := deps.UserRegistryDir
	if userDir == "" {
		userDir = registry.UserRegistryDir()
	}
	userDefs, err := registry.LoadUserRegistries(userDir)
	if err != nil {
		return nil, err
	}
	defs := registry.MergeDefinitions(cfg.Registries, userDefs)

	watchCtx, cancel := context.WithCancel(ctx)
	opts := registry.Options{
		InstallRoot:  filepath.Join(config.HomeDir(), "artifacts"),
		Watch:        deps.Flags.Enabled(flags.RegistryWatch),
		WatchContext: watchCtx,
	}
	if cfg.Cache.Enabled {
		opts.Cache = registry.NewIndexCache()
		opts.CacheTTL = cfg.Cache.TTL
	}

	sources, err := registry.FromConfig(defs, opts)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("registries: %w", err)
	}
	global := resolver.New(cfg.Resolver.Timeout, sources...)

	rt := &Runtime{cfg: cfg, flags: deps.Flags, opts: opts, defs: defs, cancel: cancel}

	var repo session.Repository
	if cfg.Session.Persist {
		db, err := sqlite.NewDB(paths.ExpandHome(cfg.Session.DBPath))
		if err != nil {
			cancel()
			return nil, fmt.Errorf("open session store: %w", err)
		}
		rt.db = db
		repo = db.ActiveArtifacts()
	}

	sess, writer := session.New(session.Config{ID: deps.Env.Session, GlobalResolver: global, Repository: repo})
	if err := writer.Load(ctx); err != nil {
		_ = rt.Close()
		return nil, err
	}
	rt.session = sess

	environ := deps.Environ
	if environ == nil {
		environ = os.Environ()
	}
	rt.events = pubsub.NewBroker[activation.Event]()
	rt.orch = activation.NewOrchestrator(writer, nil, activation.NewEnvironment(environ), activation.WithBroker(rt.events))

	log.Info(log.CatSession, "Runtime ready",
		"session", sess.ID(),
		"registries", len(sources),
		"persistent", sess.Persistent(),
		"active", sess.Len())
	return rt, nil
}

// Session returns the session.
func (r *Runtime) Session() *session.Session { return r.session }

// Orchestrator returns the activation orchestrator.
func (r *Runtime) Orchestrator() *activation.Orchestrator { return r.orch }

// Events returns the broker the orchestrator publishes activation progress on.
func (r *Runtime) Events() *pubsub.Broker[activation.Event] { return r.events }

// Registries returns the global registry definitions in resolver order.
func (r *Runtime) Registries() []config.RegistryConfig { return r.defs }

// Selector returns the selector configured from the resolver settings and flags.
func (r *Runtime) Selector() selector.Selector {
	if !r.flags.Enabled(flags.ParallelMatch) {
		return selector.Selector{Concurrency: 1}
	}
	return selector.Selector{Concurrency: r.cfg.Resolver.Concurrency}
}

// BuildResolver builds a resolver over project registry definitions, sharing the
// global source options.
func (r *Runtime) BuildResolver(defs []config.RegistryConfig, baseDir string) (*resolver.Resolver, error) {
	opts := r.opts
	opts.BaseDir = baseDir
	sources, err := registry.FromConfig(defs, opts)
	if err != nil {
		return nil, err
	}
	return resolver.New(r.cfg.Resolver.Timeout, sources...), nil
}

// Resolver returns the global resolver, extended with proj's registries when proj
// is non-nil.
func (r *Runtime) Resolver(proj *project.Project) (*resolver.Resolver, error) {
	global := r.session.GlobalResolver()
	if proj == nil || len(proj.Registries) == 0 {
		return global, nil
	}
	extra, err := r.BuildResolver(proj.Registries, proj.Dir())
	if err != nil {
		return nil, fmt.Errorf("project registries: %w", err)
	}
	return global.With(extra), nil
}

// Use assembles the use operation around this runtime.
func (r *Runtime) Use(c confirm.Confirmer, rep presentation.Reporter, out io.Writer, outputs Outputs) *Use {
	if outputs.Shell == "" {
		outputs.Shell = r.cfg.Activation.Shell
	}
	return &Use{
		Session:       r.session,
		Orchestrator:  r.orch,
		BuildResolver: r.BuildResolver,
		Selector:      r.Selector(),
		Confirmer:     c,
		Reporter:      rep,
		Out:           out,
		Outputs:       outputs,
	}
}

// Close stops index watches, ends progress subscriptions and closes the session
// store.
func (r *Runtime) Close() error {
	r.cancel()
	if r.events != nil {
		if n := r.events.Dropped(); n > 0 {
			log.Warn(log.CatActivate, "progress events dropped", "count", n)
		}
		r.events.Close()
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
			return err
		}
	}
	return nil
}
