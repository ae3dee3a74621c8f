// Package daemon assembles the Skill Quest HTTP server from configuration:
// storage backend, rule document, event publisher and API routes.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/felixgeelhaar/skillquest/internal/api"
	"github.com/felixgeelhaar/skillquest/internal/auth"
	"github.com/felixgeelhaar/skillquest/internal/config"
	"github.com/felixgeelhaar/skillquest/internal/events"
	"github.com/felixgeelhaar/skillquest/internal/learning"
	"github.com/felixgeelhaar/skillquest/internal/rules"
	"github.com/felixgeelhaar/skillquest/internal/storage"
	"github.com/felixgeelhaar/skillquest/internal/storage/memory"
	"github.com/felixgeelhaar/skillquest/internal/storage/postgres"
	"github.com/felixgeelhaar/skillquest/internal/storage/sqlite"
)

// Server represents the Skill Quest daemon HTTP server
type Server struct {
	cfg    *config.Config
	server *http.Server

	store     storage.Repository
	rules     *rules.Store
	watcher   *rules.Watcher
	publisher events.Publisher
}

// NewServer creates a new daemon server. ctx bounds the rules watcher.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	store, err := openStore(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	s.store = store

	if err := s.setupRules(ctx); err != nil {
		s.store.Close()
		return nil, err
	}

	s.publisher = setupPublisher(cfg.Events)

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	handler := api.NewRouter(&api.App{
		Auth:              auth.NewService(s.store, tokens, s.publisher),
		Learning:          learning.NewService(s.store, s.rules, s.publisher),
		Rules:             s.rules,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		AuthRatePerMinute: cfg.Server.AuthRatePerMinute,
	})

	s.server = &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	return s, nil
}

// openStore selects the storage backend named by the configuration
func openStore(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		slog.Warn("using in-memory storage, data is lost on exit")
		return memory.NewStore(), nil

	case config.DriverPostgres:
		return postgres.Open(ctx, cfg.URL)

	case config.DriverSQLite, "":
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
		return sqlite.OpenStore(ctx, cfg.Path)

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// setupRules loads the rule document and, when it is file backed and
// watching is enabled, reloads it on change.
func (s *Server) setupRules(ctx context.Context) error {
	store, err := rules.NewStore(s.cfg.Rules.Path)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	s.rules = store

	sum := store.Current().Summarize()
	slog.Info("rules loaded",
		"path", store.Path(),
		"domains", sum.Domains,
		"courses", sum.Courses,
		"resources", sum.Resources,
	)

	if store.Path() == "" || !s.cfg.Rules.Watch {
		return nil
	}

	w, err := rules.NewWatcher(store)
	if err != nil {
		return fmt.Errorf("create rules watcher: %w", err)
	}
	if err := w.Start(ctx); err != nil {
		w.Close()
		return fmt.Errorf("start rules watcher: %w", err)
	}
	s.watcher = w
	return nil
}

// setupPublisher connects to RabbitMQ when a URL is configured. An
// unreachable broker is logged and events are dropped.
func setupPublisher(cfg config.EventsConfig) events.Publisher {
	if cfg.RabbitMQURL == "" {
		return events.Nop{}
	}

	conn, err := events.Dial(cfg.RabbitMQURL)
	if err != nil {
		slog.Warn("event broker not available, events are disabled", "error", err)
		return events.Nop{}
	}
	return events.NewAMQPPublisher(conn, events.DefaultPublisherConfig())
}

// Handler returns the HTTP handler with all routes and middleware
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Addr returns the configured listen address
func (s *Server) Addr() string {
	return s.server.Addr
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	slog.Info("starting skillquest daemon",
		"addr", s.server.Addr,
		"storage", s.cfg.Database.Driver,
		"rules", s.rules.Path(),
	)
	return s.server.ListenAndServe()
}

// Shutdown drains in-flight requests, then releases the watcher, the
// publisher and the store.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down daemon...")

	var errs []error
	if err := s.server.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("http shutdown: %w", err))
	}
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rules watcher: %w", err))
		}
	}
	if err := s.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close storage: %w", err))
	}
	return errors.Join(errs...)
}
