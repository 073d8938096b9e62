package ui

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/trungle/activity-dashboard/cfg"
	"github.com/trungle/activity-dashboard/internal/aggregator"
	"github.com/trungle/activity-dashboard/internal/githubapi"
	"github.com/trungle/activity-dashboard/internal/registrar"
	"github.com/trungle/activity-dashboard/internal/store"
	"github.com/trungle/activity-dashboard/pkg/db"
	"github.com/trungle/activity-dashboard/pkg/log"
)

// Server represents the dashboard API server
type Server struct {
	Logger log.Logger
	Config *cfg.Config
	MySQL  *db.Mysql
	server *http.Server
	port   int
}

// NewServer creates a new dashboard API server
func NewServer(logger log.Logger, config *cfg.Config, mysql *db.Mysql, port int) (*Server, error) {
	return &Server{
		Logger: logger,
		Config: config,
		MySQL:  mysql,
		port:   port,
	}, nil
}

// Start wires the store, aggregator and registrar together and starts the
// HTTP server.
func (s *Server) Start() error {
	gdb, err := s.MySQL.Db()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	st, err := store.NewGorm(s.Logger, gdb)
	if err != nil {
		return fmt.Errorf("failed to create store: %w", err)
	}

	agg, err := aggregator.NewAggregator(s.Logger, s.Config, st)
	if err != nil {
		return fmt.Errorf("failed to create aggregator: %w", err)
	}

	caller, err := githubapi.NewCaller(s.Logger, s.Config)
	if err != nil {
		return fmt.Errorf("failed to create github caller: %w", err)
	}

	runner, err := registrar.NewScriptRunner(s.Logger, s.Config)
	if err != nil {
		return fmt.Errorf("failed to create ingest runner: %w", err)
	}

	reg, err := registrar.NewRegistrar(s.Logger, s.Config, st, caller, runner)
	if err != nil {
		return fmt.Errorf("failed to create registrar: %w", err)
	}

	handler, err := NewHandler(s.Logger, s.Config, st, agg, reg)
	if err != nil {
		return fmt.Errorf("failed to create handler: %w", err)
	}

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux)

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.Logger.Info(context.Background(), "Starting dashboard API server on port %d", s.port)
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		s.Logger.Info(ctx, "Shutting down dashboard API server")
		return s.server.Shutdown(ctx)
	}
	return nil
}
