package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/muurk/blauberg/internal/devices"
	"github.com/muurk/blauberg/internal/logging"
	"github.com/muurk/blauberg/internal/metrics"
)

// Config holds the exporter configuration
type Config struct {
	Listen   string        // e.g. ":9105"
	Interval time.Duration // Time between polls of every fan
	Timeout  time.Duration // Bound on one poll of one fan

	// MaxPollRate limits polls per second across all fans; 0 means no limit
	MaxPollRate float64
}

// Target is one fan to poll.
type Target struct {
	Name    string
	Fan     devices.Reader
	Profile *devices.Profile
}

// targetStatus is the outcome of the last poll of a target.
type targetStatus struct {
	LastPoll   time.Time `json:"last_poll"`
	LastError  string    `json:"last_error,omitempty"`
	Parameters int       `json:"parameters"`
}

// Server polls fans and serves their parameters as Prometheus metrics.
type Server struct {
	config   *Config
	registry *prometheus.Registry
	metrics  *metrics.Metrics
	targets  []Target
	limiter  *rate.Limiter

	httpServer *http.Server
	wg         sync.WaitGroup
	mu         sync.Mutex
	status     map[string]*targetStatus
}

// New creates a new Server instance. Clients behind targets should record
// into m so protocol counters show up next to the parameter gauges.
func New(config *Config, reg *prometheus.Registry, m *metrics.Metrics, targets []Target) (*Server, error) {
	if len(targets) == 0 {
		return nil, errors.New("no fans to export")
	}
	if config.Interval <= 0 {
		return nil, fmt.Errorf("invalid poll interval %s", config.Interval)
	}
	if config.Timeout <= 0 {
		config.Timeout = 5 * time.Second
	}

	s := &Server{
		config:   config,
		registry: reg,
		metrics:  m,
		targets:  targets,
		status:   make(map[string]*targetStatus),
	}
	if config.MaxPollRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(config.MaxPollRate), 1)
	}
	s.httpServer = &http.Server{
		Addr:              config.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler serves /metrics and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(s.registry))
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	snapshot := make(map[string]targetStatus, len(s.status))
	for name, st := range s.status {
		snapshot[name] = *st
	}
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snapshot); err != nil {
		logging.Error("Failed to write health response", zap.Error(err))
	}
}

// PollOnce reads every target once, one after the other. It stops early
// when ctx ends while waiting for the rate limiter.
func (s *Server) PollOnce(ctx context.Context) {
	for _, t := range s.targets {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
		}
		s.poll(ctx, t)
	}
}

func (s *Server) poll(ctx context.Context, t Target) {
	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	st := &targetStatus{LastPoll: time.Now()}
	defer func() {
		s.mu.Lock()
		s.status[t.Name] = st
		s.mu.Unlock()
	}()

	ids, err := t.Profile.Params()
	if err == nil {
		var params map[string]float64
		params, err = readGauges(ctx, t.Fan, ids)
		for param, value := range params {
			s.metrics.SetParameter(t.Name, param, value)
		}
		st.Parameters = len(params)
	}
	if err == nil && st.Parameters == 0 {
		err = errors.New("fan returned no parameters")
	}
	if err != nil {
		st.LastError = err.Error()
		s.metrics.ObservePollError(t.Name)
		logging.Warn("Fan poll failed", zap.String("fan", t.Name), zap.Error(err))
	}
}

// Run listens on the configured address and polls until ctx ends.
func (s *Server) Run(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.config.Listen)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Listen, err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Run on an existing listener.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	logging.Info("Exporter listening",
		zap.String("addr", listener.Addr().String()),
		zap.Int("fans", len(s.targets)),
		zap.Duration("interval", s.config.Interval),
	)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	pollCtx, stopPolling := context.WithCancel(ctx)
	defer stopPolling()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.pollLoop(pollCtx)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		stopPolling()
		s.wg.Wait()
		return fmt.Errorf("metrics server failed: %w", err)
	}
}

func (s *Server) pollLoop(ctx context.Context) {
	s.PollOnce(ctx)
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.PollOnce(ctx)
		}
	}
}

// Start runs the exporter until SIGINT or SIGTERM.
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Shutdown stops the HTTP server and waits for the poll loop to finish
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down exporter...")

	err := s.httpServer.Shutdown(ctx)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, poll still running")
	}

	logging.Sync()
	return err
}
