// Copyright (c) 2025, NVIDIA CORPORATION.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package server

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"sync"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	cwerrors "github.com/NVIDIA/chart-writer/pkg/errors"
	"github.com/NVIDIA/chart-writer/pkg/logging"
	"github.com/NVIDIA/chart-writer/pkg/writer"
)

// Server is the chart writer HTTP service.
type Server struct {
	config      *Config
	httpServer  *http.Server
	rateLimiter *rate.Limiter
	writerOpts  []writer.Option

	mu    sync.RWMutex
	ready bool
}

// Option configures a Server.
type Option func(*Server)

// WithWriterOptions sets the options every chart writer is created with.
func WithWriterOptions(opts ...writer.Option) Option {
	return func(s *Server) {
		s.writerOpts = append(s.writerOpts, opts...)
	}
}

// New creates a server. A nil config uses the defaults.
func New(cfg *Config, opts ...Option) *Server {
	if cfg == nil {
		cfg = defaultConfig()
	}
	if cfg.OutputRoot == "" {
		cfg.OutputRoot = filepath.Join(os.TempDir(), "chartwriter")
	}

	s := &Server{
		config:      cfg,
		rateLimiter: rate.NewLimiter(cfg.RateLimit, cfg.RateLimitBurst),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.httpServer = &http.Server{
		Addr:         net.JoinHostPort(cfg.Address, fmt.Sprint(cfg.Port)),
		Handler:      s.routes(),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
		ErrorLog:     logging.NewLogLogger(slog.LevelError, false),
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleDefault)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/ready", s.handleReady)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/v1/charts", s.withMiddleware(s.handleCharts))
	return mux
}

// SetReady marks the server as ready to serve traffic.
func (s *Server) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

func (s *Server) isReady() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return cwerrors.Wrap(cwerrors.ErrCodeInternal, fmt.Sprintf("failed to listen on %s", s.httpServer.Addr), err)
	}

	slog.Info("starting server",
		"address", ln.Addr().String(),
		"output_root", s.config.OutputRoot,
		"rate_limit", float64(s.config.RateLimit),
		"rate_limit_burst", s.config.RateLimitBurst,
		"allow_push", s.config.AllowPush,
		"allow_dependencies", s.config.AllowDependencies,
	)
	notify(daemon.SdNotifyReady)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.SetReady(true)
		if err := s.httpServer.Serve(ln); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			return cwerrors.Wrap(cwerrors.ErrCodeInternal, "server failed", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return s.shutdown()
	})

	if err := g.Wait(); err != nil {
		return err
	}
	slog.Info("server stopped gracefully")
	return nil
}

func (s *Server) shutdown() error {
	s.SetReady(false)
	notify(daemon.SdNotifyStopping)

	ctx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()

	slog.Info("shutting down server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return cwerrors.Wrap(cwerrors.ErrCodeTimeout, "server shutdown failed", err)
	}
	return nil
}

// notify reports state to systemd. It does nothing when NOTIFY_SOCKET is unset.
func notify(state string) {
	sent, err := daemon.SdNotify(false, state)
	if err != nil {
		slog.Warn("failed to notify systemd", "state", state, "error", err)
		return
	}
	if sent {
		slog.Debug("notified systemd", "state", state)
	}
}
