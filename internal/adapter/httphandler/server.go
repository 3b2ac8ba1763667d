package httphandler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// A ServerConfig sets up [HTTPServer]. Zero durations take defaults.
type ServerConfig struct {
	Addr           string
	HandlerTimeout time.Duration
	IdleTimeout    time.Duration
}

type HTTPServer struct {
	httpServer *http.Server
}

func NewHTTPServer(cfg ServerConfig, handler http.Handler) HTTPServer {
	if cfg.HandlerTimeout <= 0 {
		cfg.HandlerTimeout = 5 * time.Second
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Second
	}

	handler = http.TimeoutHandler(handler, cfg.HandlerTimeout, "unavailable")
	s := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       cfg.IdleTimeout,
	}
	return HTTPServer{s}
}

// Run blocks until the server is closed. A closed server is not an error.
func (s HTTPServer) Run() error {
	const op = "HTTPServer.Run"
	slog.Info("http server is listening", "op", op, "addr", s.httpServer.Addr)

	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s: unexpected server shutdown: %w", op, err)
	}
	return nil
}

func (s HTTPServer) Close(ctx context.Context) {
	const op = "HTTPServer.Close"
	log := slog.With("op", op)

	log.Info("closing http server...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		log.Error("failed to shutdown gracefully", "err", err)
	}
	log.Info("http server is closed")
}
