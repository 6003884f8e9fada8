// Package server runs the http server which lets clients open websockets to
// play games.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/kmelnikov/scrabbled/server/socket"
)

type (
	// Config contains the fields which describe the server.
	Config struct {
		// Host is the interface the server listens on.
		Host string
		// Port is the TCP port for http requests.
		Port int
		// StopDur is the maximum amount of time Stop waits for the server
		// to shut down.
		StopDur time.Duration
	}

	// ConnectionHandler serves an upgraded websocket connection until it
	// closes.
	ConnectionHandler interface {
		Handle(ctx context.Context, conn socket.Conn)
	}

	// Server accepts websocket connections for games.
	Server struct {
		log        *log.Logger
		upgrader   socket.Upgrader
		handler    ConnectionHandler
		httpServer *http.Server
		ctx        context.Context
		Config
	}
)

// NewServer creates a Server from the Config.
func (cfg Config) NewServer(log *log.Logger, upgrader socket.Upgrader, handler ConnectionHandler) (*Server, error) {
	if err := cfg.validate(log, upgrader, handler); err != nil {
		return nil, fmt.Errorf("creating server: validation: %w", err)
	}
	s := Server{
		log:      log,
		upgrader: upgrader,
		handler:  handler,
		Config:   cfg,
	}
	r := mux.NewRouter()
	r.HandleFunc("/ws", s.handleWebSocket).Methods(http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/monitor", s.handleMonitor).Methods(http.MethodGet)
	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%v:%d", cfg.Host, cfg.Port),
		Handler: r,
	}
	return &s, nil
}

// validate ensures the configuration has no errors.
func (cfg Config) validate(log *log.Logger, upgrader socket.Upgrader, handler ConnectionHandler) error {
	switch {
	case log == nil:
		return fmt.Errorf("log required")
	case upgrader == nil:
		return fmt.Errorf("upgrader required")
	case handler == nil:
		return fmt.Errorf("connection handler required")
	case cfg.Port <= 0:
		return fmt.Errorf("positive port required")
	case cfg.StopDur <= 0:
		return fmt.Errorf("stop timeout duration required")
	}
	return nil
}

// Run the server asynchronously until it receives a shutdown signal.
// When the server stops, the error is logged to the error channel.
// Websockets accepted while running are closed when the context is cancelled.
func (s *Server) Run(ctx context.Context) <-chan error {
	s.ctx = ctx
	errC := make(chan error, 1)
	s.log.Printf("starting server at http://%v", s.httpServer.Addr)
	go func() {
		errC <- s.httpServer.ListenAndServe()
	}()
	return errC
}

// Stop asks the server to shutdown and waits for the shutdown to complete.
// An error is returned if the shutdown times out.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancelFunc := context.WithTimeout(ctx, s.StopDur)
	defer cancelFunc()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("stopping server: %w", err)
	}
	return nil
}

// handleWebSocket upgrades the request and serves the connection until it
// closes.  The connection lives on the server's run context, not the
// request's, so hijacked connections stop when the server does.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r)
	if err != nil {
		s.log.Printf("upgrading connection from %v: %v", r.RemoteAddr, err)
		return
	}
	ctx := s.ctx
	if ctx == nil {
		ctx = r.Context()
	}
	s.handler.Handle(ctx, conn)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}
