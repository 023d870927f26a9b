// Package profiler serves the runtime profiles over HTTP on the loopback
// interface while the viewer runs.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"

	"github.com/rs/zerolog/log"
)

// Server exposes /debug/pprof on 127.0.0.1.
type Server struct {
	httpServer *http.Server
	listener   net.Listener
	port       int
	done       chan error
}

// New returns a server for port. Port 0 picks a free port.
func New(port int) *Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return &Server{
		httpServer: &http.Server{Handler: mux},
		port:       port,
		done:       make(chan error, 1),
	}
}

// Start binds the port and serves in the background. Binding errors are
// returned directly.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", fmt.Sprintf("127.0.0.1:%d", s.port))
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	s.listener = listener
	log.Debug().Str("addr", listener.Addr().String()).Msg("profiler listening")

	go func() {
		err := s.httpServer.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		s.done <- err
	}()
	return nil
}

// Addr returns the bound address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server and reports any serve error.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	return <-s.done
}
