// package server runs the local HTTP listener that receives the catalog
// authorization callback during login.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Logging returns middleware that logs each request method and path.
func Logging(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
		})
	}
}

// Apply wraps a handler with middleware, applied in reverse order (last added wraps first).
func Apply(handler http.Handler, middlewares ...Middleware) http.Handler {
	wrapped := handler
	for i := len(middlewares) - 1; i >= 0; i-- {
		wrapped = middlewares[i](wrapped)
	}
	return wrapped
}

// Server is a short-lived HTTP server hosting the authorization callback.
type Server struct {
	httpServer *http.Server
	addr       string
}

// New creates a Server for the given host/port serving handler.
func New(host string, port int, handler http.Handler) *Server {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		addr: addr,
	}
}

// Addr returns the listen address.
func (s *Server) Addr() string {
	return s.addr
}

// Start begins serving in a background goroutine.
//
// The returned channel receives the terminal serve error, if any.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
