// package server contains middleware & handlers for the account linking web service
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/desertthunder/biotune/internal/services"
	"github.com/desertthunder/biotune/internal/shared"
)

const shutdownTimeout = 5 * time.Second

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for HTTP request handlers in the linking service.
// Implementations own their route patterns (auth, callback, health).
type Handler interface {
	http.Handler      // ServeHTTP handles the HTTP request and writes the response
	Routes() []string // Routes returns the mux patterns this handler serves
}

// Router defines the interface for HTTP routing and middleware management.
type Router interface {
	Use(middleware ...Middleware)                     // Use adds middleware to the router's middleware stack
	Handle(method, path string, handler http.Handler) // Handle registers a handler for the specified method and path
	Handler(handler Handler)                          // Handler registers a custom Handler implementation
	ServeHTTP(w http.ResponseWriter, r *http.Request) // ServeHTTP implements http.Handler for the entire router
}

// Options contains the dependencies and settings of a [Server].
type Options struct {
	Addr      string
	RateLimit float64 // Requests per second across all clients, 0 disables limiting
	RateBurst int
	Logger    *log.Logger

	Codec   StateCodec
	Spotify services.SpotifyService
	Github  services.BioService
	Links   LinkRegistry
}

// Server is the HTTP front end: the OAuth linking flow, health and metrics.
type Server struct {
	router *BasicRouter
	http   *http.Server
	logger *log.Logger
}

// New wires the routes and middleware.
func New(opts Options) (*Server, error) {
	switch {
	case opts.Codec == nil:
		return nil, fmt.Errorf("%w: state codec", shared.ErrMissingArgument)
	case opts.Spotify == nil:
		return nil, fmt.Errorf("%w: spotify service", shared.ErrMissingArgument)
	case opts.Github == nil:
		return nil, fmt.Errorf("%w: github service", shared.ErrMissingArgument)
	case opts.Links == nil:
		return nil, fmt.Errorf("%w: link store", shared.ErrMissingArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = shared.DiscardLogger()
	}

	router := NewBasicRouter()
	router.Use(
		Recover(logger),
		Logging(logger),
		Instrument(),
		RateLimit(NewLimiter(opts.RateLimit, opts.RateBurst)),
	)

	router.Handler(HealthHandler{})
	router.Handler(NewAuthHandler(opts.Codec, opts.Spotify, logger))
	router.Handler(NewCallbackHandler(opts.Codec, opts.Spotify, opts.Github, opts.Links, logger))
	router.Handle(http.MethodGet, "/metrics", promhttp.Handler())

	return &Server{
		router: router,
		logger: logger,
		http: &http.Server{
			Addr:              opts.Addr,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", ln.Addr().String())
		if err := s.http.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if !ok {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error shutting down server", "error", err)
		return err
	}

	s.logger.Info("server stopped")
	return nil
}
