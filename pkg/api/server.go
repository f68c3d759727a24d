// Package api exposes the deliberation graph service over HTTP: REST
// handlers for deliberations, nodes, relationships and layout runs, a
// GraphQL endpoint, and a websocket feed for realtime updates.
package api

import (
	"net/http"
	"time"

	"github.com/openagora/agora/pkg/auth"
	agoragraphql "github.com/openagora/agora/pkg/graphql"
	"github.com/openagora/agora/pkg/layout"
	"github.com/openagora/agora/pkg/logging"
	"github.com/openagora/agora/pkg/metrics"
	"github.com/openagora/agora/pkg/pubsub"
	"github.com/openagora/agora/pkg/store"
)

const version = "1.0.0"

// Server is the HTTP API server.
type Server struct {
	store        store.Store
	bus          *pubsub.Bus
	registry     *metrics.Registry
	logger       logging.Logger
	jwtManager   *auth.JWTManager
	userStore    *auth.UserStore
	layoutConfig *layout.Config
	graphql      *agoragraphql.Handler
	startTime    time.Time
}

// Options configures a Server. Store is required; nil collaborators
// fall back to working defaults so tests can construct a minimal
// server.
type Options struct {
	Store        store.Store
	Bus          *pubsub.Bus
	Registry     *metrics.Registry
	Logger       logging.Logger
	JWTManager   *auth.JWTManager
	UserStore    *auth.UserStore
	LayoutConfig *layout.Config
}

// NewServer creates a new API server.
func NewServer(opts Options) (*Server, error) {
	if opts.Bus == nil {
		opts.Bus = pubsub.NewBus()
	}
	if opts.Registry == nil {
		opts.Registry = metrics.NewRegistry()
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNopLogger()
	}
	if opts.LayoutConfig == nil {
		opts.LayoutConfig = &layout.Config{}
	}

	gqlHandler, err := agoragraphql.NewHandler(opts.Store, opts.LayoutConfig)
	if err != nil {
		return nil, err
	}

	return &Server{
		store:        opts.Store,
		bus:          opts.Bus,
		registry:     opts.Registry,
		logger:       opts.Logger.With(logging.Component("api")),
		jwtManager:   opts.JWTManager,
		userStore:    opts.UserStore,
		layoutConfig: opts.LayoutConfig,
		graphql:      gqlHandler,
		startTime:    time.Now(),
	}, nil
}

// Handler builds the full middleware-wrapped route tree.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.registry.Handler())

	mux.HandleFunc("/auth/login", s.handleLogin)
	mux.HandleFunc("/auth/refresh", s.handleRefresh)

	mux.Handle("/graphql", s.requireAuth(s.graphql))

	mux.Handle("/deliberations", s.requireAuth(http.HandlerFunc(s.handleDeliberations)))
	mux.Handle("/deliberations/", s.requireAuth(http.HandlerFunc(s.handleDeliberationSubtree)))

	return s.recoveryMiddleware(s.loggingMiddleware(s.metricsMiddleware(s.corsMiddleware(mux))))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	code := http.StatusOK
	if err := s.store.Ping(r.Context()); err != nil {
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	s.respondJSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now(),
		Version:   version,
		Uptime:    time.Since(s.startTime).String(),
	})
}
