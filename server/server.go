package server

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	apperrors "github.com/kbukum/voicegate/errors"
	"github.com/kbukum/voicegate/logger"
	"github.com/kbukum/voicegate/observability"
	"github.com/kbukum/voicegate/server/endpoint"
	"github.com/kbukum/voicegate/server/middleware"
)

// NotFoundMessage is the body message for unmatched routes.
const NotFoundMessage = "oops! resource not found"

// Server is the gin engine plus its http.Server.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	tlsConfig  *tls.Config
	config     Config
	log        *logger.Logger
	listener   net.Listener
	setup      []func(ctx context.Context, s *Server) error
}

// Option customizes New.
type Option func(*options)

type options struct {
	rateLimitStore middleware.RateLimitStore
}

// WithRateLimitStore shares rate-limit counts through store instead of
// process memory.
func WithRateLimitStore(store middleware.RateLimitStore) Option {
	return func(o *options) { o.rateLimitStore = store }
}

// New builds the engine and wraps it in the middleware chain. Routes are
// registered on Engine before Start.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if log == nil {
		log = logger.Nop()
	}
	log = log.WithComponent("server")

	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	tlsConfig, err := cfg.TLS.Build()
	if err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = false
	engine.Use(middleware.Metrics(observability.DefaultMetrics()))
	engine.NoRoute(func(c *gin.Context) {
		RespondWithError(c, apperrors.New(apperrors.ErrCodeNotFound, NotFoundMessage, http.StatusNotFound))
	})

	handler := middleware.Chain(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.CORS(cfg.CORS),
		middleware.RateLimit(cfg.RateLimit, o.rateLimitStore),
		middleware.BodySizeLimit(cfg.MaxBodyBytes()),
	)(engine)

	if tlsConfig == nil {
		handler = h2c.NewHandler(handler, &http2.Server{
			MaxConcurrentStreams: 250,
			IdleTimeout:          cfg.IdleTimeout,
		})
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              cfg.Addr(),
			Handler:           handler,
			TLSConfig:         tlsConfig,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.WriteTimeout,
			IdleTimeout:       cfg.IdleTimeout,
		},
		engine:    engine,
		tlsConfig: tlsConfig,
		config:    cfg,
		log:       log,
	}, nil
}

// Engine returns the gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler is the fully wrapped handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// RegisterEndpoints adds /health, /ready and /version.
func (s *Server) RegisterEndpoints(serviceName string, checker endpoint.HealthChecker) {
	s.engine.GET("/health", endpoint.Health(serviceName, checker))
	s.engine.GET("/ready", endpoint.Readiness(serviceName, checker))
	s.engine.GET("/version", endpoint.Version(serviceName))
}

// RegisterMetrics exposes h at /metrics. A nil handler registers nothing.
func (s *Server) RegisterMetrics(h http.Handler) {
	if h == nil {
		return
	}
	s.engine.GET("/metrics", gin.WrapH(h))
}

// ServeStatic serves dir at the root when it is an existing directory.
// Registered API routes take precedence; other paths fall through to the
// not-found response. It reports whether the directory was mounted.
func (s *Server) ServeStatic(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		s.log.Warn("Static asset directory not found, skipping", logger.Fields("dir", dir))
		return false
	}
	files := http.FileServer(http.Dir(dir))
	s.engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			if servable(dir, c.Request.URL.Path) {
				files.ServeHTTP(c.Writer, c.Request)
				return
			}
		}
		RespondWithError(c, apperrors.New(apperrors.ErrCodeNotFound, NotFoundMessage, http.StatusNotFound))
	})
	s.log.Info("Serving static assets", logger.Fields("dir", dir))
	return true
}

// BeforeStart registers fn to run in Start before the port is bound. Routes
// that depend on other started components are registered here.
func (s *Server) BeforeStart(fn func(ctx context.Context, s *Server) error) {
	s.setup = append(s.setup, fn)
}

// Start runs the BeforeStart callbacks, binds the port and serves in a
// goroutine.
func (s *Server) Start(ctx context.Context) error {
	for _, fn := range s.setup {
		if err := fn(ctx, s); err != nil {
			return fmt.Errorf("server setup: %w", err)
		}
	}
	s.setup = nil

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.listener = listener

	go func() {
		var err error
		if s.tlsConfig != nil {
			err = s.httpServer.ServeTLS(listener, "", "")
		} else {
			err = s.httpServer.Serve(listener)
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server error", logger.Fields(logger.FieldError, err))
		}
	}()

	s.log.Info("HTTP server started", logger.Fields("addr", listener.Addr().String(), "tls", s.tlsConfig != nil))
	return nil
}

// Stop shuts down gracefully within ctx.
func (s *Server) Stop(ctx context.Context) error {
	if s.listener == nil {
		return nil
	}
	s.log.Info("Shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// Addr is the bound address once started, else the configured one.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}
