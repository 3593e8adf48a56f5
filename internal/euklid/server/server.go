package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	mdwerror "github.com/msto63/euklid/foundation/core/error"
	"github.com/msto63/euklid/internal/euklid/service"
	"github.com/msto63/euklid/pkg/core/config"
	coreGrpc "github.com/msto63/euklid/pkg/core/grpc"
	"github.com/msto63/euklid/pkg/core/health"
	"github.com/msto63/euklid/pkg/core/logging"
	"github.com/msto63/euklid/pkg/core/version"
)

// Server serves the calculator over HTTP, WebSocket and gRPC
type Server struct {
	service   *service.Service
	http      *http.Server
	grpc      *coreGrpc.Server
	health    *health.Registry
	metrics   *Metrics
	logger    *logging.Logger
	config    Config
	startTime time.Time
	stopped   chan struct{}
	stopOnce  sync.Once
}

// Config holds server configuration
type Config struct {
	Host            string
	HTTPPort        int
	GRPCPort        int // -1 disables gRPC
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxRequestSize  int64
	RateLimit       float64 // requests per second; <= 0 disables throttling
	RateBurst       int
	WebSocket       bool
	Metrics         bool
	CORS            CORSConfig
}

// CORSConfig holds cross-origin settings
type CORSConfig struct {
	Enabled        bool
	AllowedOrigins []string
	AllowedMethods []string
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return Config{
		Host:            "127.0.0.1",
		HTTPPort:        8080,
		GRPCPort:        9090,
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    30 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		MaxRequestSize:  64 << 10,
		RateLimit:       50,
		RateBurst:       100,
		WebSocket:       true,
		Metrics:         true,
		CORS: CORSConfig{
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		},
	}
}

// FromConfig builds the server settings from the application configuration
func FromConfig(cfg *config.Config) Config {
	s := cfg.Server
	return Config{
		Host:            s.Host,
		HTTPPort:        s.HTTPPort,
		GRPCPort:        s.GRPCPort,
		ReadTimeout:     s.ReadTimeout.Duration,
		WriteTimeout:    s.WriteTimeout.Duration,
		ShutdownTimeout: s.ShutdownTimeout.Duration,
		MaxRequestSize:  s.MaxRequestSize,
		RateLimit:       s.RateLimit,
		RateBurst:       s.RateBurst,
		WebSocket:       s.WebSocket,
		Metrics:         s.Metrics,
		CORS: CORSConfig{
			Enabled:        s.CORS.Enabled,
			AllowedOrigins: s.CORS.AllowedOrigins,
			AllowedMethods: s.CORS.AllowedMethods,
		},
	}
}

// New creates a new euklid server around svc
func New(svc *service.Service, cfg Config) (*Server, error) {
	if svc == nil {
		return nil, mdwerror.New("service is required").
			WithCode(mdwerror.CodeInternal).
			WithOperation("server.New")
	}
	logger := logging.New("euklid-server")
	metrics := NewMetrics()

	// Create health registry
	healthRegistry := health.NewRegistry("euklid", version.Server)
	healthRegistry.RegisterFunc("service", func(ctx context.Context) health.CheckResult {
		if err := svc.SelfCheck(); err != nil {
			return health.CheckResult{
				Name:    "service",
				Status:  health.StatusUnhealthy,
				Message: err.Error(),
			}
		}
		return health.CheckResult{
			Name:    "service",
			Status:  health.StatusHealthy,
			Message: "Rational engine is operational",
			Details: map[string]interface{}{
				"max_decimal_places": svc.EngineOptions().MaxDecimalPlaces,
				"precision":          svc.EngineOptions().Precision,
			},
		}
	})
	healthRegistry.RegisterFunc("history", func(ctx context.Context) health.CheckResult {
		if !svc.HistoryEnabled() {
			return health.CheckResult{
				Name:    "history",
				Status:  health.StatusHealthy,
				Message: "History is disabled",
			}
		}
		if err := svc.PingHistory(ctx); err != nil {
			return health.CheckResult{
				Name:    "history",
				Status:  health.StatusDegraded,
				Message: err.Error(),
			}
		}
		return health.CheckResult{
			Name:    "history",
			Status:  health.StatusHealthy,
			Message: "History store is reachable",
		}
	})

	h := NewHandler(svc, healthRegistry, metrics, cfg.MaxRequestSize)

	// Create HTTP server
	mux := http.NewServeMux()
	if cfg.WebSocket {
		mux.Handle("/api/v1/ws", NewWebSocketHandler(svc, metrics, originChecker(cfg.CORS)))
	}
	if cfg.Metrics {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Handle("/api/v1", h)
	mux.Handle("/api/v1/", h)

	var chain http.Handler = mux
	chain = loggingMiddleware(logger, metrics, chain)
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		chain = rateLimitMiddleware(rate.NewLimiter(rate.Limit(cfg.RateLimit), burst), metrics, h, chain)
	}
	if cfg.CORS.Enabled {
		chain = corsMiddleware(cfg.CORS, chain)
	}
	chain = requestIDMiddleware(chain)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      chain,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	server := &Server{
		service:   svc,
		http:      httpServer,
		health:    healthRegistry,
		metrics:   metrics,
		logger:    logger,
		config:    cfg,
		startTime: time.Now(),
		stopped:   make(chan struct{}),
	}

	// Register gRPC service
	if cfg.GRPCPort >= 0 {
		grpcCfg := coreGrpc.DefaultServerConfig()
		grpcCfg.Host = cfg.Host
		grpcCfg.Port = cfg.GRPCPort
		server.grpc = coreGrpc.NewServer(grpcCfg)
		RegisterCalculatorServer(server.grpc.GRPCServer(), &calculatorServer{service: svc, metrics: metrics})
		server.grpc.SetServing(CalculatorServiceName, true)
	}

	return server, nil
}

// originChecker admits WebSocket origins the way the CORS settings admit
// HTTP origins. Without CORS every origin is accepted.
func originChecker(cfg CORSConfig) func(r *http.Request) bool {
	if !cfg.Enabled || len(cfg.AllowedOrigins) == 0 {
		return nil
	}
	allowed := make(map[string]bool, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		allowed[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || allowed["*"] || allowed[origin]
	}
}

// Handler returns the HTTP handler with all middleware applied
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves HTTP and gRPC until ctx is done or a listener fails, then
// shuts both down within ShutdownTimeout
func (s *Server) Run(ctx context.Context) error {
	httpListener, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	var grpcListener net.Listener
	if s.grpc != nil {
		addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.GRPCPort)
		grpcListener, err = net.Listen("tcp", addr)
		if err != nil {
			httpListener.Close()
			return fmt.Errorf("failed to listen on %s: %w", addr, err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	s.logger.Info("Starting euklid HTTP API", "address", httpListener.Addr().String())
	g.Go(func() error {
		if err := s.http.Serve(httpListener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if grpcListener != nil {
		s.logger.Info("Starting euklid gRPC API", "address", grpcListener.Addr().String())
		g.Go(func() error {
			return s.grpc.Serve(grpcListener)
		})
	}

	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-s.stopped:
			return nil
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout())
		defer cancel()
		return s.Stop(shutdownCtx)
	})

	return g.Wait()
}

// Start starts the server and blocks until it stops
func (s *Server) Start() error {
	return s.Run(context.Background())
}

// StartAsync starts the server in the background
func (s *Server) StartAsync() error {
	go func() {
		if err := s.Start(); err != nil {
			s.logger.Error("Server error", "error", err)
		}
	}()
	return nil
}

// Stop gracefully stops both listeners
func (s *Server) Stop(ctx context.Context) error {
	s.stopOnce.Do(func() { close(s.stopped) })
	s.logger.Info("Stopping euklid server")
	if s.grpc != nil {
		s.grpc.StopWithTimeout(ctx)
	}
	if err := s.http.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ServeGRPC serves the gRPC API on listener until Stop is called
func (s *Server) ServeGRPC(listener net.Listener) error {
	if s.grpc == nil {
		return mdwerror.New("gRPC is disabled").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithOperation("server.ServeGRPC")
	}
	return s.grpc.Serve(listener)
}

func (s *Server) shutdownTimeout() time.Duration {
	if s.config.ShutdownTimeout > 0 {
		return s.config.ShutdownTimeout
	}
	return 10 * time.Second
}

// Address returns the HTTP listen address
func (s *Server) Address() string {
	return s.http.Addr
}

// GRPCAddress returns the gRPC listen address, or "" when gRPC is disabled
func (s *Server) GRPCAddress() string {
	if s.grpc == nil {
		return ""
	}
	return s.grpc.Address()
}

// HealthRegistry returns the health registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Metrics returns the server's collectors
func (s *Server) Metrics() *Metrics {
	return s.metrics
}

// Uptime returns how long the server has existed
func (s *Server) Uptime() time.Duration {
	return time.Since(s.startTime)
}
