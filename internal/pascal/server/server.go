package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	pb "github.com/msto63/pascal/api/pascal"
	mdwerror "github.com/msto63/pascal/foundation/core/error"
	"github.com/msto63/pascal/internal/pascal/handler"
	"github.com/msto63/pascal/internal/pascal/service"
	"github.com/msto63/pascal/pkg/core/config"
	coreGrpc "github.com/msto63/pascal/pkg/core/grpc"
	"github.com/msto63/pascal/pkg/core/health"
	"github.com/msto63/pascal/pkg/core/logging"
	"github.com/msto63/pascal/pkg/core/version"
)

const (
	httpListenerCheck = "http-listener"
	grpcListenerCheck = "grpc-listener"
)

// Server hosts the pascal gRPC service and the HTTP/WebSocket API
type Server struct {
	service    *service.Service
	grpc       *coreGrpc.Server
	grpcHealth *grpchealth.Server
	httpServer *http.Server
	health     *health.Registry
	logger     *logging.Logger
	config     Config
	startTime  time.Time
}

// Config holds server configuration
type Config struct {
	Host             string
	GRPCPort         int
	HTTPPort         int
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	EnableReflection bool
	CORSEnabled      bool
	AllowedOrigins   []string
	Service          service.Config
}

// DefaultConfig returns default server configuration
func DefaultConfig() Config {
	return ConfigFrom(config.Default())
}

// ConfigFrom derives the server configuration from the application config
func ConfigFrom(cfg *config.Config) Config {
	return Config{
		Host:             cfg.Server.Host,
		GRPCPort:         cfg.Server.GRPCPort,
		HTTPPort:         cfg.Server.HTTPPort,
		ReadTimeout:      cfg.Server.ReadTimeout.Duration,
		WriteTimeout:     cfg.Server.WriteTimeout.Duration,
		EnableReflection: cfg.Server.EnableReflection,
		CORSEnabled:      cfg.Server.CORS.Enabled,
		AllowedOrigins:   cfg.Server.CORS.AllowedOrigins,
		Service:          service.ConfigFrom(cfg),
	}
}

// New creates a server with its own service
func New(cfg Config) (*Server, error) {
	svc, err := service.NewService(cfg.Service)
	if err != nil {
		return nil, mdwerror.Wrap(err, "failed to create service").
			WithCode(mdwerror.CodeServiceInitialization).
			WithOperation("server.New")
	}
	return NewWithService(cfg, svc), nil
}

// NewWithService creates a server around an existing service
func NewWithService(cfg Config, svc *service.Service) *Server {
	logger := logging.New("pascal-server")

	grpcCfg := coreGrpc.DefaultServerConfig()
	grpcCfg.Host = cfg.Host
	grpcCfg.Port = cfg.GRPCPort
	grpcCfg.EnableReflection = cfg.EnableReflection
	grpcServer := coreGrpc.NewServer(grpcCfg)

	healthRegistry := health.NewRegistry("pascal", version.Server)
	healthRegistry.RegisterFunc("engine", func(ctx context.Context) health.CheckResult {
		if _, err := svc.Engine().Evaluate(ctx, "x = 1;"); err != nil {
			return health.CheckResult{Status: health.StatusUnhealthy, Message: err.Error()}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: "engine evaluates programs"}
	})
	healthRegistry.Register(health.PingCheck("history", svc.Ping))

	s := &Server{
		service:    svc,
		grpc:       grpcServer,
		grpcHealth: grpchealth.NewServer(),
		health:     healthRegistry,
		logger:     logger,
		config:     cfg,
		startTime:  time.Now(),
	}

	pb.RegisterPascalServiceServer(grpcServer.GRPCServer(), s)
	healthpb.RegisterHealthServer(grpcServer.GRPCServer(), s.grpcHealth)

	mux := http.NewServeMux()
	mux.Handle("/api/v1/ws", handler.NewWebSocketHandler(svc, cfg.AllowedOrigins))
	mux.Handle("/", handler.NewHandler(svc, healthRegistry, handler.Options{
		Version:        version.Server,
		CORSEnabled:    cfg.CORSEnabled,
		AllowedOrigins: cfg.AllowedOrigins,
	}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPPort),
		Handler:      handler.LoggingMiddleware(logger, mux),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Start serves gRPC in the background and HTTP in the foreground
func (s *Server) Start() error {
	if err := s.startGRPC(); err != nil {
		return err
	}

	s.logger.Info("Starting HTTP server", "address", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// StartAsync starts both servers in the background
func (s *Server) StartAsync() error {
	if err := s.startGRPC(); err != nil {
		return err
	}

	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		s.grpc.Stop()
		return fmt.Errorf("failed to listen on %s: %w", s.httpServer.Addr, err)
	}

	s.logger.Info("Starting HTTP server (async)", "address", listener.Addr().String())
	s.health.Register(health.TCPCheck(httpListenerCheck, listener.Addr().String(), 2*time.Second))
	s.health.Register(health.GRPCCheck(grpcListenerCheck, s.grpc.Address(), 2*time.Second))
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("HTTP server error", "error", err.Error())
		}
	}()
	return nil
}

func (s *Server) startGRPC() error {
	s.logger.Info("Starting gRPC server",
		"host", s.config.Host,
		"port", s.config.GRPCPort,
		"reflection", s.config.EnableReflection,
	)
	if err := s.grpc.StartAsync(); err != nil {
		return mdwerror.Wrap(err, "failed to start gRPC server").
			WithCode(mdwerror.CodeServiceUnavailable).
			WithOperation("server.Start")
	}
	s.grpcHealth.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.grpcHealth.SetServingStatus(pb.ServiceName, healthpb.HealthCheckResponse_SERVING)
	return nil
}

// Stop shuts both servers down and closes the service
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping pascal server", "uptime", time.Since(s.startTime).Truncate(time.Second).String())

	s.health.Unregister(httpListenerCheck)
	s.health.Unregister(grpcListenerCheck)
	s.grpcHealth.Shutdown()
	httpErr := s.httpServer.Shutdown(ctx)
	s.grpc.StopWithTimeout(ctx)

	if err := s.service.Close(); err != nil {
		return err
	}
	return httpErr
}

// GRPCServer returns the underlying gRPC server
func (s *Server) GRPCServer() *grpc.Server {
	return s.grpc.GRPCServer()
}

// HTTPHandler returns the root HTTP handler
func (s *Server) HTTPHandler() http.Handler {
	return s.httpServer.Handler
}

// HealthRegistry returns the health check registry
func (s *Server) HealthRegistry() *health.Registry {
	return s.health
}

// Service returns the evaluation service
func (s *Server) Service() *service.Service {
	return s.service
}
