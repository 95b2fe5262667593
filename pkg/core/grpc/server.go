package grpc

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/msto63/pascal/pkg/core/logging"
	"google.golang.org/grpc"
	"google.golang.org/grpc/keepalive"
	"google.golang.org/grpc/reflection"
)

var serverLogger = logging.New("grpc-server")

// maxMessageSize bounds requests and responses in both directions
const maxMessageSize = 4 << 20

// ServerConfig holds the listen address and transport limits
type ServerConfig struct {
	Host             string
	Port             int
	MaxMessageSize   int
	EnableReflection bool
	Keepalive        time.Duration
	KeepaliveTimeout time.Duration
}

// DefaultServerConfig listens on all interfaces at the pascal gRPC port
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:             "0.0.0.0",
		Port:             9310,
		MaxMessageSize:   maxMessageSize,
		EnableReflection: true,
		Keepalive:        30 * time.Second,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// Address returns the configured host:port
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Server is a grpc.Server with recovery, request ID and logging
// interceptors installed
type Server struct {
	server *grpc.Server
	config ServerConfig

	mu       sync.Mutex
	listener net.Listener
}

// NewServer builds the server; extra options are appended to the defaults
func NewServer(cfg ServerConfig, opts ...grpc.ServerOption) *Server {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = maxMessageSize
	}

	options := append([]grpc.ServerOption{
		grpc.MaxRecvMsgSize(cfg.MaxMessageSize),
		grpc.MaxSendMsgSize(cfg.MaxMessageSize),
		grpc.KeepaliveParams(keepalive.ServerParameters{
			Time:    cfg.Keepalive,
			Timeout: cfg.KeepaliveTimeout,
		}),
		grpc.KeepaliveEnforcementPolicy(keepalive.EnforcementPolicy{
			MinTime:             5 * time.Second,
			PermitWithoutStream: true,
		}),
		grpc.ChainUnaryInterceptor(RecoveryInterceptor(), RequestIDInterceptor(), LoggingInterceptor()),
		grpc.ChainStreamInterceptor(StreamRecoveryInterceptor(), StreamLoggingInterceptor()),
	}, opts...)

	s := &Server{server: grpc.NewServer(options...), config: cfg}
	if cfg.EnableReflection {
		reflection.Register(s.server)
	}
	return s
}

// GRPCServer exposes the underlying server for service registration
func (s *Server) GRPCServer() *grpc.Server {
	return s.server
}

// StartAsync binds the configured address and serves in a goroutine.
// Address reports the bound port once StartAsync returns.
func (s *Server) StartAsync() error {
	addr := s.config.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	go func() {
		if err := s.server.Serve(listener); err != nil {
			serverLogger.Error("gRPC server stopped with error", "address", listener.Addr().String(), "error", err)
		}
	}()
	return nil
}

// Stop waits for in-flight calls to finish
func (s *Server) Stop() {
	s.server.GracefulStop()
}

// StopWithTimeout stops gracefully but cancels remaining calls once ctx is done
func (s *Server) StopWithTimeout(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.server.GracefulStop()
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}

// Address returns the bound address after StartAsync and the configured
// one before
func (s *Server) Address() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.config.Address()
}
