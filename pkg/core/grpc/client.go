package grpc

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/connectivity"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/keepalive"
)

// ClientConfig describes how the CLI connects to a running server
type ClientConfig struct {
	Target           string
	Timeout          time.Duration
	MaxMessageSize   int
	Keepalive        time.Duration
	KeepaliveTimeout time.Duration
	// WaitReady makes Dial block until the connection is ready or Timeout
	// has passed
	WaitReady bool
}

// DefaultClientConfig returns a non-blocking configuration for target
func DefaultClientConfig(target string) ClientConfig {
	return ClientConfig{
		Target:           target,
		Timeout:          10 * time.Second,
		MaxMessageSize:   maxMessageSize,
		Keepalive:        30 * time.Second,
		KeepaliveTimeout: 10 * time.Second,
	}
}

// Dial opens a plaintext connection that forwards request IDs and logs
// every call at debug level
func Dial(cfg ClientConfig, opts ...grpc.DialOption) (*grpc.ClientConn, error) {
	if cfg.MaxMessageSize <= 0 {
		cfg.MaxMessageSize = maxMessageSize
	}

	options := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(
			grpc.MaxCallRecvMsgSize(cfg.MaxMessageSize),
			grpc.MaxCallSendMsgSize(cfg.MaxMessageSize),
		),
		grpc.WithKeepaliveParams(keepalive.ClientParameters{
			Time:                cfg.Keepalive,
			Timeout:             cfg.KeepaliveTimeout,
			PermitWithoutStream: true,
		}),
		grpc.WithChainUnaryInterceptor(ClientRequestIDInterceptor(), ClientLoggingInterceptor()),
	}, opts...)

	conn, err := grpc.NewClient(cfg.Target, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", cfg.Target, err)
	}
	if !cfg.WaitReady {
		return conn, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := awaitReady(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("no connection to %s within %s: %w", cfg.Target, cfg.Timeout, err)
	}
	return conn, nil
}

// DialWithTimeout dials target and waits up to timeout for the connection
func DialWithTimeout(target string, timeout time.Duration) (*grpc.ClientConn, error) {
	cfg := DefaultClientConfig(target)
	cfg.Timeout = timeout
	cfg.WaitReady = true
	return Dial(cfg)
}

func awaitReady(ctx context.Context, conn *grpc.ClientConn) error {
	conn.Connect()
	for state := conn.GetState(); state != connectivity.Ready; state = conn.GetState() {
		if !conn.WaitForStateChange(ctx, state) {
			return ctx.Err()
		}
	}
	return nil
}
