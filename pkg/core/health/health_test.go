package health

import (
	"context"
	"errors"
	"net"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func TestNewChecker(t *testing.T) {
	checker := NewChecker("test-checker", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "test passed"}
	})

	if checker.Name() != "test-checker" {
		t.Errorf("Name() = %v, want test-checker", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy || result.Message != "test passed" {
		t.Errorf("Check() = %+v", result)
	}
}

func TestCheckFunc(t *testing.T) {
	fn := CheckFunc(func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	if fn.Name() != "unknown" {
		t.Errorf("Name() = %v, want unknown", fn.Name())
	}
	if fn.Check(context.Background()).Status != StatusHealthy {
		t.Error("CheckFunc did not delegate")
	}
}

func TestRegistry_RegisterAndCheck(t *testing.T) {
	registry := NewRegistry("pascal", "1.0.0")
	registry.RegisterFunc("history", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy, Message: "store reachable"}
	})
	registry.Register(PingCheck("engine", func(ctx context.Context) error { return nil }))

	report := registry.Check(context.Background())

	if report.Service != "pascal" || report.Version != "1.0.0" {
		t.Errorf("report header = %s/%s", report.Service, report.Version)
	}
	if !report.Healthy() {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 {
		t.Fatalf("Checks count = %v, want 2", len(report.Checks))
	}
	if report.Checks[0].Name != "engine" || report.Checks[1].Name != "history" {
		t.Errorf("checks not sorted by name: %s, %s", report.Checks[0].Name, report.Checks[1].Name)
	}
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry("pascal", "1.0.0")
	registry.RegisterFunc("temp", func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	})

	if got := len(registry.Check(context.Background()).Checks); got != 1 {
		t.Errorf("before unregister: %d checks, want 1", got)
	}

	registry.Unregister("temp")

	if got := len(registry.Check(context.Background()).Checks); got != 0 {
		t.Errorf("after unregister: %d checks, want 0", got)
	}
}

func TestRegistry_OverallStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy wins", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("pascal", "1.0.0")
			for i, s := range tt.statuses {
				status := s
				registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
					return CheckResult{Status: status}
				})
			}

			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			if got := registry.Check(ctx).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistry_ConcurrentChecks(t *testing.T) {
	registry := NewRegistry("pascal", "1.0.0")

	var counter int32
	for i := 0; i < 5; i++ {
		registry.RegisterFunc("check"+string(rune('A'+i)), func(ctx context.Context) CheckResult {
			atomic.AddInt32(&counter, 1)
			time.Sleep(10 * time.Millisecond)
			return CheckResult{Status: StatusHealthy}
		})
	}

	start := time.Now()
	report := registry.Check(context.Background())
	duration := time.Since(start)

	if atomic.LoadInt32(&counter) != 5 {
		t.Errorf("Counter = %v, want 5", counter)
	}
	if duration > 100*time.Millisecond {
		t.Errorf("Duration = %v, expected concurrent execution", duration)
	}
	for _, c := range report.Checks {
		if c.Duration < 10*time.Millisecond {
			t.Errorf("check %s duration = %v, want >= 10ms", c.Name, c.Duration)
		}
	}
}

func TestReport_String(t *testing.T) {
	report := &Report{
		Service: "pascal",
		Status:  StatusHealthy,
		Uptime:  time.Hour,
		Checks:  []CheckResult{{}, {}},
	}

	str := report.String()
	if !strings.Contains(str, "pascal") || !strings.Contains(str, "Checks: 2") {
		t.Errorf("String() = %q", str)
	}
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck("db", func(ctx context.Context) error { return nil })
	if got := ok.Check(context.Background()); got.Status != StatusHealthy {
		t.Errorf("healthy ping = %+v", got)
	}

	failing := PingCheck("db", func(ctx context.Context) error { return errors.New("database is locked") })
	got := failing.Check(context.Background())
	if got.Status != StatusUnhealthy || got.Message != "database is locked" {
		t.Errorf("failing ping = %+v", got)
	}
}

func TestTCPCheck(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	addr := listener.Addr().String()

	checker := TCPCheck("tcp-test", addr, time.Second)
	if checker.Name() != "tcp-test" {
		t.Errorf("Name() = %v, want tcp-test", checker.Name())
	}

	result := checker.Check(context.Background())
	if result.Status != StatusHealthy || result.Details["address"] != addr {
		t.Errorf("open port: %+v", result)
	}

	listener.Close()
	if result := checker.Check(context.Background()); result.Status != StatusUnhealthy {
		t.Errorf("closed port: Status = %v, want unhealthy", result.Status)
	}
}

func TestGRPCCheck(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	server := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(server, hs)
	go server.Serve(listener)
	t.Cleanup(server.Stop)

	checker := GRPCCheck("grpc-test", listener.Addr().String(), 2*time.Second)

	if result := checker.Check(context.Background()); result.Status != StatusHealthy {
		t.Errorf("serving: %+v", result)
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	result := checker.Check(context.Background())
	if result.Status != StatusDegraded || result.Details["serving_status"] != "NOT_SERVING" {
		t.Errorf("not serving: %+v", result)
	}
}
