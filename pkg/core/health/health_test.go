package health

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

func fixed(status Status) func(context.Context) CheckResult {
	return func(context.Context) CheckResult { return CheckResult{Status: status} }
}

func TestRegistryReport(t *testing.T) {
	registry := NewRegistry("euklid", "1.2.0")
	registry.RegisterFunc("service", fixed(StatusHealthy))
	registry.RegisterFunc("history", fixed(StatusHealthy))

	report := registry.Check(context.Background())

	if report.Service != "euklid" || report.Version != "1.2.0" {
		t.Errorf("report = %s %s, want euklid 1.2.0", report.Service, report.Version)
	}
	if report.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy", report.Status)
	}
	if len(report.Checks) != 2 || report.Checks[0].Name != "history" || report.Checks[1].Name != "service" {
		t.Errorf("Checks = %+v, want history and service in name order", report.Checks)
	}
	if report.Checks[0].Timestamp.IsZero() {
		t.Error("check timestamp not set")
	}
}

func TestRegistryWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"empty", nil, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewRegistry("euklid", "test")
			for i, s := range tt.statuses {
				registry.RegisterFunc(string(rune('a'+i)), fixed(s))
			}
			if got := registry.Check(context.Background()).Status; got != tt.want {
				t.Errorf("Status = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRegistryRegisterReplaces(t *testing.T) {
	registry := NewRegistry("euklid", "test")
	registry.RegisterFunc("history", fixed(StatusUnhealthy))
	registry.RegisterFunc("history", fixed(StatusHealthy))

	report := registry.Check(context.Background())
	if len(report.Checks) != 1 || report.Status != StatusHealthy {
		t.Errorf("report = %+v, want the second history check only", report)
	}
}

func TestRegistryRunsChecksConcurrently(t *testing.T) {
	registry := NewRegistry("euklid", "test")
	var running, peak int32
	for i := 0; i < 4; i++ {
		registry.RegisterFunc(string(rune('a'+i)), func(ctx context.Context) CheckResult {
			n := atomic.AddInt32(&running, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(20 * time.Millisecond)
			atomic.AddInt32(&running, -1)
			return CheckResult{Status: StatusHealthy}
		})
	}

	registry.Check(context.Background())
	if atomic.LoadInt32(&peak) < 2 {
		t.Errorf("peak concurrency = %d, want checks to overlap", peak)
	}
}

func TestCheckWithTimeout(t *testing.T) {
	registry := NewRegistry("euklid", "test")
	registry.RegisterFunc("slow", func(ctx context.Context) CheckResult {
		<-ctx.Done()
		return CheckResult{Status: StatusUnhealthy, Message: ctx.Err().Error()}
	})

	report := registry.CheckWithTimeout(20 * time.Millisecond)
	if report.Status != StatusUnhealthy || report.Checks[0].Message != context.DeadlineExceeded.Error() {
		t.Errorf("report = %+v, want the deadline to end the check", report.Checks)
	}
}

func TestHTTPCheck(t *testing.T) {
	var code atomic.Int32
	code.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(int(code.Load()))
	}))
	defer srv.Close()

	checker := HTTPCheck("http", srv.URL+"/api/v1/health", time.Second)
	if checker.Name() != "http" {
		t.Errorf("Name() = %v, want http", checker.Name())
	}
	if res := checker.Check(context.Background()); res.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy (%s)", res.Status, res.Message)
	}

	code.Store(http.StatusServiceUnavailable)
	res := checker.Check(context.Background())
	if res.Status != StatusUnhealthy || res.Details["status_code"] != http.StatusServiceUnavailable {
		t.Errorf("result = %+v, want unhealthy with 503", res)
	}

	srv.Close()
	if res := checker.Check(context.Background()); res.Status != StatusUnhealthy {
		t.Errorf("Status after close = %v, want unhealthy", res.Status)
	}
}

func TestGRPCCheck(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	srv := grpc.NewServer()
	hs := grpchealth.NewServer()
	healthpb.RegisterHealthServer(srv, hs)
	go srv.Serve(ln)
	defer srv.Stop()

	checker := GRPCCheck("grpc", ln.Addr().String(), 2*time.Second)
	res := checker.Check(context.Background())
	if res.Status != StatusHealthy {
		t.Errorf("Status = %v, want healthy (%s)", res.Status, res.Message)
	}
	if res.Details["serving_status"] != "SERVING" {
		t.Errorf("serving_status = %v", res.Details["serving_status"])
	}

	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	if res := checker.Check(context.Background()); res.Status != StatusUnhealthy {
		t.Errorf("Status = %v, want unhealthy", res.Status)
	}
}
