package health

import (
	"context"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startServer(t *testing.T, c *Checker) healthpb.HealthClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.UnaryInterceptor(LoggingInterceptor(zap.NewNop())))
	c.Register(srv)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return healthpb.NewHealthClient(conn)
}

func check(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	require.NoError(t, err)
	return resp.GetStatus()
}

func TestChecker_ReportsPerProbe(t *testing.T) {
	var redisDown atomic.Bool
	redisDown.Store(true)

	c := NewChecker(time.Hour, zap.NewNop(),
		Probe{Name: "db", Check: func(context.Context) error { return nil }},
		Probe{Name: "redis", Check: func(context.Context) error {
			if redisDown.Load() {
				return errors.New("connection refused")
			}
			return nil
		}},
	)
	client := startServer(t, c)

	c.CheckNow(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, "claridx.db"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, "claridx.redis"))
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, check(t, client, ServiceName))
	assert.False(t, c.Healthy())

	redisDown.Store(false)
	c.CheckNow(context.Background())
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, check(t, client, ServiceName))
	assert.True(t, c.Healthy())
	assert.Equal(t, map[string]string{
		"claridx":       "SERVING",
		"claridx.db":    "SERVING",
		"claridx.redis": "SERVING",
	}, c.Status())
}

func TestChecker_StartAndStop(t *testing.T) {
	var calls atomic.Int32
	c := NewChecker(10*time.Millisecond, zap.NewNop(),
		Probe{Name: "db", Check: func(context.Context) error { calls.Add(1); return nil }},
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.Start(ctx)
	assert.True(t, c.Healthy(), "first check runs before Start returns")

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	c.Stop()
	c.Stop()
	<-c.done
}

func TestChecker_ProbeTimeout(t *testing.T) {
	c := NewChecker(time.Hour, zap.NewNop(),
		Probe{Name: "mongo", Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		}},
	)
	c.timeout = 20 * time.Millisecond

	c.CheckNow(context.Background())
	assert.Equal(t, "NOT_SERVING", c.Status()["claridx.mongo"])
}

func TestChecker_ServeStatus(t *testing.T) {
	var down atomic.Bool
	c := NewChecker(time.Hour, zap.NewNop(),
		Probe{Name: "db", Check: func(context.Context) error {
			if down.Load() {
				return errors.New("down")
			}
			return nil
		}},
	)
	r := mux.NewRouter()
	c.RegisterRoutes(r)

	c.CheckNow(context.Background())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"claridx":"SERVING","claridx.db":"SERVING"}`, rec.Body.String())

	down.Store(true)
	c.CheckNow(context.Background())
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
