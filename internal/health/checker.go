// Package health exposes dependency status over the gRPC health protocol.
package health

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the overall status; each probe reports as ServiceName + "." + probe.
const ServiceName = "claridx"

type ProbeFunc func(ctx context.Context) error

type Probe struct {
	Name  string
	Check ProbeFunc
}

// Checker runs probes on an interval and mirrors their results into a
// grpc health server. The overall service is SERVING only while every
// probe passes.
type Checker struct {
	server   *health.Server
	probes   []Probe
	interval time.Duration
	timeout  time.Duration
	log      *zap.Logger

	mu     sync.RWMutex
	status map[string]healthpb.HealthCheckResponse_ServingStatus

	stop chan struct{}
	done chan struct{}
	once sync.Once
}

func NewChecker(interval time.Duration, log *zap.Logger, probes ...Probe) *Checker {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Checker{
		server:   health.NewServer(),
		probes:   probes,
		interval: interval,
		timeout:  5 * time.Second,
		log:      log.Named("health"),
		status:   make(map[string]healthpb.HealthCheckResponse_ServingStatus),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Register attaches the health service and reflection to s.
func (c *Checker) Register(s *grpc.Server) {
	healthpb.RegisterHealthServer(s, c.server)
	reflection.Register(s)
}

// CheckNow runs every probe once and publishes the results.
func (c *Checker) CheckNow(ctx context.Context) {
	overall := healthpb.HealthCheckResponse_SERVING

	for _, p := range c.probes {
		pctx, cancel := context.WithTimeout(ctx, c.timeout)
		err := p.Check(pctx)
		cancel()

		status := healthpb.HealthCheckResponse_SERVING
		if err != nil {
			status = healthpb.HealthCheckResponse_NOT_SERVING
			overall = status
		}
		c.set(ServiceName+"."+p.Name, status, err)
	}
	c.set(ServiceName, overall, nil)
}

func (c *Checker) set(service string, status healthpb.HealthCheckResponse_ServingStatus, err error) {
	c.mu.Lock()
	prev, seen := c.status[service]
	c.status[service] = status
	c.mu.Unlock()

	c.server.SetServingStatus(service, status)
	if seen && prev == status {
		return
	}
	if status == healthpb.HealthCheckResponse_SERVING {
		c.log.Info("service healthy", zap.String("service", service))
	} else {
		c.log.Warn("service unhealthy", zap.String("service", service), zap.Error(err))
	}
}

// Status returns the last published status per service name.
func (c *Checker) Status() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.status))
	for name, s := range c.status {
		out[name] = s.String()
	}
	return out
}

// Healthy reports whether the overall service was SERVING at the last check.
func (c *Checker) Healthy() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.status[ServiceName] == healthpb.HealthCheckResponse_SERVING
}

// Start checks once synchronously, then keeps checking until Stop.
func (c *Checker) Start(ctx context.Context) {
	c.CheckNow(ctx)
	go func() {
		defer close(c.done)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				c.CheckNow(ctx)
			case <-c.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop ends the probe loop and reports NOT_SERVING to watchers.
func (c *Checker) Stop() {
	c.once.Do(func() {
		close(c.stop)
		c.server.Shutdown()
	})
}
