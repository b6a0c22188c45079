package grpc

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	defaultCheckInterval = 10 * time.Second
	probeTimeout         = 3 * time.Second
)

// CatalogProbe reports whether the catalog store answers
type CatalogProbe interface {
	Count(ctx context.Context) (int, error)
}

// HealthMonitor probes the catalog and keeps the health service current
type HealthMonitor struct {
	probe    CatalogProbe
	health   *health.Server
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	running bool
	healthy bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewHealthMonitor creates a new health monitor
func NewHealthMonitor(probe CatalogProbe, hs *health.Server, interval time.Duration, logger *zap.Logger) *HealthMonitor {
	if interval <= 0 {
		interval = defaultCheckInterval
	}
	return &HealthMonitor{
		probe:    probe,
		health:   hs,
		interval: interval,
		logger:   logger,
	}
}

// Start runs one probe immediately, then one per interval
func (h *HealthMonitor) Start() {
	h.mu.Lock()
	if h.running {
		h.mu.Unlock()
		return
	}
	h.running = true
	h.stopCh = make(chan struct{})
	h.doneCh = make(chan struct{})
	h.mu.Unlock()

	h.check()
	go h.run()
}

// Stop stops the health monitor
func (h *HealthMonitor) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	stopCh, doneCh := h.stopCh, h.doneCh
	h.mu.Unlock()

	close(stopCh)
	<-doneCh
}

// IsHealthy returns the result of the last probe
func (h *HealthMonitor) IsHealthy() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.healthy
}

func (h *HealthMonitor) run() {
	defer close(h.doneCh)

	ticker := time.NewTicker(h.interval)
	defer ticker.Stop()

	for {
		select {
		case <-h.stopCh:
			return
		case <-ticker.C:
			h.check()
		}
	}
}

// check probes the catalog and publishes the result
func (h *HealthMonitor) check() {
	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	count, err := h.probe.Count(ctx)
	healthy := err == nil

	h.mu.Lock()
	changed := healthy != h.healthy
	h.healthy = healthy
	h.mu.Unlock()

	status := healthpb.HealthCheckResponse_SERVING
	if !healthy {
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	h.health.SetServingStatus("", status)
	h.health.SetServingStatus(CatalogService, status)

	switch {
	case !healthy:
		h.logger.Warn("catalog health check failed", zap.Error(err))
	case changed:
		h.logger.Info("catalog is serving", zap.Int("mods", count))
	default:
		h.logger.Debug("catalog health check", zap.Int("mods", count))
	}
}
