package grpc

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

type fakeProbe struct {
	failing atomic.Bool
}

func (p *fakeProbe) Count(ctx context.Context) (int, error) {
	if p.failing.Load() {
		return 0, errors.New("store unreachable")
	}
	return 3, nil
}

func startServer(t *testing.T, probe CatalogProbe) healthpb.HealthClient {
	t.Helper()

	server, err := NewServer(&Config{
		Port:          0,
		Catalog:       probe,
		CheckInterval: 20 * time.Millisecond,
		Logger:        zap.NewNop(),
	})
	require.NoError(t, err)

	go func() { _ = server.Start() }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	})

	conn, err := grpc.NewClient(server.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return healthpb.NewHealthClient(conn)
}

func statusOf(t *testing.T, client healthpb.HealthClient, service string) healthpb.HealthCheckResponse_ServingStatus {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: service})
	if err != nil {
		return healthpb.HealthCheckResponse_UNKNOWN
	}
	return resp.GetStatus()
}

func TestHealthServing(t *testing.T) {
	client := startServer(t, &fakeProbe{})

	assert.Eventually(t, func() bool {
		return statusOf(t, client, CatalogService) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, statusOf(t, client, ""))
}

func TestHealthFollowsProbe(t *testing.T) {
	probe := &fakeProbe{}
	client := startServer(t, probe)

	require.Eventually(t, func() bool {
		return statusOf(t, client, CatalogService) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)

	probe.failing.Store(true)
	assert.Eventually(t, func() bool {
		return statusOf(t, client, CatalogService) == healthpb.HealthCheckResponse_NOT_SERVING
	}, 2*time.Second, 20*time.Millisecond)

	probe.failing.Store(false)
	assert.Eventually(t, func() bool {
		return statusOf(t, client, CatalogService) == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMonitorStopIsIdempotent(t *testing.T) {
	server, err := NewServer(&Config{Catalog: &fakeProbe{}, Logger: zap.NewNop()})
	require.NoError(t, err)
	defer server.listener.Close()

	server.monitor.Start()
	assert.True(t, server.monitor.IsHealthy())
	server.monitor.Stop()
	server.monitor.Stop()
}
