package grpc

import (
	"context"
	"errors"
	"net"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/novelnest/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/test/bufconn"
)

func startHealth(t *testing.T, s *HealthServer) healthpb.HealthClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("gRPC server did not stop")
		}
	})
	return healthpb.NewHealthClient(conn)
}

func TestHealth_ServingWithoutProbe(t *testing.T) {
	client := startHealth(t, NewHealthServer("", logging.Nop{}, nil))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, name := range []string{"", ServiceName} {
		assert.Eventually(t, func() bool {
			resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
			return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
		}, 2*time.Second, 10*time.Millisecond, name)
	}
}

func TestHealth_FollowsProbe(t *testing.T) {
	var failing atomic.Bool
	failing.Store(true)

	s := NewHealthServer("", logging.Nop{}, func(context.Context) error {
		if failing.Load() {
			return errors.New("db unreachable")
		}
		return nil
	})
	s.interval = 20 * time.Millisecond
	client := startHealth(t, s)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())

	failing.Store(false)
	assert.Eventually(t, func() bool {
		resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
		return err == nil && resp.GetStatus() == healthpb.HealthCheckResponse_SERVING
	}, 2*time.Second, 20*time.Millisecond)
}

func TestRun_BadAddress(t *testing.T) {
	s := NewHealthServer("256.0.0.1:bad", logging.Nop{}, nil)
	assert.Error(t, s.Run(context.Background()))
}

func TestHealth_SlowProbeDoesNotDelayListener(t *testing.T) {
	release := make(chan struct{})
	s := NewHealthServer("", logging.Nop{}, func(ctx context.Context) error {
		select {
		case <-release:
		case <-ctx.Done():
		}
		return nil
	})
	s.interval = time.Minute
	client := startHealth(t, s)
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	resp, err := client.Check(ctx, &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_NOT_SERVING, resp.GetStatus())
}

func TestServe_StopsProbingWhenServeFails(t *testing.T) {
	var calls atomic.Int64
	s := NewHealthServer("", logging.Nop{}, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	s.interval = 5 * time.Millisecond

	lis := bufconn.Listen(1 << 10)
	require.NoError(t, lis.Close())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	err := s.Serve(ctx, lis)
	require.Error(t, err)

	after := calls.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, calls.Load())
}

func TestServe_CancelledContextIsCleanStop(t *testing.T) {
	s := NewHealthServer("", logging.Nop{}, nil)
	lis := bufconn.Listen(1 << 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, lis) }()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("gRPC server did not stop")
	}
}
