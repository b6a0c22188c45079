package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPublishReachesSubscribers(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan domain.Event, 2)
	handler := func(_ context.Context, ev domain.Event) error {
		got <- ev
		return nil
	}
	require.NoError(t, bus.Subscribe(ctx, "topic", handler))
	require.NoError(t, bus.Subscribe(ctx, "topic", handler))
	require.NoError(t, bus.Subscribe(ctx, "other", func(context.Context, domain.Event) error {
		t.Error("handler on another topic must not run")
		return nil
	}))

	require.NoError(t, bus.Publish(context.Background(), "topic", domain.Event{ID: "e1", Type: domain.EventTypeModLiked}))

	for i := 0; i < 2; i++ {
		select {
		case ev := <-got:
			assert.Equal(t, "e1", ev.ID)
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestSubscriptionEndsWithContext(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, bus.Subscribe(ctx, "topic", func(context.Context, domain.Event) error { return nil }))
	assert.Equal(t, 1, bus.subscriberCount("topic"))

	cancel()
	assert.Eventually(t, func() bool {
		return bus.subscriberCount("topic") == 0
	}, time.Second, 10*time.Millisecond)
}

func TestClose(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	require.NoError(t, bus.Subscribe(context.Background(), "topic", func(context.Context, domain.Event) error { return nil }))
	require.NoError(t, bus.Close())
	assert.Equal(t, 0, bus.subscriberCount("topic"))
}

func TestSubscriberSeesPublishOrder(t *testing.T) {
	bus := NewEventBus(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu  sync.Mutex
		got []string
	)
	require.NoError(t, bus.Subscribe(ctx, "topic", func(_ context.Context, ev domain.Event) error {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, ev.ID)
		return nil
	}))

	want := make([]string, 100)
	for i := range want {
		want[i] = fmt.Sprintf("like-%d", i)
		require.NoError(t, bus.Publish(context.Background(), "topic", domain.Event{ID: want[i], Type: domain.EventTypeModLiked}))
	}

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(got) == len(want)
	}, time.Second, 10*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, want, got)
}
