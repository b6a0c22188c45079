package memory

import (
	"context"
	"sync"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/aescanero/modhub/internal/ports"
	"go.uber.org/zap"
)

// subscriberQueueSize is the number of undelivered events a subscriber may
// hold before new ones are dropped
const subscriberQueueSize = 256

type queuedEvent struct {
	ctx   context.Context
	event domain.Event
}

// subscription delivers its queue to handler in publish order
type subscription struct {
	handler ports.EventHandler
	queue   chan queuedEvent
	done    chan struct{}
}

// EventBus implements ports.EventBus with in-process fan-out.
type EventBus struct {
	subscribers map[string]map[uint64]*subscription
	nextID      uint64
	logger      *zap.Logger
	mu          sync.RWMutex
}

// NewEventBus creates a new in-memory event bus
func NewEventBus(logger *zap.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string]map[uint64]*subscription),
		logger:      logger,
	}
}

// Publish queues event for every subscriber of topic. Each subscriber sees
// events in publish order; Publish never blocks on a slow subscriber and
// drops the event for a subscriber whose queue is full.
func (e *EventBus) Publish(ctx context.Context, topic string, event domain.Event) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	for id, sub := range e.subscribers[topic] {
		select {
		case sub.queue <- queuedEvent{ctx: context.WithoutCancel(ctx), event: event}:
		default:
			e.logger.Warn("subscriber queue full, dropping event",
				zap.String("topic", topic),
				zap.Uint64("subscription", id),
				zap.String("event_id", event.ID))
		}
	}

	return nil
}

// Subscribe registers handler on topic until ctx is cancelled
func (e *EventBus) Subscribe(ctx context.Context, topic string, handler ports.EventHandler) error {
	sub := &subscription{
		handler: handler,
		queue:   make(chan queuedEvent, subscriberQueueSize),
		done:    make(chan struct{}),
	}

	e.mu.Lock()
	id := e.nextID
	e.nextID++
	if e.subscribers[topic] == nil {
		e.subscribers[topic] = make(map[uint64]*subscription)
	}
	e.subscribers[topic][id] = sub
	e.mu.Unlock()

	go e.deliver(ctx, topic, id, sub)

	return nil
}

// Close drops all subscribers
func (e *EventBus) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, subs := range e.subscribers {
		for _, sub := range subs {
			close(sub.done)
		}
	}
	e.subscribers = make(map[string]map[uint64]*subscription)
	return nil
}

func (e *EventBus) deliver(ctx context.Context, topic string, id uint64, sub *subscription) {
	for {
		select {
		case <-ctx.Done():
			e.unsubscribe(topic, id)
			return
		case <-sub.done:
			return
		case queued := <-sub.queue:
			if err := sub.handler(queued.ctx, queued.event); err != nil {
				e.logger.Debug("event handler error",
					zap.String("topic", topic),
					zap.String("event_id", queued.event.ID),
					zap.Error(err))
			}
		}
	}
}

// subscriberCount returns the number of handlers on topic
func (e *EventBus) subscriberCount(topic string) int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.subscribers[topic])
}

func (e *EventBus) unsubscribe(topic string, id uint64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sub, ok := e.subscribers[topic][id]
	if !ok {
		return
	}
	close(sub.done)
	delete(e.subscribers[topic], id)
	if len(e.subscribers[topic]) == 0 {
		delete(e.subscribers, topic)
	}
}
