// Package ports declares the interfaces the catalog depends on.
package ports

import (
	"context"
	"time"

	"github.com/aescanero/modhub/internal/domain"
)

// EventsTopic is the topic catalog activity is published on.
const EventsTopic = "catalog.events"

// ModStore holds the mod collection.
type ModStore interface {
	// List returns every mod in insertion order.
	List(ctx context.Context) ([]domain.Mod, error)
	Get(ctx context.Context, id int) (*domain.Mod, error)
	// Create stores mod under a fresh id. mod.ID is ignored.
	Create(ctx context.Context, mod domain.Mod) (*domain.Mod, error)
	// Update runs fn against the stored mod and saves the result.
	Update(ctx context.Context, id int, fn func(*domain.Mod) error) (*domain.Mod, error)
	Delete(ctx context.Context, id int) error
	// Replace swaps the whole collection. Mods with ID 0 get a fresh id.
	Replace(ctx context.Context, mods []domain.Mod) error
	Count(ctx context.Context) (int, error)
}

// EventHandler processes a published event.
type EventHandler func(ctx context.Context, event domain.Event) error

// EventBus carries catalog activity events.
type EventBus interface {
	Publish(ctx context.Context, topic string, event domain.Event) error
	Subscribe(ctx context.Context, topic string, handler EventHandler) error
	Close() error
}

// MetricsCollector records service metrics.
type MetricsCollector interface {
	RecordModCreated(origin string)
	RecordModDeleted()
	RecordLike()
	RecordImport(count int)
	SetModCount(count int)
	RecordUpload(kind string)
	RecordUpstreamCall(operation, status string, duration time.Duration)
	RecordHTTPRequest(method, route string, status int, duration time.Duration)
}
