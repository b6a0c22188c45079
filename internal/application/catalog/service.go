package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/aescanero/modhub/internal/ports"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Origins passed to Create, used as metrics labels.
const (
	OriginPublic     = "public"
	OriginAdmin      = "admin"
	OriginGameBanana = "gamebanana"
)

// Service implements catalog queries and mutations on top of a ModStore
type Service struct {
	store     ports.ModStore
	events    ports.EventBus
	metrics   ports.MetricsCollector
	validator *Validator
	logger    *zap.Logger

	now func() time.Time
}

// NewService creates a new catalog service
func NewService(
	store ports.ModStore,
	events ports.EventBus,
	metrics ports.MetricsCollector,
	validator *Validator,
	logger *zap.Logger,
) *Service {
	return &Service{
		store:     store,
		events:    events,
		metrics:   metrics,
		validator: validator,
		logger:    logger,
		now:       time.Now,
	}
}

// Seed loads mods into an empty store. A non-empty store is left untouched.
func (s *Service) Seed(ctx context.Context, mods []domain.Mod) error {
	n, err := s.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("failed to count mods: %w", err)
	}
	if n > 0 {
		s.logger.Info("store already populated, skipping seed", zap.Int("mods", n))
		s.metrics.SetModCount(n)
		return nil
	}

	if err := s.store.Replace(ctx, mods); err != nil {
		return fmt.Errorf("failed to seed mods: %w", err)
	}
	s.metrics.SetModCount(len(mods))
	s.logger.Info("seeded catalog", zap.Int("mods", len(mods)))
	return nil
}

// List returns the mods matching filter
func (s *Service) List(ctx context.Context, filter domain.Filter) ([]domain.Mod, error) {
	mods, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods: %w", err)
	}
	return applyFilter(mods, filter), nil
}

// Get returns a single mod
func (s *Service) Get(ctx context.Context, id int) (*domain.Mod, error) {
	return s.store.Get(ctx, id)
}

// Create stores a new mod built from draft and dated today
func (s *Service) Create(ctx context.Context, origin string, draft domain.Draft) (*domain.Mod, error) {
	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	mod, err := s.store.Create(ctx, domain.Mod{
		Name:        draft.Name,
		Game:        draft.Game,
		Author:      draft.Author,
		Description: draft.Description,
		Version:     draft.Version,
		Downloads:   draft.Downloads,
		Likes:       draft.Likes,
		Image:       draft.Image,
		FileURL:     draft.FileURL,
		CreatedAt:   s.now().Format(domain.DateLayout),
		Tags:        tags,
		Source:      draft.Source,
		SourceID:    draft.SourceID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create mod: %w", err)
	}

	s.logger.Info("mod created",
		zap.Int("mod_id", mod.ID),
		zap.String("name", mod.Name),
		zap.String("origin", origin))

	s.metrics.RecordModCreated(origin)
	s.refreshCount(ctx)
	s.publish(ctx, domain.EventTypeModCreated, mod.ID, map[string]interface{}{
		"mod":    mod,
		"origin": origin,
	})

	return mod, nil
}

// Update merges patch into an existing mod
func (s *Service) Update(ctx context.Context, id int, patch domain.Patch) (*domain.Mod, error) {
	mod, err := s.store.Update(ctx, id, func(m *domain.Mod) error {
		patch.Apply(m)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("mod updated", zap.Int("mod_id", id))
	s.publish(ctx, domain.EventTypeModUpdated, id, map[string]interface{}{"mod": mod})
	return mod, nil
}

// Delete removes a mod
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("mod deleted", zap.Int("mod_id", id))
	s.metrics.RecordModDeleted()
	s.refreshCount(ctx)
	s.publish(ctx, domain.EventTypeModDeleted, id, nil)
	return nil
}

// Like adds one like to a mod and returns the new total
func (s *Service) Like(ctx context.Context, id int) (int, error) {
	mod, err := s.store.Update(ctx, id, func(m *domain.Mod) error {
		m.Likes++
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.metrics.RecordLike()
	s.publish(ctx, domain.EventTypeModLiked, id, map[string]interface{}{"likes": mod.Likes})
	return mod.Likes, nil
}

// Games returns the distinct games in first-appearance order
func (s *Service) Games(ctx context.Context) ([]string, error) {
	mods, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods: %w", err)
	}
	return distinctGames(mods), nil
}

// Tags returns the distinct tags in first-appearance order
func (s *Service) Tags(ctx context.Context) ([]string, error) {
	mods, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods: %w", err)
	}
	return distinctTags(mods), nil
}

// Stats summarizes the catalog
func (s *Service) Stats(ctx context.Context) (*domain.Stats, error) {
	mods, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods: %w", err)
	}
	stats := computeStats(mods)
	return &stats, nil
}

// Export returns everything currently held
func (s *Service) Export(ctx context.Context) (*domain.Export, error) {
	mods, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list mods: %w", err)
	}
	return &domain.Export{
		Mods:       mods,
		ExportTime: s.now().UTC().Format(time.RFC3339Nano),
		Version:    domain.ExportVersion,
	}, nil
}

// Import replaces the whole catalog with mods. A nil slice means the
// payload carried no mods array and is rejected.
func (s *Service) Import(ctx context.Context, mods []domain.Mod) (int, error) {
	if err := s.validator.ValidateImport(mods); err != nil {
		s.logger.Warn("import rejected", zap.Error(err))
		return 0, fmt.Errorf("%w: %v", domain.ErrInvalidImport, err)
	}

	normalized := make([]domain.Mod, len(mods))
	for i, m := range mods {
		normalized[i] = s.validator.Normalize(m)
	}

	if err := s.store.Replace(ctx, normalized); err != nil {
		return 0, fmt.Errorf("failed to replace mods: %w", err)
	}

	s.logger.Info("catalog imported", zap.Int("mods", len(normalized)))
	s.metrics.RecordImport(len(normalized))
	s.metrics.SetModCount(len(normalized))
	s.publish(ctx, domain.EventTypeCatalogImported, 0, map[string]interface{}{"count": len(normalized)})

	return len(normalized), nil
}

// Count returns the catalog size
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.store.Count(ctx)
}

// IsNotFound reports whether err means the mod does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, domain.ErrModNotFound)
}

func (s *Service) refreshCount(ctx context.Context) {
	n, err := s.store.Count(ctx)
	if err != nil {
		s.logger.Warn("failed to count mods", zap.Error(err))
		return
	}
	s.metrics.SetModCount(n)
}

// publish emits an activity event. Failures are logged only.
func (s *Service) publish(ctx context.Context, eventType domain.EventType, modID int, data map[string]interface{}) {
	if s.events == nil {
		return
	}

	event := domain.Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		ModID:     modID,
		Timestamp: s.now(),
		Data:      data,
	}

	if err := s.events.Publish(ctx, ports.EventsTopic, event); err != nil {
		s.logger.Warn("failed to publish event",
			zap.String("type", string(eventType)),
			zap.Int("mod_id", modID),
			zap.Error(err))
	}
}
