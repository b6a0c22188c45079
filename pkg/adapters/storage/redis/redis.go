package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/aescanero/modhub/internal/domain"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	defaultPrefix = "modhub"

	// maxTxRetries bounds optimistic transaction retries on contention
	maxTxRetries = 5
)

// ModStorage implements ports.ModStore using Redis.
//
// Each mod is a JSON string under <prefix>:mod:<id>. Insertion order is kept
// in the list <prefix>:mods and ids come from the counter <prefix>:mods:seq.
type ModStorage struct {
	client *redis.Client
	logger *zap.Logger
	prefix string
}

// NewModStorage creates a new Redis mod storage. An empty prefix uses "modhub".
func NewModStorage(client *redis.Client, prefix string, logger *zap.Logger) *ModStorage {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &ModStorage{
		client: client,
		logger: logger,
		prefix: prefix,
	}
}

// List returns all mods in insertion order
func (s *ModStorage) List(ctx context.Context) ([]domain.Mod, error) {
	ids, err := s.client.LRange(ctx, s.orderKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read mod order: %w", err)
	}
	if len(ids) == 0 {
		return []domain.Mod{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.modKeyString(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get mods: %w", err)
	}

	mods := make([]domain.Mod, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Order entry without a record, skip it
			continue
		}
		var m domain.Mod
		if err := json.Unmarshal([]byte(raw), &m); err != nil {
			s.logger.Warn("skipping unreadable mod",
				zap.String("key", keys[i]),
				zap.Error(err))
			continue
		}
		mods = append(mods, m)
	}

	return mods, nil
}

// Get retrieves a single mod
func (s *ModStorage) Get(ctx context.Context, id int) (*domain.Mod, error) {
	data, err := s.client.Get(ctx, s.modKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
		}
		return nil, fmt.Errorf("failed to get mod: %w", err)
	}

	var m domain.Mod
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to unmarshal mod: %w", err)
	}
	return &m, nil
}

// Create stores mod under the next sequence value
func (s *ModStorage) Create(ctx context.Context, mod domain.Mod) (*domain.Mod, error) {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate mod id: %w", err)
	}

	mod = mod.Clone()
	mod.ID = int(id)

	data, err := json.Marshal(mod)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal mod: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, s.modKey(mod.ID), data, 0)
		pipe.RPush(ctx, s.orderKey(), mod.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save mod: %w", err)
	}

	s.logger.Debug("mod saved", zap.Int("mod_id", mod.ID))
	return &mod, nil
}

// Update applies fn inside an optimistic transaction on the mod key
func (s *ModStorage) Update(ctx context.Context, id int, fn func(*domain.Mod) error) (*domain.Mod, error) {
	key := s.modKey(id)
	var updated domain.Mod

	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if err != nil {
			if err == redis.Nil {
				return fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
			}
			return fmt.Errorf("failed to get mod: %w", err)
		}

		var m domain.Mod
		if err := json.Unmarshal(data, &m); err != nil {
			return fmt.Errorf("failed to unmarshal mod: %w", err)
		}
		if err := fn(&m); err != nil {
			return err
		}
		m.ID = id

		out, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("failed to marshal mod: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, out, 0)
			return nil
		})
		if err == nil {
			updated = m
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return nil, err
		}
		return &updated, nil
	}

	return nil, fmt.Errorf("failed to update mod %d: too much contention", id)
}

// Delete removes a mod and its order entry
func (s *ModStorage) Delete(ctx context.Context, id int) error {
	var deleted *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		deleted = pipe.Del(ctx, s.modKey(id))
		pipe.LRem(ctx, s.orderKey(), 0, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete mod: %w", err)
	}
	if deleted.Val() == 0 {
		return fmt.Errorf("mod %d: %w", id, domain.ErrModNotFound)
	}

	s.logger.Debug("mod deleted", zap.Int("mod_id", id))
	return nil
}

// Replace drops every stored mod and writes mods in order. The order list
// and the sequence are watched, so a concurrent Create restarts the
// transaction instead of having its id overwritten.
func (s *ModStorage) Replace(ctx context.Context, mods []domain.Mod) error {
	var replaced []domain.Mod

	txf := func(tx *redis.Tx) error {
		oldIDs, err := tx.LRange(ctx, s.orderKey(), 0, -1).Result()
		if err != nil {
			return fmt.Errorf("failed to read mod order: %w", err)
		}

		seq, err := s.advanceSeq(ctx, tx, mods)
		if err != nil {
			return err
		}

		replaced = make([]domain.Mod, len(mods))
		for i, m := range mods {
			m = m.Clone()
			if m.ID == 0 {
				seq++
				m.ID = seq
			}
			replaced[i] = m
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, id := range oldIDs {
				pipe.Del(ctx, s.modKeyString(id))
			}
			pipe.Del(ctx, s.orderKey())
			for _, m := range replaced {
				data, err := json.Marshal(m)
				if err != nil {
					return fmt.Errorf("failed to marshal mod: %w", err)
				}
				pipe.Set(ctx, s.modKey(m.ID), data, 0)
				pipe.RPush(ctx, s.orderKey(), m.ID)
			}
			pipe.Set(ctx, s.seqKey(), seq, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, s.orderKey(), s.seqKey())
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to replace mods: %w", err)
		}

		s.logger.Debug("mods replaced", zap.Int("count", len(replaced)))
		return nil
	}

	return fmt.Errorf("failed to replace mods: too much contention")
}

// Count returns the number of stored mods
func (s *ModStorage) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.orderKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count mods: %w", err)
	}
	return int(n), nil
}

// advanceSeq returns the sequence value that is at least the current
// counter and every id in mods
func (s *ModStorage) advanceSeq(ctx context.Context, tx *redis.Tx, mods []domain.Mod) (int, error) {
	current, err := tx.Get(ctx, s.seqKey()).Int()
	if err != nil && err != redis.Nil {
		return 0, fmt.Errorf("failed to read mod sequence: %w", err)
	}
	for _, m := range mods {
		if m.ID > current {
			current = m.ID
		}
	}
	return current, nil
}

func (s *ModStorage) modKey(id int) string {
	return s.modKeyString(strconv.Itoa(id))
}

func (s *ModStorage) modKeyString(id string) string {
	return fmt.Sprintf("%s:mod:%s", s.prefix, id)
}

func (s *ModStorage) orderKey() string {
	return s.prefix + ":mods"
}

func (s *ModStorage) seqKey() string {
	return s.prefix + ":mods:seq"
}
