package dialog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// RedisStateStore persists dialogue state in redis. The key TTL doubles
// as the idle-expiry policy: a contact who stops responding mid-dialogue
// falls back to idle once the TTL lapses.
type RedisStateStore struct {
	redis  *redis.Client
	ttl    time.Duration
	tracer trace.Tracer
}

// NewRedisStateStore creates a redis-backed state store.
func NewRedisStateStore(client *redis.Client, ttl time.Duration, tracer trace.Tracer) *RedisStateStore {
	if client == nil {
		panic("dialog: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if tracer == nil {
		tracer = otel.Tracer("wareminder.internal.dialog.state")
	}
	return &RedisStateStore{redis: client, ttl: ttl, tracer: tracer}
}

var _ StateStore = (*RedisStateStore)(nil)

func (s *RedisStateStore) Get(ctx context.Context, phone string) (State, bool, error) {
	ctx, span := s.tracer.Start(ctx, "dialog.state.get")
	defer span.End()

	data, err := s.redis.Get(ctx, stateKey(phone)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return State{}, false, nil
		}
		span.RecordError(err)
		return State{}, false, fmt.Errorf("dialog: load state: %w", err)
	}

	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		span.RecordError(err)
		return State{}, false, fmt.Errorf("dialog: decode state: %w", err)
	}
	return state, true, nil
}

func (s *RedisStateStore) Put(ctx context.Context, state State) error {
	ctx, span := s.tracer.Start(ctx, "dialog.state.put")
	defer span.End()

	state.UpdatedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: encode state: %w", err)
	}
	if err := s.redis.Set(ctx, stateKey(state.Phone), data, s.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: persist state: %w", err)
	}
	return nil
}

func (s *RedisStateStore) Clear(ctx context.Context, phone string) error {
	ctx, span := s.tracer.Start(ctx, "dialog.state.clear")
	defer span.End()

	if err := s.redis.Del(ctx, stateKey(phone)).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("dialog: clear state: %w", err)
	}
	return nil
}

func stateKey(phone string) string {
	return fmt.Sprintf("dialog_state:%s", phone)
}
