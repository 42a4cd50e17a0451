package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"matricula/internal/enrollment/models"
	"matricula/pkg/requestcontext"
)

// DefaultRedisKeyPrefix namespaces the keys used by RedisStore.
const DefaultRedisKeyPrefix = "matricula:enrollments"

// RedisStore appends JSON-encoded records to a Redis list. RPUSH is atomic,
// so concurrent appends keep a single insertion order. A companion set
// reserves ids before the push.
type RedisStore struct {
	client  redis.UniversalClient
	listKey string
	idsKey  string
	newID   IDGenerator
}

// NewRedis constructs a Redis-backed store under the given key prefix.
func NewRedis(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisKeyPrefix
	}
	return &RedisStore{
		client:  client,
		listKey: prefix + ":list",
		idsKey:  prefix + ":ids",
		newID:   models.NewRecordID,
	}
}

func (s *RedisStore) Append(ctx context.Context, fields models.Fields) (*models.Record, error) {
	now := requestcontext.Now(ctx)

	for range maxIDAttempts {
		record := models.NewRecord(s.newID(), fields, now)
		added, err := s.client.SAdd(ctx, s.idsKey, string(record.ID)).Result()
		if err != nil {
			return nil, fmt.Errorf("reserve enrollment id: %w", err)
		}
		if added == 0 {
			continue
		}

		payload, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("encode enrollment: %w", err)
		}
		if err := s.client.RPush(ctx, s.listKey, payload).Err(); err != nil {
			// Release the id so a retry of the same submission is not blocked.
			s.client.SRem(ctx, s.idsKey, string(record.ID))
			return nil, fmt.Errorf("push enrollment: %w", err)
		}
		return record, nil
	}
	return nil, fmt.Errorf("append enrollment: %w", errIDCollision)
}

func (s *RedisStore) List(ctx context.Context) ([]models.Record, error) {
	raw, err := s.client.LRange(ctx, s.listKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	records := make([]models.Record, 0, len(raw))
	for _, item := range raw {
		var r models.Record
		if err := json.Unmarshal([]byte(item), &r); err != nil {
			return nil, fmt.Errorf("decode enrollment: %w", err)
		}
		records = append(records, r)
	}
	return records, nil
}

func (s *RedisStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.LLen(ctx, s.listKey).Result()
	if err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return int(n), nil
}
