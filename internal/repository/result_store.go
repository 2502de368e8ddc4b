package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/classgrid/classgrid-api/internal/scheduler"
)

// ErrResultNotFound is returned when no generation result is cached for a
// class, either because none was generated or because the entry expired.
var ErrResultNotFound = errors.New("generation result not found")

// ResultStore keeps the latest generation result per class in Redis so a
// follow-up resolve call can amend ambiguous slots without regenerating.
type ResultStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewResultStore creates a store with the given retention window.
func NewResultStore(client *redis.Client, ttl time.Duration) *ResultStore {
	return &ResultStore{client: client, ttl: ttl}
}

func resultKey(classID string) string {
	return fmt.Sprintf("timetable:result:%s", classID)
}

// Save caches the generation result for the class.
func (s *ResultStore) Save(ctx context.Context, classID string, result *scheduler.Result) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal generation result: %w", err)
	}
	if err := s.client.Set(ctx, resultKey(classID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("cache generation result: %w", err)
	}
	return nil
}

// Load returns the cached result for the class, or ErrResultNotFound.
func (s *ResultStore) Load(ctx context.Context, classID string) (*scheduler.Result, error) {
	payload, err := s.client.Get(ctx, resultKey(classID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrResultNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read generation result: %w", err)
	}
	var result scheduler.Result
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode generation result: %w", err)
	}
	return &result, nil
}

// Delete removes the cached result, typically after activation.
func (s *ResultStore) Delete(ctx context.Context, classID string) error {
	if err := s.client.Del(ctx, resultKey(classID)).Err(); err != nil {
		return fmt.Errorf("drop generation result: %w", err)
	}
	return nil
}
