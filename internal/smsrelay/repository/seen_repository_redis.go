package repository

import (
	"context"
	"sync"

	redisPkg "golang-futures-bot/pkg/redis"
)

const redisSeenSetKey = "sms_relay:seen_ids"

type redisSeenRepository struct {
	mu     sync.Mutex
	client *redisPkg.Client
	seen   map[string]struct{}
	dirty  []string
}

// NewRedisSeenRepository creates a seen-ID store backed by a Redis SET. The
// set is loaded into memory at startup; MarkSeen stages additions that Flush
// pushes with a single SADD per cycle.
func NewRedisSeenRepository(ctx context.Context, client *redisPkg.Client) (SeenMessageRepository, error) {
	ids, err := client.SMembers(ctx, redisSeenSetKey).Result()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return &redisSeenRepository{
		client: client,
		seen:   seen,
	}, nil
}

func (r *redisSeenRepository) Contains(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

func (r *redisSeenRepository) MarkSeen(_ context.Context, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		if _, ok := r.seen[id]; ok {
			continue
		}
		r.seen[id] = struct{}{}
		r.dirty = append(r.dirty, id)
	}
}

func (r *redisSeenRepository) Count(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func (r *redisSeenRepository) Flush(ctx context.Context) error {
	r.mu.Lock()
	dirty := r.dirty
	r.dirty = nil
	r.mu.Unlock()

	if len(dirty) == 0 {
		return nil
	}

	members := make([]interface{}, len(dirty))
	for i, id := range dirty {
		members[i] = id
	}
	return r.client.SAdd(ctx, redisSeenSetKey, members...).Err()
}

func (r *redisSeenRepository) Clear(ctx context.Context) error {
	r.mu.Lock()
	r.seen = make(map[string]struct{})
	r.dirty = nil
	r.mu.Unlock()

	return r.client.Del(ctx, redisSeenSetKey).Err()
}
