package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// SeenMessageRepository tracks the dedup keys of already-relayed messages.
// Membership checks and marking are in-memory; Flush persists the whole set,
// once per relay cycle.
type SeenMessageRepository interface {
	Contains(ctx context.Context, id string) bool
	MarkSeen(ctx context.Context, ids ...string)
	Count(ctx context.Context) int
	Flush(ctx context.Context) error
	Clear(ctx context.Context) error
}

type fileSeenRepository struct {
	mu   sync.Mutex
	path string
	seen map[string]struct{}
}

// NewFileSeenRepository creates a seen-ID store backed by a JSON array file.
// The file is read once at startup and rewritten wholesale on Flush. A
// missing file starts the set empty.
func NewFileSeenRepository(path string) (SeenMessageRepository, error) {
	r := &fileSeenRepository{
		path: path,
		seen: make(map[string]struct{}),
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read seen file: %w", err)
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return nil, fmt.Errorf("failed to parse seen file: %w", err)
	}
	for _, id := range ids {
		r.seen[id] = struct{}{}
	}
	return r, nil
}

func (r *fileSeenRepository) Contains(_ context.Context, id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.seen[id]
	return ok
}

func (r *fileSeenRepository) MarkSeen(_ context.Context, ids ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range ids {
		r.seen[id] = struct{}{}
	}
}

func (r *fileSeenRepository) Count(_ context.Context) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.seen)
}

func (r *fileSeenRepository) Flush(_ context.Context) error {
	r.mu.Lock()
	ids := make([]string, 0, len(r.seen))
	for id := range r.seen {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	return r.writeFile(ids)
}

func (r *fileSeenRepository) Clear(_ context.Context) error {
	r.mu.Lock()
	r.seen = make(map[string]struct{})
	r.mu.Unlock()

	return r.writeFile([]string{})
}

func (r *fileSeenRepository) writeFile(ids []string) error {
	data, err := json.Marshal(ids)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write seen file: %w", err)
	}
	return nil
}
