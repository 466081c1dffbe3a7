package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
)

var (
	// ErrPrimaryDestination is returned when removing the primary destination.
	ErrPrimaryDestination = errors.New("primary destination cannot be removed")
	// ErrDestinationExists is returned when adding a registered destination.
	ErrDestinationExists = errors.New("destination already registered")
	// ErrDestinationNotFound is returned when removing an unknown destination.
	ErrDestinationNotFound = errors.New("destination not registered")
)

// DestinationRepository is the persisted, ordered registry of forward
// destinations. The primary destination is always present and protected.
type DestinationRepository interface {
	List(ctx context.Context) []string
	Add(ctx context.Context, dest string) error
	Remove(ctx context.Context, dest string) error
	Primary() string
}

type fileDestinationRepository struct {
	mu           sync.Mutex
	path         string
	primary      string
	destinations []string
}

// NewFileDestinationRepository loads the destination registry from a JSON
// array file, pinning the primary destination as the first entry. A missing
// or unreadable file starts the registry with just the primary.
func NewFileDestinationRepository(path, primary string) (DestinationRepository, error) {
	r := &fileDestinationRepository{
		path:    path,
		primary: primary,
	}

	data, err := os.ReadFile(path)
	if err == nil {
		var dests []string
		if err := json.Unmarshal(data, &dests); err != nil {
			return nil, fmt.Errorf("failed to parse destinations file: %w", err)
		}
		r.destinations = dests
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read destinations file: %w", err)
	}

	if !r.contains(primary) {
		r.destinations = append([]string{primary}, r.destinations...)
	}
	return r, nil
}

func (r *fileDestinationRepository) contains(dest string) bool {
	for _, d := range r.destinations {
		if d == dest {
			return true
		}
	}
	return false
}

func (r *fileDestinationRepository) Primary() string {
	return r.primary
}

func (r *fileDestinationRepository) List(_ context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.destinations))
	copy(out, r.destinations)
	return out
}

func (r *fileDestinationRepository) Add(_ context.Context, dest string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.contains(dest) {
		return ErrDestinationExists
	}
	r.destinations = append(r.destinations, dest)
	return r.persist()
}

func (r *fileDestinationRepository) Remove(_ context.Context, dest string) error {
	if dest == r.primary {
		return ErrPrimaryDestination
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for i, d := range r.destinations {
		if d == dest {
			r.destinations = append(r.destinations[:i], r.destinations[i+1:]...)
			return r.persist()
		}
	}
	return ErrDestinationNotFound
}

func (r *fileDestinationRepository) persist() error {
	data, err := json.Marshal(r.destinations)
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write destinations file: %w", err)
	}
	return nil
}
