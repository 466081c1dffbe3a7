package repository

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDestinationRepository_PrimaryPinnedOnFreshFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "destinations.json")

	repo, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)

	assert.Equal(t, []string{"111"}, repo.List(context.Background()))
	assert.Equal(t, "111", repo.Primary())
}

func TestDestinationRepository_AddPersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "destinations.json")

	repo, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)

	require.NoError(t, repo.Add(ctx, "222"))
	require.NoError(t, repo.Add(ctx, "@mychannel"))
	assert.ErrorIs(t, repo.Add(ctx, "222"), ErrDestinationExists)

	reloaded, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "@mychannel"}, reloaded.List(ctx))
}

func TestDestinationRepository_RemovePrimaryAlwaysRejected(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "destinations.json")

	repo, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, "222"))

	assert.ErrorIs(t, repo.Remove(ctx, "111"), ErrPrimaryDestination)
	assert.Equal(t, []string{"111", "222"}, repo.List(ctx))
}

func TestDestinationRepository_Remove(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "destinations.json")

	repo, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)
	require.NoError(t, repo.Add(ctx, "222"))

	require.NoError(t, repo.Remove(ctx, "222"))
	assert.ErrorIs(t, repo.Remove(ctx, "222"), ErrDestinationNotFound)
	assert.Equal(t, []string{"111"}, repo.List(ctx))
}

func TestDestinationRepository_PrimaryReinsertedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "destinations.json")
	require.NoError(t, os.WriteFile(path, []byte(`["222","@mychannel"]`), 0o644))

	repo, err := NewFileDestinationRepository(path, "111")
	require.NoError(t, err)
	assert.Equal(t, []string{"111", "222", "@mychannel"}, repo.List(context.Background()))
}
