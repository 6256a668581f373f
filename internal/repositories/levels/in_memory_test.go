package levels

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, testLevel("crypt-1")))

	got, err := repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	assert.Equal(t, "crypt-1", got.ID)
	assert.Len(t, got.Nodes, 2)

	err = repo.Create(ctx, testLevel("crypt-1"))
	assert.Equal(t, apperr.CodeAlreadyExists, apperr.GetCode(err))

	_, err = repo.Get(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, testLevel("crypt-1")))

	got, err := repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	got.Nodes[0].ID = "tampered"
	got.Metadata.Name = "Tampered"

	again, err := repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	assert.Equal(t, "start", again.Nodes[0].ID)
	assert.Equal(t, "Test Level", again.Metadata.Name)
}

func TestInMemoryRepository_Update(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	err := repo.Update(ctx, testLevel("crypt-1"))
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, repo.Create(ctx, testLevel("crypt-1")))

	updated := testLevel("crypt-1")
	updated.Metadata.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, updated))

	got, err := repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Metadata.Name)
}

func TestInMemoryRepository_Delete(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, testLevel("crypt-1")))
	require.NoError(t, repo.Delete(ctx, "crypt-1"))

	_, err := repo.Get(ctx, "crypt-1")
	assert.True(t, apperr.IsNotFound(err))

	err = repo.Delete(ctx, "crypt-1")
	assert.True(t, apperr.IsNotFound(err))
}

func TestInMemoryRepository_ListOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()

	require.NoError(t, repo.Create(ctx, testLevel("crypt-2")))
	require.NoError(t, repo.Create(ctx, testLevel("crypt-1")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "crypt-1", all[0].ID)
	assert.Equal(t, "crypt-2", all[1].ID)

	summaries, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "crypt-1", summaries[0].ID)
	assert.Equal(t, "Test Level", summaries[0].Name)
}
