package runreports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunnston/dungeongraph/internal/domain/play"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

func report(id, playerID string, at time.Time) *play.RunReport {
	return &play.RunReport{
		ID:        id,
		PlayerID:  playerID,
		LevelID:   "crypt-1",
		Outcome:   play.OutcomeCompleted,
		XPDelta:   100,
		CreatedAt: at,
	}
}

func TestInMemoryRepository_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, report("r1", "player-1", now)))

	got, err := repo.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, "player-1", got.PlayerID)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))

	assert.Error(t, repo.Create(ctx, nil))
	assert.Error(t, repo.Create(ctx, &play.RunReport{PlayerID: "player-1"}))
	assert.Error(t, repo.Create(ctx, &play.RunReport{ID: "r2"}))
}

func TestInMemoryRepository_ListByPlayerOldestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewInMemoryRepository()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, repo.Create(ctx, report("r2", "player-1", base.Add(time.Hour))))
	require.NoError(t, repo.Create(ctx, report("r1", "player-1", base)))
	require.NoError(t, repo.Create(ctx, report("r3", "player-2", base)))

	got, err := repo.ListByPlayer(ctx, "player-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r1", got[0].ID)
	assert.Equal(t, "r2", got[1].ID)

	got, err = repo.ListByPlayer(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, got)
}
