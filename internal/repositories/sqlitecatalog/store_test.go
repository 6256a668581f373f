package sqlitecatalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
	"github.com/dunnston/dungeongraph/internal/domain/level"
	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func catalogLevel(id string) *level.Level {
	return &level.Level{
		ID:       id,
		Metadata: level.Metadata{Name: "Catalog Level"},
		Nodes: []level.Node{
			{ID: "start", Kind: level.KindStart, Start: &level.StartPayload{}},
			{ID: "end", Kind: level.KindEnd, End: &level.EndPayload{}},
		},
		Edges: []level.Edge{{ID: "e1", Source: "start", Target: "end"}},
	}
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.True(t, apperr.IsInvalidArgument(err))
}

func TestLevels_CRUD(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Levels()

	require.NoError(t, repo.Create(ctx, catalogLevel("crypt-1")))

	err := repo.Create(ctx, catalogLevel("crypt-1"))
	assert.Equal(t, apperr.CodeAlreadyExists, apperr.GetCode(err))

	got, err := repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	assert.Equal(t, "Catalog Level", got.Metadata.Name)
	require.Len(t, got.Nodes, 2)
	assert.NotNil(t, got.Nodes[0].Start)

	_, err = repo.Get(ctx, "missing")
	assert.True(t, apperr.IsNotFound(err))

	updated := catalogLevel("crypt-1")
	updated.Metadata.Name = "Renamed"
	require.NoError(t, repo.Update(ctx, updated))

	got, err = repo.Get(ctx, "crypt-1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Metadata.Name)

	err = repo.Update(ctx, catalogLevel("missing"))
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, repo.Create(ctx, catalogLevel("crypt-2")))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "crypt-1", all[0].ID)
	assert.Equal(t, "crypt-2", all[1].ID)

	summaries, err := repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "Renamed", summaries[0].Name)

	require.NoError(t, repo.Delete(ctx, "crypt-1"))
	_, err = repo.Get(ctx, "crypt-1")
	assert.True(t, apperr.IsNotFound(err))
}

func TestEnemies_UpsertAndList(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Enemies()

	goblin := &combat.Enemy{Ref: "goblin", Name: "Goblin", BaseHealth: 10, BaseAttack: 4}
	require.NoError(t, repo.Create(ctx, goblin))

	// Create is an upsert for catalog content
	goblin.BaseHealth = 12
	require.NoError(t, repo.Create(ctx, goblin))

	got, err := repo.Get(ctx, "goblin")
	require.NoError(t, err)
	assert.Equal(t, 12, got.BaseHealth)

	_, err = repo.Get(ctx, "dragon")
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, repo.Create(ctx, &combat.Enemy{Ref: "archer", Name: "Archer", BaseHealth: 8, BaseAttack: 6}))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "archer", all[0].Ref)
	assert.Equal(t, "goblin", all[1].Ref)

	require.NoError(t, repo.Delete(ctx, "goblin"))
	_, err = repo.Get(ctx, "goblin")
	assert.True(t, apperr.IsNotFound(err))
}

func TestQuestions_GetRandomByActionType(t *testing.T) {
	ctx := context.Background()
	repo := openTestStore(t).Questions()

	require.NoError(t, repo.Create(ctx, &quiz.Question{
		ID:           "q-attack",
		Prompt:       "2 + 2?",
		Choices:      []string{"4", "3", "5", "6"},
		CorrectIndex: 0,
		ActionType:   string(combat.ActionBasicAttack),
	}))
	require.NoError(t, repo.Create(ctx, &quiz.Question{
		ID:           "q-dodge",
		Prompt:       "3 x 3?",
		Choices:      []string{"6", "9", "12", "3"},
		CorrectIndex: 1,
		ActionType:   string(combat.ActionDodge),
	}))

	q, err := repo.GetRandom(ctx, string(combat.ActionDodge))
	require.NoError(t, err)
	assert.Equal(t, "q-dodge", q.ID)

	// Unfiltered pick draws from the whole pool
	q, err = repo.GetRandom(ctx, "")
	require.NoError(t, err)
	assert.Contains(t, []string{"q-attack", "q-dodge"}, q.ID)

	_, err = repo.GetRandom(ctx, string(combat.ActionHeal))
	assert.True(t, apperr.IsNotFound(err))

	require.NoError(t, repo.Delete(ctx, "q-dodge"))
	_, err = repo.GetRandom(ctx, string(combat.ActionDodge))
	assert.True(t, apperr.IsNotFound(err))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "q-attack", all[0].ID)
}
