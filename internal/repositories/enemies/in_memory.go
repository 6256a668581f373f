package enemies

import (
	"context"
	"sort"
	"sync"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// inMemoryRepository implements Repository using a map
type inMemoryRepository struct {
	mu      sync.RWMutex
	enemies map[string]*combat.Enemy
}

// NewInMemoryRepository creates a new in-memory enemy repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		enemies: make(map[string]*combat.Enemy),
	}
}

func copyEnemy(e *combat.Enemy) *combat.Enemy {
	out := *e
	if e.Attacks != nil {
		out.Attacks = make([]string, len(e.Attacks))
		copy(out.Attacks, e.Attacks)
	}
	return &out
}

func (r *inMemoryRepository) Create(_ context.Context, enemy *combat.Enemy) error {
	if enemy == nil {
		return apperr.InvalidArgument("enemy cannot be nil")
	}
	if enemy.Ref == "" {
		return apperr.InvalidArgument("enemy ref cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.enemies[enemy.Ref] = copyEnemy(enemy)
	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, ref string) (*combat.Enemy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enemy, ok := r.enemies[ref]
	if !ok {
		return nil, apperr.NotFoundf("enemy not found: %s", ref)
	}
	return copyEnemy(enemy), nil
}

func (r *inMemoryRepository) List(_ context.Context) ([]*combat.Enemy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*combat.Enemy, 0, len(r.enemies))
	for _, enemy := range r.enemies {
		out = append(out, copyEnemy(enemy))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ref < out[j].Ref })
	return out, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.enemies, ref)
	return nil
}
