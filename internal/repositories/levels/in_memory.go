package levels

import (
	"context"
	"sort"
	"sync"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// inMemoryRepository implements Repository using in-memory storage
type inMemoryRepository struct {
	mu     sync.RWMutex
	levels map[string]*level.Level
}

// NewInMemoryRepository creates a new in-memory level repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		levels: make(map[string]*level.Level),
	}
}

// Create stores a new level
func (r *inMemoryRepository) Create(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.levels[l.ID]; exists {
		return apperr.AlreadyExists("level already exists: " + l.ID)
	}

	r.levels[l.ID] = copyLevel(l)
	return nil
}

// Get retrieves a level by ID
func (r *inMemoryRepository) Get(ctx context.Context, id string) (*level.Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	l, exists := r.levels[id]
	if !exists {
		return nil, apperr.NotFoundf("level not found: %s", id)
	}

	return copyLevel(l), nil
}

// Update replaces an existing level
func (r *inMemoryRepository) Update(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level ID cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.levels[l.ID]; !exists {
		return apperr.NotFoundf("level not found: %s", l.ID)
	}

	r.levels[l.ID] = copyLevel(l)
	return nil
}

// Delete removes a level
func (r *inMemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.levels[id]; !exists {
		return apperr.NotFoundf("level not found: %s", id)
	}

	delete(r.levels, id)
	return nil
}

// List retrieves all levels, ordered by ID
func (r *inMemoryRepository) List(ctx context.Context) ([]*level.Level, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*level.Level, 0, len(r.levels))
	for _, l := range r.levels {
		out = append(out, copyLevel(l))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ListSummaries retrieves catalog summaries for all levels
func (r *inMemoryRepository) ListSummaries(ctx context.Context) ([]Summary, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]Summary, 0, len(all))
	for _, l := range all {
		summaries = append(summaries, Summary{
			ID:               l.ID,
			Name:             l.Metadata.Name,
			Description:      l.Metadata.Description,
			Difficulty:       l.Metadata.Difficulty,
			RecommendedLevel: l.Metadata.RecommendedLevel,
		})
	}
	return summaries, nil
}

// copyLevel makes a shallow-plus-slices copy so callers cannot mutate
// stored graphs through returned pointers.
func copyLevel(l *level.Level) *level.Level {
	cp := *l
	cp.Nodes = append([]level.Node(nil), l.Nodes...)
	cp.Edges = append([]level.Edge(nil), l.Edges...)
	cp.Metadata.Tags = append([]string(nil), l.Metadata.Tags...)
	return &cp
}
