package levels

//go:generate mockgen -destination=mock/mock_repository.go -package=mocklevels -source=repository.go

import (
	"context"

	"github.com/dunnston/dungeongraph/internal/domain/level"
)

// Summary is the catalog listing form of a level
type Summary struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Description      string           `json:"description,omitempty"`
	Difficulty       level.Difficulty `json:"difficulty,omitempty"`
	RecommendedLevel int              `json:"recommended_level,omitempty"`
}

// Repository defines the interface for level storage operations
type Repository interface {
	// Create stores a new level
	Create(ctx context.Context, l *level.Level) error

	// Get retrieves a level by ID
	Get(ctx context.Context, id string) (*level.Level, error)

	// Update replaces an existing level
	Update(ctx context.Context, l *level.Level) error

	// Delete removes a level
	Delete(ctx context.Context, id string) error

	// List retrieves all levels
	List(ctx context.Context) ([]*level.Level, error)

	// ListSummaries retrieves catalog summaries for all levels
	ListSummaries(ctx context.Context) ([]Summary, error)
}
