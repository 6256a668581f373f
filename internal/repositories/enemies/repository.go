package enemies

//go:generate mockgen -destination=mock/mock_repository.go -package=mockenemies -source=repository.go

import (
	"context"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
)

// Repository defines the interface for enemy definition storage
type Repository interface {
	// Create stores a new enemy definition
	Create(ctx context.Context, enemy *combat.Enemy) error

	// Get retrieves an enemy definition by ref
	Get(ctx context.Context, ref string) (*combat.Enemy, error)

	// List retrieves all enemy definitions
	List(ctx context.Context) ([]*combat.Enemy, error)

	// Delete removes an enemy definition
	Delete(ctx context.Context, ref string) error
}
