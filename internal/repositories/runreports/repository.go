package runreports

//go:generate mockgen -destination=mock/mock_repository.go -package=mockrunreports -source=repository.go

import (
	"context"

	"github.com/dunnston/dungeongraph/internal/domain/play"
)

// Repository defines the interface for persisting finished-run reports
type Repository interface {
	// Create stores a report. The report must already carry an ID.
	Create(ctx context.Context, report *play.RunReport) error

	// Get retrieves a report by ID
	Get(ctx context.Context, id string) (*play.RunReport, error)

	// ListByPlayer retrieves all reports for a player, oldest first
	ListByPlayer(ctx context.Context, playerID string) ([]*play.RunReport, error)
}
