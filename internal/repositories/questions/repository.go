package questions

//go:generate mockgen -destination=mock/mock_repository.go -package=mockquestions -source=repository.go

import (
	"context"

	"github.com/dunnston/dungeongraph/internal/domain/quiz"
)

// Repository defines the interface for question persistence
type Repository interface {
	// Create stores a new question
	Create(ctx context.Context, question *quiz.Question) error

	// Get retrieves a question by ID
	Get(ctx context.Context, id string) (*quiz.Question, error)

	// GetRandom retrieves a random question for the given action type.
	// An empty actionType draws from the whole pool.
	GetRandom(ctx context.Context, actionType string) (*quiz.Question, error)

	// List retrieves all questions
	List(ctx context.Context) ([]*quiz.Question, error)

	// Delete removes a question
	Delete(ctx context.Context, id string) error
}
