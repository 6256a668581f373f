package questions

import (
	"context"
	"math/rand"
	"sort"
	"sync"

	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// inMemoryRepository implements Repository using a map
type inMemoryRepository struct {
	mu        sync.RWMutex
	questions map[string]*quiz.Question
}

// NewInMemoryRepository creates a new in-memory question repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		questions: make(map[string]*quiz.Question),
	}
}

func copyQuestion(q *quiz.Question) *quiz.Question {
	out := *q
	if q.Choices != nil {
		out.Choices = make([]string, len(q.Choices))
		copy(out.Choices, q.Choices)
	}
	return &out
}

func (r *inMemoryRepository) Create(_ context.Context, question *quiz.Question) error {
	if question == nil {
		return apperr.InvalidArgument("question cannot be nil")
	}
	if question.ID == "" {
		return apperr.InvalidArgument("question id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.questions[question.ID] = copyQuestion(question)
	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, id string) (*quiz.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	question, ok := r.questions[id]
	if !ok {
		return nil, apperr.NotFoundf("question not found: %s", id)
	}
	return copyQuestion(question), nil
}

func (r *inMemoryRepository) GetRandom(_ context.Context, actionType string) (*quiz.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	pool := make([]*quiz.Question, 0, len(r.questions))
	for _, q := range r.questions {
		if actionType == "" || q.ActionType == actionType {
			pool = append(pool, q)
		}
	}
	if len(pool) == 0 {
		return nil, apperr.NotFoundf("no questions available for action type '%s'", actionType)
	}
	return copyQuestion(pool[rand.Intn(len(pool))]), nil
}

func (r *inMemoryRepository) List(_ context.Context) ([]*quiz.Question, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*quiz.Question, 0, len(r.questions))
	for _, q := range r.questions {
		out = append(out, copyQuestion(q))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *inMemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.questions, id)
	return nil
}
