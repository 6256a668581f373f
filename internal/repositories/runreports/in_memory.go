package runreports

import (
	"context"
	"sort"
	"sync"

	"github.com/dunnston/dungeongraph/internal/domain/play"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

// inMemoryRepository implements Repository using maps
type inMemoryRepository struct {
	mu       sync.RWMutex
	reports  map[string]*play.RunReport
	byPlayer map[string][]string
}

// NewInMemoryRepository creates a new in-memory run report repository
func NewInMemoryRepository() Repository {
	return &inMemoryRepository{
		reports:  make(map[string]*play.RunReport),
		byPlayer: make(map[string][]string),
	}
}

func copyReport(rep *play.RunReport) *play.RunReport {
	out := *rep
	if rep.ItemsGained != nil {
		out.ItemsGained = append(out.ItemsGained[:0:0], rep.ItemsGained...)
	}
	return &out
}

func (r *inMemoryRepository) Create(_ context.Context, report *play.RunReport) error {
	if report == nil {
		return apperr.InvalidArgument("report cannot be nil")
	}
	if report.ID == "" {
		return apperr.InvalidArgument("report id cannot be empty")
	}
	if report.PlayerID == "" {
		return apperr.InvalidArgument("report player id cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[report.ID]; !exists {
		r.byPlayer[report.PlayerID] = append(r.byPlayer[report.PlayerID], report.ID)
	}
	r.reports[report.ID] = copyReport(report)
	return nil
}

func (r *inMemoryRepository) Get(_ context.Context, id string) (*play.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report, ok := r.reports[id]
	if !ok {
		return nil, apperr.NotFoundf("run report not found: %s", id)
	}
	return copyReport(report), nil
}

func (r *inMemoryRepository) ListByPlayer(_ context.Context, playerID string) ([]*play.RunReport, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.byPlayer[playerID]
	out := make([]*play.RunReport, 0, len(ids))
	for _, id := range ids {
		if report, ok := r.reports[id]; ok {
			out = append(out, copyReport(report))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
