// Package progress is the stat sink: it records finished-run reports so
// the character-progression side of the game can apply them. Aborted
// runs never reach this service.
package progress

import (
	"context"
	"time"

	"github.com/dunnston/dungeongraph/internal/domain/play"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
	"github.com/dunnston/dungeongraph/internal/repositories/runreports"
	"github.com/dunnston/dungeongraph/internal/uuid"
)

//go:generate mockgen -destination=mock/mock_service.go -package=mockprogress -source=service.go

// Service records run outcomes per player
type Service interface {
	// Record persists a finished-run report, assigning it an ID
	Record(ctx context.Context, report *play.RunReport) error

	// History returns a player's recorded runs, oldest first
	History(ctx context.Context, playerID string) ([]*play.RunReport, error)
}

// ServiceConfig holds the service dependencies
type ServiceConfig struct {
	Repository    runreports.Repository
	UUIDGenerator uuid.Generator
}

type service struct {
	repo    runreports.Repository
	uuidGen uuid.Generator
	now     func() time.Time
}

// NewService creates a new progress service
func NewService(cfg *ServiceConfig) Service {
	if cfg == nil {
		panic("config is required")
	}
	if cfg.Repository == nil {
		panic("run report repository is required")
	}
	if cfg.UUIDGenerator == nil {
		panic("uuid generator is required")
	}
	return &service{
		repo:    cfg.Repository,
		uuidGen: cfg.UUIDGenerator,
		now:     time.Now,
	}
}

func (s *service) Record(ctx context.Context, report *play.RunReport) error {
	if report == nil {
		return apperr.InvalidArgument("report cannot be nil")
	}
	if report.PlayerID == "" {
		return apperr.InvalidArgument("report player id cannot be empty")
	}
	if report.ID == "" {
		report.ID = s.uuidGen.New()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = s.now()
	}
	return s.repo.Create(ctx, report)
}

func (s *service) History(ctx context.Context, playerID string) ([]*play.RunReport, error) {
	if playerID == "" {
		return nil, apperr.InvalidArgument("player id cannot be empty")
	}
	return s.repo.ListByPlayer(ctx, playerID)
}
