package runreports

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dunnston/dungeongraph/internal/domain/play"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

func reportKey(id string) string {
	return fmt.Sprintf("run_report:%s", id)
}

func playerIndexKey(playerID string) string {
	return fmt.Sprintf("run_reports:player:%s", playerID)
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed run report repository
func NewRedisRepository(client *redis.Client) Repository {
	if client == nil {
		panic("redis client is required")
	}
	return &redisRepository{client: client}
}

// Create stores a report and indexes it under its player
func (r *redisRepository) Create(ctx context.Context, report *play.RunReport) error {
	if report == nil {
		return apperr.InvalidArgument("report cannot be nil")
	}
	if report.ID == "" {
		return apperr.InvalidArgument("report id cannot be empty")
	}
	if report.PlayerID == "" {
		return apperr.InvalidArgument("report player id cannot be empty")
	}

	data, err := json.Marshal(report)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal run report '%s'", report.ID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, reportKey(report.ID), string(data), 0)
	pipe.SAdd(ctx, playerIndexKey(report.PlayerID), report.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to store run report '%s'", report.ID)
	}
	return nil
}

// Get retrieves a report by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*play.RunReport, error) {
	data, err := r.client.Get(ctx, reportKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("run report not found: %s", id)
		}
		return nil, apperr.Wrapf(err, "failed to get run report '%s'", id)
	}

	var report play.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal run report '%s'", id)
	}
	return &report, nil
}

// ListByPlayer retrieves all reports for a player, oldest first
func (r *redisRepository) ListByPlayer(ctx context.Context, playerID string) ([]*play.RunReport, error) {
	ids, err := r.client.SMembers(ctx, playerIndexKey(playerID)).Result()
	if err != nil {
		return nil, apperr.Wrapf(err, "failed to list run reports for player '%s'", playerID)
	}

	out := make([]*play.RunReport, 0, len(ids))
	for _, id := range ids {
		report, getErr := r.Get(ctx, id)
		if getErr != nil {
			if apperr.IsNotFound(getErr) {
				continue
			}
			return nil, getErr
		}
		out = append(out, report)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}
