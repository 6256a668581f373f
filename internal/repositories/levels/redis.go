package levels

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/dunnston/dungeongraph/internal/domain/level"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

const levelIndexKey = "levels"

func levelKey(id string) string {
	return fmt.Sprintf("level:%s", id)
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed level repository
func NewRedisRepository(client *redis.Client) Repository {
	if client == nil {
		panic("redis client is required")
	}
	return &redisRepository{client: client}
}

// Create stores a new level
func (r *redisRepository) Create(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level ID cannot be empty")
	}

	exists, err := r.client.SIsMember(ctx, levelIndexKey, l.ID).Result()
	if err != nil {
		return apperr.Wrapf(err, "failed to check level '%s'", l.ID)
	}
	if exists {
		return apperr.AlreadyExists(fmt.Sprintf("level already exists: %s", l.ID))
	}

	return r.write(ctx, l)
}

// Get retrieves a level by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*level.Level, error) {
	data, err := r.client.Get(ctx, levelKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("level not found: %s", id)
		}
		return nil, apperr.Wrapf(err, "failed to get level '%s'", id)
	}

	var l level.Level
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal level '%s'", id)
	}

	return &l, nil
}

// Update replaces an existing level
func (r *redisRepository) Update(ctx context.Context, l *level.Level) error {
	if l == nil {
		return apperr.InvalidArgument("level cannot be nil")
	}
	if l.ID == "" {
		return apperr.InvalidArgument("level ID cannot be empty")
	}

	exists, err := r.client.SIsMember(ctx, levelIndexKey, l.ID).Result()
	if err != nil {
		return apperr.Wrapf(err, "failed to check level '%s'", l.ID)
	}
	if !exists {
		return apperr.NotFoundf("level not found: %s", l.ID)
	}

	return r.write(ctx, l)
}

// Delete removes a level
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, levelKey(id))
	pipe.SRem(ctx, levelIndexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to delete level '%s'", id)
	}
	return nil
}

// List retrieves all levels. Level documents are fetched concurrently;
// order is by level ID for stable output.
func (r *redisRepository) List(ctx context.Context) ([]*level.Level, error) {
	ids, err := r.client.SMembers(ctx, levelIndexKey).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list level ids")
	}
	sort.Strings(ids)

	results := make([]*level.Level, len(ids))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		g.Go(func() error {
			l, getErr := r.Get(gctx, id)
			if getErr != nil {
				// A member without a document is stale index data,
				// not a reason to fail the whole listing.
				if apperr.IsNotFound(getErr) {
					return nil
				}
				return getErr
			}
			mu.Lock()
			results[i] = l
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*level.Level, 0, len(results))
	for _, l := range results {
		if l != nil {
			out = append(out, l)
		}
	}
	return out, nil
}

// ListSummaries retrieves catalog summaries for all levels
func (r *redisRepository) ListSummaries(ctx context.Context) ([]Summary, error) {
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

func (r *redisRepository) write(ctx context.Context, l *level.Level) error {
	data, err := json.Marshal(l)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal level '%s'", l.ID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, levelKey(l.ID), string(data), 0)
	pipe.SAdd(ctx, levelIndexKey, l.ID)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to store level '%s'", l.ID)
	}
	return nil
}
