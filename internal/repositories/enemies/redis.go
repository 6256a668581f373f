package enemies

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dunnston/dungeongraph/internal/domain/combat"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

const enemyIndexKey = "enemies"

func enemyKey(ref string) string {
	return fmt.Sprintf("enemy:%s", ref)
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed enemy repository
func NewRedisRepository(client *redis.Client) Repository {
	if client == nil {
		panic("redis client is required")
	}
	return &redisRepository{client: client}
}

// Create stores a new enemy definition
func (r *redisRepository) Create(ctx context.Context, enemy *combat.Enemy) error {
	if enemy == nil {
		return apperr.InvalidArgument("enemy cannot be nil")
	}
	if enemy.Ref == "" {
		return apperr.InvalidArgument("enemy ref cannot be empty")
	}

	data, err := json.Marshal(enemy)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal enemy '%s'", enemy.Ref)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, enemyKey(enemy.Ref), string(data), 0)
	pipe.SAdd(ctx, enemyIndexKey, enemy.Ref)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to store enemy '%s'", enemy.Ref)
	}
	return nil
}

// Get retrieves an enemy definition by ref
func (r *redisRepository) Get(ctx context.Context, ref string) (*combat.Enemy, error) {
	data, err := r.client.Get(ctx, enemyKey(ref)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("enemy not found: %s", ref)
		}
		return nil, apperr.Wrapf(err, "failed to get enemy '%s'", ref)
	}

	var enemy combat.Enemy
	if err := json.Unmarshal(data, &enemy); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal enemy '%s'", ref)
	}
	return &enemy, nil
}

// List retrieves all enemy definitions
func (r *redisRepository) List(ctx context.Context) ([]*combat.Enemy, error) {
	refs, err := r.client.SMembers(ctx, enemyIndexKey).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list enemy refs")
	}
	sort.Strings(refs)

	out := make([]*combat.Enemy, 0, len(refs))
	for _, ref := range refs {
		enemy, getErr := r.Get(ctx, ref)
		if getErr != nil {
			if apperr.IsNotFound(getErr) {
				continue
			}
			return nil, getErr
		}
		out = append(out, enemy)
	}
	return out, nil
}

// Delete removes an enemy definition
func (r *redisRepository) Delete(ctx context.Context, ref string) error {
	pipe := r.client.Pipeline()
	pipe.Del(ctx, enemyKey(ref))
	pipe.SRem(ctx, enemyIndexKey, ref)
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to delete enemy '%s'", ref)
	}
	return nil
}
