package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/redis/go-redis/v9"

	"github.com/dunnston/dungeongraph/internal/domain/quiz"
	apperr "github.com/dunnston/dungeongraph/internal/errors"
)

const questionIndexKey = "questions"

func questionKey(id string) string {
	return fmt.Sprintf("question:%s", id)
}

func actionIndexKey(actionType string) string {
	return fmt.Sprintf("questions:action:%s", actionType)
}

// redisRepository implements Repository using Redis
type redisRepository struct {
	client *redis.Client
}

// NewRedisRepository creates a new Redis-backed question repository
func NewRedisRepository(client *redis.Client) Repository {
	if client == nil {
		panic("redis client is required")
	}
	return &redisRepository{client: client}
}

// Create stores a new question
func (r *redisRepository) Create(ctx context.Context, question *quiz.Question) error {
	if question == nil {
		return apperr.InvalidArgument("question cannot be nil")
	}
	if question.ID == "" {
		return apperr.InvalidArgument("question id cannot be empty")
	}

	data, err := json.Marshal(question)
	if err != nil {
		return apperr.Wrapf(err, "failed to marshal question '%s'", question.ID)
	}

	pipe := r.client.Pipeline()
	pipe.Set(ctx, questionKey(question.ID), string(data), 0)
	pipe.SAdd(ctx, questionIndexKey, question.ID)
	if question.ActionType != "" {
		pipe.SAdd(ctx, actionIndexKey(question.ActionType), question.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to store question '%s'", question.ID)
	}
	return nil
}

// Get retrieves a question by ID
func (r *redisRepository) Get(ctx context.Context, id string) (*quiz.Question, error) {
	data, err := r.client.Get(ctx, questionKey(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("question not found: %s", id)
		}
		return nil, apperr.Wrapf(err, "failed to get question '%s'", id)
	}

	var question quiz.Question
	if err := json.Unmarshal(data, &question); err != nil {
		return nil, apperr.Wrapf(err, "failed to unmarshal question '%s'", id)
	}
	return &question, nil
}

// GetRandom retrieves a random question, scoped to an action type when given
func (r *redisRepository) GetRandom(ctx context.Context, actionType string) (*quiz.Question, error) {
	key := questionIndexKey
	if actionType != "" {
		key = actionIndexKey(actionType)
	}

	id, err := r.client.SRandMember(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, apperr.NotFoundf("no questions available for action type '%s'", actionType)
		}
		return nil, apperr.Wrap(err, "failed to pick random question")
	}
	if id == "" {
		return nil, apperr.NotFoundf("no questions available for action type '%s'", actionType)
	}
	return r.Get(ctx, id)
}

// List retrieves all questions sorted by ID
func (r *redisRepository) List(ctx context.Context) ([]*quiz.Question, error) {
	ids, err := r.client.SMembers(ctx, questionIndexKey).Result()
	if err != nil {
		return nil, apperr.Wrap(err, "failed to list question ids")
	}
	sort.Strings(ids)

	out := make([]*quiz.Question, 0, len(ids))
	for _, id := range ids {
		question, getErr := r.Get(ctx, id)
		if getErr != nil {
			if apperr.IsNotFound(getErr) {
				continue
			}
			return nil, getErr
		}
		out = append(out, question)
	}
	return out, nil
}

// Delete removes a question and its index entries
func (r *redisRepository) Delete(ctx context.Context, id string) error {
	question, err := r.Get(ctx, id)
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}

	pipe := r.client.Pipeline()
	pipe.Del(ctx, questionKey(id))
	pipe.SRem(ctx, questionIndexKey, id)
	if question != nil && question.ActionType != "" {
		pipe.SRem(ctx, actionIndexKey(question.ActionType), id)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return apperr.Wrapf(err, "failed to delete question '%s'", id)
	}
	return nil
}
