package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"survey-response-service/internal/domain"
)

// ResponseStore mirrors app.ResponseStore so the guard can wrap any
// implementation without importing the app package.
type ResponseStore interface {
	SaveResponse(ctx context.Context, response domain.SurveyResponse) error
}

// ResponseGuard is a duplicate-submission guard in front of a response
// store. A SETNX marker per (survey, respondent) rejects repeat
// submissions before they reach the backing store; the marker is rolled
// back if the store write fails so the respondent can retry.
type ResponseGuard struct {
	client *redis.Client
	ttl    time.Duration
	inner  ResponseStore
}

func NewResponseGuard(client *redis.Client, ttl time.Duration, inner ResponseStore) *ResponseGuard {
	return &ResponseGuard{client: client, ttl: ttl, inner: inner}
}

func (g *ResponseGuard) SaveResponse(ctx context.Context, response domain.SurveyResponse) error {
	if response.RespondentID == "" {
		// Anonymous respondents cannot be deduplicated.
		return g.inner.SaveResponse(ctx, response)
	}

	key := g.key(response.SurveyPublicID, response.RespondentID)
	set, err := g.client.SetNX(ctx, key, "1", g.ttl).Result()
	if err != nil {
		// Redis being down must not block submissions; the backing
		// store still enforces uniqueness.
		return g.inner.SaveResponse(ctx, response)
	}
	if !set {
		return domain.ErrAlreadyResponded
	}

	if err := g.inner.SaveResponse(ctx, response); err != nil {
		_ = g.client.Del(ctx, key).Err()
		return err
	}
	return nil
}

func (g *ResponseGuard) key(publicID, respondentID string) string {
	return "survey:" + publicID + ":respondent:" + respondentID
}
