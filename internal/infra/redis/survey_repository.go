package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"survey-response-service/internal/domain"
)

// SurveyLoader fetches survey content from a backing store.
type SurveyLoader interface {
	LoadSurvey(ctx context.Context, publicID string) (domain.Survey, error)
}

// SurveyRepository caches surveys in Redis and falls back to a loader
// on cache miss. The whole survey document is cached as JSON under
// survey:{publicID}; question order must survive the cache intact.
type SurveyRepository struct {
	client *redis.Client
	loader SurveyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewSurveyRepository(client *redis.Client, loader SurveyLoader, ttl time.Duration) *SurveyRepository {
	return &SurveyRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *SurveyRepository) GetSurvey(ctx context.Context, publicID string) (domain.Survey, error) {
	key := r.surveyKey(publicID)

	if survey, ok := r.cached(ctx, key); ok {
		return survey, nil
	}

	result, err, _ := r.sf.Do(publicID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if survey, ok := r.cached(ctx, key); ok {
			return survey, nil
		}

		survey, err := r.loader.LoadSurvey(ctx, publicID)
		if err != nil {
			return domain.Survey{}, err
		}

		if data, err := json.Marshal(cacheEnvelope{Survey: survey, Archived: survey.Archived}); err == nil {
			_ = r.client.Set(ctx, key, data, r.ttlWithJitter()).Err()
		}
		return survey, nil
	})
	if err != nil {
		return domain.Survey{}, err
	}
	return result.(domain.Survey), nil
}

// cacheEnvelope keeps the archived flag across the cache; Survey's own
// JSON form deliberately omits it.
type cacheEnvelope struct {
	Survey   domain.Survey `json:"survey"`
	Archived bool          `json:"archived"`
}

func (r *SurveyRepository) cached(ctx context.Context, key string) (domain.Survey, bool) {
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return domain.Survey{}, false
	}
	var env cacheEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return domain.Survey{}, false
	}
	env.Survey.Archived = env.Archived
	return env.Survey, true
}

func (r *SurveyRepository) surveyKey(publicID string) string {
	return "survey:" + publicID
}

func (r *SurveyRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
