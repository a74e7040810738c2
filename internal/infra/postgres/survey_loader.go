package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"survey-response-service/internal/domain"
)

// SurveyLoader loads surveys from Postgres. Questions are stored as a
// JSONB document in authoring order.
type SurveyLoader struct {
	pool *pgxpool.Pool
}

func NewSurveyLoader(pool *pgxpool.Pool) *SurveyLoader {
	return &SurveyLoader{pool: pool}
}

func (l *SurveyLoader) LoadSurvey(ctx context.Context, publicID string) (domain.Survey, error) {
	var (
		topic    string
		raw      []byte
		archived bool
	)
	err := l.pool.QueryRow(ctx,
		`SELECT topic, questions, archived FROM surveys WHERE public_id=$1`,
		publicID,
	).Scan(&topic, &raw, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Survey{}, domain.ErrSurveyNotFound
	}
	if err != nil {
		return domain.Survey{}, fmt.Errorf("load survey: %w", err)
	}

	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return domain.Survey{}, fmt.Errorf("unmarshal questions: %w", err)
	}
	return domain.Survey{
		PublicID:  publicID,
		Topic:     topic,
		Questions: questions,
		Archived:  archived,
	}, nil
}
