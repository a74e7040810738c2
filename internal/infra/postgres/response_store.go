package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4/pgxpool"

	"survey-response-service/internal/domain"
)

const uniqueViolation = "23505"

// ResponseStore persists answer vectors in Postgres. A partial unique
// index on (survey_public_id, respondent_id) enforces one response per
// identified respondent.
type ResponseStore struct {
	pool *pgxpool.Pool
}

func NewResponseStore(pool *pgxpool.Pool) *ResponseStore {
	return &ResponseStore{pool: pool}
}

func (s *ResponseStore) SaveResponse(ctx context.Context, response domain.SurveyResponse) error {
	answers, err := json.Marshal(response.Answers)
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	var respondent interface{}
	if response.RespondentID != "" {
		respondent = response.RespondentID
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO survey_answers (survey_public_id, respondent_id, answers) VALUES ($1, $2, $3)`,
		response.SurveyPublicID, respondent, answers,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ErrAlreadyResponded
		}
		return fmt.Errorf("save response: %w", err)
	}
	return nil
}
