// Package client implements app.SurveyBackend over the public HTTP
// contract, for respondent frontends that talk to a remote service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"survey-response-service/internal/domain"
)

// HTTPBackend talks to a remote survey service:
//
//	GET  {base}/surveys/s/{public_id}
//	POST {base}/surveys/s/{public_id}/answer
//
// Calls are single-attempt; retry policy belongs to the caller.
type HTTPBackend struct {
	baseURL string
	client  *http.Client
}

// Option configures the backend.
type Option func(*HTTPBackend)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(b *HTTPBackend) { b.client = c }
}

func NewHTTPBackend(baseURL string, opts ...Option) *HTTPBackend {
	b := &HTTPBackend{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type surveyPayload struct {
	PublicID  string            `json:"public_id"`
	Topic     string            `json:"topic"`
	Questions []domain.Question `json:"questions"`
}

type answerRequest struct {
	Answers      []string `json:"answers"`
	RespondentID string   `json:"respondent_id,omitempty"`
}

type answerResponse struct {
	OK      *bool  `json:"ok,omitempty"`
	Message string `json:"message,omitempty"`
}

func (b *HTTPBackend) FetchSurvey(ctx context.Context, publicID string) (domain.Survey, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.surveyURL(publicID), nil)
	if err != nil {
		return domain.Survey{}, fmt.Errorf("build request: %w", err)
	}

	res, err := b.client.Do(req)
	if err != nil {
		return domain.Survey{}, fmt.Errorf("fetch survey: %w", err)
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode == http.StatusOK:
	case res.StatusCode == http.StatusNotFound:
		return domain.Survey{}, domain.ErrSurveyNotFound
	default:
		return domain.Survey{}, fmt.Errorf("fetch survey: unexpected status %d", res.StatusCode)
	}

	var payload surveyPayload
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return domain.Survey{}, fmt.Errorf("decode survey: %w", err)
	}
	survey := domain.Survey{
		PublicID:  payload.PublicID,
		Topic:     payload.Topic,
		Questions: payload.Questions,
	}
	if survey.PublicID == "" {
		survey.PublicID = publicID
	}
	return survey, nil
}

func (b *HTTPBackend) SubmitAnswers(ctx context.Context, response domain.SurveyResponse) error {
	body, err := json.Marshal(answerRequest{
		Answers:      response.Answers,
		RespondentID: response.RespondentID,
	})
	if err != nil {
		return fmt.Errorf("marshal answers: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.answerURL(response.SurveyPublicID), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := b.client.Do(req)
	if err != nil {
		return fmt.Errorf("submit answers: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("submit answers: unexpected status %d", res.StatusCode)
	}

	// Absence of an ok flag, or ok==true, is success; ok==false is a
	// business rejection carrying a respondent-facing message.
	var payload answerResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return nil
	}
	if payload.OK != nil && !*payload.OK {
		return &domain.RejectionError{Message: payload.Message}
	}
	return nil
}

func (b *HTTPBackend) surveyURL(publicID string) string {
	return b.baseURL + "/surveys/s/" + url.PathEscape(publicID)
}

func (b *HTTPBackend) answerURL(publicID string) string {
	return b.surveyURL(publicID) + "/answer"
}
