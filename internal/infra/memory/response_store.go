package memory

import (
	"context"
	"sync"

	"survey-response-service/internal/domain"
)

// ResponseStore is an in-memory implementation of app.ResponseStore.
// Each respondent may answer a survey at most once.
type ResponseStore struct {
	mu        sync.RWMutex
	responses map[string][]domain.SurveyResponse
	seen      map[string]map[string]struct{}
}

func NewResponseStore() *ResponseStore {
	return &ResponseStore{
		responses: make(map[string][]domain.SurveyResponse),
		seen:      make(map[string]map[string]struct{}),
	}
}

func (s *ResponseStore) SaveResponse(_ context.Context, response domain.SurveyResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	surveyID := response.SurveyPublicID
	if response.RespondentID != "" {
		respondents, ok := s.seen[surveyID]
		if !ok {
			respondents = make(map[string]struct{})
			s.seen[surveyID] = respondents
		}
		if _, dup := respondents[response.RespondentID]; dup {
			return domain.ErrAlreadyResponded
		}
		respondents[response.RespondentID] = struct{}{}
	}

	s.responses[surveyID] = append(s.responses[surveyID], response)
	return nil
}

// Responses returns a copy of the stored responses for a survey.
func (s *ResponseStore) Responses(publicID string) []domain.SurveyResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SurveyResponse, len(s.responses[publicID]))
	copy(out, s.responses[publicID])
	return out
}
