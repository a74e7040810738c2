package app

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"survey-response-service/internal/domain"
)

// SurveyRepository loads survey content (from cache/backing store).
// Archived surveys are returned with their flag set; policy lives here.
type SurveyRepository interface {
	GetSurvey(ctx context.Context, publicID string) (domain.Survey, error)
}

// ResponseStore persists completed answer vectors. Implementations
// return domain.ErrAlreadyResponded for duplicate respondents.
type ResponseStore interface {
	SaveResponse(ctx context.Context, response domain.SurveyResponse) error
}

// SurveyService serves the respondent contract: fetch a survey by its
// public id and accept one complete answer vector per respondent. It
// implements SurveyBackend so in-process transports drive the same
// interface remote clients do.
type SurveyService struct {
	surveys     SurveyRepository
	responses   ResponseStore
	idGenerator func() string
}

func NewSurveyService(surveys SurveyRepository, responses ResponseStore) *SurveyService {
	return &SurveyService{
		surveys:     surveys,
		responses:   responses,
		idGenerator: newRespondentID,
	}
}

func newRespondentID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}

// FetchSurvey resolves a public id to an active survey. Archived
// surveys are unavailable to new respondents.
func (s *SurveyService) FetchSurvey(ctx context.Context, publicID string) (domain.Survey, error) {
	survey, err := s.surveys.GetSurvey(ctx, publicID)
	if err != nil {
		return domain.Survey{}, err
	}
	if survey.Archived {
		return domain.Survey{}, domain.ErrSurveyNotFound
	}
	survey.PublicID = publicID
	return survey, nil
}

// SubmitAnswers validates and stores one complete response. The answer
// vector must align positionally with the survey's questions; blank
// entries break that contract and are rejected. Respondents without an
// id get a generated one so the stored response still has an owner.
func (s *SurveyService) SubmitAnswers(ctx context.Context, response domain.SurveyResponse) error {
	survey, err := s.surveys.GetSurvey(ctx, response.SurveyPublicID)
	if err != nil {
		return err
	}
	if survey.Archived {
		return &domain.RejectionError{Message: "survey is archived"}
	}
	if len(response.Answers) != len(survey.Questions) {
		return &domain.RejectionError{
			Message: domain.ErrAnswerCountMismatch.Error(),
			Err:     domain.ErrAnswerCountMismatch,
		}
	}
	for _, answer := range response.Answers {
		if strings.TrimSpace(answer) == "" {
			return &domain.RejectionError{
				Message: domain.ErrEmptyAnswer.Error(),
				Err:     domain.ErrEmptyAnswer,
			}
		}
	}

	if response.RespondentID == "" {
		response.RespondentID = s.idGenerator()
	}

	if err := s.responses.SaveResponse(ctx, response); err != nil {
		if errors.Is(err, domain.ErrAlreadyResponded) {
			return &domain.RejectionError{
				Message: domain.ErrAlreadyResponded.Error(),
				Err:     domain.ErrAlreadyResponded,
			}
		}
		return err
	}
	return nil
}
