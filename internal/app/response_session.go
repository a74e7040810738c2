package app

import (
	"context"
	"errors"
	"strings"

	"survey-response-service/internal/domain"
)

// SurveyBackend is the collaborator a response session talks to. It is
// satisfied both by the local SurveyService and by the HTTP client in
// internal/client, so the same session drives the in-process chat
// transport and remote respondents.
type SurveyBackend interface {
	FetchSurvey(ctx context.Context, publicID string) (domain.Survey, error)
	SubmitAnswers(ctx context.Context, response domain.SurveyResponse) error
}

// SessionStatus is the lifecycle state of a response session.
type SessionStatus string

const (
	StatusLoading        SessionStatus = "loading"
	StatusAwaitingAnswer SessionStatus = "awaiting_answer"
	StatusSubmitting     SessionStatus = "submitting"
	StatusCompleted      SessionStatus = "completed"
	StatusRejected       SessionStatus = "rejected"
	StatusFailed         SessionStatus = "failed"
)

// Respondent-facing messages for the two failure classes the session
// translates itself; business rejections are surfaced verbatim.
const (
	MsgSurveyUnavailable = "survey not found or unavailable"
	MsgNetworkError      = "network error"
)

// Step is the session state surfaced after each operation: the active
// prompt while answers are still being collected, or the terminal state
// and its message once the session has finished.
type Step struct {
	Status   SessionStatus
	Question *domain.Question
	Index    int
	Total    int
	Message  string
}

// ResponseSession walks one respondent through a survey's questions in
// order, collecting exactly one answer per question, and submits the
// whole vector once after the last answer. Answers align positionally
// with questions and the cursor only moves forward.
//
// A session is owned by a single goroutine (one websocket connection or
// one CLI run); it is not safe for concurrent use.
type ResponseSession struct {
	backend      SurveyBackend
	publicID     string
	respondentID string

	survey  domain.Survey
	current int
	answers []string
	status  SessionStatus
	message string
}

// NewResponseSession creates a session in the Loading state. The
// respondent id may be empty for anonymous respondents.
func NewResponseSession(backend SurveyBackend, publicID, respondentID string) *ResponseSession {
	return &ResponseSession{
		backend:      backend,
		publicID:     publicID,
		respondentID: respondentID,
		status:       StatusLoading,
	}
}

// Start fetches the survey and surfaces the first question. A survey
// with zero questions fails the session: there is nothing to collect.
func (s *ResponseSession) Start(ctx context.Context) (Step, error) {
	if s.status != StatusLoading {
		return s.step(), domain.ErrSessionClosed
	}

	survey, err := s.backend.FetchSurvey(ctx, s.publicID)
	if err != nil {
		s.status = StatusFailed
		if errors.Is(err, domain.ErrSurveyNotFound) {
			s.message = MsgSurveyUnavailable
		} else {
			s.message = MsgNetworkError
		}
		return s.step(), err
	}
	if len(survey.Questions) == 0 {
		s.status = StatusFailed
		s.message = MsgSurveyUnavailable
		return s.step(), domain.ErrNoQuestions
	}

	s.survey = survey
	s.current = 0
	s.answers = make([]string, 0, len(survey.Questions))
	s.status = StatusAwaitingAnswer
	return s.step(), nil
}

// SubmitAnswer records the answer to the active question and advances
// the session. Blank input is a no-op: state is left untouched and
// domain.ErrEmptyAnswer is returned so transports can decide whether to
// surface it. After a transient submission failure the session is back
// on the last question with its answer retained; submitting again
// replaces that answer and retries the upload.
func (s *ResponseSession) SubmitAnswer(ctx context.Context, raw string) (Step, error) {
	switch s.status {
	case StatusAwaitingAnswer:
	case StatusSubmitting:
		return s.step(), domain.ErrSubmitInFlight
	case StatusLoading:
		return s.step(), domain.ErrSessionNotReady
	default:
		return s.step(), domain.ErrSessionClosed
	}
	if strings.TrimSpace(raw) == "" {
		return s.step(), domain.ErrEmptyAnswer
	}

	if len(s.answers) == len(s.survey.Questions) {
		// Retrying after a failed upload; the respondent may have
		// corrected the final answer.
		s.answers[len(s.answers)-1] = raw
		return s.finalize(ctx)
	}

	s.answers = append(s.answers, raw)
	s.current++
	if s.current < len(s.survey.Questions) {
		return s.step(), nil
	}
	return s.finalize(ctx)
}

// Retry resubmits the collected answers after a transient failure,
// without changing them.
func (s *ResponseSession) Retry(ctx context.Context) (Step, error) {
	if s.status != StatusAwaitingAnswer || len(s.answers) != len(s.survey.Questions) || len(s.answers) == 0 {
		return s.step(), domain.ErrSessionClosed
	}
	return s.finalize(ctx)
}

func (s *ResponseSession) finalize(ctx context.Context) (Step, error) {
	s.status = StatusSubmitting
	err := s.backend.SubmitAnswers(ctx, domain.SurveyResponse{
		SurveyPublicID: s.publicID,
		RespondentID:   s.respondentID,
		Answers:        s.Answers(),
	})
	switch {
	case err == nil:
		s.status = StatusCompleted
		s.message = ""
	case isRejection(err):
		rej, _ := domain.AsRejection(err)
		s.status = StatusRejected
		s.message = rej.Message
	default:
		// Transient failure: the vector is kept and the session returns
		// to the last question so the respondent can resubmit.
		s.status = StatusAwaitingAnswer
		s.message = MsgNetworkError
	}
	return s.step(), err
}

// Current reports the session state without mutating it.
func (s *ResponseSession) Current() Step { return s.step() }

// Status returns the current lifecycle state.
func (s *ResponseSession) Status() SessionStatus { return s.status }

// Survey returns the fetched survey; zero value before Start succeeds.
func (s *ResponseSession) Survey() domain.Survey { return s.survey }

// Answers returns a copy of the answers collected so far.
func (s *ResponseSession) Answers() []string {
	out := make([]string, len(s.answers))
	copy(out, s.answers)
	return out
}

func (s *ResponseSession) step() Step {
	step := Step{
		Status:  s.status,
		Total:   len(s.survey.Questions),
		Message: s.message,
	}
	if s.status == StatusAwaitingAnswer {
		idx := s.current
		if idx >= len(s.survey.Questions) {
			// Back on the last question after a failed upload.
			idx = len(s.survey.Questions) - 1
		}
		step.Index = idx
		step.Question = &s.survey.Questions[idx]
	}
	return step
}

func isRejection(err error) bool {
	_, ok := domain.AsRejection(err)
	return ok
}
