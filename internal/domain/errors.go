package domain

import "errors"

var (
	// ErrSurveyNotFound is returned when a public id does not resolve to an active survey.
	ErrSurveyNotFound = errors.New("survey not found or unavailable")
	// ErrNoQuestions indicates a survey with an empty question list; such surveys cannot be taken.
	ErrNoQuestions = errors.New("survey has no questions")
	// ErrEmptyAnswer is returned when a blank answer is submitted; the session does not advance.
	ErrEmptyAnswer = errors.New("answer must not be empty")
	// ErrAnswerCountMismatch indicates the answer vector is not positionally aligned with the questions.
	ErrAnswerCountMismatch = errors.New("answer count does not match question count")
	// ErrAlreadyResponded indicates the respondent has already submitted a response for this survey.
	ErrAlreadyResponded = errors.New("already responded")
	// ErrSubmitInFlight is returned when a submission is attempted while another one is in flight.
	ErrSubmitInFlight = errors.New("submission already in flight")
	// ErrSessionNotReady is returned when answers arrive before the survey has been fetched.
	ErrSessionNotReady = errors.New("response session has not been started")
	// ErrSessionClosed is returned when an operation is attempted on a finished session.
	ErrSessionClosed = errors.New("response session is closed")
)

// RejectionError is a business rejection from the survey backend: the
// request was accepted at the HTTP level but semantically declined
// (duplicate submission, archived survey). Message is surfaced to the
// respondent verbatim. Err, when set, carries the underlying sentinel.
type RejectionError struct {
	Message string
	Err     error
}

func (e *RejectionError) Error() string { return e.Message }

func (e *RejectionError) Unwrap() error { return e.Err }

// AsRejection unwraps err into a RejectionError if it is one.
func AsRejection(err error) (*RejectionError, bool) {
	var rej *RejectionError
	if errors.As(err, &rej) {
		return rej, true
	}
	return nil, false
}
