package domain

import "encoding/json"

// QuestionType enumerates the supported question kinds.
type QuestionType string

const (
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionOpenEnded      QuestionType = "open_ended"
	QuestionRanking        QuestionType = "ranking"
	QuestionRating         QuestionType = "rating"
	QuestionImageChoice    QuestionType = "image_choice"
	QuestionLongText       QuestionType = "long_text"
)

// DefaultRatingScale is used when a rating question does not declare a scale.
const DefaultRatingScale = 5

// ImageOption is one selectable image of an image_choice question.
type ImageOption struct {
	URL   string `json:"url"`
	Label string `json:"label"`
}

// Question is one survey question as authored. Only the payload fields
// matching Type are populated.
type Question struct {
	Type    QuestionType  `json:"type"`
	Text    string        `json:"text"`
	Options []string      `json:"options,omitempty"`
	Items   []string      `json:"items,omitempty"`
	Scale   int           `json:"scale,omitempty"`
	Images  []ImageOption `json:"images,omitempty"`
}

// UnmarshalJSON accepts either a full question object or a bare string.
// Older surveys store questions as plain strings; those decode as
// open-ended questions.
func (q *Question) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*q = Question{Type: QuestionOpenEnded, Text: text}
		return nil
	}

	type questionAlias Question
	var alias questionAlias
	if err := json.Unmarshal(data, &alias); err != nil {
		return err
	}
	*q = Question(alias)
	return nil
}

// EffectiveType maps unknown question kinds to open-ended so that
// renderers always have a fallback.
func (q Question) EffectiveType() QuestionType {
	switch q.Type {
	case QuestionMultipleChoice, QuestionOpenEnded, QuestionRanking,
		QuestionRating, QuestionImageChoice, QuestionLongText:
		return q.Type
	}
	return QuestionOpenEnded
}

// RatingScale returns the declared scale or the default of 5.
func (q Question) RatingScale() int {
	if q.Scale > 0 {
		return q.Scale
	}
	return DefaultRatingScale
}

// Survey is a published questionnaire addressed by its opaque public id.
// Question order is authoritative: answers align positionally.
type Survey struct {
	PublicID  string     `json:"public_id,omitempty"`
	Topic     string     `json:"topic"`
	Questions []Question `json:"questions"`
	Archived  bool       `json:"-"`
}

// SurveyResponse is one respondent's complete answer vector for a survey.
// Answers[i] is the answer to Questions[i].
type SurveyResponse struct {
	SurveyPublicID string   `json:"survey_public_id"`
	RespondentID   string   `json:"respondent_id,omitempty"`
	Answers        []string `json:"answers"`
}
