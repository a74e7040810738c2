package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"survey-response-service/internal/app"
	"survey-response-service/internal/domain"
)

// SurveyHandler serves the public respondent contract over REST:
//
//	GET  /surveys/s/{publicID}         -> survey definition
//	POST /surveys/s/{publicID}/answer  -> submit one answer vector
type SurveyHandler struct {
	backend app.SurveyBackend
	logger  *zap.Logger
}

func NewSurveyHandler(backend app.SurveyBackend, logger *zap.Logger) *SurveyHandler {
	return &SurveyHandler{backend: backend, logger: logger}
}

func (h *SurveyHandler) Register(r chi.Router) {
	r.Get("/surveys/s/{publicID}", h.getSurvey)
	r.Post("/surveys/s/{publicID}/answer", h.postAnswer)
}

type surveyResponse struct {
	PublicID  string            `json:"public_id"`
	Topic     string            `json:"topic"`
	Questions []domain.Question `json:"questions"`
}

type answerRequest struct {
	Answers      []string `json:"answers"`
	RespondentID string   `json:"respondent_id,omitempty"`
}

type answerResult struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func (h *SurveyHandler) getSurvey(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	survey, err := h.backend.FetchSurvey(r.Context(), publicID)
	if errors.Is(err, domain.ErrSurveyNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": domain.ErrSurveyNotFound.Error()})
		return
	}
	if err != nil {
		h.logger.Error("fetch survey", zap.String("public_id", publicID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
		return
	}

	writeJSON(w, http.StatusOK, surveyResponse{
		PublicID:  survey.PublicID,
		Topic:     survey.Topic,
		Questions: survey.Questions,
	})
}

func (h *SurveyHandler) postAnswer(w http.ResponseWriter, r *http.Request) {
	publicID := chi.URLParam(r, "publicID")

	var req answerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid payload"})
		return
	}

	err := h.backend.SubmitAnswers(r.Context(), domain.SurveyResponse{
		SurveyPublicID: publicID,
		RespondentID:   req.RespondentID,
		Answers:        req.Answers,
	})
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, answerResult{OK: true})
	case errors.Is(err, domain.ErrSurveyNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"message": domain.ErrSurveyNotFound.Error()})
	default:
		if rej, ok := domain.AsRejection(err); ok {
			// Accepted at the HTTP level, declined semantically.
			writeJSON(w, http.StatusOK, answerResult{OK: false, Message: rej.Message})
			return
		}
		h.logger.Error("submit answers", zap.String("public_id", publicID), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
