package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"survey-response-service/internal/app"
	"survey-response-service/internal/domain"
)

// WSHandler runs the chat-style respondent flow over a websocket: the
// server drives a ResponseSession, sending one question at a time and
// reading one answer per question. The session lives and dies with the
// connection; closing mid-survey abandons it.
type WSHandler struct {
	backend  app.SurveyBackend
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(backend app.SurveyBackend, logger *zap.Logger) *WSHandler {
	return &WSHandler{
		backend: backend,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type answerPayload struct {
	Text string `json:"text"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type surveyPayload struct {
	Topic string `json:"topic"`
	Total int    `json:"total"`
}

type questionPayload struct {
	Index    int             `json:"index"`
	Total    int             `json:"total"`
	Question domain.Question `json:"question"`
}

type statusPayload struct {
	Message string `json:"message,omitempty"`
}

// ServeWS upgrades the request and walks the respondent through the
// survey identified by the surveyId query parameter.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	publicID := r.URL.Query().Get("surveyId")
	respondentID := r.URL.Query().Get("respondentId")
	if publicID == "" {
		http.Error(w, "missing surveyId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("ws upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	session := app.NewResponseSession(h.backend, publicID, respondentID)
	step, err := session.Start(r.Context())
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "failed", Payload: statusPayload{Message: step.Message}})
		return
	}

	_ = conn.WriteJSON(outboundMessage[surveyPayload]{Type: "survey", Payload: surveyPayload{
		Topic: session.Survey().Topic,
		Total: step.Total,
	}})
	h.sendQuestion(conn, step)

	// Single reader loop; the session is owned by this goroutine.
	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			return
		}

		switch inbound.Type {
		case "answer":
			var payload answerPayload
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				h.sendError(conn, "invalid answer payload")
				continue
			}
			step, err := session.SubmitAnswer(r.Context(), payload.Text)
			if done := h.dispatch(conn, step, err); done {
				return
			}
		case "retry":
			step, err := session.Retry(r.Context())
			if done := h.dispatch(conn, step, err); done {
				return
			}
		default:
			h.sendError(conn, "unsupported message type")
		}
	}
}

// dispatch translates a session step into wire messages; it reports
// whether the session reached a terminal state.
func (h *WSHandler) dispatch(conn *websocket.Conn, step app.Step, err error) bool {
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrEmptyAnswer):
		h.sendError(conn, domain.ErrEmptyAnswer.Error())
		return false
	case errors.Is(err, domain.ErrSubmitInFlight), errors.Is(err, domain.ErrSessionClosed), errors.Is(err, domain.ErrSessionNotReady):
		h.sendError(conn, err.Error())
		return false
	default:
		if step.Status == app.StatusRejected {
			_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "rejected", Payload: statusPayload{Message: step.Message}})
			return true
		}
		// Transient upload failure: answers are kept, the client may
		// retry or correct the last answer.
		h.sendError(conn, step.Message)
		return false
	}

	switch step.Status {
	case app.StatusCompleted:
		_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "completed", Payload: statusPayload{}})
		return true
	case app.StatusAwaitingAnswer:
		h.sendQuestion(conn, step)
	}
	return false
}

func (h *WSHandler) sendQuestion(conn *websocket.Conn, step app.Step) {
	if step.Question == nil {
		return
	}
	_ = conn.WriteJSON(outboundMessage[questionPayload]{Type: "question", Payload: questionPayload{
		Index:    step.Index,
		Total:    step.Total,
		Question: *step.Question,
	}})
}

func (h *WSHandler) sendError(conn *websocket.Conn, message string) {
	_ = conn.WriteJSON(outboundMessage[statusPayload]{Type: "error", Payload: statusPayload{Message: message}})
}
