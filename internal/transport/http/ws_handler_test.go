package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"survey-response-service/internal/app"
	"survey-response-service/internal/domain"
	"survey-response-service/internal/infra/memory"
)

func newWSServer(t *testing.T) (*httptest.Server, *memory.ResponseStore) {
	t.Helper()
	loader := memory.NewStaticSurveyLoader(map[string]domain.Survey{
		"pub-1": sampleSurvey(),
	})
	store := memory.NewResponseStore()
	service := app.NewSurveyService(memory.NewSurveyRepository(loader, time.Minute), store)
	wsHandler := NewWSHandler(service, zap.NewNop())

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", wsHandler.ServeWS)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, store
}

func dialWS(t *testing.T, server *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + server.URL[len("http"):] + "/ws?" + query
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestWebSocketChatFlow(t *testing.T) {
	server, store := newWSServer(t)
	conn := dialWS(t, server, "surveyId=pub-1&respondentId=r1")

	if typ, _ := readNext(conn, t, ""); typ != "survey" {
		t.Fatalf("expected survey first, got %s", typ)
	}
	typ, payload := readNext(conn, t, "question")
	if payload["index"].(float64) != 0 {
		t.Fatalf("expected question 0, got %v (%s)", payload, typ)
	}

	sendAnswer(conn, t, "4")
	_, payload = readNext(conn, t, "question")
	if payload["index"].(float64) != 1 {
		t.Fatalf("expected question 1, got %v", payload)
	}

	sendAnswer(conn, t, "More shortcuts")
	if typ, _ := readNext(conn, t, ""); typ != "completed" {
		t.Fatalf("expected completed, got %s", typ)
	}

	saved := store.Responses("pub-1")
	if len(saved) != 1 {
		t.Fatalf("expected stored response, got %d", len(saved))
	}
	if saved[0].Answers[0] != "4" || saved[0].Answers[1] != "More shortcuts" {
		t.Fatalf("answers misaligned: %v", saved[0].Answers)
	}
}

func TestWebSocketBlankAnswerDoesNotAdvance(t *testing.T) {
	server, _ := newWSServer(t)
	conn := dialWS(t, server, "surveyId=pub-1")

	readNext(conn, t, "survey")
	readNext(conn, t, "question")

	sendAnswer(conn, t, "   ")
	typ, payload := readNext(conn, t, "")
	if typ != "error" {
		t.Fatalf("expected error for blank answer, got %s", typ)
	}
	if payload["message"] != domain.ErrEmptyAnswer.Error() {
		t.Fatalf("unexpected message %v", payload)
	}

	// The same question is still active.
	sendAnswer(conn, t, "3")
	_, payload = readNext(conn, t, "question")
	if payload["index"].(float64) != 1 {
		t.Fatalf("expected to advance to question 1 after valid answer, got %v", payload)
	}
}

func TestWebSocketDuplicateRespondentRejected(t *testing.T) {
	server, _ := newWSServer(t)

	first := dialWS(t, server, "surveyId=pub-1&respondentId=dup")
	readNext(first, t, "survey")
	readNext(first, t, "question")
	sendAnswer(first, t, "5")
	readNext(first, t, "question")
	sendAnswer(first, t, "nothing")
	readNext(first, t, "completed")

	second := dialWS(t, server, "surveyId=pub-1&respondentId=dup")
	readNext(second, t, "survey")
	readNext(second, t, "question")
	sendAnswer(second, t, "1")
	readNext(second, t, "question")
	sendAnswer(second, t, "everything")

	typ, payload := readNext(second, t, "")
	if typ != "rejected" || payload["message"] != domain.ErrAlreadyResponded.Error() {
		t.Fatalf("expected verbatim rejection, got %s %v", typ, payload)
	}
}

func TestWebSocketUnknownSurveyFails(t *testing.T) {
	server, _ := newWSServer(t)
	conn := dialWS(t, server, "surveyId=bad-id")

	typ, payload := readNext(conn, t, "")
	if typ != "failed" {
		t.Fatalf("expected failed, got %s", typ)
	}
	if payload["message"] != app.MsgSurveyUnavailable {
		t.Fatalf("unexpected message %v", payload)
	}
}

func sendAnswer(conn *websocket.Conn, t *testing.T, text string) {
	t.Helper()
	msg := map[string]any{
		"type":    "answer",
		"payload": map[string]any{"text": text},
	}
	if err := conn.WriteJSON(msg); err != nil {
		t.Fatalf("write answer: %v", err)
	}
}

func readNext(conn *websocket.Conn, t *testing.T, expect string) (string, map[string]any) {
	t.Helper()
	var msg struct {
		Type    string         `json:"type"`
		Payload map[string]any `json:"payload"`
	}
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read json: %v", err)
	}
	if expect != "" && msg.Type != expect {
		t.Fatalf("expected type %s, got %s", expect, msg.Type)
	}
	return msg.Type, msg.Payload
}
