package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"survey-response-service/internal/app"
	"survey-response-service/internal/domain"
	"survey-response-service/internal/infra/memory"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	loader := memory.NewStaticSurveyLoader(map[string]domain.Survey{
		"pub-1": sampleSurvey(),
	})
	service := app.NewSurveyService(memory.NewSurveyRepository(loader, time.Minute), memory.NewResponseStore())

	r := chi.NewRouter()
	NewSurveyHandler(service, zap.NewNop()).Register(r)
	server := httptest.NewServer(r)
	t.Cleanup(server.Close)
	return server
}

func TestGetSurvey(t *testing.T) {
	server := newTestServer(t)

	res, err := http.Get(server.URL + "/surveys/s/pub-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}

	var payload struct {
		PublicID  string            `json:"public_id"`
		Topic     string            `json:"topic"`
		Questions []domain.Question `json:"questions"`
	}
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload.PublicID != "pub-1" || payload.Topic != "App feedback" || len(payload.Questions) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
}

func TestGetSurveyNotFound(t *testing.T) {
	server := newTestServer(t)

	res, err := http.Get(server.URL + "/surveys/s/bad-id")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", res.StatusCode)
	}
}

func TestPostAnswer(t *testing.T) {
	server := newTestServer(t)

	res := postAnswer(t, server, "pub-1", map[string]any{
		"answers":       []string{"4", "Great"},
		"respondent_id": "r1",
	})
	if !res.OK {
		t.Fatalf("expected ok, got %+v", res)
	}
}

func TestPostAnswerDuplicate(t *testing.T) {
	server := newTestServer(t)

	body := map[string]any{"answers": []string{"4", "Great"}, "respondent_id": "r1"}
	if res := postAnswer(t, server, "pub-1", body); !res.OK {
		t.Fatalf("first submit failed: %+v", res)
	}
	res := postAnswer(t, server, "pub-1", body)
	if res.OK || res.Message != domain.ErrAlreadyResponded.Error() {
		t.Fatalf("expected business rejection, got %+v", res)
	}
}

func TestPostAnswerMisaligned(t *testing.T) {
	server := newTestServer(t)

	res := postAnswer(t, server, "pub-1", map[string]any{"answers": []string{"only one"}})
	if res.OK {
		t.Fatalf("expected rejection for misaligned vector")
	}
}

func postAnswer(t *testing.T, server *httptest.Server, publicID string, body map[string]any) answerResult {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	res, err := http.Post(server.URL+"/surveys/s/"+publicID+"/answer", "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", res.StatusCode)
	}
	var result answerResult
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return result
}

func sampleSurvey() domain.Survey {
	return domain.Survey{
		Topic: "App feedback",
		Questions: []domain.Question{
			{Type: domain.QuestionRating, Text: "Rate the app", Scale: 5},
			{Type: domain.QuestionOpenEnded, Text: "What would you change?"},
		},
	}
}
