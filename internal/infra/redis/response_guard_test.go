package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"

	"survey-response-service/internal/domain"
	"survey-response-service/internal/infra/memory"
)

func TestResponseGuardMarksAndRejects(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	guard := NewResponseGuard(newClient(mr), time.Minute, memory.NewResponseStore())
	ctx := context.Background()

	response := domain.SurveyResponse{SurveyPublicID: "pub-1", RespondentID: "r1", Answers: []string{"a"}}
	if err := guard.SaveResponse(ctx, response); err != nil {
		t.Fatalf("save: %v", err)
	}
	if !mr.Exists("survey:pub-1:respondent:r1") {
		t.Fatalf("expected marker key to be set")
	}

	if err := guard.SaveResponse(ctx, response); !errors.Is(err, domain.ErrAlreadyResponded) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
}

func TestResponseGuardRollsBackOnStoreFailure(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	failing := &failingStore{err: errors.New("store down")}
	guard := NewResponseGuard(newClient(mr), time.Minute, failing)

	response := domain.SurveyResponse{SurveyPublicID: "pub-1", RespondentID: "r1", Answers: []string{"a"}}
	if err := guard.SaveResponse(context.Background(), response); err == nil {
		t.Fatalf("expected store error")
	}
	if mr.Exists("survey:pub-1:respondent:r1") {
		t.Fatalf("expected marker rolled back so the respondent can retry")
	}
}

func TestResponseGuardSkipsAnonymous(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	inner := memory.NewResponseStore()
	guard := NewResponseGuard(newClient(mr), time.Minute, inner)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if err := guard.SaveResponse(ctx, domain.SurveyResponse{SurveyPublicID: "pub-1", Answers: []string{"x"}}); err != nil {
			t.Fatalf("anonymous save %d: %v", i, err)
		}
	}
	if got := inner.Responses("pub-1"); len(got) != 2 {
		t.Fatalf("expected both anonymous responses stored, got %d", len(got))
	}
}

type failingStore struct{ err error }

func (s *failingStore) SaveResponse(context.Context, domain.SurveyResponse) error { return s.err }
