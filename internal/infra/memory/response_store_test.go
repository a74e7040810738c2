package memory

import (
	"context"
	"errors"
	"testing"

	"survey-response-service/internal/domain"
)

func TestResponseStoreDuplicateRespondent(t *testing.T) {
	store := NewResponseStore()
	ctx := context.Background()

	response := domain.SurveyResponse{SurveyPublicID: "pub-1", RespondentID: "r1", Answers: []string{"a"}}
	if err := store.SaveResponse(ctx, response); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.SaveResponse(ctx, response); !errors.Is(err, domain.ErrAlreadyResponded) {
		t.Fatalf("expected duplicate rejection, got %v", err)
	}
	if got := store.Responses("pub-1"); len(got) != 1 {
		t.Fatalf("expected one stored response, got %d", len(got))
	}
}

func TestResponseStoreAnonymousRespondents(t *testing.T) {
	store := NewResponseStore()
	ctx := context.Background()

	// Anonymous responses cannot be deduplicated and are all kept.
	for i := 0; i < 3; i++ {
		if err := store.SaveResponse(ctx, domain.SurveyResponse{SurveyPublicID: "pub-1", Answers: []string{"x"}}); err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if got := store.Responses("pub-1"); len(got) != 3 {
		t.Fatalf("expected three responses, got %d", len(got))
	}
}
