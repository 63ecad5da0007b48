package topic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store"
	"github.com/nithinag10/gatherly/internal/store/storetest"
)

func TestSummarizeUsesFullHistory(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	stub := &stubLLM{response: "The group settled on a coastal cabin for the first weekend of June."}
	summarizer := NewSummarizer(db, stub, zerolog.Nop())

	ctx := context.Background()
	// Well past the validation window: every message must still reach
	// the prompt.
	for i := 1; i <= 40; i++ {
		if _, _, err := db.AppendMessage(ctx, chatID, admin.String(), fmt.Sprintf("trip note %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	summary, err := summarizer.Summarize(ctx, chatID)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Summary != stub.response {
		t.Fatalf("summary must be the model output verbatim, got %q", summary.Summary)
	}
	if summary.MessageCount != 40 {
		t.Fatalf("message count = %d, want 40", summary.MessageCount)
	}
	if summary.ParticipantCount != 1 {
		t.Fatalf("participant count = %d, want 1", summary.ParticipantCount)
	}
	if !strings.Contains(stub.lastPrompt, "trip note 1") || !strings.Contains(stub.lastPrompt, "trip note 40") {
		t.Fatal("prompt must contain the entire history, not a window")
	}
}

func TestSummarizeEmptyChatStillCallsModel(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, _ := newChat(t, db, "plan a weekend trip")
	stub := &stubLLM{response: "No messages have been exchanged yet."}
	summarizer := NewSummarizer(db, stub, zerolog.Nop())

	summary, err := summarizer.Summarize(context.Background(), chatID)
	if err != nil {
		t.Fatal(err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected one model call, got %d", stub.calls)
	}
	if summary.Summary != stub.response {
		t.Fatalf("unexpected summary %q", summary.Summary)
	}
}

func TestSummarizeUnknownChat(t *testing.T) {
	db := storetest.New(testSystemID)
	summarizer := NewSummarizer(db, &stubLLM{}, zerolog.Nop())

	_, err := summarizer.Summarize(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSummarizeUpstreamFailure(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "hello"); err != nil {
		t.Fatal(err)
	}
	summarizer := NewSummarizer(db, &stubLLM{err: llm.ErrUnavailable}, zerolog.Nop())

	_, err := summarizer.Summarize(context.Background(), chatID)
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}
