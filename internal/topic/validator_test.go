package topic

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store"
	"github.com/nithinag10/gatherly/internal/store/storetest"
)

// stubLLM is a call-counting Client stub, safe for concurrent callers.
type stubLLM struct {
	mu         sync.Mutex
	calls      int
	lastPrompt string
	response   string
	err        error
}

func (s *stubLLM) Complete(ctx context.Context, prompt string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

const testSystemID = "system"

// newChat seeds a store with one admin and one chat and returns both ids.
func newChat(t *testing.T, db *storetest.Store, agenda string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	admin := db.AddUser("alice")
	chatID := uuid.New()
	if _, err := db.CreateChat(context.Background(), chatID, admin, "weekend-trip", agenda); err != nil {
		t.Fatal(err)
	}
	return chatID, admin
}

func TestValidateEmptyChatSkipsModel(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, _ := newChat(t, db, "plan a weekend trip")
	stub := &stubLLM{response: "Is_On_Topic: No"}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	verdict, err := v.Validate(context.Background(), chatID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.IsOnTopic {
		t.Fatal("empty chat must be vacuously on topic")
	}
	if verdict.Details != "no messages to validate" {
		t.Fatalf("unexpected details: %q", verdict.Details)
	}
	if stub.calls != 0 {
		t.Fatalf("model must not be invoked for an empty chat, got %d calls", stub.calls)
	}
}

func TestValidateOnTopic(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "let's book the hotel"); err != nil {
		t.Fatal(err)
	}
	stub := &stubLLM{response: "Is_On_Topic: Yes\nAnalysis: trip talk"}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	verdict, err := v.Validate(context.Background(), chatID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !verdict.IsOnTopic {
		t.Fatal("expected on-topic verdict")
	}
	if verdict.Details != stub.response {
		t.Fatalf("details should carry the raw model text, got %q", verdict.Details)
	}
	if verdict.Agenda != "plan a weekend trip" || verdict.ChatName != "weekend-trip" {
		t.Fatalf("verdict snapshot wrong: %+v", verdict)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", stub.calls)
	}
}

func TestValidatePromptContainsAgendaAndTranscript(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "who booked the hotel?"); err != nil {
		t.Fatal(err)
	}
	stub := &stubLLM{response: "Is_On_Topic: Yes"}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	if _, err := v.Validate(context.Background(), chatID); err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"plan a weekend trip", "alice: who booked the hotel?", "Is_On_Topic:"} {
		if !strings.Contains(stub.lastPrompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, stub.lastPrompt)
		}
	}
}

func TestValidateOffTopic(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "did you watch the match?"); err != nil {
		t.Fatal(err)
	}
	stub := &stubLLM{response: "Is_On_Topic: No\nAnalysis: sports talk"}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	verdict, err := v.Validate(context.Background(), chatID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if verdict.IsOnTopic {
		t.Fatal("expected off-topic verdict")
	}
}

func TestValidateChatNotFound(t *testing.T) {
	db := storetest.New(testSystemID)
	v := NewValidator(db, &stubLLM{}, 25, zerolog.Nop())

	_, err := v.Validate(context.Background(), uuid.New())
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestValidateUpstreamFailure(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "hello"); err != nil {
		t.Fatal(err)
	}
	stub := &stubLLM{err: llm.ErrUnavailable}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	_, err := v.Validate(context.Background(), chatID)
	if !errors.Is(err, llm.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestValidateMalformedResponse(t *testing.T) {
	db := storetest.New(testSystemID)
	chatID, admin := newChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "hello"); err != nil {
		t.Fatal(err)
	}
	stub := &stubLLM{response: "Everything looks fine."}

	v := NewValidator(db, stub, 25, zerolog.Nop())
	_, err := v.Validate(context.Background(), chatID)
	if !errors.Is(err, ErrMalformedVerdict) {
		t.Fatalf("expected ErrMalformedVerdict, got %v", err)
	}
}
