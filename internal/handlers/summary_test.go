package handlers

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store/storetest"
)

func TestGetSummary(t *testing.T) {
	db := storetest.New(testSystemID)
	model := &fakeLLM{response: "The group agreed on a coastal cabin in June."}
	srv := newTestServer(t, db, model)
	chatID, admin := seedChat(t, db, "plan a weekend trip")
	bob := db.AddUser("bob")
	if err := db.AddParticipant(context.Background(), chatID, bob); err != nil {
		t.Fatal(err)
	}
	for i := 1; i <= 3; i++ {
		if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), fmt.Sprintf("note %d", i)); err != nil {
			t.Fatal(err)
		}
	}

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/summary", srv.URL, chatID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["summary"] != model.response {
		t.Fatalf("summary = %v", body["summary"])
	}
	if body["message_count"].(float64) != 3 {
		t.Fatalf("message_count = %v", body["message_count"])
	}
	if body["participant_count"].(float64) != 2 {
		t.Fatalf("participant_count = %v", body["participant_count"])
	}
}

func TestGetSummaryUnknownChat(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})

	resp, _ := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/summary", srv.URL, uuid.New()), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestGetSummaryUpstreamDown(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{err: llm.ErrUnavailable})
	chatID, _ := seedChat(t, db, "plan a weekend trip")

	resp, _ := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/summary", srv.URL, chatID), nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestValidateEndpoint(t *testing.T) {
	db := storetest.New(testSystemID)
	model := &fakeLLM{response: "Is_On_Topic: No\nAnalysis: drifted into sports"}
	srv := newTestServer(t, db, model)
	chatID, admin := seedChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "did you see the game?"); err != nil {
		t.Fatal(err)
	}

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/validate", srv.URL, chatID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d: %v", resp.StatusCode, body)
	}
	if body["is_on_topic"].(bool) {
		t.Fatal("expected an off-topic verdict")
	}
	if body["validation_details"] != model.response {
		t.Fatalf("details must be the raw model output, got %v", body["validation_details"])
	}
	if body["agenda"] != "plan a weekend trip" {
		t.Fatalf("agenda = %v", body["agenda"])
	}
}

func TestValidateEndpointSurfacesMalformedVerdict(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{response: "sure, looks fine"})
	chatID, admin := seedChat(t, db, "plan a weekend trip")
	if _, _, err := db.AppendMessage(context.Background(), chatID, admin.String(), "hello"); err != nil {
		t.Fatal(err)
	}

	resp, _ := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/validate", srv.URL, chatID), nil)
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", resp.StatusCode)
	}
}

func TestValidateEmptyChatSkipsModel(t *testing.T) {
	db := storetest.New(testSystemID)
	model := &fakeLLM{}
	srv := newTestServer(t, db, model)
	chatID, _ := seedChat(t, db, "plan a weekend trip")

	resp, body := doJSON(t, http.MethodGet, fmt.Sprintf("%s/chats/%s/validate", srv.URL, chatID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !body["is_on_topic"].(bool) {
		t.Fatal("an empty chat is vacuously on topic")
	}
	if model.calls != 0 {
		t.Fatalf("model must not be called for an empty chat, got %d calls", model.calls)
	}
}
