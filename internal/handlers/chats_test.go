package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/store/storetest"
	"github.com/nithinag10/gatherly/internal/topic"
)

const testSystemID = "system"

// fakeLLM is a canned llm.Client for handler tests.
type fakeLLM struct {
	calls    int
	response string
	err      error
}

func (f *fakeLLM) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

// newTestServer wires a Handler onto a chi router backed by the in-memory
// store, mirroring the route layout of the real router.
func newTestServer(t *testing.T, db *storetest.Store, model *fakeLLM) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	validator := topic.NewValidator(db, model, topic.DefaultWindowSize, logger)
	summarizer := topic.NewSummarizer(db, model, logger)
	trigger := topic.NewTrigger(db, validator, testSystemID, topic.DefaultTriggerInterval, logger)
	h := NewHandler(db, nil, validator, summarizer, trigger, logger)

	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Get("/users/{id}", h.GetUser)
	r.Get("/users/{id}/chats", h.GetUserChats)
	r.Post("/chats", h.CreateChat)
	r.Get("/chats/{id}", h.GetChat)
	r.Delete("/chats/{id}", h.DeleteChat)
	r.Post("/chats/{id}/join", h.JoinChat)
	r.Post("/chats/{id}/leave", h.LeaveChat)
	r.Get("/chats/{id}/messages", h.GetMessages)
	r.Post("/chats/{id}/messages", h.PostMessage)
	r.Get("/chats/{id}/summary", h.GetSummary)
	r.Get("/chats/{id}/validate", h.Validate)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var decoded map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatal(err)
	}
	return resp, decoded
}

func seedChat(t *testing.T, db *storetest.Store, agenda string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	admin := db.AddUser("alice")
	chatID := uuid.New()
	if _, err := db.CreateChat(context.Background(), chatID, admin, "weekend-trip", agenda); err != nil {
		t.Fatal(err)
	}
	return chatID, admin
}

func TestCreateChatAndFetch(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{response: "Is_On_Topic: Yes"})
	admin := db.AddUser("alice")

	resp, body := doJSON(t, http.MethodPost, srv.URL+"/chats", map[string]string{
		"creator_id": admin.String(),
		"name":       "weekend-trip",
		"agenda":     "plan a weekend trip",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, body = %v", resp.StatusCode, body)
	}
	if body["admin_id"] != admin.String() {
		t.Fatalf("creator must become admin, got %v", body["admin_id"])
	}

	chatID := body["id"].(string)
	resp, body = doJSON(t, http.MethodGet, srv.URL+"/chats/"+chatID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["agenda"] != "plan a weekend trip" {
		t.Fatalf("agenda = %v", body["agenda"])
	}
	participants := body["participants"].([]interface{})
	if len(participants) != 1 || participants[0] != admin.String() {
		t.Fatalf("creator must be the first participant, got %v", participants)
	}
}

func TestCreateChatIDCollision(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})
	admin := db.AddUser("alice")
	chatID := uuid.New().String()

	body := map[string]string{
		"id":         chatID,
		"creator_id": admin.String(),
		"name":       "weekend-trip",
		"agenda":     "plan a weekend trip",
	}
	if resp, _ := doJSON(t, http.MethodPost, srv.URL+"/chats", body); resp.StatusCode != http.StatusCreated {
		t.Fatalf("first create status = %d", resp.StatusCode)
	}
	resp, errBody := doJSON(t, http.MethodPost, srv.URL+"/chats", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate id must 409, got %d: %v", resp.StatusCode, errBody)
	}
}

func TestJoinTwiceConflicts(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})
	chatID, _ := seedChat(t, db, "plan a weekend trip")
	bob := db.AddUser("bob")

	url := fmt.Sprintf("%s/chats/%s/join", srv.URL, chatID)
	if resp, _ := doJSON(t, http.MethodPost, url, MemberRequest{UserID: bob.String()}); resp.StatusCode != http.StatusOK {
		t.Fatalf("join status = %d", resp.StatusCode)
	}
	resp, _ := doJSON(t, http.MethodPost, url, MemberRequest{UserID: bob.String()})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("second join must 409, got %d", resp.StatusCode)
	}
}

func TestAdminCannotLeave(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})
	chatID, admin := seedChat(t, db, "plan a weekend trip")

	url := fmt.Sprintf("%s/chats/%s/leave", srv.URL, chatID)
	resp, body := doJSON(t, http.MethodPost, url, MemberRequest{UserID: admin.String()})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("admin leave must 409, got %d: %v", resp.StatusCode, body)
	}

	chat, err := db.GetChat(context.Background(), chatID)
	if err != nil {
		t.Fatal(err)
	}
	if !chat.HasParticipant(admin) {
		t.Fatal("rejected leave must not mutate participants")
	}
}

func TestDeleteChatRequiresAdmin(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})
	chatID, admin := seedChat(t, db, "plan a weekend trip")
	bob := db.AddUser("bob")
	if err := db.AddParticipant(context.Background(), chatID, bob); err != nil {
		t.Fatal(err)
	}

	url := fmt.Sprintf("%s/chats/%s", srv.URL, chatID)
	resp, _ := doJSON(t, http.MethodDelete, url, MemberRequest{UserID: bob.String()})
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("non-admin delete must 403, got %d", resp.StatusCode)
	}
	if _, err := db.GetChat(context.Background(), chatID); err != nil {
		t.Fatal("chat must survive a rejected delete")
	}

	resp, _ = doJSON(t, http.MethodDelete, url, MemberRequest{UserID: admin.String()})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("admin delete status = %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, url, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("deleted chat must 404, got %d", resp.StatusCode)
	}
}

func TestGetUnknownChat(t *testing.T) {
	db := storetest.New(testSystemID)
	srv := newTestServer(t, db, &fakeLLM{})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/chats/"+uuid.New().String(), nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
