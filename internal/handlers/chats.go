package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/store"
)

// CreateChatRequest represents the chat creation request.
type CreateChatRequest struct {
	ID        string `json:"id,omitempty"` // optional client-chosen id
	CreatorID string `json:"creator_id"`
	Name      string `json:"name"`
	Agenda    string `json:"agenda"`
}

// CreateChatResponse represents the chat creation response.
type CreateChatResponse struct {
	ID      string `json:"id"`
	AdminID string `json:"admin_id"`
	Name    string `json:"name"`
	Agenda  string `json:"agenda"`
}

// CreateChat handles chat creation. The creator becomes the admin and the
// first participant.
func (h *Handler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	creatorID, err := uuid.Parse(req.CreatorID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid creator_id format")
		return
	}

	req.Name = sanitizeName(req.Name)
	if req.Name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	req.Agenda = strings.TrimSpace(req.Agenda)
	if req.Agenda == "" {
		h.Error(w, http.StatusBadRequest, "agenda is required")
		return
	}

	chatID := uuid.New()
	if req.ID != "" {
		chatID, err = uuid.Parse(req.ID)
		if err != nil {
			h.Error(w, http.StatusBadRequest, "invalid chat id format")
			return
		}
	}

	// Verify creator exists
	if _, err := h.db.GetUserByID(r.Context(), creatorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "creator not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	chat, err := h.db.CreateChat(r.Context(), chatID, creatorID, req.Name, req.Agenda)
	if err != nil {
		if errors.Is(err, store.ErrChatExists) {
			h.Error(w, http.StatusConflict, "chat ID already exists")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to create chat")
		return
	}

	metrics.ChatsCreated.Inc()

	h.JSON(w, http.StatusCreated, CreateChatResponse{
		ID:      chat.ID.String(),
		AdminID: chat.AdminID.String(),
		Name:    chat.Name,
		Agenda:  chat.Agenda,
	})
}

// ChatResponse represents the chat detail response.
type ChatResponse struct {
	ID           string   `json:"id"`
	AdminID      string   `json:"admin_id"`
	Name         string   `json:"name"`
	Agenda       string   `json:"agenda"`
	Participants []string `json:"participants"`
	MessageCount int64    `json:"message_count"`
	CreatedAt    string   `json:"created_at"`
}

// GetChat handles fetching chat details.
func (h *Handler) GetChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	chat, err := h.db.GetChat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	participants := make([]string, len(chat.Participants))
	for i, p := range chat.Participants {
		participants[i] = p.String()
	}

	h.JSON(w, http.StatusOK, ChatResponse{
		ID:           chat.ID.String(),
		AdminID:      chat.AdminID.String(),
		Name:         chat.Name,
		Agenda:       chat.Agenda,
		Participants: participants,
		MessageCount: chat.MessageCount,
		CreatedAt:    chat.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// MemberRequest carries the acting user for join/leave/delete operations.
type MemberRequest struct {
	UserID string `json:"user_id"`
}

// JoinChat handles a user joining a chat.
func (h *Handler) JoinChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user_id format")
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if err := h.db.AddParticipant(r.Context(), chatID, userID); err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, store.ErrAlreadyParticipant):
			h.Error(w, http.StatusConflict, "user is already in the chat")
		default:
			h.Error(w, http.StatusInternalServerError, "failed to add user to chat")
		}
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"message": "user joined chat"})
}

// LeaveChat handles a user leaving a chat. The admin cannot leave.
func (h *Handler) LeaveChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user_id format")
		return
	}

	chat, err := h.db.GetChat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if userID == chat.AdminID {
		h.Error(w, http.StatusConflict, "admin cannot leave the chat")
		return
	}

	if err := h.db.RemoveParticipant(r.Context(), chatID, userID); err != nil {
		if errors.Is(err, store.ErrNotParticipant) {
			h.Error(w, http.StatusNotFound, "user is not in the chat")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to remove user from chat")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"message": "user left chat"})
}

// DeleteChat handles chat deletion. Only the admin may delete a chat.
func (h *Handler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	var req MemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user_id format")
		return
	}

	chat, err := h.db.GetChat(r.Context(), chatID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if userID != chat.AdminID {
		h.Error(w, http.StatusForbidden, "only admin can delete the chat")
		return
	}

	if err := h.db.DeleteChat(r.Context(), chatID); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to delete chat")
		return
	}

	if h.redis != nil {
		h.redis.InvalidateSummary(r.Context(), chatID.String())
	}

	h.JSON(w, http.StatusOK, map[string]string{"message": "chat deleted"})
}
