package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/store"
	"github.com/nithinag10/gatherly/internal/topic"
)

// MessageResponse represents a message in API responses.
type MessageResponse struct {
	ID         string `json:"id"`
	SenderID   string `json:"sender_id"`
	SenderName string `json:"sender_name,omitempty"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"ts"`
}

// ChatMessagesResponse represents the get messages response.
type ChatMessagesResponse struct {
	ChatID   string            `json:"chat_id"`
	Messages []MessageResponse `json:"messages"`
}

// GetMessages handles fetching recent messages from a chat.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}
	if limit > 200 {
		limit = 200
	}

	messages, err := h.db.ListMessages(r.Context(), chatID, limit)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "chat not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to fetch messages")
		return
	}

	msgResponses := make([]MessageResponse, len(messages))
	for i, msg := range messages {
		msgResponses[i] = MessageResponse{
			ID:         msg.ID,
			SenderID:   msg.SenderID,
			SenderName: msg.SenderName,
			Content:    msg.Content,
			Timestamp:  msg.Timestamp,
		}
	}

	h.JSON(w, http.StatusOK, ChatMessagesResponse{
		ChatID:   chatID.String(),
		Messages: msgResponses,
	})
}

// PostMessageRequest represents the post message request.
type PostMessageRequest struct {
	UserID  string `json:"user_id"`
	Content string `json:"content"`
}

// PostMessageResponse represents the post message response. Validation
// describes what the drift trigger did after the append; its errors are
// informational and never mean the message failed to send.
type PostMessageResponse struct {
	ID         string       `json:"id"`
	Timestamp  int64        `json:"ts"`
	Validation topic.Result `json:"validation"`
}

// PostMessage handles sending a message to a chat. The sender must be a
// participant. After a successful append the drift trigger runs; on an
// off-topic verdict it posts a system reminder into the same chat.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if _, err := uuid.Parse(req.UserID); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user_id format")
		return
	}

	if req.Content == "" {
		h.Error(w, http.StatusBadRequest, "content is required")
		return
	}
	if len(req.Content) > 4096 {
		h.Error(w, http.StatusUnprocessableEntity, "content too long (max 4096 bytes)")
		return
	}

	msg, count, err := h.db.AppendMessage(r.Context(), chatID, req.UserID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, store.ErrNotParticipant):
			h.Error(w, http.StatusForbidden, "user is not a participant in this chat")
		default:
			h.Error(w, http.StatusInternalServerError, "failed to store message")
		}
		return
	}

	metrics.MessagesPosted.WithLabelValues("user").Inc()
	if h.redis != nil {
		h.redis.InvalidateSummary(r.Context(), chatID.String())
	}

	validation := h.trigger.AfterMessage(r.Context(), chatID, count)
	if validation.Intervened {
		metrics.MessagesPosted.WithLabelValues("system").Inc()
	}

	h.JSON(w, http.StatusCreated, PostMessageResponse{
		ID:         msg.ID,
		Timestamp:  msg.Timestamp,
		Validation: validation,
	})
}
