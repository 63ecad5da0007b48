package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/store"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	ID         string `json:"id"`
	ProfileURL string `json:"profile_url"`
}

// Register handles user registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	name := sanitizeName(req.Name)
	if name == "" {
		h.Error(w, http.StatusBadRequest, "name is required")
		return
	}

	if len(req.Password) < 8 {
		h.Error(w, http.StatusBadRequest, "password must be at least 8 characters")
		return
	}

	// Check if email already registered
	existing, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to hash password")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email, name, string(hash))
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	metrics.UsersRegistered.Inc()

	h.JSON(w, http.StatusCreated, RegisterResponse{
		ID:         user.ID.String(),
		ProfileURL: fmt.Sprintf("/users/%s", user.ID.String()),
	})
}

// UserResponse represents the user profile response.
type UserResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	JoinedAt string `json:"joined_at"`
}

// GetUser handles user profile lookup.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	user, err := h.db.GetUserByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	h.JSON(w, http.StatusOK, UserResponse{
		ID:       user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		JoinedAt: user.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}

// UserChatInfo represents a chat in the user chat list response.
type UserChatInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Agenda       string `json:"agenda"`
	MessageCount int64  `json:"message_count"`
	LastActive   string `json:"last_active"`
}

// UserChatsResponse represents the user chat list response.
type UserChatsResponse struct {
	Chats []UserChatInfo `json:"chats"`
	Total int            `json:"total"`
}

// GetUserChats handles listing the chats a user participates in.
func (h *Handler) GetUserChats(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid user ID format")
		return
	}

	if _, err := h.db.GetUserByID(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "user not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	chats, err := h.db.ListUserChats(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	infos := make([]UserChatInfo, len(chats))
	for i, chat := range chats {
		infos[i] = UserChatInfo{
			ID:           chat.ID.String(),
			Name:         chat.Name,
			Agenda:       chat.Agenda,
			MessageCount: chat.MessageCount,
			LastActive:   chat.LastActiveAt.Format("2006-01-02T15:04:05Z"),
		}
	}

	h.JSON(w, http.StatusOK, UserChatsResponse{Chats: infos, Total: len(infos)})
}
