package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store"
	"github.com/nithinag10/gatherly/internal/topic"
)

// Validate handles an on-demand topical-alignment check. Unlike the
// automatic post-send trigger, upstream and parse failures surface to the
// caller here.
func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	verdict, err := h.validator.Validate(r.Context(), chatID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, llm.ErrUnavailable):
			h.Error(w, http.StatusBadGateway, "validation service unavailable")
		case errors.Is(err, topic.ErrMalformedVerdict):
			h.Error(w, http.StatusBadGateway, "model response lacked a parseable verdict")
		default:
			h.Error(w, http.StatusInternalServerError, "failed to validate chat")
		}
		return
	}

	h.JSON(w, http.StatusOK, verdict)
}
