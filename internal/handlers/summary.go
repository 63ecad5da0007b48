package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/store"
)

// GetSummary handles fetching an LLM-generated summary of a chat's full
// history. Summaries are cached in Redis for a few minutes.
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	chatID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid chat ID format")
		return
	}

	if h.redis != nil {
		cached, err := h.redis.GetCachedSummary(r.Context(), chatID.String())
		if err == nil && cached != nil {
			h.JSON(w, http.StatusOK, cached)
			return
		}
	}

	summary, err := h.summarizer.Summarize(r.Context(), chatID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			h.Error(w, http.StatusNotFound, "chat not found")
		case errors.Is(err, llm.ErrUnavailable):
			h.Error(w, http.StatusBadGateway, "summary service unavailable")
		default:
			h.Error(w, http.StatusInternalServerError, "failed to generate summary")
		}
		return
	}

	if h.redis != nil {
		// Cache write failures are not worth failing the request over.
		if err := h.redis.CacheSummary(r.Context(), summary); err != nil {
			h.logger.Warn().Err(err).Str("chat_id", chatID.String()).Msg("failed to cache summary")
		}
	}

	h.JSON(w, http.StatusOK, summary)
}
