package topic

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/nithinag10/gatherly/internal/llm"
	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/models"
	"github.com/nithinag10/gatherly/internal/store"
)

// Summarizer produces a free-form summary of a chat's full message
// history. Unlike validation, nothing is parsed out of the model output.
type Summarizer struct {
	store  store.ChatStore
	llm    llm.Client
	logger zerolog.Logger
}

// NewSummarizer creates a Summarizer.
func NewSummarizer(chatStore store.ChatStore, client llm.Client, logger zerolog.Logger) *Summarizer {
	return &Summarizer{store: chatStore, llm: client, logger: logger}
}

// Summarize builds a prompt from the entire history and returns the model
// output verbatim. Errors: store.ErrNotFound, llm.ErrUnavailable.
func (s *Summarizer) Summarize(ctx context.Context, chatID uuid.UUID) (*models.Summary, error) {
	chat, err := s.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := s.store.ListMessages(ctx, chatID, 0)
	if err != nil {
		return nil, err
	}

	transcript, _ := Window(messages, len(messages))
	prompt := fmt.Sprintf(summaryPromptTemplate, transcript)

	start := time.Now()
	raw, err := s.llm.Complete(ctx, prompt)
	metrics.LLMRequestDuration.WithLabelValues("summarize").Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	metrics.SummariesGenerated.Inc()
	s.logger.Debug().
		Str("chat_id", chatID.String()).
		Int64("message_count", chat.MessageCount).
		Msg("summary generated")

	return &models.Summary{
		ChatID:           chatID.String(),
		Summary:          raw,
		MessageCount:     chat.MessageCount,
		ParticipantCount: len(chat.Participants),
	}, nil
}
