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

// Validator judges whether a chat's recent conversation still matches its
// agenda.
type Validator struct {
	store      store.ChatStore
	llm        llm.Client
	windowSize int
	logger     zerolog.Logger
}

// NewValidator creates a Validator. windowSize <= 0 uses
// DefaultWindowSize.
func NewValidator(chatStore store.ChatStore, client llm.Client, windowSize int, logger zerolog.Logger) *Validator {
	if windowSize <= 0 {
		windowSize = DefaultWindowSize
	}
	return &Validator{
		store:      chatStore,
		llm:        client,
		windowSize: windowSize,
		logger:     logger,
	}
}

// Validate windows the chat's recent history, asks the model whether it
// matches the agenda, and parses the verdict. A chat with no messages is
// vacuously on topic and the model is not invoked. Errors pass through
// untouched: store.ErrNotFound, llm.ErrUnavailable, ErrMalformedVerdict.
func (v *Validator) Validate(ctx context.Context, chatID uuid.UUID) (*models.Verdict, error) {
	chat, err := v.store.GetChat(ctx, chatID)
	if err != nil {
		return nil, err
	}

	messages, err := v.store.ListMessages(ctx, chatID, v.windowSize)
	if err != nil {
		return nil, err
	}

	transcript, ok := Window(messages, v.windowSize)
	if !ok {
		return &models.Verdict{
			IsOnTopic:    true,
			Details:      "no messages to validate",
			ChatName:     chat.Name,
			Agenda:       chat.Agenda,
			MessageCount: chat.MessageCount,
		}, nil
	}

	prompt := fmt.Sprintf(validationPromptTemplate, chat.Name, chat.Agenda, transcript)

	start := time.Now()
	raw, err := v.llm.Complete(ctx, prompt)
	metrics.LLMRequestDuration.WithLabelValues("validate").Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ValidationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	onTopic, err := ParseVerdict(raw)
	if err != nil {
		metrics.ValidationsTotal.WithLabelValues("error").Inc()
		v.logger.Warn().
			Str("chat_id", chatID.String()).
			Msg("model response lacked a parseable verdict")
		return nil, err
	}

	result := "off_topic"
	if onTopic {
		result = "on_topic"
	}
	metrics.ValidationsTotal.WithLabelValues(result).Inc()

	v.logger.Debug().
		Str("chat_id", chatID.String()).
		Bool("on_topic", onTopic).
		Int("window", len(messages)).
		Msg("validation completed")

	return &models.Verdict{
		IsOnTopic:    onTopic,
		Details:      raw,
		ChatName:     chat.Name,
		Agenda:       chat.Agenda,
		MessageCount: chat.MessageCount,
	}, nil
}
