package topic

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nithinag10/gatherly/internal/metrics"
	"github.com/nithinag10/gatherly/internal/models"
	"github.com/nithinag10/gatherly/internal/store"
)

// DefaultTriggerInterval is the message-count boundary at which automatic
// validation fires.
const DefaultTriggerInterval = 10

// Trigger is the message-send-path hook: after every stored message it
// checks the post-append count and, on a boundary, runs validation and
// posts a system-authored reminder when the verdict is off-topic.
//
// Reminder messages count toward the next boundary like any other
// message. That feedback is deliberate observable behavior; do not filter
// system messages out of the count without a product decision.
type Trigger struct {
	store     store.ChatStore
	validator *Validator
	systemID  string
	interval  int
	logger    zerolog.Logger
	group     singleflight.Group
}

// NewTrigger creates a Trigger. systemID is the reserved sender identity
// for reminder messages; interval <= 0 uses DefaultTriggerInterval.
func NewTrigger(chatStore store.ChatStore, validator *Validator, systemID string, interval int, logger zerolog.Logger) *Trigger {
	if interval <= 0 {
		interval = DefaultTriggerInterval
	}
	return &Trigger{
		store:     chatStore,
		validator: validator,
		systemID:  systemID,
		interval:  interval,
		logger:    logger,
	}
}

// Result reports what the post-send hook did. It is embedded in the send
// response; Error is informational and never fails the send.
type Result struct {
	Triggered  bool   `json:"triggered"`
	OnTopic    *bool  `json:"is_on_topic,omitempty"`
	Intervened bool   `json:"intervention,omitempty"`
	Error      string `json:"error,omitempty"`
}

// AfterMessage runs the boundary check against the post-append message
// count. Validator failures are swallowed into the Result so the
// triggering send never fails because the drift check did.
func (t *Trigger) AfterMessage(ctx context.Context, chatID uuid.UUID, count int64) Result {
	if count == 0 || count%int64(t.interval) != 0 {
		return Result{}
	}

	// Concurrent sends racing on one boundary collapse to a single
	// validation; the boundary key makes later boundaries distinct.
	key := fmt.Sprintf("%s:%d", chatID, count)
	v, err, _ := t.group.Do(key, func() (interface{}, error) {
		return t.validator.Validate(ctx, chatID)
	})

	res := Result{Triggered: true}
	if err != nil {
		t.logger.Warn().
			Err(err).
			Str("chat_id", chatID.String()).
			Int64("message_count", count).
			Msg("automatic validation failed")
		if errors.Is(err, ErrMalformedVerdict) {
			res.Error = "validation produced an unreadable verdict"
		} else {
			res.Error = "validation unavailable"
		}
		return res
	}

	verdict := v.(*models.Verdict)
	onTopic := verdict.IsOnTopic
	res.OnTopic = &onTopic
	if onTopic {
		return res
	}

	reminder := fmt.Sprintf(reminderTemplate, verdict.Agenda)
	if _, _, err := t.store.AppendMessage(ctx, chatID, t.systemID, reminder); err != nil {
		t.logger.Error().
			Err(err).
			Str("chat_id", chatID.String()).
			Msg("failed to post reminder message")
		res.Error = "failed to post reminder"
		return res
	}

	res.Intervened = true
	metrics.InterventionsTotal.Inc()
	t.logger.Info().
		Str("chat_id", chatID.String()).
		Int64("message_count", count).
		Msg("off-topic drift detected, reminder posted")
	return res
}

// Interval returns the configured trigger interval.
func (t *Trigger) Interval() int {
	return t.interval
}
