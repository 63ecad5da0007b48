// Package topic implements the agenda-drift detection core: conversation
// windowing, LLM-judged validation, summarization, and the post-send
// trigger that injects corrective system messages.
package topic

import (
	"strings"

	"github.com/nithinag10/gatherly/internal/models"
)

// DefaultWindowSize is the number of recent messages sampled per
// validation when no explicit window is configured.
const DefaultWindowSize = 25

// Window renders the last size messages as a transcript, one
// "sender: content" line per message, oldest first. It reports false when
// there is nothing to validate; the model must not be invoked in that
// case.
func Window(messages []models.Message, size int) (string, bool) {
	if len(messages) == 0 {
		return "", false
	}
	if size <= 0 {
		size = DefaultWindowSize
	}
	if len(messages) > size {
		messages = messages[len(messages)-size:]
	}

	var b strings.Builder
	for i, msg := range messages {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(senderLabel(msg))
		b.WriteString(": ")
		b.WriteString(msg.Content)
	}
	return b.String(), true
}

// senderLabel prefers the resolved display name and falls back to the raw
// sender id (system messages have no user row).
func senderLabel(msg models.Message) string {
	if msg.SenderName != "" {
		return msg.SenderName
	}
	return msg.SenderID
}
