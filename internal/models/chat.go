package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat represents a group conversation with a stated agenda.
// The admin is always a participant and cannot leave or be removed.
type Chat struct {
	ID           uuid.UUID   `json:"id"`
	AdminID      uuid.UUID   `json:"admin_id"`
	Name         string      `json:"name"`
	Agenda       string      `json:"agenda"`
	Participants []uuid.UUID `json:"participants"`
	CreatedAt    time.Time   `json:"created_at"`
	LastActiveAt time.Time   `json:"last_active_at"`
	MessageCount int64       `json:"message_count"`
}

// HasParticipant reports whether the given user is a participant.
func (c *Chat) HasParticipant(userID uuid.UUID) bool {
	for _, p := range c.Participants {
		if p == userID {
			return true
		}
	}
	return false
}
