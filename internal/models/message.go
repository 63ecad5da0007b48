package models

// Message represents a single chat message. Messages are immutable once
// stored; they disappear only when their chat is deleted.
type Message struct {
	ID         string `json:"id"` // ULID
	ChatID     string `json:"chat_id"`
	SenderID   string `json:"sender_id"` // user UUID, or the reserved system identity
	SenderName string `json:"sender_name,omitempty"`
	Content    string `json:"content"`
	Timestamp  int64  `json:"ts"` // Unix ms
}
