package models

// Verdict is the outcome of a topical-alignment check. It is computed on
// demand and never persisted.
type Verdict struct {
	IsOnTopic    bool   `json:"is_on_topic"`
	Details      string `json:"validation_details"` // raw model response
	ChatName     string `json:"chat_name"`
	Agenda       string `json:"agenda"`
	MessageCount int64  `json:"message_count"`
}

// Summary is the output of a full-history summarization call. The text is
// opaque model prose returned verbatim.
type Summary struct {
	ChatID           string `json:"chat_id"`
	Summary          string `json:"summary"`
	MessageCount     int64  `json:"message_count"`
	ParticipantCount int    `json:"participant_count"`
}
