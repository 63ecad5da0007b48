package store

import "errors"

var (
	// ErrNotFound is returned when a chat or user does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNotParticipant is returned when a sender is not a member of the
	// chat they are writing to.
	ErrNotParticipant = errors.New("not a participant")

	// ErrChatExists is returned when a chat id collides on create.
	ErrChatExists = errors.New("chat already exists")

	// ErrAlreadyParticipant is returned when joining a chat twice.
	ErrAlreadyParticipant = errors.New("already a participant")
)
