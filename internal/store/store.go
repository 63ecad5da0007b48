package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/models"
)

// ChatStore defines the interface for persistent storage of users, chats,
// participants and messages. Both PostgresStore and SQLiteStore implement
// this interface.
type ChatStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Chat operations
	CreateChat(ctx context.Context, id, adminID uuid.UUID, name, agenda string) (*models.Chat, error)
	GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	DeleteChat(ctx context.Context, id uuid.UUID) error
	ListUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error)

	// Participant operations
	AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error
	RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error
	IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error)

	// AppendMessage stores a message, enforcing the participant
	// precondition for every sender except the reserved system identity.
	// It returns the chat's post-append message count so callers can do
	// trigger-boundary checks without a second read.
	AppendMessage(ctx context.Context, chatID uuid.UUID, senderID, content string) (*models.Message, int64, error)

	// ListMessages returns messages oldest-first. limit <= 0 returns the
	// full history; otherwise only the most recent limit messages.
	ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error)
}
