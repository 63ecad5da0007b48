package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/nithinag10/gatherly/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool     *pgxpool.Pool
	systemID string
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
// systemID is the reserved sender identity allowed to write to any chat
// without being a participant.
func NewPostgresStore(ctx context.Context, databaseURL, systemID string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	return &PostgresStore{pool: pool, systemID: systemID}, nil
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// isUniqueViolation reports whether err is a unique-constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, created_at
	`, email, name, passwordHash).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *PostgresStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1
	`, id).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateChat creates a new chat with the admin as its first participant.
func (s *PostgresStore) CreateChat(ctx context.Context, id, adminID uuid.UUID, name, agenda string) (*models.Chat, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	chat := &models.Chat{}
	err = tx.QueryRow(ctx, `
		INSERT INTO chats (id, admin_id, name, agenda)
		VALUES ($1, $2, $3, $4)
		RETURNING id, admin_id, name, agenda, created_at, last_active_at, message_count
	`, id, adminID, name, agenda).Scan(
		&chat.ID,
		&chat.AdminID,
		&chat.Name,
		&chat.Agenda,
		&chat.CreatedAt,
		&chat.LastActiveAt,
		&chat.MessageCount,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrChatExists
		}
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)
	`, id, adminID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	chat.Participants = []uuid.UUID{adminID}
	return chat, nil
}

// GetChat retrieves a chat and its participant list.
func (s *PostgresStore) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat := &models.Chat{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, admin_id, name, agenda, created_at, last_active_at, message_count
		FROM chats WHERE id = $1
	`, id).Scan(
		&chat.ID,
		&chat.AdminID,
		&chat.Name,
		&chat.Agenda,
		&chat.CreatedAt,
		&chat.LastActiveAt,
		&chat.MessageCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT user_id FROM chat_participants WHERE chat_id = $1 ORDER BY joined_at
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		chat.Participants = append(chat.Participants, userID)
	}
	return chat, rows.Err()
}

// DeleteChat deletes a chat; participants and messages cascade.
func (s *PostgresStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserChats returns all chats the user participates in, most recently
// active first.
func (s *PostgresStore) ListUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT c.id, c.admin_id, c.name, c.agenda, c.created_at, c.last_active_at, c.message_count
		FROM chats c
		JOIN chat_participants cp ON c.id = cp.chat_id
		WHERE cp.user_id = $1
		ORDER BY c.last_active_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		err := rows.Scan(
			&chat.ID,
			&chat.AdminID,
			&chat.Name,
			&chat.Agenda,
			&chat.CreatedAt,
			&chat.LastActiveAt,
			&chat.MessageCount,
		)
		if err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// AddParticipant adds a user to a chat.
func (s *PostgresStore) AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	if _, err := s.GetChat(ctx, chatID); err != nil {
		return err
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO chat_participants (chat_id, user_id) VALUES ($1, $2)
	`, chatID, userID)
	if isUniqueViolation(err) {
		return ErrAlreadyParticipant
	}
	return err
}

// RemoveParticipant removes a user from a chat.
func (s *PostgresStore) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM chat_participants WHERE chat_id = $1 AND user_id = $2
	`, chatID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotParticipant
	}
	return nil
}

// IsParticipant checks if a user is a participant in a chat.
func (s *PostgresStore) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `
		SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id = $1 AND user_id = $2)
	`, chatID, userID).Scan(&exists)
	return exists, err
}

// AppendMessage stores a message and bumps the chat's message count in one
// transaction. Senders other than the configured system identity must be
// participants.
func (s *PostgresStore) AppendMessage(ctx context.Context, chatID uuid.UUID, senderID, content string) (*models.Message, int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1)`, chatID).Scan(&exists); err != nil {
		return nil, 0, err
	}
	if !exists {
		return nil, 0, ErrNotFound
	}

	if senderID != s.systemID {
		var member bool
		err := tx.QueryRow(ctx, `
			SELECT EXISTS(SELECT 1 FROM chat_participants WHERE chat_id = $1 AND user_id = $2::uuid)
		`, chatID, senderID).Scan(&member)
		if err != nil {
			return nil, 0, err
		}
		if !member {
			return nil, 0, ErrNotParticipant
		}
	}

	msg := &models.Message{
		ID:        ulid.Make().String(),
		ChatID:    chatID.String(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, content, ts)
		VALUES ($1, $2, $3, $4, $5)
	`, msg.ID, chatID, msg.SenderID, msg.Content, msg.Timestamp)
	if err != nil {
		return nil, 0, err
	}

	var count int64
	err = tx.QueryRow(ctx, `
		UPDATE chats
		SET message_count = message_count + 1, last_active_at = NOW()
		WHERE id = $1
		RETURNING message_count
	`, chatID).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, 0, err
	}
	return msg, count, nil
}

// ListMessages returns a chat's messages oldest-first with sender names
// resolved. limit <= 0 returns the full history.
func (s *PostgresStore) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM chats WHERE id = $1)`, chatID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotFound
	}

	query := `
		SELECT m.id, m.chat_id, m.sender_id, COALESCE(u.name, m.sender_id), m.content, m.ts
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id::text
		WHERE m.chat_id = $1
		ORDER BY m.ts, m.id`
	args := []any{chatID}
	if limit > 0 {
		// Most recent limit messages, still returned oldest-first.
		query = `
			SELECT id, chat_id, sender_id, sender_name, content, ts FROM (
				SELECT m.id, m.chat_id, m.sender_id, COALESCE(u.name, m.sender_id) AS sender_name, m.content, m.ts
				FROM messages m
				LEFT JOIN users u ON m.sender_id = u.id::text
				WHERE m.chat_id = $1
				ORDER BY m.ts DESC, m.id DESC
				LIMIT $2
			) recent ORDER BY ts, id`
		args = append(args, limit)
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var msg models.Message
		err := rows.Scan(&msg.ID, &msg.ChatID, &msg.SenderID, &msg.SenderName, &msg.Content, &msg.Timestamp)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}
