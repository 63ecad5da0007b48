package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/nithinag10/gatherly/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when no DATABASE_URL is configured.
type SQLiteStore struct {
	db       *sql.DB
	systemID string
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/gatherly.db"
func NewSQLiteStore(ctx context.Context, dbPath, systemID string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/gatherly.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db, systemID: systemID}

	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS chats (
		id TEXT PRIMARY KEY,
		admin_id TEXT NOT NULL,
		name TEXT NOT NULL,
		agenda TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_active_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		message_count INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS chat_participants (
		chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		user_id TEXT NOT NULL,
		joined_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (chat_id, user_id)
	);

	CREATE TABLE IF NOT EXISTS messages (
		id TEXT PRIMARY KEY,
		chat_id TEXT NOT NULL REFERENCES chats(id) ON DELETE CASCADE,
		sender_id TEXT NOT NULL,
		content TEXT NOT NULL,
		ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);
	CREATE INDEX IF NOT EXISTS idx_participants_user ON chat_participants(user_id);
	CREATE INDEX IF NOT EXISTS idx_messages_chat_ts ON messages(chat_id, ts);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func isSQLiteUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	id := uuid.New()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id.String(), email, name, passwordHash, now)
	if err != nil {
		return nil, err
	}

	return &models.User{ID: id, Email: email, Name: name, PasswordHash: passwordHash, CreatedAt: now}, nil
}

func (s *SQLiteStore) scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := row.Scan(&idStr, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	user.ID, err = uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by ID.
func (s *SQLiteStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at FROM users WHERE id = ?
	`, id.String()))
}

// GetUserByEmail retrieves a user by email.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, name, password_hash, created_at FROM users WHERE email = ?
	`, email))
}

// CreateChat creates a new chat with the admin as its first participant.
func (s *SQLiteStore) CreateChat(ctx context.Context, id, adminID uuid.UUID, name, agenda string) (*models.Chat, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO chats (id, admin_id, name, agenda, created_at, last_active_at, message_count)
		VALUES (?, ?, ?, ?, ?, ?, 0)
	`, id.String(), adminID.String(), name, agenda, now, now)
	if err != nil {
		if isSQLiteUniqueViolation(err) {
			return nil, ErrChatExists
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO chat_participants (chat_id, user_id, joined_at) VALUES (?, ?, ?)
	`, id.String(), adminID.String(), now)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &models.Chat{
		ID:           id,
		AdminID:      adminID,
		Name:         name,
		Agenda:       agenda,
		Participants: []uuid.UUID{adminID},
		CreatedAt:    now,
		LastActiveAt: now,
	}, nil
}

// GetChat retrieves a chat and its participant list.
func (s *SQLiteStore) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	chat := &models.Chat{}
	var idStr, adminStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, admin_id, name, agenda, created_at, last_active_at, message_count
		FROM chats WHERE id = ?
	`, id.String()).Scan(
		&idStr,
		&adminStr,
		&chat.Name,
		&chat.Agenda,
		&chat.CreatedAt,
		&chat.LastActiveAt,
		&chat.MessageCount,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if chat.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if chat.AdminID, err = uuid.Parse(adminStr); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT user_id FROM chat_participants WHERE chat_id = ? ORDER BY joined_at
	`, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var userStr string
		if err := rows.Scan(&userStr); err != nil {
			return nil, err
		}
		userID, err := uuid.Parse(userStr)
		if err != nil {
			return nil, err
		}
		chat.Participants = append(chat.Participants, userID)
	}
	return chat, rows.Err()
}

// DeleteChat deletes a chat; participants and messages cascade.
func (s *SQLiteStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM chats WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListUserChats returns all chats the user participates in, most recently
// active first.
func (s *SQLiteStore) ListUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.admin_id, c.name, c.agenda, c.created_at, c.last_active_at, c.message_count
		FROM chats c
		JOIN chat_participants cp ON c.id = cp.chat_id
		WHERE cp.user_id = ?
		ORDER BY c.last_active_at DESC
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chats []models.Chat
	for rows.Next() {
		var chat models.Chat
		var idStr, adminStr string
		err := rows.Scan(&idStr, &adminStr, &chat.Name, &chat.Agenda, &chat.CreatedAt, &chat.LastActiveAt, &chat.MessageCount)
		if err != nil {
			return nil, err
		}
		if chat.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		if chat.AdminID, err = uuid.Parse(adminStr); err != nil {
			return nil, err
		}
		chats = append(chats, chat)
	}
	return chats, rows.Err()
}

// AddParticipant adds a user to a chat.
func (s *SQLiteStore) AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	var exists int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, chatID.String()).Scan(&exists)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO chat_participants (chat_id, user_id) VALUES (?, ?)
	`, chatID.String(), userID.String())
	if isSQLiteUniqueViolation(err) {
		return ErrAlreadyParticipant
	}
	return err
}

// RemoveParticipant removes a user from a chat.
func (s *SQLiteStore) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM chat_participants WHERE chat_id = ? AND user_id = ?
	`, chatID.String(), userID.String())
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotParticipant
	}
	return nil
}

// IsParticipant checks if a user is a participant in a chat.
func (s *SQLiteStore) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `
		SELECT 1 FROM chat_participants WHERE chat_id = ? AND user_id = ?
	`, chatID.String(), userID.String()).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// AppendMessage stores a message and bumps the chat's message count in one
// transaction. Senders other than the configured system identity must be
// participants.
func (s *SQLiteStore) AppendMessage(ctx context.Context, chatID uuid.UUID, senderID, content string) (*models.Message, int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, chatID.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrNotFound
		}
		return nil, 0, err
	}

	if senderID != s.systemID {
		err = tx.QueryRowContext(ctx, `
			SELECT 1 FROM chat_participants WHERE chat_id = ? AND user_id = ?
		`, chatID.String(), senderID).Scan(&one)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, 0, ErrNotParticipant
			}
			return nil, 0, err
		}
	}

	msg := &models.Message{
		ID:        ulid.Make().String(),
		ChatID:    chatID.String(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: time.Now().UnixMilli(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO messages (id, chat_id, sender_id, content, ts)
		VALUES (?, ?, ?, ?, ?)
	`, msg.ID, msg.ChatID, msg.SenderID, msg.Content, msg.Timestamp)
	if err != nil {
		return nil, 0, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE chats
		SET message_count = message_count + 1, last_active_at = CURRENT_TIMESTAMP
		WHERE id = ?
	`, chatID.String())
	if err != nil {
		return nil, 0, err
	}

	var count int64
	err = tx.QueryRowContext(ctx, `
		SELECT message_count FROM chats WHERE id = ?
	`, chatID.String()).Scan(&count)
	if err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return msg, count, nil
}

// ListMessages returns a chat's messages oldest-first with sender names
// resolved. limit <= 0 returns the full history.
func (s *SQLiteStore) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM chats WHERE id = ?`, chatID.String()).Scan(&one)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	query := `
		SELECT m.id, m.chat_id, m.sender_id, COALESCE(u.name, m.sender_id), m.content, m.ts
		FROM messages m
		LEFT JOIN users u ON m.sender_id = u.id
		WHERE m.chat_id = ?
		ORDER BY m.ts, m.id`
	args := []any{chatID.String()}
	if limit > 0 {
		query = `
			SELECT id, chat_id, sender_id, sender_name, content, ts FROM (
				SELECT m.id, m.chat_id, m.sender_id, COALESCE(u.name, m.sender_id) AS sender_name, m.content, m.ts
				FROM messages m
				LEFT JOIN users u ON m.sender_id = u.id
				WHERE m.chat_id = ?
				ORDER BY m.ts DESC, m.id DESC
				LIMIT ?
			) ORDER BY ts, id`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
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
