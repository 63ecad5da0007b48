// Package storetest provides an in-memory ChatStore for tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/models"
	"github.com/nithinag10/gatherly/internal/store"
)

// Store is an in-memory implementation of store.ChatStore. The zero value
// is not usable; construct with New.
type Store struct {
	mu       sync.Mutex
	systemID string
	seq      int64

	users    map[uuid.UUID]*models.User
	chats    map[uuid.UUID]*models.Chat
	messages map[uuid.UUID][]models.Message

	// AppendErr, when set, is returned by AppendMessage after the
	// normal precondition checks. It lets tests simulate store failures.
	AppendErr error
}

// New creates an empty in-memory store with the given system identity.
func New(systemID string) *Store {
	return &Store{
		systemID: systemID,
		users:    make(map[uuid.UUID]*models.User),
		chats:    make(map[uuid.UUID]*models.Chat),
		messages: make(map[uuid.UUID][]models.Message),
	}
}

func (s *Store) Close() {}

func (s *Store) Ping(ctx context.Context) error { return nil }

// AddUser seeds a user and returns its id.
func (s *Store) AddUser(name string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.users[id] = &models.User{
		ID:        id,
		Email:     name + "@example.com",
		Name:      name,
		CreatedAt: time.Now(),
	}
	return id
}

func (s *Store) CreateUser(ctx context.Context, email, name, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	return user, nil
}

func (s *Store) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return user, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, store.ErrNotFound
}

func (s *Store) CreateChat(ctx context.Context, id, adminID uuid.UUID, name, agenda string) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; ok {
		return nil, store.ErrChatExists
	}
	chat := &models.Chat{
		ID:           id,
		AdminID:      adminID,
		Name:         name,
		Agenda:       agenda,
		Participants: []uuid.UUID{adminID},
		CreatedAt:    time.Now(),
		LastActiveAt: time.Now(),
	}
	s.chats[id] = chat
	return s.copyChat(chat), nil
}

func (s *Store) copyChat(chat *models.Chat) *models.Chat {
	out := *chat
	out.Participants = append([]uuid.UUID(nil), chat.Participants...)
	return &out
}

func (s *Store) GetChat(ctx context.Context, id uuid.UUID) (*models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return s.copyChat(chat), nil
}

func (s *Store) DeleteChat(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.chats, id)
	delete(s.messages, id)
	return nil
}

func (s *Store) ListUserChats(ctx context.Context, userID uuid.UUID) ([]models.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var chats []models.Chat
	for _, chat := range s.chats {
		if chat.HasParticipant(userID) {
			chats = append(chats, *s.copyChat(chat))
		}
	}
	return chats, nil
}

func (s *Store) AddParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return store.ErrNotFound
	}
	if chat.HasParticipant(userID) {
		return store.ErrAlreadyParticipant
	}
	chat.Participants = append(chat.Participants, userID)
	return nil
}

func (s *Store) RemoveParticipant(ctx context.Context, chatID, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return store.ErrNotFound
	}
	for i, p := range chat.Participants {
		if p == userID {
			chat.Participants = append(chat.Participants[:i], chat.Participants[i+1:]...)
			return nil
		}
	}
	return store.ErrNotParticipant
}

func (s *Store) IsParticipant(ctx context.Context, chatID, userID uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return false, nil
	}
	return chat.HasParticipant(userID), nil
}

func (s *Store) AppendMessage(ctx context.Context, chatID uuid.UUID, senderID, content string) (*models.Message, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	chat, ok := s.chats[chatID]
	if !ok {
		return nil, 0, store.ErrNotFound
	}
	if senderID != s.systemID {
		userID, err := uuid.Parse(senderID)
		if err != nil || !chat.HasParticipant(userID) {
			return nil, 0, store.ErrNotParticipant
		}
	}
	if s.AppendErr != nil {
		return nil, 0, s.AppendErr
	}

	s.seq++
	msg := models.Message{
		ID:        fmt.Sprintf("msg-%06d", s.seq),
		ChatID:    chatID.String(),
		SenderID:  senderID,
		Content:   content,
		Timestamp: s.seq, // monotonic, good enough for ordering
	}
	if userID, err := uuid.Parse(senderID); err == nil {
		if user, ok := s.users[userID]; ok {
			msg.SenderName = user.Name
		}
	}
	s.messages[chatID] = append(s.messages[chatID], msg)
	chat.MessageCount++
	chat.LastActiveAt = time.Now()
	return &msg, chat.MessageCount, nil
}

func (s *Store) ListMessages(ctx context.Context, chatID uuid.UUID, limit int) ([]models.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.chats[chatID]; !ok {
		return nil, store.ErrNotFound
	}
	msgs := s.messages[chatID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return append([]models.Message(nil), msgs...), nil
}

// Messages returns the raw stored messages for assertions.
func (s *Store) Messages(chatID uuid.UUID) []models.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Message(nil), s.messages[chatID]...)
}
