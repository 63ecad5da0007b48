package storetest

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/nithinag10/gatherly/internal/store"
)

func TestIsParticipantTracksMembership(t *testing.T) {
	db := New("system")
	ctx := context.Background()
	admin := db.AddUser("alice")
	bob := db.AddUser("bob")
	chatID := uuid.New()
	if _, err := db.CreateChat(ctx, chatID, admin, "weekend-trip", "plan a weekend trip"); err != nil {
		t.Fatal(err)
	}

	ok, err := db.IsParticipant(ctx, chatID, admin)
	if err != nil || !ok {
		t.Fatalf("admin membership = %v, %v; want true", ok, err)
	}
	ok, err = db.IsParticipant(ctx, chatID, bob)
	if err != nil || ok {
		t.Fatalf("non-member = %v, %v; want false", ok, err)
	}
	ok, err = db.IsParticipant(ctx, uuid.New(), admin)
	if err != nil || ok {
		t.Fatalf("unknown chat = %v, %v; want false", ok, err)
	}

	if err := db.AddParticipant(ctx, chatID, bob); err != nil {
		t.Fatal(err)
	}
	if ok, _ = db.IsParticipant(ctx, chatID, bob); !ok {
		t.Fatal("join must be reflected in membership")
	}
	if err := db.RemoveParticipant(ctx, chatID, bob); err != nil {
		t.Fatal(err)
	}
	if ok, _ = db.IsParticipant(ctx, chatID, bob); ok {
		t.Fatal("leave must be reflected in membership")
	}
}

func TestAppendMessageHonorsMembership(t *testing.T) {
	db := New("system")
	ctx := context.Background()
	admin := db.AddUser("alice")
	outsider := db.AddUser("mallory")
	chatID := uuid.New()
	if _, err := db.CreateChat(ctx, chatID, admin, "weekend-trip", "plan a weekend trip"); err != nil {
		t.Fatal(err)
	}

	if _, _, err := db.AppendMessage(ctx, chatID, outsider.String(), "hi"); !errors.Is(err, store.ErrNotParticipant) {
		t.Fatalf("outsider append = %v, want ErrNotParticipant", err)
	}

	// The reserved system identity writes without a membership row.
	msg, count, err := db.AppendMessage(ctx, chatID, "system", "reminder")
	if err != nil {
		t.Fatal(err)
	}
	if msg.SenderID != "system" || count != 1 {
		t.Fatalf("system append = %+v count=%d", msg, count)
	}
}
