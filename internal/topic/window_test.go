package topic

import (
	"fmt"
	"strings"
	"testing"

	"github.com/nithinag10/gatherly/internal/models"
)

func msg(sender, content string) models.Message {
	return models.Message{SenderName: sender, Content: content}
}

func TestWindowEmpty(t *testing.T) {
	transcript, ok := Window(nil, 25)
	if ok {
		t.Fatal("expected ok=false for empty history")
	}
	if transcript != "" {
		t.Fatalf("expected empty transcript, got %q", transcript)
	}
}

func TestWindowRendering(t *testing.T) {
	messages := []models.Message{
		msg("alice", "where should we stay?"),
		msg("bob", "somewhere near the beach"),
	}

	transcript, ok := Window(messages, 25)
	if !ok {
		t.Fatal("expected ok=true")
	}
	want := "alice: where should we stay?\nbob: somewhere near the beach"
	if transcript != want {
		t.Fatalf("transcript mismatch:\ngot:  %q\nwant: %q", transcript, want)
	}
}

func TestWindowKeepsLastN(t *testing.T) {
	var messages []models.Message
	for i := 0; i < 40; i++ {
		messages = append(messages, msg("alice", fmt.Sprintf("message %d", i)))
	}

	transcript, ok := Window(messages, 25)
	if !ok {
		t.Fatal("expected ok=true")
	}

	lines := strings.Split(transcript, "\n")
	if len(lines) != 25 {
		t.Fatalf("expected 25 lines, got %d", len(lines))
	}
	if lines[0] != "alice: message 15" {
		t.Fatalf("expected window to start at message 15, got %q", lines[0])
	}
	if lines[24] != "alice: message 39" {
		t.Fatalf("expected window to end at message 39, got %q", lines[24])
	}
}

func TestWindowShorterThanSize(t *testing.T) {
	messages := []models.Message{msg("alice", "hi")}

	transcript, ok := Window(messages, 25)
	if !ok || transcript != "alice: hi" {
		t.Fatalf("got ok=%v transcript=%q", ok, transcript)
	}
}

func TestWindowSenderFallsBackToID(t *testing.T) {
	messages := []models.Message{{SenderID: "system", Content: "welcome back"}}

	transcript, _ := Window(messages, 25)
	if transcript != "system: welcome back" {
		t.Fatalf("expected sender id fallback, got %q", transcript)
	}
}
