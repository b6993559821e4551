package telegram

import (
	"context"
	"testing"
	"time"

	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

func testClient(chats ...int64) *Client {
	c := &Client{
		watched: make(map[int64]bool),
		msgs:    make(chan Message, 4),
		logger:  zerolog.Nop(),
	}
	for _, id := range chats {
		c.watched[id] = true
	}
	return c
}

func drain(t *testing.T, c *Client) []Message {
	t.Helper()
	var out []Message
	for {
		select {
		case m := <-c.msgs:
			out = append(out, m)
		default:
			return out
		}
	}
}

func TestHandleUpdateGroupMessage(t *testing.T) {
	c := testClient(-100123)
	c.handleUpdate(context.Background(), nil, &models.Update{
		Message: &models.Message{
			Text: "Senior Python Engineer, remote",
			Date: 1748779200,
			Chat: models.Chat{ID: -100123, Title: "Jobs Channel", Type: "supergroup"},
		},
	})
	got := drain(t, c)
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	m := got[0]
	if m.ChatID != -100123 || m.Chat != "Jobs Channel" || m.Text != "Senior Python Engineer, remote" {
		t.Fatalf("unexpected message: %+v", m)
	}
	if m.Time != time.Unix(1748779200, 0) {
		t.Fatalf("unexpected time: %v", m.Time)
	}
}

func TestHandleUpdateChannelPost(t *testing.T) {
	c := testClient(-100123)
	c.handleUpdate(context.Background(), nil, &models.Update{
		ChannelPost: &models.Message{
			Text: "new posting",
			Chat: models.Chat{ID: -100123, Title: "Jobs Channel", Type: "channel"},
		},
	})
	if got := drain(t, c); len(got) != 1 {
		t.Fatalf("channel posts must be consumed, got %d messages", len(got))
	}
}

func TestHandleUpdateUnwatchedChatDropped(t *testing.T) {
	c := testClient(-100123)
	c.handleUpdate(context.Background(), nil, &models.Update{
		Message: &models.Message{
			Text: "noise",
			Chat: models.Chat{ID: -999, Title: "Other"},
		},
	})
	if got := drain(t, c); len(got) != 0 {
		t.Fatalf("unwatched chats must be dropped, got %v", got)
	}
}

func TestHandleUpdateCaptionFallback(t *testing.T) {
	c := testClient(-100123)
	c.handleUpdate(context.Background(), nil, &models.Update{
		Message: &models.Message{
			Caption: "photo of the job board",
			Chat:    models.Chat{ID: -100123, Title: "Jobs Channel"},
		},
	})
	got := drain(t, c)
	if len(got) != 1 || got[0].Text != "photo of the job board" {
		t.Fatalf("caption must stand in for text, got %v", got)
	}
}

func TestHandleUpdateNonTextDropped(t *testing.T) {
	c := testClient(-100123)
	c.handleUpdate(context.Background(), nil, &models.Update{
		Message: &models.Message{
			Chat: models.Chat{ID: -100123},
		},
	})
	c.handleUpdate(context.Background(), nil, &models.Update{})
	if got := drain(t, c); len(got) != 0 {
		t.Fatalf("messages without text must be dropped, got %v", got)
	}
}

func TestChatName(t *testing.T) {
	tests := []struct {
		name string
		chat models.Chat
		want string
	}{
		{"title wins", models.Chat{ID: 1, Title: "Jobs", Username: "jobs"}, "Jobs"},
		{"username fallback", models.Chat{ID: 1, Username: "someone"}, "@someone"},
		{"full name fallback", models.Chat{ID: 1, FirstName: "Ada", LastName: "L"}, "Ada L"},
		{"first name only", models.Chat{ID: 1, FirstName: "Ada"}, "Ada"},
		{"id as last resort", models.Chat{ID: -42}, "-42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := chatName(tt.chat); got != tt.want {
				t.Errorf("chatName = %q, want %q", got, tt.want)
			}
		})
	}
}
