// Package telegram wraps the bot API behind the small surface the watcher
// needs: a stream of messages from the watched chats, and an outbound send
// for the relay destination.
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/rs/zerolog"
)

// messageBuffer bounds the inbound stream; a full buffer backpressures the
// poller rather than dropping messages.
const messageBuffer = 64

// Message is one inbound chat message, reduced to what the watcher needs.
type Message struct {
	ChatID int64
	// Chat is the display name of the source chat.
	Chat string
	Text string
	Time time.Time
}

// Client streams messages from the watched chats over long polling and sends
// relay messages through the same connection.
type Client struct {
	bot     *bot.Bot
	watched map[int64]bool
	msgs    chan Message
	logger  zerolog.Logger
}

// New builds a Client for the given bot token, watching exactly the listed
// chats. Messages from any other chat are dropped.
func New(token string, chats []int64, logger zerolog.Logger) (*Client, error) {
	c := &Client{
		watched: make(map[int64]bool, len(chats)),
		msgs:    make(chan Message, messageBuffer),
		logger:  logger,
	}
	for _, id := range chats {
		c.watched[id] = true
	}
	b, err := bot.New(token, bot.WithDefaultHandler(c.handleUpdate))
	if err != nil {
		return nil, fmt.Errorf("creating telegram client: %w", err)
	}
	c.bot = b
	return c, nil
}

// Messages returns the inbound stream. It closes once Run returns.
func (c *Client) Messages() <-chan Message {
	return c.msgs
}

// Run long-polls for updates until ctx is cancelled, then closes the stream.
func (c *Client) Run(ctx context.Context) {
	defer close(c.msgs)
	c.logger.Info().Int("chats", len(c.watched)).Msg("telegram client listening")
	c.bot.Start(ctx)
}

// SendTo posts text into a chat; used by the relay destination.
func (c *Client) SendTo(ctx context.Context, chatID int64, text string) error {
	_, err := c.bot.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		return fmt.Errorf("sending to chat %d: %w", chatID, err)
	}
	return nil
}

// handleUpdate converts bot updates into Messages. Group messages and
// channel posts both count; captions stand in for text on media messages.
func (c *Client) handleUpdate(ctx context.Context, _ *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil {
		msg = update.ChannelPost
	}
	if msg == nil {
		return
	}
	text := msg.Text
	if text == "" {
		text = msg.Caption
	}
	if text == "" {
		return
	}
	if !c.watched[msg.Chat.ID] {
		c.logger.Debug().Int64("chat_id", msg.Chat.ID).Msg("ignoring message from unwatched chat")
		return
	}
	m := Message{
		ChatID: msg.Chat.ID,
		Chat:   chatName(msg.Chat),
		Text:   text,
		Time:   time.Unix(int64(msg.Date), 0),
	}
	select {
	case c.msgs <- m:
	case <-ctx.Done():
	}
}

// chatName derives a display name for a chat: title for groups and channels,
// username or full name for private chats, the raw ID as a last resort.
func chatName(chat models.Chat) string {
	if chat.Title != "" {
		return chat.Title
	}
	if chat.Username != "" {
		return "@" + chat.Username
	}
	if name := strings.TrimSpace(chat.FirstName + " " + chat.LastName); name != "" {
		return name
	}
	return strconv.FormatInt(chat.ID, 10)
}
