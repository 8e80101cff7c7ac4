package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"

	"github.com/pmik-id/pmikbot/internal/bot"
)

// MaxMessageLength is Discord's per-message character limit.
const MaxMessageLength = 2000

// Adapter connects the router to a Discord bot account.
type Adapter struct {
	token   string
	session Session
	logger  *slog.Logger

	botID string

	// mu guards stopping so no handler joins wg after Run starts waiting.
	mu       sync.Mutex
	stopping bool
	wg       sync.WaitGroup
}

// NewAdapter creates an adapter that opens its own session on Connect.
func NewAdapter(token string, logger *slog.Logger) *Adapter {
	return &Adapter{token: token, logger: logger}
}

// NewAdapterWithSession creates an adapter around an existing session.
func NewAdapterWithSession(session Session, logger *slog.Logger) *Adapter {
	return &Adapter{session: session, logger: logger}
}

// Connect opens the gateway connection and learns the bot's identity.
func (a *Adapter) Connect() error {
	if a.session == nil {
		session, err := NewDiscordSession(a.token)
		if err != nil {
			return fmt.Errorf("error creating Discord session: %w", err)
		}
		a.session = session
	}

	if err := a.session.Open(); err != nil {
		return fmt.Errorf("error opening connection: %w", err)
	}

	user, err := a.session.User("@me")
	if err != nil {
		return fmt.Errorf("error obtaining account details: %w", err)
	}
	a.botID = user.ID

	a.logger.Info("discord connected",
		"username", user.Username,
		"user_id", user.ID)

	return nil
}

// Handle returns the mention token that addresses the bot in a channel.
func (a *Adapter) Handle() string {
	if a.botID == "" {
		return ""
	}
	return "<@" + a.botID + ">"
}

// Run dispatches incoming messages until ctx is cancelled, then waits for
// in-flight handlers and closes the session.
func (a *Adapter) Run(ctx context.Context, d bot.Dispatcher) error {
	remove := a.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageCreate) {
		a.handleMessageCreate(ctx, d, m)
	})

	<-ctx.Done()
	remove()

	a.mu.Lock()
	a.stopping = true
	a.mu.Unlock()
	a.wg.Wait()

	a.logger.Info("closing bot session")
	return a.session.Close()
}

func (a *Adapter) handleMessageCreate(ctx context.Context, d bot.Dispatcher, m *discordgo.MessageCreate) {
	if !a.begin() {
		return
	}
	defer a.wg.Done()

	msg, ok := a.convert(m)
	if !ok {
		return
	}
	d.Dispatch(context.WithoutCancel(ctx), msg)
}

// begin registers an in-flight handler unless Run is shutting down.
func (a *Adapter) begin() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopping {
		return false
	}
	a.wg.Add(1)
	return true
}

// convert normalizes a gateway message. Messages from bots, including this
// one, are dropped.
func (a *Adapter) convert(m *discordgo.MessageCreate) (bot.InboundMessage, bool) {
	if m == nil || m.Message == nil || m.Author == nil {
		return bot.InboundMessage{}, false
	}
	if m.Author.ID == a.botID || m.Author.Bot {
		return bot.InboundMessage{}, false
	}

	text := m.Content
	if a.botID != "" {
		text = strings.ReplaceAll(text, "<@!"+a.botID+">", a.Handle())
	}
	if strings.TrimSpace(text) == "" {
		return bot.InboundMessage{}, false
	}

	msg := bot.InboundMessage{
		ConversationID: m.ChannelID,
		Kind:           bot.Room,
		MessageID:      m.ID,
		Text:           text,
	}
	if m.GuildID == "" {
		msg.Kind = bot.Direct
	}

	if strings.HasPrefix(text, "/") {
		parts := strings.Fields(strings.TrimPrefix(text, "/"))
		if len(parts) > 0 {
			msg.IsCommand = true
			msg.Command = parts[0]
			msg.Args = parts[1:]
		}
	}

	return msg, true
}

// Send delivers a reply in chunks. Only the first chunk references the
// original message. Discord always renders its own Markdown, so the
// Markdown flag has no effect here.
func (a *Adapter) Send(ctx context.Context, reply bot.Reply) error {
	for i, chunk := range bot.SplitMessage(reply.Text, MaxMessageLength) {
		var err error
		if i == 0 && reply.ReplyTo != "" {
			ref := &discordgo.MessageReference{
				MessageID: reply.ReplyTo,
				ChannelID: reply.ConversationID,
			}
			_, err = a.session.ChannelMessageSendReply(reply.ConversationID, chunk, ref, discordgo.WithContext(ctx))
		} else {
			_, err = a.session.ChannelMessageSend(reply.ConversationID, chunk, discordgo.WithContext(ctx))
		}
		if err != nil {
			return fmt.Errorf("error sending message: %w", err)
		}
	}
	return nil
}

// Typing shows the typing indicator in the channel.
func (a *Adapter) Typing(ctx context.Context, conversationID string) error {
	return a.session.ChannelTyping(conversationID, discordgo.WithContext(ctx))
}
