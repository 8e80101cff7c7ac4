package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/pmik-id/pmikbot/internal/bot"
)

const (
	// MaxMessageLength stays below Telegram's 4096 limit.
	MaxMessageLength = 4000

	pollTimeout = 30
)

// BotAPI is the part of tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Adapter connects the router to a Telegram bot via long polling.
type Adapter struct {
	token    string
	api      BotAPI
	username string
	logger   *slog.Logger
	wg       sync.WaitGroup
}

// NewAdapter creates an adapter that logs in on Connect.
func NewAdapter(token string, logger *slog.Logger) *Adapter {
	return &Adapter{token: token, logger: logger}
}

// NewAdapterWithAPI creates an adapter around an already authenticated API.
func NewAdapterWithAPI(api BotAPI, username string, logger *slog.Logger) *Adapter {
	return &Adapter{api: api, username: username, logger: logger}
}

// Connect authenticates the token and learns the bot username.
func (a *Adapter) Connect() error {
	if a.api != nil {
		return nil
	}

	api, err := tgbotapi.NewBotAPI(a.token)
	if err != nil {
		return fmt.Errorf("telegram bot init: %w", err)
	}
	a.api = api
	a.username = api.Self.UserName

	a.logger.Info("telegram bot connected",
		"username", api.Self.UserName,
		"user_id", api.Self.ID)

	return nil
}

// Handle returns "@username", the mention token of the bot.
func (a *Adapter) Handle() string {
	if a.username == "" {
		return ""
	}
	return "@" + a.username
}

// Run polls for updates until ctx is cancelled. Each update is dispatched
// in its own goroutine; Run returns once in-flight handlers are done.
func (a *Adapter) Run(ctx context.Context, d bot.Dispatcher) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeout
	updates := a.api.GetUpdatesChan(u)

	a.logger.InfoContext(ctx, "telegram polling started")
	defer a.wg.Wait()

	for {
		select {
		case <-ctx.Done():
			a.logger.InfoContext(ctx, "telegram polling stopping")
			a.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := a.convert(update)
			if !ok {
				continue
			}
			a.wg.Add(1)
			go func() {
				defer a.wg.Done()
				d.Dispatch(context.WithoutCancel(ctx), msg)
			}()
		}
	}
}

// convert normalizes a text message. Channel posts, non-text messages and
// commands addressed to another bot are dropped.
func (a *Adapter) convert(update tgbotapi.Update) (bot.InboundMessage, bool) {
	m := update.Message
	if m == nil || m.Chat == nil || m.Text == "" {
		return bot.InboundMessage{}, false
	}

	var kind bot.ConversationKind
	switch {
	case m.Chat.IsPrivate():
		kind = bot.Direct
	case m.Chat.IsGroup(), m.Chat.IsSuperGroup():
		kind = bot.Room
	default:
		return bot.InboundMessage{}, false
	}

	msg := bot.InboundMessage{
		ConversationID: strconv.FormatInt(m.Chat.ID, 10),
		Kind:           kind,
		MessageID:      strconv.Itoa(m.MessageID),
		Text:           m.Text,
	}

	if m.IsCommand() {
		if _, to, found := strings.Cut(m.CommandWithAt(), "@"); found && !strings.EqualFold(to, a.username) {
			return bot.InboundMessage{}, false
		}
		msg.IsCommand = true
		msg.Command = m.Command()
		msg.Args = strings.Fields(m.CommandArguments())
	}

	return msg, true
}

// Send delivers a reply in chunks, linking only the first one. A Markdown
// chunk Telegram cannot parse is resent once as plain text.
func (a *Adapter) Send(ctx context.Context, reply bot.Reply) error {
	chatID, err := strconv.ParseInt(reply.ConversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", reply.ConversationID, err)
	}

	var replyTo int
	if reply.ReplyTo != "" {
		if replyTo, err = strconv.Atoi(reply.ReplyTo); err != nil {
			return fmt.Errorf("invalid message ID %q: %w", reply.ReplyTo, err)
		}
	}

	for i, chunk := range bot.SplitMessage(reply.Text, MaxMessageLength) {
		if err := ctx.Err(); err != nil {
			return err
		}

		msg := tgbotapi.NewMessage(chatID, chunk)
		if i == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if reply.Markdown {
			msg.ParseMode = tgbotapi.ModeMarkdown
		}

		if err := a.sendChunk(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (a *Adapter) sendChunk(ctx context.Context, msg tgbotapi.MessageConfig) error {
	_, err := a.api.Send(msg)
	if err == nil || msg.ParseMode == "" || !isParseError(err) {
		return err
	}

	a.logger.WarnContext(ctx, "telegram markdown parse error, retrying as plain text", "error", err)
	msg.ParseMode = ""
	_, err = a.api.Send(msg)
	return err
}

func isParseError(err error) bool {
	return strings.Contains(err.Error(), "can't parse entities")
}

// Typing sends the "typing" chat action. The call is abandoned when ctx
// expires first.
func (a *Adapter) Typing(ctx context.Context, conversationID string) error {
	chatID, err := strconv.ParseInt(conversationID, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid chat ID %q: %w", conversationID, err)
	}

	done := make(chan error, 1)
	go func() {
		_, err := a.api.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
