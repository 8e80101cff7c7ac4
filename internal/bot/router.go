package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pmik-id/pmikbot/internal/ai"
	"github.com/pmik-id/pmikbot/internal/metrics"
)

// Options configures a Router.
type Options struct {
	// Handle is the bot's own mention token, e.g. "@pmikBot".
	Handle string
	// Format is FormatMarkdown or FormatPlain.
	Format string
	// FallbackGreeting is asked when a mention carries no question.
	FallbackGreeting string
	// TypingTimeout bounds the composing indicator call.
	TypingTimeout time.Duration
}

// Router classifies inbound chat events, asks the persona service and
// relays its answers. It holds no per-conversation state, so Dispatch is
// safe to call from many goroutines at once.
type Router struct {
	messenger Messenger
	asker     ai.Asker
	opts      Options
	texts     staticTexts
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewRouter creates a router. m may be nil.
func NewRouter(messenger Messenger, asker ai.Asker, opts Options, logger *slog.Logger, m *metrics.Metrics) *Router {
	if opts.Format == "" {
		opts.Format = FormatMarkdown
	}
	if opts.FallbackGreeting == "" {
		opts.FallbackGreeting = FallbackGreeting
	}
	if opts.TypingTimeout <= 0 {
		opts.TypingTimeout = DefaultTypingTimeout
	}

	return &Router{
		messenger: messenger,
		asker:     asker,
		opts:      opts,
		texts:     renderTexts(opts.Handle, opts.Format),
		logger:    logger,
		metrics:   m,
	}
}

type loggerKey struct{}

// log returns the event-scoped logger stored by Dispatch, if any.
func (r *Router) log(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return r.logger
}

// Dispatch routes one inbound event to its handler. A panic while handling
// the event is turned into an error reply and never escapes.
func (r *Router) Dispatch(ctx context.Context, msg InboundMessage) {
	logger := r.logger.With(
		"event_id", uuid.NewString(),
		"conversation_id", msg.ConversationID,
		"conversation_kind", msg.Kind.String())
	ctx = context.WithValue(ctx, loggerKey{}, logger)

	defer func() {
		if rec := recover(); rec != nil {
			logger.ErrorContext(ctx, "panic while handling event", "panic", rec)
			defer func() {
				if again := recover(); again != nil {
					logger.ErrorContext(ctx, "panic while sending error reply", "panic", again)
				}
			}()
			r.replyError(ctx, msg, fmt.Errorf("%v", rec))
		}
	}()

	if msg.IsCommand {
		logger.InfoContext(ctx, "received command",
			"command", msg.Command,
			"args_count", len(msg.Args))

		switch msg.Command {
		case CommandAsk:
			r.OnCommand(ctx, msg)
		case CommandStart:
			r.OnStart(ctx, msg)
		case CommandHelp:
			r.OnHelp(ctx, msg)
		default:
			r.metrics.Event(EventUnknownCommand)
			logger.InfoContext(ctx, "unknown command", "command", msg.Command)
		}
		return
	}

	logger.InfoContext(ctx, "received text", "text_length", len(msg.Text))

	if msg.Kind == Room {
		r.OnRoomText(ctx, msg)
		return
	}
	r.OnDirectText(ctx, msg)
}

// OnCommand handles the ask command. Without arguments it replies with the
// usage text and never calls the persona service.
func (r *Router) OnCommand(ctx context.Context, msg InboundMessage) {
	r.metrics.Event(EventCommand)

	if len(msg.Args) == 0 {
		r.reply(ctx, msg, r.texts.usage, r.markdown())
		return
	}

	r.ask(ctx, msg, strings.Join(msg.Args, " "))
}

// OnDirectText forwards the whole text of a direct message verbatim.
func (r *Router) OnDirectText(ctx context.Context, msg InboundMessage) {
	r.metrics.Event(EventDirectText)
	r.ask(ctx, msg, msg.Text)
}

// OnRoomText answers a room message only when it mentions the bot. Every
// occurrence of the handle is removed; an empty remainder is replaced by the
// fallback greeting.
func (r *Router) OnRoomText(ctx context.Context, msg InboundMessage) {
	question, ok := r.extractMention(msg.Text)
	if !ok {
		r.metrics.Event(EventRoomIgnored)
		return
	}
	r.metrics.Event(EventRoomText)
	r.ask(ctx, msg, question)
}

// OnStart sends the welcome text.
func (r *Router) OnStart(ctx context.Context, msg InboundMessage) {
	r.metrics.Event(EventStart)
	r.reply(ctx, msg, r.texts.welcome, r.markdown())
}

// OnHelp sends the help text.
func (r *Router) OnHelp(ctx context.Context, msg InboundMessage) {
	r.metrics.Event(EventHelp)
	r.reply(ctx, msg, r.texts.help, r.markdown())
}

func (r *Router) extractMention(text string) (string, bool) {
	if r.opts.Handle == "" || !strings.Contains(text, r.opts.Handle) {
		return "", false
	}

	question := strings.TrimSpace(strings.ReplaceAll(text, r.opts.Handle, ""))
	if question == "" {
		question = r.opts.FallbackGreeting
	}
	return question, true
}

func (r *Router) ask(ctx context.Context, msg InboundMessage, question string) {
	r.typing(ctx, msg.ConversationID)

	answer := r.asker.Ask(ctx, question)

	// Error answers go out as plain text; their messages rarely survive a
	// Markdown parser.
	r.reply(ctx, msg, answer, r.markdown() && !ai.IsErrorAnswer(answer))
}

// typing shows the composing indicator. Failures are ignored.
func (r *Router) typing(ctx context.Context, conversationID string) {
	ctx, cancel := context.WithTimeout(ctx, r.opts.TypingTimeout)
	defer cancel()

	if err := r.messenger.Typing(ctx, conversationID); err != nil {
		r.log(ctx).DebugContext(ctx, "typing indicator failed", "error", err)
	}
}

func (r *Router) markdown() bool {
	return r.opts.Format == FormatMarkdown
}

func (r *Router) newReply(msg InboundMessage, text string, markdown bool) Reply {
	reply := Reply{
		ConversationID: msg.ConversationID,
		Text:           text,
		Markdown:       markdown,
	}
	if msg.Kind == Room {
		reply.ReplyTo = msg.MessageID
	}
	return reply
}

// reply sends text back to the conversation of msg. A failed send is
// reported once as a plain error reply.
func (r *Router) reply(ctx context.Context, msg InboundMessage, text string, markdown bool) {
	err := r.messenger.Send(ctx, r.newReply(msg, text, markdown))
	r.metrics.Reply(err)
	if err == nil {
		return
	}

	r.log(ctx).ErrorContext(ctx, "failed to send reply", "error", err)
	r.replyError(ctx, msg, err)
}

func (r *Router) replyError(ctx context.Context, msg InboundMessage, cause error) {
	text := fmt.Sprintf("❌ %s: %v", ErrorReplyPrefix, cause)
	err := r.messenger.Send(ctx, r.newReply(msg, text, false))
	r.metrics.Reply(err)
	if err != nil {
		r.log(ctx).ErrorContext(ctx, "failed to send error reply", "error", err)
	}
}
