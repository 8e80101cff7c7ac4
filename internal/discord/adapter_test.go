package discord

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/pmik-id/pmikbot/internal/bot"
	"github.com/pmik-id/pmikbot/internal/logging"
)

const testBotID = "1001"

type sentMessage struct {
	channelID string
	content   string
	reference *discordgo.MessageReference
}

// mockSession implements Session for tests.
type mockSession struct {
	mu       sync.Mutex
	opened   bool
	closed   bool
	sent     []sentMessage
	typing   []string
	sendErr  error
	openErr  error
	handlers []interface{}
}

func (m *mockSession) Open() error {
	m.opened = true
	return m.openErr
}

func (m *mockSession) Close() error {
	m.closed = true
	return nil
}

func (m *mockSession) User(userID string, options ...discordgo.RequestOption) (*discordgo.User, error) {
	return &discordgo.User{ID: testBotID, Username: "pmikBot"}, nil
}

func (m *mockSession) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return m.record(sentMessage{channelID: channelID, content: content})
}

func (m *mockSession) ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	return m.record(sentMessage{channelID: channelID, content: content, reference: reference})
}

func (m *mockSession) record(msg sentMessage) (*discordgo.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return nil, m.sendErr
	}
	m.sent = append(m.sent, msg)
	return &discordgo.Message{ChannelID: msg.channelID, Content: msg.content}, nil
}

func (m *mockSession) ChannelTyping(channelID string, options ...discordgo.RequestOption) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.typing = append(m.typing, channelID)
	return nil
}

func (m *mockSession) AddHandler(handler interface{}) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, handler)
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.handlers = nil
	}
}

func (m *mockSession) emit(msg *discordgo.MessageCreate) {
	m.mu.Lock()
	handlers := append([]interface{}(nil), m.handlers...)
	m.mu.Unlock()
	for _, h := range handlers {
		h.(func(*discordgo.Session, *discordgo.MessageCreate))(nil, msg)
	}
}

func (m *mockSession) handlerCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

type recordingDispatcher struct {
	mu   sync.Mutex
	msgs []bot.InboundMessage
}

func (d *recordingDispatcher) Dispatch(ctx context.Context, msg bot.InboundMessage) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.msgs = append(d.msgs, msg)
}

func newConnectedAdapter(t *testing.T) (*Adapter, *mockSession) {
	t.Helper()
	session := &mockSession{}
	a := NewAdapterWithSession(session, logging.Discard())
	if err := a.Connect(); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	return a, session
}

func messageCreate(id, guildID, authorID, content string) *discordgo.MessageCreate {
	return &discordgo.MessageCreate{Message: &discordgo.Message{
		ID:        id,
		ChannelID: "c1",
		GuildID:   guildID,
		Content:   content,
		Author:    &discordgo.User{ID: authorID},
	}}
}

func TestConnect(t *testing.T) {
	a, session := newConnectedAdapter(t)

	if !session.opened {
		t.Error("session not opened")
	}
	if got := a.Handle(); got != "<@1001>" {
		t.Errorf("Handle() = %q, want <@1001>", got)
	}
}

func TestConnectOpenError(t *testing.T) {
	session := &mockSession{openErr: errors.New("4004: Authentication failed")}
	a := NewAdapterWithSession(session, logging.Discard())

	if err := a.Connect(); err == nil {
		t.Fatal("Connect() error = nil, want error")
	}
	if a.Handle() != "" {
		t.Error("Handle() set after failed connect")
	}
}

func TestConvert(t *testing.T) {
	tests := []struct {
		name   string
		msg    *discordgo.MessageCreate
		wantOK bool
		want   bot.InboundMessage
	}{
		{
			name:   "direct message",
			msg:    messageCreate("m1", "", "u1", "apa kode ICD-10 untuk diabetes?"),
			wantOK: true,
			want:   bot.InboundMessage{ConversationID: "c1", Kind: bot.Direct, MessageID: "m1", Text: "apa kode ICD-10 untuk diabetes?"},
		},
		{
			name:   "guild mention",
			msg:    messageCreate("m2", "g1", "u1", "<@1001> kode ICD-9"),
			wantOK: true,
			want:   bot.InboundMessage{ConversationID: "c1", Kind: bot.Room, MessageID: "m2", Text: "<@1001> kode ICD-9"},
		},
		{
			name:   "nickname mention normalized",
			msg:    messageCreate("m3", "g1", "u1", "<@!1001> kode ICD-9"),
			wantOK: true,
			want:   bot.InboundMessage{ConversationID: "c1", Kind: bot.Room, MessageID: "m3", Text: "<@1001> kode ICD-9"},
		},
		{
			name:   "command with args",
			msg:    messageCreate("m4", "g1", "u1", "/pmik apa  INA-CBGs"),
			wantOK: true,
			want: bot.InboundMessage{
				ConversationID: "c1", Kind: bot.Room, MessageID: "m4", Text: "/pmik apa  INA-CBGs",
				IsCommand: true, Command: "pmik", Args: []string{"apa", "INA-CBGs"},
			},
		},
		{
			name:   "bare slash is text",
			msg:    messageCreate("m5", "", "u1", "/"),
			wantOK: true,
			want:   bot.InboundMessage{ConversationID: "c1", Kind: bot.Direct, MessageID: "m5", Text: "/"},
		},
		{
			name:   "own message",
			msg:    messageCreate("m6", "g1", testBotID, "hello"),
			wantOK: false,
		},
		{
			name:   "blank content",
			msg:    messageCreate("m7", "g1", "u1", "   "),
			wantOK: false,
		},
		{
			name:   "nil author",
			msg:    &discordgo.MessageCreate{Message: &discordgo.Message{Content: "x"}},
			wantOK: false,
		},
	}

	a, _ := newConnectedAdapter(t)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := a.convert(tt.msg)

			if ok != tt.wantOK {
				t.Fatalf("convert() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.ConversationID != tt.want.ConversationID || got.Kind != tt.want.Kind ||
				got.MessageID != tt.want.MessageID || got.Text != tt.want.Text ||
				got.IsCommand != tt.want.IsCommand || got.Command != tt.want.Command {
				t.Errorf("convert() = %+v, want %+v", got, tt.want)
			}
			if strings.Join(got.Args, "|") != strings.Join(tt.want.Args, "|") {
				t.Errorf("convert() args = %q, want %q", got.Args, tt.want.Args)
			}
		})
	}
}

func TestConvertIgnoresBots(t *testing.T) {
	a, _ := newConnectedAdapter(t)
	msg := messageCreate("m1", "g1", "u2", "<@1001> hi")
	msg.Author.Bot = true

	if _, ok := a.convert(msg); ok {
		t.Error("convert() accepted a bot author")
	}
}

func TestSend(t *testing.T) {
	tests := []struct {
		name       string
		reply      bot.Reply
		wantChunks int
		wantRef    bool
	}{
		{
			name:       "room reply is linked",
			reply:      bot.Reply{ConversationID: "c1", Text: "I10", ReplyTo: "m1", Markdown: true},
			wantChunks: 1,
			wantRef:    true,
		},
		{
			name:       "direct reply is not linked",
			reply:      bot.Reply{ConversationID: "c1", Text: "I10"},
			wantChunks: 1,
		},
		{
			name:       "long reply is chunked",
			reply:      bot.Reply{ConversationID: "c1", Text: strings.Repeat("a", 4500), ReplyTo: "m1"},
			wantChunks: 3,
			wantRef:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, session := newConnectedAdapter(t)

			if err := a.Send(context.Background(), tt.reply); err != nil {
				t.Fatalf("Send() error = %v", err)
			}

			if len(session.sent) != tt.wantChunks {
				t.Fatalf("sent %d messages, want %d", len(session.sent), tt.wantChunks)
			}
			first := session.sent[0]
			if tt.wantRef {
				if first.reference == nil || first.reference.MessageID != tt.reply.ReplyTo {
					t.Errorf("first chunk reference = %+v, want %s", first.reference, tt.reply.ReplyTo)
				}
			} else if first.reference != nil {
				t.Error("unexpected message reference")
			}
			for i, msg := range session.sent[1:] {
				if msg.reference != nil {
					t.Errorf("chunk %d carries a reference", i+1)
				}
				if len(msg.content) > MaxMessageLength {
					t.Errorf("chunk %d length %d exceeds limit", i+1, len(msg.content))
				}
			}
		})
	}
}

func TestSendError(t *testing.T) {
	a, session := newConnectedAdapter(t)
	session.sendErr = errors.New("HTTP 403 Forbidden")

	if err := a.Send(context.Background(), bot.Reply{ConversationID: "c1", Text: "x"}); err == nil {
		t.Error("Send() error = nil, want error")
	}
}

func TestTyping(t *testing.T) {
	a, session := newConnectedAdapter(t)

	if err := a.Typing(context.Background(), "c1"); err != nil {
		t.Fatalf("Typing() error = %v", err)
	}
	if len(session.typing) != 1 || session.typing[0] != "c1" {
		t.Errorf("typing = %v, want [c1]", session.typing)
	}
}

func TestRun(t *testing.T) {
	a, session := newConnectedAdapter(t)
	d := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, d) }()

	deadline := time.Now().Add(2 * time.Second)
	for session.handlerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	session.emit(messageCreate("m1", "", "u1", "halo"))
	session.emit(messageCreate("m2", "", testBotID, "echo"))
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}

	if !session.closed {
		t.Error("session not closed")
	}
	if session.handlerCount() != 0 {
		t.Error("handler not removed")
	}
	if len(d.msgs) != 1 || d.msgs[0].MessageID != "m1" {
		t.Errorf("dispatched = %+v, want only m1", d.msgs)
	}
}

type blockingDispatcher struct {
	started chan struct{}
	release chan struct{}
}

func (d *blockingDispatcher) Dispatch(ctx context.Context, msg bot.InboundMessage) {
	close(d.started)
	<-d.release
}

func TestRunWaitsForInFlightHandlers(t *testing.T) {
	a, session := newConnectedAdapter(t)
	d := &blockingDispatcher{started: make(chan struct{}), release: make(chan struct{})}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx, d) }()

	deadline := time.Now().Add(2 * time.Second)
	for session.handlerCount() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("handler never registered")
		}
		time.Sleep(5 * time.Millisecond)
	}

	go session.emit(messageCreate("m1", "", "u1", "halo"))
	<-d.started
	cancel()

	select {
	case <-done:
		t.Fatal("Run() returned while a handler was still dispatching")
	case <-time.After(50 * time.Millisecond):
	}

	close(d.release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after the handler finished")
	}
}

func TestHandlerAfterShutdownIsDropped(t *testing.T) {
	a, _ := newConnectedAdapter(t)
	d := &recordingDispatcher{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := a.Run(ctx, d); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	a.handleMessageCreate(ctx, d, messageCreate("m1", "", "u1", "halo"))

	if len(d.msgs) != 0 {
		t.Errorf("dispatched %d messages after shutdown, want 0", len(d.msgs))
	}
}
