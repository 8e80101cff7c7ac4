package bot

import "context"

// ConversationKind tells direct chats apart from multi-party rooms.
type ConversationKind int

const (
	Direct ConversationKind = iota
	Room
)

func (k ConversationKind) String() string {
	if k == Room {
		return "room"
	}
	return "direct"
}

// InboundMessage is one chat event, normalized by a platform adapter.
type InboundMessage struct {
	ConversationID string
	Kind           ConversationKind
	MessageID      string
	Text           string

	// IsCommand is set for recognized command syntax; Command is the bare
	// command name and Args the whitespace-separated arguments after it.
	IsCommand bool
	Command   string
	Args      []string
}

// Reply is one outbound message. ReplyTo links it to an inbound message
// and is empty in direct conversations.
type Reply struct {
	ConversationID string
	Text           string
	ReplyTo        string
	Markdown       bool
}

// Messenger delivers replies to the chat platform.
type Messenger interface {
	// Send delivers a reply
	Send(ctx context.Context, reply Reply) error

	// Typing shows a composing indicator in the conversation
	Typing(ctx context.Context, conversationID string) error
}

// Dispatcher receives normalized inbound events from a platform adapter.
type Dispatcher interface {
	Dispatch(ctx context.Context, msg InboundMessage)
}
