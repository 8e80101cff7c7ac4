package bot

import "time"

// Message and command constants
const (
	CommandAsk   = "pmik"
	CommandStart = "start"
	CommandHelp  = "help"

	DefaultTypingTimeout = 3 * time.Second

	FormatMarkdown = "markdown"
	FormatPlain    = "plain"
)

// Event kinds reported to metrics
const (
	EventCommand        = "command"
	EventStart          = "start"
	EventHelp           = "help"
	EventUnknownCommand = "unknown_command"
	EventDirectText     = "direct_text"
	EventRoomText       = "room_text"
	EventRoomIgnored    = "room_text_ignored"
)
