package domain

import "time"

// Speaker identifies who authored a message.
type Speaker string

const (
	SpeakerHuman     Speaker = "human"
	SpeakerAssistant Speaker = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Speaker   Speaker
	Text      string
	Timestamp *time.Time // nil when the log line carried no timestamp
}

// Transcript represents one conversation log file on disk.
type Transcript struct {
	Path           string
	ConversationID string
	Project        string // parent directory name, used as a display label
	Modified       time.Time
	SizeBytes      int64
	Messages       []Message
}

// ScanProgress represents the current corpus scanning state.
type ScanProgress struct {
	IsScanning  bool
	Found       int
	CurrentPath string
}
