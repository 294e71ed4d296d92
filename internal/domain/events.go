package domain

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventTranscriptDiscovered EventType = "TranscriptDiscovered"
	EventTranscriptChanged    EventType = "TranscriptChanged"
	EventError                EventType = "Error"
	EventScanStarted          EventType = "ScanStarted"
	EventScanCompleted        EventType = "ScanCompleted"
	EventScanRequested        EventType = "ScanRequested"
	EventConfigLoaded         EventType = "ConfigLoaded"
	EventConfigSaved          EventType = "ConfigSaved"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// TranscriptDiscoveredEvent is emitted when a transcript file is found
type TranscriptDiscoveredEvent struct {
	Transcript Transcript
}

func (e TranscriptDiscoveredEvent) Type() EventType { return EventTranscriptDiscovered }

// TranscriptChangedEvent is emitted when a known transcript file is modified
type TranscriptChangedEvent struct {
	Path string
}

func (e TranscriptChangedEvent) Type() EventType { return EventTranscriptChanged }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }

// ScanStartedEvent is emitted when transcript scanning begins
type ScanStartedEvent struct {
	Roots []string
}

func (e ScanStartedEvent) Type() EventType { return EventScanStarted }

// ScanCompletedEvent is emitted when transcript scanning finishes
type ScanCompletedEvent struct {
	Found int
}

func (e ScanCompletedEvent) Type() EventType { return EventScanCompleted }

// ScanRequestedEvent asks the scanner to walk the given roots
type ScanRequestedEvent struct {
	Roots []string
}

func (e ScanRequestedEvent) Type() EventType { return EventScanRequested }

// ConfigLoadedEvent is emitted after configuration has been read
type ConfigLoadedEvent struct {
	LogsRoot  string
	OutputDir string
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// ConfigSavedEvent is emitted after configuration has been written
type ConfigSavedEvent struct{}

func (e ConfigSavedEvent) Type() EventType { return EventConfigSaved }
