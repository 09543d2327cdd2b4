package session

import (
	"context"
	"fmt"
)

// Persistence keys for the session record.
const (
	KeyContent = "URL_CONTENT"
	KeyStatus  = "URL_STATUS"
	KeyLinks   = "URL_LINKS"
	KeyInput   = "URL_INPUT"
)

// State is the lifecycle state shown by the indicator.
type State string

const (
	StateIdle       State = "idle"
	StateInProgress State = "in_progress"
	StateSuccess    State = "success"
	StateError      State = "error"
)

// Active reports whether the indicator uses the active treatment.
// Error shares the inactive treatment with Idle.
func (s State) Active() bool {
	return s == StateSuccess
}

// Status is the indicator payload.
type Status struct {
	State   State  `json:"state"`
	Count   int    `json:"count"`
	Message string `json:"message,omitempty"`
}

// Text is the status line shown next to the indicator.
func (s Status) Text() string {
	switch s.State {
	case StateInProgress:
		return "Fetching..."
	case StateSuccess:
		return fmt.Sprintf("Links: %d", s.Count)
	case StateError:
		msg := s.Message
		if msg == "" {
			msg = "unknown error"
		}
		return "Error: " + msg
	default:
		return "Links: —"
	}
}

// SessionState is the persisted record of the last fetch.
// Status always equals len(Links) once Links has been written.
type SessionState struct {
	Input   string   `json:"input"`
	Content string   `json:"content"`
	Links   []string `json:"links"`
	Status  int      `json:"status"`
}

// Storage is a key/value persistence backend for the session record.
type Storage interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	// SetMany writes all entries as one unit.
	SetMany(ctx context.Context, entries map[string]string) error
	Remove(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// Fetcher retrieves a document as text.
type Fetcher interface {
	FetchText(ctx context.Context, url string) (string, error)
}

// ViewSink receives view updates from the store.
// SetIndicator with StateIdle resets the view to its empty idle state.
type ViewSink interface {
	SetInput(value string)
	RenderLinks(links []string)
	SetIndicator(status Status)
	Alert(message string)
}
