package entities

import (
	"time"

	"github.com/google/uuid"
)

// ImportSummary is the outcome of one import run. It is created once per run
// and immutable after the orchestrator returns it.
type ImportSummary struct {
	RunID           string    `json:"run_id"`
	Category        string    `json:"category"`
	Country         string    `json:"country"`
	Cities          []string  `json:"cities"`
	Requested       int       `json:"requested"`
	Fetched         int       `json:"fetched"`
	Deduplicated    int       `json:"deduplicated"`
	Committed       int       `json:"committed"`
	Failed          int       `json:"failed"`
	Errors          []string  `json:"errors"`
	SampleCommitted []string  `json:"sample_committed"`
	AbortReason     string    `json:"abort_reason,omitempty"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
}

// Aborted reports whether the run ended early on a fatal API status.
func (s *ImportSummary) Aborted() bool {
	return s.AbortReason != ""
}

// ImportEventType represents the type of import event
type ImportEventType string

const (
	ImportEventTypeCompleted ImportEventType = "import.completed"
	ImportEventTypeAborted   ImportEventType = "import.aborted"
)

// ImportEvent is published on the event bus when an import run finishes.
type ImportEvent struct {
	ID        string          `json:"id"`
	RunID     string          `json:"run_id"`
	EventType ImportEventType `json:"event_type"`
	Timestamp time.Time       `json:"timestamp"`
	Summary   ImportSummary   `json:"summary"`
}

// NewImportEvent creates a new import event for a finished run
func NewImportEvent(summary ImportSummary) *ImportEvent {
	eventType := ImportEventTypeCompleted
	if summary.Aborted() {
		eventType = ImportEventTypeAborted
	}
	return &ImportEvent{
		ID:        uuid.NewString(),
		RunID:     summary.RunID,
		EventType: eventType,
		Timestamp: time.Now(),
		Summary:   summary,
	}
}
