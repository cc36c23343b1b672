package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "stage.completed".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// Event type identifiers.
const (
	TypeRunStarted     = "run.started"
	TypeStageCompleted = "stage.completed"
	TypePinFailed      = "pin.failed"
	TypeRunCompleted   = "run.completed"
	TypeInputChanged   = "input.changed"
)

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// -----------------------------------------------------------------------------
// Run Lifecycle Events
// -----------------------------------------------------------------------------

// RunStartedEvent is emitted before the first stage of a pipeline run.
type RunStartedEvent struct {
	baseEvent
	RunID    string
	Clusters int // clusters in the catalog
	Teams    int // configured team count
}

// NewRunStartedEvent creates a RunStartedEvent.
func NewRunStartedEvent(runID string, clusters, teams int) RunStartedEvent {
	return RunStartedEvent{
		baseEvent: newBaseEvent(TypeRunStarted),
		RunID:     runID,
		Clusters:  clusters,
		Teams:     teams,
	}
}

// StageCompletedEvent is emitted after each pipeline stage.
type StageCompletedEvent struct {
	baseEvent
	RunID      string
	Stage      string
	Iterations int
	Moves      int
	Swaps      int
	Converged  bool
	Duration   time.Duration
}

// NewStageCompletedEvent creates a StageCompletedEvent.
func NewStageCompletedEvent(runID, stage string, iterations, moves, swaps int, converged bool, d time.Duration) StageCompletedEvent {
	return StageCompletedEvent{
		baseEvent:  newBaseEvent(TypeStageCompleted),
		RunID:      runID,
		Stage:      stage,
		Iterations: iterations,
		Moves:      moves,
		Swaps:      swaps,
		Converged:  converged,
		Duration:   d,
	}
}

// PinFailedEvent is emitted when a configured pin cannot be applied.
type PinFailedEvent struct {
	baseEvent
	RunID  string
	Anchor string
	Mover  string
	Reason string
}

// NewPinFailedEvent creates a PinFailedEvent.
func NewPinFailedEvent(runID, anchor, mover, reason string) PinFailedEvent {
	return PinFailedEvent{
		baseEvent: newBaseEvent(TypePinFailed),
		RunID:     runID,
		Anchor:    anchor,
		Mover:     mover,
		Reason:    reason,
	}
}

// RunCompletedEvent is emitted when a pipeline run returns a partition.
// The quality fields summarize the final partition.
type RunCompletedEvent struct {
	baseEvent
	RunID                 string
	Spread                int // largest minus smallest team size
	LeaderlessTeams       int
	TeamsMissingLanguages int
	Duration              time.Duration
}

// NewRunCompletedEvent creates a RunCompletedEvent.
func NewRunCompletedEvent(runID string, spread, leaderless, missing int, d time.Duration) RunCompletedEvent {
	return RunCompletedEvent{
		baseEvent:             newBaseEvent(TypeRunCompleted),
		RunID:                 runID,
		Spread:                spread,
		LeaderlessTeams:       leaderless,
		TeamsMissingLanguages: missing,
		Duration:              d,
	}
}

// -----------------------------------------------------------------------------
// Watch Events
// -----------------------------------------------------------------------------

// InputChangedEvent is emitted when a watched input file changes.
type InputChangedEvent struct {
	baseEvent
	Path string
	Op   string // fsnotify operation, e.g. "WRITE"
}

// NewInputChangedEvent creates an InputChangedEvent.
func NewInputChangedEvent(path, op string) InputChangedEvent {
	return InputChangedEvent{
		baseEvent: newBaseEvent(TypeInputChanged),
		Path:      path,
		Op:        op,
	}
}
