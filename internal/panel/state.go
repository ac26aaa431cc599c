// Package panel holds the side-panel view state and the reducer that folds
// streamed panel deltas into it.
package panel

// Status is the streaming status of the panel
type Status string

const (
	StatusIdle      Status = "idle"
	StatusStreaming Status = "streaming"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusIdle || s == StatusStreaming
}

// WorkflowMode selects which workspace the panel renders
type WorkflowMode string

const (
	WorkflowDefault       WorkflowMode = "default"
	WorkflowCoverage      WorkflowMode = "coverage-workspace"
	WorkflowShiftSchedule WorkflowMode = "shift-schedule"
)

// Item is one entry listed in the panel
type Item struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// State is the panel view state. Values are treated as immutable; Items is
// never modified in place.
type State struct {
	ID            string       `json:"id"`
	Title         string       `json:"title"`
	Summary       string       `json:"summary"`
	Visible       bool         `json:"isVisible"`
	Status        Status       `json:"status"`
	Items         []Item       `json:"items"`
	WorkflowMode  WorkflowMode `json:"workflowMode"`
	ActiveShiftID string       `json:"activeShiftId,omitempty"`
}

// InitialID is the id of the initial panel state
const InitialID = "init"

// Initial returns the panel state used before any delta arrives
func Initial() State {
	return State{
		ID:           InitialID,
		Visible:      true,
		Status:       StatusIdle,
		Items:        []Item{},
		WorkflowMode: WorkflowDefault,
	}
}
