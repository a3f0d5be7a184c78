package models

import "time"

// Event types written to the control log.
const (
	EventCreate     = "CREATE"
	EventAdjust     = "ADJUST"
	EventModeChange = "MODE_CHANGE"
	EventDelete     = "DELETE"
)

// ControlEvent is a single log entry.
type ControlEvent struct {
	EventID     string    `json:"event_id"`
	BuildingID  string    `json:"building_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // CREATE | ADJUST | MODE_CHANGE | DELETE
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
