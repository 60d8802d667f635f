package models

import "time"

const (
	EventScheduleReplaced = "SCHEDULE_REPLACED"
	EventTimezoneSet      = "TIMEZONE_SET"
	EventTimeSync         = "TIME_SYNC"
	EventSyncFailed       = "SYNC_FAILED"
)

// LightEvent is a single log entry.
type LightEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`        // SCHEDULE_REPLACED | TIMEZONE_SET | TIME_SYNC | SYNC_FAILED
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
