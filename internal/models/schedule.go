package models

// SchedulePoint is a single breakpoint of the daily brightness curve.
// Time is a fractional hour of day in [0,24); Duty is percent in [0,100].
type SchedulePoint struct {
	Time float64 `json:"time"`
	Duty int     `json:"duty"`
}
