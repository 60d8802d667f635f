package models

// LightStatus is the snapshot exposed on the control surface.
type LightStatus struct {
	CurrentTime      string  `json:"currentTime"` // "YYYY-MM-DD HH:MM:SS" in the configured timezone
	CurrentTimeHours float64 `json:"currentTimeHours"`
	CurrentDuty      float64 `json:"currentDuty"` // actual actuator output, percent
	TargetDuty       float64 `json:"targetDuty"`  // schedule target the output is fading toward
	SchedulePoints   int     `json:"schedulePoints"`
	TimezoneOffset   int     `json:"timezoneOffset"`
	TimeSynced       bool    `json:"timeSynced"`
}
