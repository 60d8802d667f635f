package service

import (
	"github.com/lahn92/AquaTimer/internal/models"
)

// MonitoringService assembles the read-only status snapshot exposed on the
// control surface and the websocket stream.
type MonitoringService struct {
	schedule *ScheduleService
	tk       *TimeKeeper
	fade     *FadeController
}

func NewMonitoringService(schedule *ScheduleService, tk *TimeKeeper, fade *FadeController) *MonitoringService {
	return &MonitoringService{schedule: schedule, tk: tk, fade: fade}
}

// Status reports the local clock, the actual actuator output, and the
// schedule target it is converging on.
func (s *MonitoringService) Status() models.LightStatus {
	hours := s.tk.NowHours()
	points := s.schedule.Points()
	return models.LightStatus{
		CurrentTime:      s.tk.FormattedTime(),
		CurrentTimeHours: hours,
		CurrentDuty:      s.fade.Current(),
		TargetDuty:       ComputeDuty(points, hours),
		SchedulePoints:   len(points),
		TimezoneOffset:   s.tk.TimezoneOffset(),
		TimeSynced:       s.tk.Synced(),
	}
}
