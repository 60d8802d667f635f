package service

import (
	"context"
	"time"

	"github.com/lahn92/AquaTimer/internal/announce"
	"github.com/lahn92/AquaTimer/internal/driver"
	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/repository"
)

// Schedule exposes the breakpoint set: replaced wholesale, never edited in
// place.
type Schedule interface {
	Load(ctx context.Context) error
	Replace(ctx context.Context, raw string) error
	WireJSON() ([]byte, error)
	PointCount() int
}

// Settings exposes the persisted timezone offset.
type Settings interface {
	Load(ctx context.Context)
	SetTimezoneOffset(ctx context.Context, offset int) error
	TimezoneOffset() int
}

// Monitoring exposes the read-only status snapshot.
type Monitoring interface {
	Status() models.LightStatus
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.LightEvent, error)
}

// ControlLoop runs the once-per-tick schedule→fade→actuator pipeline.
// Stop via context cancellation in main() for graceful shutdown.
type ControlLoop interface {
	Run(ctx context.Context, tick time.Duration)
}

// Service aggregates all sub-services behind one wiring point.
type Service struct {
	Schedule
	Settings
	Monitoring
	EventLog
	ControlLoop
}

// Deps carries everything NewService needs from main: repositories, the
// actuator output, the external time source, and tuning knobs from config.
type Deps struct {
	Repos  *repository.Repository
	Output driver.Output
	Source TimeSource
	Ann    announce.Announcer
	Log    *logger.Logger

	FadeStep      float64
	SyncInterval  time.Duration
	RetryInterval time.Duration
	AnnounceEvery int
}

// NewService wires the repository layer, the timekeeper, the fade-limited
// output and the control loop into concrete services.
func NewService(d Deps) *Service {
	tk := NewTimeKeeper(d.Source, d.Repos.Events, d.Log, d.SyncInterval, d.RetryInterval)
	fade := NewFadeController()
	schedule := NewScheduleService(d.Repos.Prefs, d.Repos.Events, d.Log)
	monitoring := NewMonitoringService(schedule, tk, fade)

	loop := NewLoopService(schedule, tk, fade, d.Output, d.Ann, d.Log, d.FadeStep, d.AnnounceEvery)
	loop.SetStatusFunc(monitoring.Status)
	schedule.SetApplier(loop)

	return &Service{
		Schedule:    schedule,
		Settings:    NewSettingsService(d.Repos.Prefs, d.Repos.Events, tk, d.Log),
		Monitoring:  monitoring,
		EventLog:    NewEventLogService(d.Repos.Events),
		ControlLoop: loop,
	}
}

// LoadState restores persisted schedule and settings into memory. A parse
// failure is logged upstream and leaves an empty schedule; startup proceeds
// with the light off rather than refusing to run.
func (s *Service) LoadState(ctx context.Context) {
	s.Settings.Load(ctx)
	_ = s.Schedule.Load(ctx)
}
