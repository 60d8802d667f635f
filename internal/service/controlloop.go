package service

import (
	"context"
	"sync"
	"time"

	"github.com/lahn92/AquaTimer/internal/announce"
	"github.com/lahn92/AquaTimer/internal/driver"
	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/models"
)

// DefaultFadeStep is the reference rate limit: 0.2% per tick, i.e. a full
// 0→100 transition over ~500 one-second ticks.
const DefaultFadeStep = 0.2

// LoopService is the once-per-tick orchestrator: read the clock, compute the
// schedule target, advance the fade, emit to the actuator, then give the
// timekeeper a chance to resync. External requests (schedule replace) reuse
// ApplyNow, so every output change goes through the same serialized path.
type LoopService struct {
	schedule *ScheduleService
	tk       *TimeKeeper
	fade     *FadeController
	out      driver.Output
	ann      announce.Announcer
	status   func() models.LightStatus
	log      *logger.Logger

	fadeStep      float64
	announceEvery int

	mu    sync.Mutex
	ticks int
}

func NewLoopService(schedule *ScheduleService, tk *TimeKeeper, fade *FadeController, out driver.Output, ann announce.Announcer, log *logger.Logger, fadeStep float64, announceEvery int) *LoopService {
	if fadeStep <= 0 {
		fadeStep = DefaultFadeStep
	}
	if ann == nil {
		ann = announce.Nop{}
	}
	return &LoopService{
		schedule:      schedule,
		tk:            tk,
		fade:          fade,
		out:           out,
		ann:           ann,
		log:           log,
		fadeStep:      fadeStep,
		announceEvery: announceEvery,
	}
}

// SetStatusFunc wires in the snapshot builder used for announcements.
func (s *LoopService) SetStatusFunc(f func() models.LightStatus) {
	s.status = f
}

// Run blocks until ctx is canceled. It syncs the clock first (bounded, never
// fatal), snaps the output to the scheduled level so a restart does not fade
// up from black, then ticks at the given interval.
func (s *LoopService) Run(ctx context.Context, tick time.Duration) {
	s.tk.InitialSync(ctx)
	s.bootstrap(ctx)

	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.ApplyNow(ctx)
			s.tk.ResyncIfDue(ctx)
		}
	}
}

// bootstrap applies the current schedule target directly, bypassing the
// fade limit. Actuator state is not persisted across restarts; it is always
// recomputed from the schedule.
func (s *LoopService) bootstrap(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := ComputeDuty(s.schedule.Points(), s.tk.NowHours())
	s.emit(s.fade.Snap(target))
	s.announce(ctx, true)
}

// ApplyNow performs one control step: compute the target for the current
// time, advance the rate-limited output one step, and emit it.
func (s *LoopService) ApplyNow(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	target := ComputeDuty(s.schedule.Points(), s.tk.NowHours())
	s.emit(s.fade.Tick(target, s.fadeStep))
	s.ticks++
	s.announce(ctx, false)
}

func (s *LoopService) emit(duty float64) {
	level := driver.Level(duty, s.out.MaxLevel())
	if err := s.out.Apply(level); err != nil && s.log != nil {
		s.log.Errorw("pwm_apply_failed", "err", err, "level", level)
	}
}

func (s *LoopService) announce(ctx context.Context, force bool) {
	if s.status == nil {
		return
	}
	if !force {
		if s.announceEvery <= 0 || s.ticks%s.announceEvery != 0 {
			return
		}
	}
	if err := s.ann.Publish(ctx, s.status()); err != nil && s.log != nil {
		s.log.Warnw("status_announce_failed", "err", err)
	}
}
