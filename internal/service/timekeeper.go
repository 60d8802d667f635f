package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/beevik/ntp"

	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/repository"
)

const (
	initialSyncAttempts = 10
	initialSyncDelay    = 1 * time.Second

	defaultSyncInterval  = 1 * time.Hour
	defaultRetryInterval = 1 * time.Minute

	statusTimeLayout = "2006-01-02 15:04:05"
)

var errNoTimeSources = errors.New("timekeeper: no time sources configured")

// TimeSource provides the external wall clock. The production source asks an
// NTP pool; tests swap in a fixed one.
type TimeSource interface {
	// Offset returns the correction to apply to the system clock.
	Offset(ctx context.Context) (time.Duration, error)
}

// NTPSource queries a list of NTP servers in order and returns the first
// answer.
type NTPSource struct {
	Servers []string
	Timeout time.Duration
}

func (s *NTPSource) Offset(ctx context.Context) (time.Duration, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	var lastErr error = errNoTimeSources
	for _, server := range s.Servers {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		resp, err := ntp.QueryWithOptions(server, ntp.QueryOptions{Timeout: timeout})
		if err != nil {
			lastErr = err
			continue
		}
		if err := resp.Validate(); err != nil {
			lastErr = err
			continue
		}
		return resp.ClockOffset, nil
	}
	return 0, lastErr
}

// TimeKeeper turns the system clock plus an externally-synced correction and
// a timezone offset into a fractional hour of day. The zero offset is a
// usable fallback: the system never refuses to run unsynced, it just drifts.
type TimeKeeper struct {
	src    TimeSource
	events repository.EventRepo
	log    *logger.Logger
	now    func() time.Time // injectable clock for tests

	syncInterval  time.Duration
	retryInterval time.Duration
	initialDelay  time.Duration

	mu        sync.Mutex
	offset    time.Duration // correction from the external source
	synced    bool
	lastSync  time.Time // when a sync last succeeded (monotonic via now())
	nextDue   time.Time // earliest next sync attempt
	tzOffsetH int       // [-12,12]
}

func NewTimeKeeper(src TimeSource, events repository.EventRepo, log *logger.Logger, syncInterval, retryInterval time.Duration) *TimeKeeper {
	if syncInterval <= 0 {
		syncInterval = defaultSyncInterval
	}
	if retryInterval <= 0 {
		retryInterval = defaultRetryInterval
	}
	return &TimeKeeper{
		src:           src,
		events:        events,
		log:           log,
		now:           time.Now,
		syncInterval:  syncInterval,
		retryInterval: retryInterval,
		initialDelay:  initialSyncDelay,
	}
}

// InitialSync blocks until the external source answers or the attempts run
// out, polling once per second. Sync failure is never fatal; the system
// starts on whatever clock it has (availability over correctness).
func (t *TimeKeeper) InitialSync(ctx context.Context) {
	for attempt := 1; attempt <= initialSyncAttempts; attempt++ {
		if t.trySync(ctx) {
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(t.initialDelay):
		}
	}
	if t.log != nil {
		t.log.Warnw("time_sync_gave_up", "attempts", initialSyncAttempts)
	}
}

// ResyncIfDue re-triggers synchronization once the sync interval has elapsed.
// A failed attempt does not wait out the full interval again; it retries on
// the shorter retry interval so a transient outage cannot park the clock in
// a drifting state for an hour at a time.
func (t *TimeKeeper) ResyncIfDue(ctx context.Context) {
	t.mu.Lock()
	due := t.nextDue.IsZero() || !t.now().Before(t.nextDue)
	t.mu.Unlock()
	if !due {
		return
	}
	t.trySync(ctx)
}

// trySync performs one sync attempt and schedules the next one: a full
// interval after success, a short retry after failure.
func (t *TimeKeeper) trySync(ctx context.Context) bool {
	offset, err := t.src.Offset(ctx)

	t.mu.Lock()
	now := t.now()
	if err != nil {
		t.nextDue = now.Add(t.retryInterval)
		t.mu.Unlock()
		if t.log != nil {
			t.log.Warnw("time_sync_failed", "err", err)
		}
		t.appendEvent(ctx, models.EventSyncFailed, "Clock sync failed", map[string]any{"err": err.Error()})
		return false
	}
	t.offset = offset
	t.synced = true
	t.lastSync = now
	t.nextDue = now.Add(t.syncInterval)
	t.mu.Unlock()

	if t.log != nil {
		t.log.Infow("time_synced", "offset", offset.String())
	}
	t.appendEvent(ctx, models.EventTimeSync, "Clock synced", map[string]any{"offset_ms": offset.Milliseconds()})
	return true
}

func (t *TimeKeeper) appendEvent(ctx context.Context, typ, desc string, meta map[string]any) {
	if t.events == nil {
		return
	}
	if err := t.events.Append(ctx, models.LightEvent{
		Type:        typ,
		Description: desc,
		Metadata:    meta,
	}); err != nil && t.log != nil {
		t.log.Errorw("time_event_append_failed", "err", err)
	}
}

// localNow is the corrected clock shifted into the configured timezone.
func (t *TimeKeeper) localNow() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.now().Add(t.offset).UTC().Add(time.Duration(t.tzOffsetH) * time.Hour)
}

// NowHours returns the local time of day as fractional hours in [0,24).
func (t *TimeKeeper) NowHours() float64 {
	local := t.localNow()
	return float64(local.Hour()) + float64(local.Minute())/60.0 + float64(local.Second())/3600.0
}

// FormattedTime returns the local time as "YYYY-MM-DD HH:MM:SS".
func (t *TimeKeeper) FormattedTime() string {
	return t.localNow().Format(statusTimeLayout)
}

// Synced reports whether the clock has been confirmed against the external
// source at least once.
func (t *TimeKeeper) Synced() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.synced
}

// SetTimezoneOffset updates the timezone shift in whole hours.
func (t *TimeKeeper) SetTimezoneOffset(hours int) {
	t.mu.Lock()
	t.tzOffsetH = hours
	t.mu.Unlock()
}

// TimezoneOffset returns the configured shift in whole hours.
func (t *TimeKeeper) TimezoneOffset() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.tzOffsetH
}
