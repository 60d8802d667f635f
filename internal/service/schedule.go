package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/repository"
)

// Preference namespaces/keys, kept identical to the firmware NVS layout so a
// migrated store keeps working.
const (
	prefsNamespaceSchedule = "schedule"
	prefsKeyPoints         = "points"

	prefsNamespaceSettings = "settings"
	prefsKeyTimezone       = "timezone"

	defaultPointsJSON = "[]"
)

// ErrScheduleParse marks a schedule payload that is not valid JSON. The
// model is cleared when it is returned: a broken schedule fails safe to
// lights-off instead of keeping a stale curve.
var ErrScheduleParse = errors.New("schedule: malformed JSON")

// applier is what the schedule service pokes after a replace so the output
// reacts immediately instead of waiting for the next tick.
type applier interface {
	ApplyNow(ctx context.Context)
}

// wirePoint is the persisted/HTTP shape of a breakpoint. The "HH:MM" string
// never travels past parsing; the calculation core only sees fractional hours.
type wirePoint struct {
	Time string `json:"time"`
	Duty int    `json:"duty"`
}

// ScheduleService owns the in-memory schedule model. The model is replaced
// wholesale on load or replace, never edited in place, and is guarded by a
// RWMutex because the HTTP layer runs concurrently with the control loop.
type ScheduleService struct {
	prefs  repository.Prefs
	events repository.EventRepo
	log    *logger.Logger

	mu      sync.RWMutex
	points  []models.SchedulePoint
	applier applier
}

func NewScheduleService(prefs repository.Prefs, events repository.EventRepo, log *logger.Logger) *ScheduleService {
	return &ScheduleService{prefs: prefs, events: events, log: log}
}

// SetApplier wires the control loop in after construction (the loop needs
// the schedule, so the dependency runs both ways).
func (s *ScheduleService) SetApplier(a applier) {
	s.applier = a
}

// Load reads the persisted schedule and swaps it in. A malformed stored
// payload leaves the model empty and returns ErrScheduleParse.
func (s *ScheduleService) Load(ctx context.Context) error {
	raw := s.prefs.GetString(ctx, prefsNamespaceSchedule, prefsKeyPoints, defaultPointsJSON)
	points, err := parseSchedule(raw)

	s.mu.Lock()
	s.points = points
	s.mu.Unlock()

	if err != nil {
		if s.log != nil {
			s.log.Errorw("schedule_load_parse_failed", "err", err)
		}
		return err
	}
	if s.log != nil {
		s.log.Infow("schedule_loaded", "points", len(points))
	}
	return nil
}

// Replace parses raw, persists it, and atomically swaps the point set, then
// applies one control-loop step so the visible duty reacts without waiting
// for the next tick. A malformed payload clears the model (fail safe to
// lights-off) and returns ErrScheduleParse; it is not rolled back.
func (s *ScheduleService) Replace(ctx context.Context, raw string) error {
	points, parseErr := parseSchedule(raw)

	s.mu.Lock()
	s.points = points
	s.mu.Unlock()

	if parseErr != nil {
		return parseErr
	}

	if err := s.prefs.PutString(ctx, prefsNamespaceSchedule, prefsKeyPoints, raw); err != nil {
		return fmt.Errorf("persist schedule: %w", err)
	}

	if err := s.events.Append(ctx, models.LightEvent{
		EventID:     uuid.NewString(),
		Type:        models.EventScheduleReplaced,
		Description: "Schedule replaced",
		Metadata:    map[string]any{"points": len(points)},
	}); err != nil && s.log != nil {
		s.log.Errorw("schedule_event_append_failed", "err", err)
	}

	if s.applier != nil {
		s.applier.ApplyNow(ctx)
	}
	return nil
}

// Points returns a snapshot of the current model.
func (s *ScheduleService) Points() []models.SchedulePoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.SchedulePoint, len(s.points))
	copy(out, s.points)
	return out
}

// PointCount returns the number of breakpoints in the model.
func (s *ScheduleService) PointCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.points)
}

// WireJSON serializes the model back to the persisted format. Times come out
// rounded to whole minutes; "HH:MM" granularity drops anything finer.
func (s *ScheduleService) WireJSON() ([]byte, error) {
	points := s.Points()
	wire := make([]wirePoint, 0, len(points))
	for _, p := range points {
		wire = append(wire, wirePoint{Time: formatWireTime(p.Time), Duty: p.Duty})
	}
	return json.Marshal(wire)
}

// parseSchedule converts the wire JSON into schedule points. Entries whose
// time field has no separator (or a leading one) are silently dropped, and
// malformed hour/minute substrings parse as 0, matching the lenient numeric
// parse of the firmware this replaces. Malformed JSON yields an empty slice
// plus ErrScheduleParse.
func parseSchedule(raw string) ([]models.SchedulePoint, error) {
	var wire []wirePoint
	if err := json.Unmarshal([]byte(raw), &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScheduleParse, err)
	}

	points := make([]models.SchedulePoint, 0, len(wire))
	for _, w := range wire {
		idx := strings.Index(w.Time, ":")
		if idx <= 0 {
			continue
		}
		hours := atoiLenient(w.Time[:idx])
		minutes := atoiLenient(w.Time[idx+1:])
		points = append(points, models.SchedulePoint{
			Time: float64(hours) + float64(minutes)/60.0,
			Duty: w.Duty,
		})
	}
	return points, nil
}

// atoiLenient parses a leading optional-signed integer and returns 0 when
// there is none, strtol-style.
func atoiLenient(s string) int {
	s = strings.TrimSpace(s)
	i := 0
	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}
	n := 0
	start := i
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		n = n*10 + int(s[i]-'0')
		i++
	}
	if i == start {
		return 0
	}
	if neg {
		return -n
	}
	return n
}

// formatWireTime renders fractional hours as "HH:MM", rounding to the
// nearest minute and carrying 60-minute overflow into the hour.
func formatWireTime(hours float64) string {
	h := int(hours)
	m := int(math.Round((hours - float64(h)) * 60))
	if m == 60 {
		h++
		m = 0
	}
	return fmt.Sprintf("%02d:%02d", h, m)
}
