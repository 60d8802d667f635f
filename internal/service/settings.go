package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/lahn92/AquaTimer/internal/logger"
	"github.com/lahn92/AquaTimer/internal/models"
	"github.com/lahn92/AquaTimer/internal/repository"
)

const (
	minTimezoneOffset = -12
	maxTimezoneOffset = 12
)

// ErrInvalidTimezone marks an offset outside the accepted range. The HTTP
// layer turns it into a client error; anything else from SetTimezoneOffset
// is a store failure.
var ErrInvalidTimezone = errors.New("timezone offset must be between -12 and 12")

// SettingsService persists the timezone offset and keeps the timekeeper in
// step with it.
type SettingsService struct {
	prefs  repository.Prefs
	events repository.EventRepo
	tk     *TimeKeeper
	log    *logger.Logger
}

func NewSettingsService(prefs repository.Prefs, events repository.EventRepo, tk *TimeKeeper, log *logger.Logger) *SettingsService {
	return &SettingsService{prefs: prefs, events: events, tk: tk, log: log}
}

// Load reads the persisted offset (default 0) into the timekeeper.
func (s *SettingsService) Load(ctx context.Context) {
	offset := s.prefs.GetInt(ctx, prefsNamespaceSettings, prefsKeyTimezone, 0)
	if offset < minTimezoneOffset || offset > maxTimezoneOffset {
		if s.log != nil {
			s.log.Warnw("stored_timezone_out_of_range", "offset", offset)
		}
		offset = 0
	}
	s.tk.SetTimezoneOffset(offset)
}

// SetTimezoneOffset validates, persists and applies the new offset. The
// duty curve follows on the next tick; nothing else needs reloading because
// downstream computations always read the timekeeper live.
func (s *SettingsService) SetTimezoneOffset(ctx context.Context, offset int) error {
	if offset < minTimezoneOffset || offset > maxTimezoneOffset {
		return ErrInvalidTimezone
	}
	if err := s.prefs.PutInt(ctx, prefsNamespaceSettings, prefsKeyTimezone, offset); err != nil {
		return fmt.Errorf("persist timezone: %w", err)
	}
	s.tk.SetTimezoneOffset(offset)

	if err := s.events.Append(ctx, models.LightEvent{
		EventID:     uuid.NewString(),
		Type:        models.EventTimezoneSet,
		Description: fmt.Sprintf("Timezone offset set to UTC%+d", offset),
		Metadata:    map[string]any{"offset": offset},
	}); err != nil && s.log != nil {
		s.log.Errorw("settings_event_append_failed", "err", err)
	}
	return nil
}

// TimezoneOffset returns the offset currently in effect.
func (s *SettingsService) TimezoneOffset() int {
	return s.tk.TimezoneOffset()
}
