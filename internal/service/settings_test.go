package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/lahn92/AquaTimer/internal/models"
)

func TestSettingsService_SetTimezoneOffset(t *testing.T) {
	prefs := newFakePrefs()
	events := &fakeEventRepo{}
	tk := newTestKeeper(&fakeTimeSource{}, events, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC))
	s := NewSettingsService(prefs, events, tk, nil)

	if err := s.SetTimezoneOffset(context.Background(), 5); err != nil {
		t.Fatalf("SetTimezoneOffset(5): %v", err)
	}
	if got := prefs.ints["settings/timezone"]; got != 5 {
		t.Fatalf("persisted offset = %d, want 5", got)
	}
	if got := tk.TimezoneOffset(); got != 5 {
		t.Fatalf("timekeeper offset = %d, want 5", got)
	}
	// the status clock follows on the next read, shifted modulo 24
	if got := tk.NowHours(); !almostEqual(got, 15.0) {
		t.Fatalf("NowHours() = %v, want 15 at UTC+5", got)
	}
	if got := events.typesLogged(); len(got) != 1 || got[0] != models.EventTimezoneSet {
		t.Fatalf("events = %v, want one TIMEZONE_SET", got)
	}
}

func TestSettingsService_RejectsOutOfRangeOffset(t *testing.T) {
	prefs := newFakePrefs()
	tk := newTestKeeper(&fakeTimeSource{}, &fakeEventRepo{}, time.Now())
	s := NewSettingsService(prefs, &fakeEventRepo{}, tk, nil)

	for _, off := range []int{-13, 13, 99} {
		if err := s.SetTimezoneOffset(context.Background(), off); !errors.Is(err, ErrInvalidTimezone) {
			t.Fatalf("SetTimezoneOffset(%d) = %v, want ErrInvalidTimezone", off, err)
		}
	}
	if _, ok := prefs.ints["settings/timezone"]; ok {
		t.Fatalf("rejected offset was persisted")
	}
}

func TestSettingsService_LoadAppliesStoredOffset(t *testing.T) {
	prefs := newFakePrefs()
	prefs.ints["settings/timezone"] = -3
	tk := newTestKeeper(&fakeTimeSource{}, &fakeEventRepo{}, time.Now())
	s := NewSettingsService(prefs, &fakeEventRepo{}, tk, nil)

	s.Load(context.Background())
	if got := tk.TimezoneOffset(); got != -3 {
		t.Fatalf("offset after Load = %d, want -3", got)
	}
}

func TestSettingsService_LoadIgnoresCorruptOffset(t *testing.T) {
	prefs := newFakePrefs()
	prefs.ints["settings/timezone"] = 40
	tk := newTestKeeper(&fakeTimeSource{}, &fakeEventRepo{}, time.Now())
	s := NewSettingsService(prefs, &fakeEventRepo{}, tk, nil)

	s.Load(context.Background())
	if got := tk.TimezoneOffset(); got != 0 {
		t.Fatalf("offset after Load = %d, want fallback 0", got)
	}
}
