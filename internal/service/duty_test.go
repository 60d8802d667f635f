package service

import (
	"math"
	"testing"

	"github.com/lahn92/AquaTimer/internal/models"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestComputeDuty_EmptyModel_AlwaysZero(t *testing.T) {
	for h := 0.0; h < 24.0; h += 0.5 {
		if got := ComputeDuty(nil, h); got != 0 {
			t.Fatalf("ComputeDuty(empty, %v) = %v, want 0", h, got)
		}
	}
}

func TestComputeDuty_SinglePoint_InterpolatesFromDayBoundaries(t *testing.T) {
	points := []models.SchedulePoint{{Time: 12.0, Duty: 80}}

	cases := []struct {
		hours float64
		want  float64
	}{
		{0.0, 0},    // exactly on the virtual (0,0)
		{6.0, 40},   // halfway up from midnight
		{12.0, 80},  // exact match
		{18.0, 40},  // halfway down toward midnight
		{23.999, 0}, // approaching end of day
	}
	for _, tc := range cases {
		got := ComputeDuty(points, tc.hours)
		if tc.hours == 23.999 {
			// continuous ramp to 0 at hour 24
			if got < 0 || got > 0.01 {
				t.Fatalf("ComputeDuty(%v) = %v, want ~0", tc.hours, got)
			}
			continue
		}
		if !almostEqual(got, tc.want) {
			t.Fatalf("ComputeDuty(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestComputeDuty_DuplicateTime_LastInsertedWins(t *testing.T) {
	// Two points share t=10. On exact lookup the scan locks "after" on the
	// first and keeps overwriting "before" with the last, and an exact match
	// returns before's duty: the later-inserted point.
	points := []models.SchedulePoint{
		{Time: 10.0, Duty: 30},
		{Time: 10.0, Duty: 70},
	}
	if got := ComputeDuty(points, 10.0); !almostEqual(got, 70) {
		t.Fatalf("ComputeDuty(10.0) = %v, want 70 (last point at duplicate time)", got)
	}
}

func TestComputeDuty_BetweenPoints_LinearInterpolation(t *testing.T) {
	points := []models.SchedulePoint{
		{Time: 8.0, Duty: 20},
		{Time: 20.0, Duty: 100},
	}
	cases := []struct {
		hours float64
		want  float64
	}{
		{8.0, 20},
		{14.0, 60}, // midpoint
		{20.0, 100},
		{4.0, 10},  // between virtual (0,0) and (8,20)
		{22.0, 50}, // between (20,100) and virtual (24,0)
	}
	for _, tc := range cases {
		if got := ComputeDuty(points, tc.hours); !almostEqual(got, tc.want) {
			t.Fatalf("ComputeDuty(%v) = %v, want %v", tc.hours, got, tc.want)
		}
	}
}

func TestComputeDuty_UnsortedInput_SortedBeforeScan(t *testing.T) {
	points := []models.SchedulePoint{
		{Time: 20.0, Duty: 100},
		{Time: 8.0, Duty: 20},
	}
	if got := ComputeDuty(points, 14.0); !almostEqual(got, 60) {
		t.Fatalf("ComputeDuty(14.0) = %v, want 60 on unsorted input", got)
	}
}

func TestComputeDuty_Continuity_AcrossBreakpoints(t *testing.T) {
	points := []models.SchedulePoint{
		{Time: 6.0, Duty: 10},
		{Time: 12.0, Duty: 90},
		{Time: 18.0, Duty: 40},
	}
	// Approaching each breakpoint from both sides must agree with the value
	// at the breakpoint.
	const eps = 1e-6
	for _, bp := range points {
		at := ComputeDuty(points, bp.Time)
		left := ComputeDuty(points, bp.Time-eps)
		right := ComputeDuty(points, bp.Time+eps)
		if math.Abs(at-left) > 1e-3 || math.Abs(at-right) > 1e-3 {
			t.Fatalf("discontinuity at %v: left=%v at=%v right=%v", bp.Time, left, at, right)
		}
	}
}

func TestComputeDuty_OutputClamped(t *testing.T) {
	points := []models.SchedulePoint{
		{Time: 10.0, Duty: 150}, // out-of-range duty in the model
	}
	if got := ComputeDuty(points, 10.0); got != 150 {
		// exact match returns the literal duty by contract
		t.Fatalf("exact match should return literal duty, got %v", got)
	}
	// but interpolated values are clamped: just past the point, the raw
	// interpolation toward (24,0) still sits above 100
	if got := ComputeDuty(points, 10.5); got != 100 {
		t.Fatalf("interpolated duty = %v, want clamped 100", got)
	}
}
