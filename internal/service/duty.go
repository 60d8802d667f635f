package service

import (
	"sort"

	"github.com/lahn92/AquaTimer/internal/models"
)

// ComputeDuty maps a time of day onto the piecewise-linear brightness curve
// defined by the schedule points. The curve passes through every point and
// falls to 0% at both ends of the day unless a point sits exactly on the
// boundary, so a schedule that only covers daytime turns the light off at
// night without any extra configuration.
//
// Points sharing the same time are allowed. The scan below keeps overwriting
// "before" (last point at t wins) and locks "after" on the first point at t,
// so an exact-time lookup returns the duty of the last point inserted at
// that time.
func ComputeDuty(points []models.SchedulePoint, currentHours float64) float64 {
	if len(points) == 0 {
		return 0 // no schedule, lights off
	}

	sorted := make([]models.SchedulePoint, len(points))
	copy(sorted, points)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time < sorted[j].Time
	})

	before := models.SchedulePoint{Time: 0, Duty: 0}
	after := models.SchedulePoint{Time: 24, Duty: 0}
	foundBefore := false
	foundAfter := false

	for _, p := range sorted {
		if p.Time <= currentHours {
			before = p
			foundBefore = true
		}
		if p.Time >= currentHours && !foundAfter {
			after = p
			foundAfter = true
		}
	}

	if !foundBefore && !foundAfter {
		return 0
	}

	if !foundBefore {
		// Before the first point: interpolate up from midnight.
		before = models.SchedulePoint{Time: 0, Duty: 0}
		after = sorted[0]
	}

	if !foundAfter {
		// After the last point: interpolate down toward end of day.
		before = sorted[len(sorted)-1]
		after = models.SchedulePoint{Time: 24, Duty: 0}
	}

	if before.Time == after.Time {
		return float64(before.Duty)
	}

	ratio := (currentHours - before.Time) / (after.Time - before.Time)
	duty := float64(before.Duty) + (float64(after.Duty)-float64(before.Duty))*ratio

	return clampDuty(duty)
}

func clampDuty(d float64) float64 {
	if d < 0 {
		return 0
	}
	if d > 100 {
		return 100
	}
	return d
}
