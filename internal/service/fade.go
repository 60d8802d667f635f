package service

import "sync"

// FadeController tracks the duty actually applied to the actuator and moves
// it toward the schedule target at a bounded rate, so brightness changes are
// gradual instead of stepping. With the reference cadence of one tick per
// second and a 0.2%/tick step, a full 0→100 transition takes ~500 seconds.
type FadeController struct {
	mu      sync.Mutex
	current float64
}

func NewFadeController() *FadeController {
	return &FadeController{}
}

// Tick advances the output one step toward target, never moving more than
// maxStep percent, and returns the new output clamped to [0,100].
func (f *FadeController) Tick(target, maxStep float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()

	diff := target - f.current
	switch {
	case diff <= maxStep && diff >= -maxStep:
		f.current = target // close enough, snap
	case diff > 0:
		f.current += maxStep
	default:
		f.current -= maxStep
	}

	f.current = clampDuty(f.current)
	return f.current
}

// Snap sets the output directly, bypassing the rate limit. Used at startup
// so the light comes up at the scheduled level instead of fading in from 0.
func (f *FadeController) Snap(duty float64) float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = clampDuty(duty)
	return f.current
}

// Current returns the duty last applied to the actuator.
func (f *FadeController) Current() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}
