// Package driver holds the actuator outputs the control loop writes to.
package driver

import (
	"math"
	"sync"
)

// Output is a PWM channel the control loop emits duty levels to.
type Output interface {
	// Apply sets the raw PWM compare level, 0..MaxLevel.
	Apply(level uint32) error
	// MaxLevel is the full-scale level, (1<<resolutionBits)-1.
	MaxLevel() uint32
	Close() error
}

// Level converts a duty percentage to the fixed-point PWM level for the
// given full-scale value, rounding to nearest. 100% maps to maxLevel
// exactly; out-of-range duty is clamped first.
func Level(dutyPercent float64, maxLevel uint32) uint32 {
	if dutyPercent < 0 {
		dutyPercent = 0
	}
	if dutyPercent > 100 {
		dutyPercent = 100
	}
	return uint32(math.Round(dutyPercent / 100.0 * float64(maxLevel)))
}

// MaxLevelForBits returns the full-scale level for a resolution in bits,
// e.g. 12 → 4095.
func MaxLevelForBits(bits int) uint32 {
	if bits <= 0 || bits > 31 {
		bits = 12
	}
	return (1 << uint(bits)) - 1
}

// Mem is an in-memory output used by tests and the "mock" driver setting.
// It just records the last applied level.
type Mem struct {
	mu   sync.Mutex
	last uint32
	max  uint32
}

func NewMem(resolutionBits int) *Mem {
	return &Mem{max: MaxLevelForBits(resolutionBits)}
}

func (m *Mem) Apply(level uint32) error {
	m.mu.Lock()
	m.last = level
	m.mu.Unlock()
	return nil
}

func (m *Mem) MaxLevel() uint32 { return m.max }

func (m *Mem) Close() error { return nil }

// Last returns the most recently applied level.
func (m *Mem) Last() uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
