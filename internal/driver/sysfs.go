package driver

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Sysfs drives a hardware PWM channel through the Linux sysfs interface
// (/sys/class/pwm), the usual route on a Raspberry Pi or similar SBC. The
// kernel wants the period in nanoseconds; Apply translates fixed-point
// levels back into a duty_cycle in ns.
type Sysfs struct {
	chipDir  string
	pwmDir   string
	channel  int
	periodNs int64
	max      uint32
}

// NewSysfs exports the channel on the given chip, programs the carrier
// period from frequencyHz (reference: 5 kHz) and enables the output at 0%.
func NewSysfs(chip, channel, frequencyHz, resolutionBits int) (*Sysfs, error) {
	if frequencyHz <= 0 {
		return nil, fmt.Errorf("pwm: invalid frequency %d", frequencyHz)
	}
	s := &Sysfs{
		chipDir:  fmt.Sprintf("/sys/class/pwm/pwmchip%d", chip),
		channel:  channel,
		periodNs: int64(time.Second) / int64(frequencyHz),
		max:      MaxLevelForBits(resolutionBits),
	}
	s.pwmDir = filepath.Join(s.chipDir, fmt.Sprintf("pwm%d", channel))

	if _, err := os.Stat(s.pwmDir); errors.Is(err, os.ErrNotExist) {
		if err := writeSysfs(filepath.Join(s.chipDir, "export"), strconv.Itoa(channel)); err != nil {
			return nil, fmt.Errorf("pwm: export channel %d: %w", channel, err)
		}
	}
	if err := writeSysfs(filepath.Join(s.pwmDir, "period"), strconv.FormatInt(s.periodNs, 10)); err != nil {
		return nil, fmt.Errorf("pwm: set period: %w", err)
	}
	if err := writeSysfs(filepath.Join(s.pwmDir, "duty_cycle"), "0"); err != nil {
		return nil, fmt.Errorf("pwm: zero duty: %w", err)
	}
	if err := writeSysfs(filepath.Join(s.pwmDir, "enable"), "1"); err != nil {
		return nil, fmt.Errorf("pwm: enable: %w", err)
	}
	return s, nil
}

func (s *Sysfs) Apply(level uint32) error {
	if level > s.max {
		level = s.max
	}
	dutyNs := s.periodNs * int64(level) / int64(s.max)
	if err := writeSysfs(filepath.Join(s.pwmDir, "duty_cycle"), strconv.FormatInt(dutyNs, 10)); err != nil {
		return fmt.Errorf("pwm: set duty_cycle: %w", err)
	}
	return nil
}

func (s *Sysfs) MaxLevel() uint32 { return s.max }

// Close disables and unexports the channel.
func (s *Sysfs) Close() error {
	if err := writeSysfs(filepath.Join(s.pwmDir, "enable"), "0"); err != nil {
		return err
	}
	return writeSysfs(filepath.Join(s.chipDir, "unexport"), strconv.Itoa(s.channel))
}

func writeSysfs(path, value string) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.WriteString(value)
	return err
}
