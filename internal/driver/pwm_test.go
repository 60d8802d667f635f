package driver

import "testing"

func TestLevel(t *testing.T) {
	cases := []struct {
		name string
		duty float64
		max  uint32
		want uint32
	}{
		{"zero", 0, 4095, 0},
		{"full_scale", 100, 4095, 4095},
		{"half", 50, 4095, 2048}, // 2047.5 rounds up
		{"one_fade_step", 0.2, 4095, 8},
		{"clamp_low", -10, 4095, 0},
		{"clamp_high", 150, 4095, 4095},
		{"eight_bit", 100, 255, 255},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Level(tc.duty, tc.max); got != tc.want {
				t.Fatalf("Level(%v, %d) = %d, want %d", tc.duty, tc.max, got, tc.want)
			}
		})
	}
}

func TestMaxLevelForBits(t *testing.T) {
	if got := MaxLevelForBits(12); got != 4095 {
		t.Fatalf("MaxLevelForBits(12) = %d", got)
	}
	if got := MaxLevelForBits(8); got != 255 {
		t.Fatalf("MaxLevelForBits(8) = %d", got)
	}
	// Out-of-range resolutions fall back to 12 bits.
	if got := MaxLevelForBits(0); got != 4095 {
		t.Fatalf("MaxLevelForBits(0) = %d", got)
	}
	if got := MaxLevelForBits(40); got != 4095 {
		t.Fatalf("MaxLevelForBits(40) = %d", got)
	}
}

func TestMemRecordsLastLevel(t *testing.T) {
	m := NewMem(12)
	if m.MaxLevel() != 4095 {
		t.Fatalf("MaxLevel() = %d", m.MaxLevel())
	}
	for _, lvl := range []uint32{0, 8, 4095} {
		if err := m.Apply(lvl); err != nil {
			t.Fatalf("Apply(%d): %v", lvl, err)
		}
		if m.Last() != lvl {
			t.Fatalf("Last() = %d, want %d", m.Last(), lvl)
		}
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close(): %v", err)
	}
}
