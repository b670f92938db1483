package player

import "math"

// levelToVolume maps a [0, 1] level to effects.Volume with base 2:
// 1 is unchanged, 0.5 is -1, 0.25 is -2. Zero is handled by Silent.
func levelToVolume(level float64) float64 {
	if level <= 0 {
		return -10
	}
	if level >= 1 {
		return 0
	}
	return math.Log2(level)
}
