// Package input converts raw host controller samples into the logical
// button masks, analog vectors and touch points the core consumes.
package input

import "math"

// DefaultDeadzone is the fraction of full stick travel suppressed around
// the center.
const DefaultDeadzone = 0.15

// fullScale is the largest raw analog magnitude per axis.
const fullScale = 32767.0

// Normalize maps a raw analog sample to a deadzone-corrected vector.
// Inputs below the deadzone return exactly (0, 0). Otherwise the
// direction is preserved and the magnitude is rescaled so the deadzone
// boundary maps to 0 and full travel maps to 1, clamped to [0, 1].
func Normalize(rawX, rawY int16, deadzone float64) (x, y float64) {
	if deadzone < 0 {
		deadzone = 0
	}
	if deadzone >= 1 {
		return 0, 0
	}

	fx := clampAxis(float64(rawX)) / fullScale
	fy := clampAxis(float64(rawY)) / fullScale

	magnitude := math.Sqrt(fx*fx + fy*fy)
	if magnitude < deadzone || magnitude == 0 {
		return 0, 0
	}

	scale := (magnitude - deadzone) / (1 - deadzone)
	if scale > 1 {
		scale = 1
	}
	return fx / magnitude * scale, fy / magnitude * scale
}

// clampAxis folds -32768 onto the symmetric range.
func clampAxis(v float64) float64 {
	if v < -fullScale {
		return -fullScale
	}
	return v
}
