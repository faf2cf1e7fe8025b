// Package curve holds the temperature-to-duty-cycle functions for the coolant
// loop and the GPU fans.
package curve

import "math"

// GPU fan curve modifiers: the intake fan runs nearly the base curve, the
// exhaust fan a noticeably steeper one.
const (
	GPUFanModifierIntake  = 0.001
	GPUFanModifierExhaust = 0.05
)

// CoolantSpeed converts a smoothed coolant temperature to a fan/pump duty
// percentage. Piecewise; the branches do not meet exactly at their edges,
// which is expected behavior, not a defect.
func CoolantSpeed(degree float64) int {
	var speed float64

	switch {
	case degree <= 30:
		speed = math.Round(degree + 0.5)
	case degree < 40:
		speed = math.Round(degree * (1 + 0.10*(degree-30)))
	case degree <= 48:
		speed = math.Round(degree * 2.08)
	default:
		speed = 100
	}

	return clampPercent(int(speed))
}

// GPUFanSpeed converts a smoothed GPU temperature to a fan duty percentage.
// The modifier steepens the curve: duty = round((5*t*(1+m) - 100) / 2).
func GPUFanSpeed(degree, modifier float64) int {
	degree *= 1 + modifier
	speed := math.Round((5*degree - 100) * 0.5)

	return clampPercent(int(speed))
}

func clampPercent(value int) int {
	if value < 0 {
		return 0
	}
	if value > 100 {
		return 100
	}

	return value
}
