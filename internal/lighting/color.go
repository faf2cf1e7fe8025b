// Package lighting maps coolant temperature onto the visible light spectrum
// and renders it as an RGB command for the cooler's LED ring.
package lighting

import (
	"fmt"
	"math"
)

const (
	WavelengthMin = 380.0
	WavelengthMax = 780.0

	gamma        = 0.80
	intensityMax = 255
)

// DegreeToWavelength maps a temperature linearly from [degreeMin, degreeMax]
// onto [380, 780] nm. Out-of-range input clamps to the nearest bound before
// mapping.
func DegreeToWavelength(degree, degreeMin, degreeMax float64) float64 {
	if degree <= degreeMin {
		degree = degreeMin
	}
	if degree >= degreeMax {
		degree = degreeMax
	}

	degreeRange := degreeMax - degreeMin
	wavelRange := WavelengthMax - WavelengthMin

	return ((degree-degreeMin)*wavelRange)/degreeRange + WavelengthMin
}

// WavelengthToRGB converts a wavelength to gamma-corrected RGB channels.
// Intensity tapers near the edges of the visible spectrum, and further when
// the temperature sits outside [degreeMin, degreeMax].
func WavelengthToRGB(wavelength, degree, degreeMin, degreeMax float64) (r, g, b int) {
	var red, green, blue float64

	switch {
	case wavelength >= 380 && wavelength < 440:
		red = (wavelength - 440) / (440 - 380)
		blue = 1.0
	case wavelength >= 440 && wavelength < 490:
		green = (wavelength - 440) / (490 - 440)
		blue = 1.0
	case wavelength >= 490 && wavelength < 510:
		green = 1.0
		blue = (wavelength - 510) / (510 - 490)
	case wavelength >= 510 && wavelength < 580:
		red = (wavelength - 510) / (580 - 510)
		green = 1.0
	case wavelength >= 580 && wavelength < 645:
		red = 1.0
		green = (wavelength - 645) / (645 - 580)
	case wavelength >= 645 && wavelength < 781:
		red = 1.0
	}

	// Reduce intensity near the vision limits
	var factor float64
	switch {
	case wavelength >= 380 && wavelength < 420:
		factor = 0.3 + 0.7*(wavelength-380)/(420-380)
	case wavelength >= 420 && wavelength < 701:
		factor = 1.0
	case wavelength >= 701 && wavelength < 781:
		factor = 0.3 + 0.7*(780-wavelength)/(780-700)
	}

	// Further reduce intensity when the temperature is outside the gradient
	if degree < degreeMin {
		factor = (degree - 5) / 101
	} else if degree > degreeMax {
		factor = (degree - 15) / 101
	}

	factor = math.Min(1.0, math.Max(0.0, factor))

	if red != 0 {
		r = normalizeChannel(red, factor)
	}
	if green != 0 {
		g = normalizeChannel(green, factor)
	}
	if blue != 0 {
		b = normalizeChannel(blue, factor)
	}

	return r, g, b
}

// DegreeToHex renders a temperature as a 6-hex-digit color string, the form
// the cooler's fixed-color command takes.
func DegreeToHex(degree, degreeMin, degreeMax float64) string {
	wavelength := DegreeToWavelength(degree, degreeMin, degreeMax)
	r, g, b := WavelengthToRGB(wavelength, degree, degreeMin, degreeMax)

	return RGBToHex(r, g, b)
}

// RGBToHex encodes channels as a lowercase 6-hex-digit string.
func RGBToHex(r, g, b int) string {
	return fmt.Sprintf("%02x%02x%02x", clampChannel(r), clampChannel(g), clampChannel(b))
}

func normalizeChannel(raw, factor float64) int {
	raw = math.Abs(raw)
	value := int(math.Round(intensityMax * math.Pow(raw*factor, gamma)))

	return clampChannel(value)
}

func clampChannel(value int) int {
	if value < 0 {
		return 0
	}
	if value > 255 {
		return 255
	}

	return value
}
