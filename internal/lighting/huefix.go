package lighting

// The AORUS X470 motherboard LED renders blues and violets wrong. This lookup
// replaces the computed color with a hand-tuned one per hue-angle bucket.
// When enabled it overrides, not blends with, the gamma-corrected result.

type hueBucket struct {
	upTo float64
	r    int
	g    int
	b    int
}

// Contiguous buckets over [0, 360], checked in order.
var aorusX470Table = []hueBucket{
	{5, 255, 20, 255},
	{10, 140, 50, 255},
	{20, 110, 70, 255},
	{30, 100, 90, 255},
	{40, 65, 110, 255},
	{50, 50, 110, 255},
	{60, 40, 110, 255},
	{70, 40, 120, 255},
	{80, 68, 255, 255},
	{90, 48, 255, 255},
	{100, 38, 255, 255},
	{110, 28, 255, 255},
	{120, 10, 200, 255},
	{130, 0, 80, 255},
	{140, 0, 52, 255},
	{150, 0, 48, 255},
	{160, 0, 44, 255},
	{170, 0, 40, 255},
	{180, 0, 36, 255},
	{190, 0, 28, 255},
	{200, 0, 16, 255},
	{210, 0, 8, 255},
	{220, 0, 4, 255},
	{230, 0, 2, 255},
	{240, 0, 1, 255},
	{250, 1, 1, 255},
	{260, 2, 0, 255},
	{270, 3, 0, 255},
	{280, 3, 1, 255},
	{290, 4, 0, 255},
	{295, 5, 1, 255},
	{360, 7, 1, 255},
}

// AorusX470HueFix returns the corrected channels for the given color.
func AorusX470HueFix(r, g, b int) (int, int, int) {
	hue := rgbToHue(clampChannel(r), clampChannel(g), clampChannel(b))

	for _, bucket := range aorusX470Table {
		if hue <= bucket.upTo {
			return bucket.r, bucket.g, bucket.b
		}
	}

	return r, g, b
}

// rgbToHue computes the hue angle in [0, 360).
func rgbToHue(r, g, b int) float64 {
	rn := float64(r) / 255.0
	gn := float64(g) / 255.0
	bn := float64(b) / 255.0

	maxVal := max3(rn, gn, bn)
	minVal := min3(rn, gn, bn)
	delta := maxVal - minVal

	if delta == 0 {
		return 0
	}

	var hue float64
	switch maxVal {
	case rn:
		hue = 60.0 * mod6((gn-bn)/delta)
	case gn:
		hue = 60.0 * ((bn-rn)/delta + 2.0)
	default:
		hue = 60.0 * ((rn-gn)/delta + 4.0)
	}

	if hue < 0 {
		hue += 360.0
	}

	return hue
}

func mod6(x float64) float64 {
	for x < 0 {
		x += 6
	}
	for x >= 6 {
		x -= 6
	}

	return x
}

func max3(a, b, c float64) float64 {
	if b > a {
		a = b
	}
	if c > a {
		a = c
	}

	return a
}

func min3(a, b, c float64) float64 {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}

	return a
}
