package systems

import "math"

// frac returns the fractional part of v, in [0, 1) for non-negative v.
func frac(v float32) float32 {
	return v - float32(math.Floor(float64(v)))
}

// sqrtf is float32 square root.
func sqrtf(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// hsvToRGB converts hue, saturation and value in [0,1] to RGB in [0,1].
func hsvToRGB(h, s, v float32) (r, g, b float32) {
	h = frac(h) * 6
	i := int(h)
	f := h - float32(i)
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))
	switch i {
	case 0:
		return v, t, p
	case 1:
		return q, v, p
	case 2:
		return p, v, t
	case 3:
		return p, q, v
	case 4:
		return t, p, v
	default:
		return v, p, q
	}
}
