package utils

// FitWithin scales wxh down to fit inside maxWxmaxH, preserving the aspect
// ratio. Dimensions already inside the box are returned unchanged; the result
// is never smaller than 1x1.
func FitWithin(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return w, h
	}
	if w <= maxW && h <= maxH {
		return w, h
	}
	scale := min(float64(maxW)/float64(w), float64(maxH)/float64(h))
	nw := max(int(float64(w)*scale+0.5), 1)
	nh := max(int(float64(h)*scale+0.5), 1)
	return min(nw, maxW), min(nh, maxH)
}
