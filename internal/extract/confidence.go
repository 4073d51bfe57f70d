package extract

// Method tags identify a strategy in results and logs.
const (
	MethodNative     = "native"
	MethodOCR        = "ocr"
	MethodStructural = "structural"
)

// confidence is the a-priori reliability of each strategy. These are fixed
// priors, not measurements of a particular document.
var confidence = map[string]float64{
	MethodNative:     0.95,
	MethodOCR:        0.85,
	MethodStructural: 0.90,
}

// Confidence returns the fixed score for method, or 0 for an unknown method.
func Confidence(method string) float64 {
	return confidence[method]
}
