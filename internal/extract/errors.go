package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/models"
)

// Failure classes. Strategy errors wrap one of these so callers can classify
// them with errors.Is.
var (
	// ErrSourceUnavailable means the document could not be obtained.
	ErrSourceUnavailable = errors.New("source unavailable")
	// ErrUnsupportedOrCorrupt means a backend could not read the document structure.
	ErrUnsupportedOrCorrupt = errors.New("unsupported or corrupt document")
	// ErrEncrypted means the document is password protected.
	ErrEncrypted = errors.New("document is password protected")
	// ErrNoExtractableText means a strategy ran but produced no usable text.
	ErrNoExtractableText = errors.New("no extractable text")
	// ErrBackendUnavailable means the strategy's backend is not usable in this process.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrPreviewGenerationFailed is logged when a preview cannot be rendered. It never fails a request.
	ErrPreviewGenerationFailed = errors.New("preview generation failed")
	// ErrAllStrategiesFailed is returned when no usable strategy succeeded.
	ErrAllStrategiesFailed = errors.New("all extraction strategies failed")
)

// ChainError is returned by Chain.Run when every usable strategy failed or
// none was usable. Attempts holds each strategy's outcome in chain order.
type ChainError struct {
	Attempts []models.ExtractionAttempt
}

func (e *ChainError) Error() string {
	var parts []string
	for _, a := range e.Attempts {
		if a.Err != nil {
			parts = append(parts, fmt.Sprintf("%s: %v", a.Method, a.Err))
		}
	}
	if len(parts) == 0 {
		return ErrAllStrategiesFailed.Error() + ": no usable strategy"
	}
	return ErrAllStrategiesFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ChainError) Unwrap() error { return ErrAllStrategiesFailed }

// OnlyEncrypted reports whether at least one strategy ran and every strategy
// that ran failed because the document is password protected.
func (e *ChainError) OnlyEncrypted() bool {
	ran := 0
	for _, a := range e.Attempts {
		if a.Outcome != models.OutcomeFailure {
			continue
		}
		ran++
		if !errors.Is(a.Err, ErrEncrypted) {
			return false
		}
	}
	return ran > 0
}
