// Package capability records which extraction backends are usable in the
// running process. A Registry is built once at startup and only read afterwards.
package capability

import (
	"fmt"
	"sort"

	"github.com/diyagk01/blii-pdf-service/internal/models"
	"go.uber.org/zap"
)

// Backend names.
const (
	NativeText = "native_text"
	OCR        = "ocr"
	Structural = "structural"
	Preview    = "preview"
)

// Probe checks one backend. A nil error means the backend is usable.
type Probe struct {
	Name  string
	Check func() error
}

// Registry is safe for concurrent reads; it has no mutators.
type Registry struct {
	caps    map[string]bool
	reasons map[string]string
}

// New returns a registry with fixed availability. Unlisted names are unavailable.
func New(caps map[string]bool) *Registry {
	r := &Registry{caps: make(map[string]bool, len(caps)), reasons: map[string]string{}}
	for k, v := range caps {
		r.caps[k] = v
	}
	return r
}

// Detect runs every probe and records the outcome. A failing or panicking
// probe marks its backend unavailable; it never aborts startup.
func Detect(logger *zap.Logger, probes ...Probe) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := New(nil)
	for _, p := range probes {
		err := runProbe(p)
		r.caps[p.Name] = err == nil
		if err != nil {
			r.reasons[p.Name] = err.Error()
			logger.Warn("backend unavailable", zap.String("capability", p.Name), zap.Error(err))
			continue
		}
		logger.Info("backend available", zap.String("capability", p.Name))
	}
	return r
}

func runProbe(p Probe) (err error) {
	if p.Check == nil {
		return nil
	}
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("probe panicked: %v", rec)
		}
	}()
	return p.Check()
}

// Has reports whether the named backend is usable.
func (r *Registry) Has(name string) bool {
	if r == nil {
		return false
	}
	return r.caps[name]
}

// Reason returns why a backend is unavailable, or "" when it is available or
// was never probed.
func (r *Registry) Reason(name string) string {
	if r == nil {
		return ""
	}
	return r.reasons[name]
}

// Snapshot returns a copy of the availability map.
func (r *Registry) Snapshot() models.CapabilitySet {
	out := make(models.CapabilitySet, len(r.caps))
	for k, v := range r.caps {
		out[k] = v
	}
	return out
}

// Names returns the probed backend names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.caps))
	for k := range r.caps {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
