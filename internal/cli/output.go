// Package cli formats extraction results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/diyagk01/blii-pdf-service/internal/models"
	"github.com/diyagk01/blii-pdf-service/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is the response envelope as indented JSON.
	OutputJSON OutputFormat = "json"
	// OutputContent is the extracted content only, for piping.
	OutputContent OutputFormat = "content"
)

// ParseFormat validates a --output flag value.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputJSON, OutputContent:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text, json, or content", s)
	}
}

// WriteEnvelope writes env to w in the given format.
func WriteEnvelope(w io.Writer, env *models.Envelope, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, env)
	case OutputContent:
		if !env.Success {
			_, err := fmt.Fprintln(w, env.Error)
			return err
		}
		_, err := fmt.Fprintln(w, env.Content)
		return err
	default:
		writeEnvelopeText(w, env)
		return nil
	}
}

func writeEnvelopeText(w io.Writer, env *models.Envelope) {
	if !env.Success {
		fmt.Fprintf(w, "Extraction failed: %s\n", env.Error)
		return
	}
	fmt.Fprintf(w, "Title:      %s\n", env.Title)
	fmt.Fprintf(w, "Method:     %s (confidence %.2f)\n", env.Method, env.ExtractionConfidence)
	if md := env.Metadata; md != nil {
		fmt.Fprintf(w, "File:       %s\n", md.Filename)
		fmt.Fprintf(w, "Summary:    Extracted %d words from %d pages\n", md.WordCount, md.PageCount)
		fmt.Fprintf(w, "Tables:     %t\n", md.HasTables)
		fmt.Fprintf(w, "Images:     %t\n", md.HasImages)
	}
	if env.PreviewImage != "" {
		fmt.Fprintf(w, "Preview:    %s (%d bytes)\n", utils.Truncate(env.PreviewImage, 32), len(env.PreviewImage))
	}
	fmt.Fprintf(w, "\n%s\n", env.Content)
}

// WriteCapabilities writes the backend availability table.
func WriteCapabilities(w io.Writer, caps models.CapabilitySet, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, caps)
	}
	names := make([]string, 0, len(caps))
	for name := range caps {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		status := "unavailable"
		if caps[name] {
			status = "available"
		}
		fmt.Fprintf(w, "%-12s %s\n", name+":", status)
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
