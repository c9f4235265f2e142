// Package output renders a sync cycle report for the terminal.
// Three formatters are available: pretty (styled), plain, and json.
package output

import (
	"bytes"
	"fmt"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

// Format identifiers accepted by New.
const (
	FormatPretty = "pretty"
	FormatPlain  = "plain"
	FormatJSON   = "json"
)

// Formatter renders a cycle report into a buffer.
type Formatter interface {
	Format(w *bytes.Buffer, r *syncer.Report) error
}

// New returns the formatter for the given format name.
func New(format string) (Formatter, error) {
	switch format {
	case FormatPretty, "":
		return &PrettyFormatter{}, nil
	case FormatPlain:
		return &PlainFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q", format)
	}
}

// Render formats the report with the named formatter and returns the text.
func Render(format string, r *syncer.Report) (string, error) {
	f, err := New(format)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := f.Format(&buf, r); err != nil {
		return "", err
	}
	return buf.String(), nil
}
