package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

// JSONFormatter renders the report as indented JSON for machine consumers.
type JSONFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, r *syncer.Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling report: %w", err)
	}
	w.Write(data)
	w.WriteByte('\n')
	return nil
}
