// Package materialize turns downloaded bytes into on-disk artifacts.
// Export payloads become a minified plus a pretty-printed JSON pair;
// textures become a canonical PNG plus one square rendition per configured
// size.
package materialize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// escaper rewrites raw carriage returns and line feeds into their
// two-character escaped forms. Some upstream payloads embed literal
// newlines inside JSON string values, which the JSON parser rejects.
var escaper = strings.NewReplacer("\r", `\r`, "\n", `\n`)

// Text sanitizes body, parses it as JSON and writes two artifacts derived
// from the same parsed value: <base>.min.json (compact) and <base>.json
// (indented).
func Text(body []byte, dir, base string) error {
	sanitized := escaper.Replace(string(body))

	var parsed any
	if err := json.Unmarshal([]byte(sanitized), &parsed); err != nil {
		return fmt.Errorf("parsing %s payload: %w", base, err)
	}

	minified, err := json.Marshal(parsed)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", base, err)
	}
	if err := os.WriteFile(filepath.Join(dir, base+".min.json"), minified, 0o644); err != nil {
		return fmt.Errorf("writing %s.min.json: %w", base, err)
	}

	pretty, err := json.MarshalIndent(parsed, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", base, err)
	}
	if err := os.WriteFile(filepath.Join(dir, base+".json"), pretty, 0o644); err != nil {
		return fmt.Errorf("writing %s.json: %w", base, err)
	}

	return nil
}
