// Package history journals completed sync cycles to the filesystem so
// `exportsync history` can show what past runs actually did.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

// Entry records the outcome of one completed sync cycle.
type Entry struct {
	ID              string        `json:"id"`
	Timestamp       time.Time     `json:"timestamp"`
	ManifestChanged bool          `json:"manifest_changed"`
	Downloaded      int           `json:"downloaded"`
	Failed          int           `json:"failed"`
	Bytes           int64         `json:"bytes"`
	Duration        time.Duration `json:"duration"`

	Export syncer.PhaseReport `json:"export"`
	Image  syncer.PhaseReport `json:"image"`
}

// Journal appends and lists cycle entries in a directory.
type Journal struct {
	dir string
	mu  sync.Mutex
}

// New creates a Journal rooted at dir.
func New(dir string) (*Journal, error) {
	if dir == "" {
		return nil, errors.New("history directory cannot be empty")
	}
	return &Journal{dir: dir}, nil
}

// Append writes one entry for a completed cycle and returns it.
func (j *Journal) Append(report *syncer.Report) (*Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	entry := &Entry{
		ID:              uuid.NewString(),
		Timestamp:       time.Now().UTC(),
		ManifestChanged: report.ManifestChanged,
		Downloaded:      report.TotalDownloaded(),
		Failed:          report.TotalFailed(),
		Bytes:           report.TotalBytes(),
		Duration:        report.Duration,
		Export:          report.Export,
		Image:           report.Image,
	}

	if err := os.MkdirAll(j.dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling history entry: %w", err)
	}

	path := filepath.Join(j.dir, entry.ID+".json")
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing history entry: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("renaming history entry: %w", err)
	}

	return entry, nil
}

// List returns entries sorted newest first. A non-positive limit returns
// everything.
func (j *Journal) List(limit int) ([]Entry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	files, err := os.ReadDir(j.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Entry{}, nil
		}
		return nil, fmt.Errorf("reading history directory: %w", err)
	}

	entries := []Entry{}
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(j.dir, f.Name()))
		if err != nil {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			// Skip entries that can't be parsed.
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, k int) bool {
		return entries[i].Timestamp.After(entries[k].Timestamp)
	})

	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}

	return entries, nil
}
