// Package ledger persists the name-to-hash mapping used to detect resource
// changes between sync cycles. One Ledger instance backs each sync phase
// (exports, images); both share the same on-disk format, a single JSON
// object keyed by resource name.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"sync"
)

// ErrCorrupt is returned when a ledger file exists but cannot be read or
// parsed. An absent file is not an error; a present-but-unreadable one is,
// because silently starting from an empty ledger would force a full
// re-download without telling anyone why.
var ErrCorrupt = errors.New("ledger file corrupt")

// Ledger is a mutable name->hash mapping guarded by a single mutex.
// The lock is held only for the duration of a map operation, never across
// I/O, so concurrent download completions serialize their updates without
// blocking each other's transfers.
type Ledger struct {
	mu      sync.Mutex
	entries map[string]string
	dirty   bool
}

// New returns an empty in-memory ledger.
func New() *Ledger {
	return &Ledger{entries: make(map[string]string)}
}

// Load reads a ledger from path. A missing file yields an empty ledger.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("%w: reading %s: %v", ErrCorrupt, path, err)
	}

	entries := make(map[string]string)
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrCorrupt, path, err)
	}

	return &Ledger{entries: entries}, nil
}

// Get returns the recorded hash for name and whether one exists.
func (l *Ledger) Get(name string) (string, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	hash, ok := l.entries[name]
	return hash, ok
}

// Update records a new hash for name and marks the ledger dirty.
// Callers invoke this only after a download has fully materialized.
func (l *Ledger) Update(name, hash string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[name] = hash
	l.dirty = true
}

// Dirty reports whether any update has occurred since Load.
func (l *Ledger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// Len returns the number of recorded entries.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot returns a copy of the current entries.
func (l *Ledger) Snapshot() map[string]string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return maps.Clone(l.entries)
}

// Save serializes the full mapping to path as a canonical JSON object,
// writing through a temp file and rename so a crash never leaves a
// half-written ledger behind.
func (l *Ledger) Save(path string) error {
	l.mu.Lock()
	data, err := json.Marshal(l.entries)
	l.mu.Unlock()
	if err != nil {
		return fmt.Errorf("marshaling ledger: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing ledger temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("renaming ledger temp file: %w", err)
	}

	return nil
}
