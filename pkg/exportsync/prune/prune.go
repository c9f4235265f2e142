// Package prune removes mirror artifacts whose resource no longer appears
// in the ledgers, reclaiming space after upstream deletions. The ledgers
// are the source of truth: anything on disk they do not name is an orphan.
package prune

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/logging"
	"github.com/tennoforge/exportsync/pkg/exportsync/resource"
)

// Options configures a prune run.
type Options struct {
	// OutputDir is the mirror root.
	OutputDir string

	// Force removes orphans. When false the run only reports them.
	Force bool
}

// Result lists what a prune run found (and, with Force, removed).
type Result struct {
	// Orphans are artifact paths not named by any ledger entry.
	Orphans []string

	// Bytes is the total size of the orphaned artifacts.
	Bytes int64

	// Removed is the number of orphans actually deleted.
	Removed int
}

// Run walks the export and image trees and collects artifacts not named by
// the respective ledger.
func Run(opts Options, exportLedger, imageLedger map[string]string) (*Result, error) {
	log := logging.Get("prune")

	expectedExports := make(map[string]bool, len(exportLedger)*2)
	for name := range exportLedger {
		base := resource.ExportBaseName(name)
		expectedExports[base+".json"] = true
		expectedExports[base+".min.json"] = true
	}

	expectedImages := make(map[string]bool, len(imageLedger))
	for uniqueName := range imageLedger {
		expectedImages[resource.TextureFileName(uniqueName)] = true
	}

	result := &Result{}
	var mu sync.Mutex

	collect := func(dir, suffix string, expected map[string]bool) error {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return nil
		}

		conf := fastwalk.Config{Follow: false}
		return fastwalk.Walk(&conf, dir, func(path string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return nil //nolint:nilerr // skip unreadable entries, keep walking
			}
			if d.IsDir() || !strings.HasSuffix(d.Name(), suffix) {
				return nil
			}
			if expected[d.Name()] {
				return nil
			}

			var size int64
			if info, err := d.Info(); err == nil {
				size = info.Size()
			}

			mu.Lock()
			result.Orphans = append(result.Orphans, path)
			result.Bytes += size
			mu.Unlock()
			return nil
		})
	}

	if err := collect(config.ExportDir(opts.OutputDir), ".json", expectedExports); err != nil {
		return nil, fmt.Errorf("walking export artifacts: %w", err)
	}
	if err := collect(config.ImageDir(opts.OutputDir), ".png", expectedImages); err != nil {
		return nil, fmt.Errorf("walking image artifacts: %w", err)
	}

	sort.Strings(result.Orphans)

	if !opts.Force {
		log.Info("prune dry run", "orphans", len(result.Orphans), "bytes", result.Bytes)
		return result, nil
	}

	for _, path := range result.Orphans {
		if err := os.Remove(path); err != nil {
			log.Warn("failed to remove orphan", "path", path, "error", err)
			continue
		}
		log.Info("removed orphan", "path", filepath.Base(path))
		result.Removed++
	}

	return result, nil
}
