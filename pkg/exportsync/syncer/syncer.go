// Package syncer implements the incremental synchronization engine: change
// detection against the persisted ledgers, concurrency-bounded download
// orchestration, and the two-phase driver (exports, then textures when the
// export manifest changed).
package syncer

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/fetch"
	"github.com/tennoforge/exportsync/pkg/exportsync/ledger"
	"github.com/tennoforge/exportsync/pkg/exportsync/logging"
	"github.com/tennoforge/exportsync/pkg/exportsync/resource"
)

// ManifestSentinel is the resource whose change gates the image phase:
// only a manifest change can introduce new or changed textures.
const ManifestSentinel = "ExportManifest.json"

// Config carries the sync parameters. All fields are fixed at construction;
// the syncer holds no ambient global state.
type Config struct {
	OutputDir     string
	Workers       int
	CanonicalSize int
	ImageSizes    []int
}

// Syncer drives a full sync cycle.
type Syncer struct {
	client *fetch.Client
	cfg    Config
	log    *log.Logger
}

// New builds a Syncer around a fetch client.
func New(client *fetch.Client, cfg Config) *Syncer {
	if cfg.Workers <= 0 {
		cfg.Workers = config.DefaultWorkers
	}
	if cfg.CanonicalSize <= 0 {
		cfg.CanonicalSize = config.DefaultCanonicalSize
	}
	if len(cfg.ImageSizes) == 0 {
		cfg.ImageSizes = config.DefaultImageSizes
	}

	return &Syncer{
		client: client,
		cfg:    cfg,
		log:    logging.Get("syncer"),
	}
}

// Run performs at most one pass of each phase: export sync, then image sync
// if the export manifest changed. Fatal errors abort the cycle; any phase
// that already persisted its ledger is left exactly as written.
func (s *Syncer) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if err := config.EnsureLayout(s.cfg.OutputDir, s.cfg.ImageSizes); err != nil {
		return nil, err
	}

	report := &Report{}

	manifestChanged, err := s.exportPhase(ctx, &report.Export)
	if err != nil {
		return nil, err
	}
	report.ManifestChanged = manifestChanged

	if manifestChanged {
		if err := s.imagePhase(ctx, &report.Image); err != nil {
			return nil, err
		}
		report.ImageRan = true
	} else {
		s.log.Info("no changes in export manifest, skipping image sync")
	}

	report.Duration = time.Since(start)
	return report, nil
}

// exportPhase fetches the index, classifies every line against the export
// ledger and downloads the changed resources. It reports whether the
// manifest sentinel changed, which gates the image phase.
func (s *Syncer) exportPhase(ctx context.Context, phase *PhaseReport) (bool, error) {
	start := time.Now()
	ledgerPath := config.ExportLedgerPath(s.cfg.OutputDir)

	led, err := ledger.Load(ledgerPath)
	if err != nil {
		return false, err
	}

	index, err := s.client.Index(ctx)
	if err != nil {
		return false, err
	}

	var (
		tasks           []task
		hashUpdated     bool
		manifestChanged bool
	)

	scanner := bufio.NewScanner(strings.NewReader(index))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		desc, err := resource.ParseDescriptor(line)
		if err != nil {
			return false, err
		}

		class := s.classify(led, desc, phase)
		if class == Unchanged {
			continue
		}

		hashUpdated = true
		if desc.Name == ManifestSentinel {
			manifestChanged = true
		}

		tasks = append(tasks, task{
			resource: desc,
			url:      s.client.ManifestURL(line),
			dir:      config.ExportDir(s.cfg.OutputDir),
			fileName: resource.ExportBaseName(desc.Name),
			asText:   true,
		})
	}

	s.runTasks(ctx, led, tasks, phase)
	phase.Duration = time.Since(start)

	if hashUpdated {
		if err := led.Save(ledgerPath); err != nil {
			return false, fmt.Errorf("saving export ledger: %w", err)
		}
		s.log.Info("saved export ledger", "path", ledgerPath, "entries", led.Len())
	}

	return manifestChanged, nil
}

// imagePhase parses the freshly written export manifest and syncs every
// texture it names against the image ledger. Entries are keyed by the
// texture's unique name and compared on the hash embedded in its location.
func (s *Syncer) imagePhase(ctx context.Context, phase *PhaseReport) error {
	start := time.Now()
	ledgerPath := config.ImageLedgerPath(s.cfg.OutputDir)

	led, err := ledger.Load(ledgerPath)
	if err != nil {
		return err
	}

	manifest, err := s.readManifest()
	if err != nil {
		return err
	}

	var (
		tasks       []task
		hashUpdated bool
	)

	for _, entry := range manifest.Manifest {
		texture, err := resource.ParseDescriptor(entry.TextureLocation)
		if err != nil {
			return err
		}

		desc := resource.Descriptor{Name: entry.UniqueName, Hash: texture.Hash}
		class := s.classify(led, desc, phase)
		if class == Unchanged {
			continue
		}
		hashUpdated = true

		tasks = append(tasks, task{
			resource: desc,
			url:      s.client.TextureURL(entry.TextureLocation),
			dir:      config.ImageDir(s.cfg.OutputDir),
			fileName: resource.TextureFileName(entry.UniqueName),
			asText:   false,
		})
	}

	s.runTasks(ctx, led, tasks, phase)
	phase.Duration = time.Since(start)

	if hashUpdated {
		if err := led.Save(ledgerPath); err != nil {
			return fmt.Errorf("saving image ledger: %w", err)
		}
		s.log.Info("saved image ledger", "path", ledgerPath, "entries", led.Len())
	}

	return nil
}

// classify runs the change detector for one descriptor, logging the
// decision and updating the phase counters.
func (s *Syncer) classify(led *ledger.Ledger, desc resource.Descriptor, phase *PhaseReport) Classification {
	class := Classify(led, desc)
	switch class {
	case ClassNew:
		phase.New++
		s.log.Info("new resource", "name", desc.Name, "hash", desc.Hash)
	case Updated:
		phase.Updated++
		previous, _ := led.Get(desc.Name)
		s.log.Info("updated resource", "name", desc.Name, "hash", desc.Hash, "previous", previous)
	case Unchanged:
		phase.Unchanged++
		s.log.Debug("unchanged resource", "name", desc.Name, "hash", desc.Hash)
	}
	return class
}

// readManifest loads the export manifest artifact written by the export
// phase. A missing or corrupt manifest after a manifest-changed signal is
// fatal: the image phase cannot run without it.
func (s *Syncer) readManifest() (*resource.Manifest, error) {
	path := filepath.Join(config.ExportDir(s.cfg.OutputDir), ManifestSentinel)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading export manifest: %w", err)
	}

	var manifest resource.Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parsing export manifest: %w", err)
	}

	return &manifest, nil
}
