package syncer

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/tennoforge/exportsync/pkg/exportsync/ledger"
	"github.com/tennoforge/exportsync/pkg/exportsync/materialize"
	"github.com/tennoforge/exportsync/pkg/exportsync/resource"
)

// task is one planned transfer. It is immutable once built and shared
// read-only with the goroutine that executes it.
type task struct {
	resource resource.Descriptor
	url      string
	dir      string
	fileName string
	asText   bool
}

// runTasks executes every task with bounded fan-out and blocks until all of
// them reach a terminal state. This is the hard join barrier between
// phases: nothing after runTasks observes an in-flight transfer.
//
// Per-resource failures are logged and dropped here; the ledger keeps its
// prior value so the resource is retried on the next cycle. Nothing
// propagates past this boundary.
func (s *Syncer) runTasks(ctx context.Context, led *ledger.Ledger, tasks []task, phase *PhaseReport) {
	if len(tasks) == 0 {
		return
	}

	var downloaded, failed, bytes atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.Workers)

	for _, t := range tasks {
		g.Go(func() error {
			n, ok := s.runTask(ctx, led, t)
			if ok {
				downloaded.Add(1)
				bytes.Add(n)
			} else {
				failed.Add(1)
			}
			return nil
		})
	}

	// Tasks never return errors; Wait is purely the join barrier.
	_ = g.Wait()

	phase.Downloaded = int(downloaded.Load())
	phase.Failed = int(failed.Load())
	phase.Bytes = bytes.Load()
}

// runTask performs one fetch+materialize unit and, on success, folds the
// new hash into the ledger and returns the payload size. The ledger lock
// is taken only inside Update, never across the network or filesystem I/O
// below.
func (s *Syncer) runTask(ctx context.Context, led *ledger.Ledger, t task) (int64, bool) {
	body, err := s.client.Get(ctx, t.url)
	if err != nil {
		s.log.Warn("download failed",
			"name", t.resource.Name, "hash", t.resource.Hash, "error", err)
		return 0, false
	}

	if t.asText {
		err = materialize.Text(body, t.dir, t.fileName)
	} else {
		err = materialize.Image(body, t.dir, t.fileName, s.cfg.CanonicalSize, s.cfg.ImageSizes)
	}
	if err != nil {
		s.log.Warn("materialization failed",
			"name", t.resource.Name, "hash", t.resource.Hash, "error", err)
		return 0, false
	}

	led.Update(t.resource.Name, t.resource.Hash)
	s.log.Info("downloaded", "name", t.resource.Name, "hash", t.resource.Hash)
	return int64(len(body)), true
}
