package syncer

import (
	"bytes"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz/lzma"

	"github.com/tennoforge/exportsync/pkg/exportsync/config"
	"github.com/tennoforge/exportsync/pkg/exportsync/fetch"
	"github.com/tennoforge/exportsync/pkg/exportsync/ledger"
	"github.com/tennoforge/exportsync/pkg/exportsync/resource"
)

// upstream fakes the origin and content hosts. Index text is served
// LZMA-compressed; every other path is looked up in payloads. It records
// how often each path was requested.
type upstream struct {
	compressedIndex []byte
	payloads        map[string][]byte

	mu    sync.Mutex
	calls map[string]int

	server *httptest.Server
}

func newUpstream(t *testing.T, index string, payloads map[string][]byte) *upstream {
	t.Helper()

	var buf bytes.Buffer
	lw, err := lzma.NewWriter(&buf)
	require.NoError(t, err)
	_, err = lw.Write([]byte(index))
	require.NoError(t, err)
	require.NoError(t, lw.Close())

	u := &upstream{
		compressedIndex: buf.Bytes(),
		payloads:        payloads,
		calls:           make(map[string]int),
	}
	u.server = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.server.Close)
	return u
}

func (u *upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.calls[r.URL.Path]++
	u.mu.Unlock()

	if r.URL.Path == "/PublicExport/index_en.txt.lzma" {
		_, _ = w.Write(u.compressedIndex)
		return
	}

	if body, ok := u.payloads[r.URL.Path]; ok {
		_, _ = w.Write(body)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (u *upstream) callCount(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.calls[path]
}

func (u *upstream) totalCalls() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	total := 0
	for _, n := range u.calls {
		total += n
	}
	return total
}

func newTestSyncer(u *upstream, outputDir string) *Syncer {
	client := fetch.New(fetch.Options{
		OriginURL:  u.server.URL,
		ContentURL: u.server.URL,
	})
	return New(client, Config{
		OutputDir:     outputDir,
		Workers:       4,
		CanonicalSize: 64,
		ImageSizes:    []int{32},
	})
}

func texturePNG(t *testing.T, edge int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, edge, edge))
	for y := 0; y < edge; y++ {
		for x := 0; x < edge; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 64, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func readLedger(t *testing.T, path string) map[string]string {
	t.Helper()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	got := make(map[string]string)
	require.NoError(t, json.Unmarshal(data, &got))
	return got
}

func TestRunDownloadsOnlyChangedResources(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	// Pre-seed the export ledger: A.json was synced at h1 already.
	require.NoError(t, os.WriteFile(
		config.ExportLedgerPath(out), []byte(`{"A.json":"h1"}`), 0o644))

	u := newUpstream(t, "A.json!h1\nB.json!h2", map[string][]byte{
		"/PublicExport/Manifest/B.json!h2": []byte(`{"items": [1, 2]}`),
	})

	report, err := newTestSyncer(u, out).Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Export.New)
	assert.Equal(t, 1, report.Export.Unchanged)
	assert.Equal(t, 1, report.Export.Downloaded)
	assert.Zero(t, report.Export.Failed)
	assert.False(t, report.ManifestChanged)
	assert.False(t, report.ImageRan)

	// A.json was never fetched.
	assert.Zero(t, u.callCount("/PublicExport/Manifest/A.json!h1"))

	// Both artifacts for B exist and the ledger picked up h2.
	assert.FileExists(t, filepath.Join(config.ExportDir(out), "B.json"))
	assert.FileExists(t, filepath.Join(config.ExportDir(out), "B.min.json"))
	assert.Equal(t,
		map[string]string{"A.json": "h1", "B.json": "h2"},
		readLedger(t, config.ExportLedgerPath(out)))
}

func TestRunManifestChangeTriggersImagePhase(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	manifest := `{"Manifest": [{"textureLocation": "/Lotus/Icons/Foo.png!t1", "uniqueName": "/Lotus/Icons/Foo"}]}`

	u := newUpstream(t, "ExportManifest.json!hX", map[string][]byte{
		"/PublicExport/Manifest/ExportManifest.json!hX": []byte(manifest),
		"/PublicExport/Lotus/Icons/Foo.png!t1":          texturePNG(t, 64),
	})

	report, err := newTestSyncer(u, out).Run(t.Context())
	require.NoError(t, err)

	assert.True(t, report.ManifestChanged)
	assert.True(t, report.ImageRan)
	assert.Equal(t, 1, report.Image.New)
	assert.Equal(t, 1, report.Image.Downloaded)

	// Canonical copy plus the 32x32 rendition.
	assert.FileExists(t, filepath.Join(config.ImageDir(out), "Lotus.Icons.Foo.png"))
	assert.FileExists(t, filepath.Join(config.SizeDir(out, 32), "Lotus.Icons.Foo.png"))

	// Image ledger is keyed by unique name with the texture's hash.
	assert.Equal(t,
		map[string]string{"/Lotus/Icons/Foo": "t1"},
		readLedger(t, config.ImageLedgerPath(out)))
}

func TestRunIsIdempotent(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	manifest := `{"Manifest": [{"textureLocation": "/Lotus/Icons/Foo.png!t1", "uniqueName": "/Lotus/Icons/Foo"}]}`

	u := newUpstream(t, "ExportManifest.json!hX\nExportWeapons.json!w1", map[string][]byte{
		"/PublicExport/Manifest/ExportManifest.json!hX": []byte(manifest),
		"/PublicExport/Manifest/ExportWeapons.json!w1":  []byte(`{"weapons": []}`),
		"/PublicExport/Lotus/Icons/Foo.png!t1":          texturePNG(t, 64),
	})

	s := newTestSyncer(u, out)

	first, err := s.Run(t.Context())
	require.NoError(t, err)
	require.Equal(t, 2, first.Export.Downloaded)
	require.Equal(t, 1, first.Image.Downloaded)

	exportLedger := readLedger(t, config.ExportLedgerPath(out))
	imageLedger := readLedger(t, config.ImageLedgerPath(out))
	callsAfterFirst := u.totalCalls()

	second, err := s.Run(t.Context())
	require.NoError(t, err)

	assert.Zero(t, second.TotalDownloaded())
	assert.Equal(t, 2, second.Export.Unchanged)
	assert.False(t, second.ManifestChanged)
	assert.False(t, second.ImageRan)

	// Second cycle touched upstream exactly once: the index fetch.
	assert.Equal(t, callsAfterFirst+1, u.totalCalls())

	// Ledger files are byte-for-byte stable.
	assert.Equal(t, exportLedger, readLedger(t, config.ExportLedgerPath(out)))
	assert.Equal(t, imageLedger, readLedger(t, config.ImageLedgerPath(out)))
}

func TestRunFailedDownloadIsRetriedNextCycle(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	// B's payload is missing upstream: the download 404s.
	u := newUpstream(t, "B.json!h2", nil)

	s := newTestSyncer(u, out)
	report, err := s.Run(t.Context())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Export.Failed)
	assert.Zero(t, report.Export.Downloaded)

	// The ledger kept no entry for B, so the next cycle re-classifies it.
	ledgerAfter := readLedger(t, config.ExportLedgerPath(out))
	assert.NotContains(t, ledgerAfter, "B.json")

	retry, err := s.Run(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, retry.Export.New)
}

func TestRunMalformedIndexLineIsFatal(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	u := newUpstream(t, "A.json!h1\nGarbageLineWithoutSeparator", nil)

	_, err := newTestSyncer(u, out).Run(t.Context())
	require.Error(t, err)

	// The cycle aborted before persisting anything.
	_, statErr := os.Stat(config.ExportLedgerPath(out))
	assert.True(t, os.IsNotExist(statErr))
}

func TestRunCorruptLedgerIsFatal(t *testing.T) {
	t.Parallel()
	out := t.TempDir()
	require.NoError(t, os.MkdirAll(out, 0o755))
	require.NoError(t, os.WriteFile(config.ExportLedgerPath(out), []byte("{corrupt"), 0o644))

	u := newUpstream(t, "A.json!h1", nil)

	_, err := newTestSyncer(u, out).Run(t.Context())
	require.ErrorIs(t, err, ledger.ErrCorrupt)
}

func TestRunMissingManifestAfterSignalIsFatal(t *testing.T) {
	t.Parallel()
	out := t.TempDir()

	// The manifest download itself 404s, so the image phase has no
	// manifest file to read.
	u := newUpstream(t, "ExportManifest.json!hX", nil)

	_, err := newTestSyncer(u, out).Run(t.Context())
	require.Error(t, err)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	led := ledger.New()
	led.Update("A.json", "h1")

	tests := []struct {
		name string
		desc string
		hash string
		want Classification
	}{
		{"absent is new", "B.json", "h2", ClassNew},
		{"different hash is updated", "A.json", "h9", Updated},
		{"equal hash is unchanged", "A.json", "h1", Unchanged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Classify(led, resource.Descriptor{Name: tt.desc, Hash: tt.hash})
			assert.Equal(t, tt.want, got)
		})
	}
}
