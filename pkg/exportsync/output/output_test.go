package output

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

func sampleReport() *syncer.Report {
	return &syncer.Report{
		Export: syncer.PhaseReport{
			New: 2, Updated: 1, Unchanged: 40, Downloaded: 3, Bytes: 2048,
		},
		Image: syncer.PhaseReport{
			New: 5, Downloaded: 4, Failed: 1, Bytes: 4096,
		},
		ManifestChanged: true,
		ImageRan:        true,
		Duration:        2 * time.Second,
	}
}

func TestNew(t *testing.T) {
	t.Parallel()

	for _, format := range []string{FormatPretty, FormatPlain, FormatJSON, ""} {
		f, err := New(format)
		require.NoError(t, err, format)
		require.NotNil(t, f)
	}

	_, err := New("xml")
	require.Error(t, err)
}

func TestPlainFormatter(t *testing.T) {
	t.Parallel()

	got, err := Render(FormatPlain, sampleReport())
	require.NoError(t, err)

	assert.Contains(t, got, "export: 2 new, 1 updated, 40 unchanged, 3 downloaded, 0 failed")
	assert.Contains(t, got, "image: 5 new, 0 updated, 0 unchanged, 4 downloaded, 1 failed")
	assert.Contains(t, got, "transferred")
}

func TestPlainFormatterSkippedImagePhase(t *testing.T) {
	t.Parallel()

	r := sampleReport()
	r.ImageRan = false

	got, err := Render(FormatPlain, r)
	require.NoError(t, err)
	assert.Contains(t, got, "image: skipped (manifest unchanged)")
}

func TestJSONFormatterRoundTrips(t *testing.T) {
	t.Parallel()

	got, err := Render(FormatJSON, sampleReport())
	require.NoError(t, err)

	var decoded syncer.Report
	require.NoError(t, json.Unmarshal([]byte(got), &decoded))
	assert.Equal(t, *sampleReport(), decoded)
}

func TestPrettyFormatterMentionsFailures(t *testing.T) {
	t.Parallel()

	got, err := Render(FormatPretty, sampleReport())
	require.NoError(t, err)

	assert.Contains(t, got, "Sync complete")
	assert.Contains(t, got, "retried next run")
}
