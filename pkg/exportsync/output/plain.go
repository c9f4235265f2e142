package output

import (
	"bytes"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

// timeRounding keeps durations readable in summaries.
const timeRounding = 10 * time.Millisecond

// PlainFormatter renders an unstyled summary suitable for pipes and logs.
type PlainFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PlainFormatter) Format(w *bytes.Buffer, r *syncer.Report) error {
	fmt.Fprintf(w, "export: %d new, %d updated, %d unchanged, %d downloaded, %d failed\n",
		r.Export.New, r.Export.Updated, r.Export.Unchanged, r.Export.Downloaded, r.Export.Failed)

	if r.ImageRan {
		fmt.Fprintf(w, "image: %d new, %d updated, %d unchanged, %d downloaded, %d failed\n",
			r.Image.New, r.Image.Updated, r.Image.Unchanged, r.Image.Downloaded, r.Image.Failed)
	} else {
		fmt.Fprintln(w, "image: skipped (manifest unchanged)")
	}

	fmt.Fprintf(w, "transferred %s in %s\n",
		humanize.Bytes(uint64(r.TotalBytes())), r.Duration.Round(timeRounding))
	return nil
}
