package output

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/tennoforge/exportsync/pkg/exportsync/syncer"
)

// PrettyFormatter renders a styled terminal summary using lipgloss.
type PrettyFormatter struct{}

// Format writes the formatted output to the buffer.
func (f *PrettyFormatter) Format(w *bytes.Buffer, r *syncer.Report) error {
	var lines []string

	lines = append(lines, TitleStyle.Render("Sync complete"))
	lines = append(lines, f.phaseLine("exports", r.Export))

	if r.ImageRan {
		lines = append(lines, f.phaseLine("images", r.Image))
	} else {
		lines = append(lines, MutedStyle.Render("images: skipped (manifest unchanged)"))
	}

	summary := fmt.Sprintf("%s %s in %s",
		LabelStyle.Render("Transferred:"),
		ValueStyle.Render(humanize.Bytes(uint64(r.TotalBytes()))),
		ValueStyle.Render(r.Duration.Round(timeRounding).String()))
	lines = append(lines, summary)

	if r.TotalFailed() > 0 {
		lines = append(lines, WarningStyle.Render(
			fmt.Sprintf("%d resource(s) failed and will be retried next run", r.TotalFailed())))
	}

	w.WriteString(HeaderBox.Render(strings.Join(lines, "\n")))
	w.WriteString("\n")
	return nil
}

// phaseLine renders one phase's counters.
func (f *PrettyFormatter) phaseLine(name string, p syncer.PhaseReport) string {
	counts := fmt.Sprintf("%s new, %s updated, %s unchanged",
		SuccessStyle.Render(fmt.Sprintf("%d", p.New)),
		SuccessStyle.Render(fmt.Sprintf("%d", p.Updated)),
		MutedStyle.Render(fmt.Sprintf("%d", p.Unchanged)))

	status := SuccessStyle.Render(fmt.Sprintf("%d downloaded", p.Downloaded))
	if p.Failed > 0 {
		status += ", " + WarningStyle.Render(fmt.Sprintf("%d failed", p.Failed))
	}

	return fmt.Sprintf("%s %s (%s)", LabelStyle.Render(name+":"), counts, status)
}
