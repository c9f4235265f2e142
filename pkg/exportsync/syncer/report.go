package syncer

import "time"

// PhaseReport accumulates the outcome of one sync phase.
type PhaseReport struct {
	New        int           `json:"new"`
	Updated    int           `json:"updated"`
	Unchanged  int           `json:"unchanged"`
	Downloaded int           `json:"downloaded"`
	Failed     int           `json:"failed"`
	Bytes      int64         `json:"bytes"`
	Duration   time.Duration `json:"duration"`
}

// Changed returns how many resources were classified as needing a download.
func (p PhaseReport) Changed() int {
	return p.New + p.Updated
}

// Report describes one full sync cycle.
type Report struct {
	Export          PhaseReport   `json:"export"`
	Image           PhaseReport   `json:"image"`
	ManifestChanged bool          `json:"manifest_changed"`
	ImageRan        bool          `json:"image_ran"`
	Duration        time.Duration `json:"duration"`
}

// TotalDownloaded sums successful downloads across phases.
func (r *Report) TotalDownloaded() int {
	return r.Export.Downloaded + r.Image.Downloaded
}

// TotalFailed sums per-resource failures across phases.
func (r *Report) TotalFailed() int {
	return r.Export.Failed + r.Image.Failed
}

// TotalBytes sums downloaded payload bytes across phases.
func (r *Report) TotalBytes() int64 {
	return r.Export.Bytes + r.Image.Bytes
}
