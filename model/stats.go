package model

import "time"

// RunStats accumulates counters over a full conversion run. A single run
// appends to one RunStats value; there is no concurrent access.
type RunStats struct {
	FilesProcessed    int
	FilesIgnored      int
	RecordsRead       int
	RecordsWritten    int
	DuplicatesRemoved int
	RecordErrors      int

	startTime time.Time
}

// Start marks the beginning of the run for duration reporting.
func (s *RunStats) Start() {
	s.startTime = time.Now()
}

// Duration returns the elapsed time since Start, or zero if the run never
// started.
func (s *RunStats) Duration() time.Duration {
	if s.startTime.IsZero() {
		return 0
	}
	return time.Since(s.startTime)
}
