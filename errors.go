package koinshot

import "errors"

// ErrWriteOutput is returned when the final CSV cannot be written. Every
// per-image and per-record failure degrades to a counter and a log entry;
// this is the one failure that aborts the run.
var ErrWriteOutput = errors.New("koinshot: cannot write output file")
