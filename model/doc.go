// Package model provides the value types shared by every stage of the
// conversion pipeline.
//
// The pipeline moves through a fixed sequence of representations:
//
//   - [Detection] - raw OCR output: a quadrilateral, recognized text, and a
//     confidence score in [0,1]
//   - [Token] - a Detection reduced to its centroid, with trimmed text
//   - [Line] - tokens grouped by vertical proximity, sorted left to right
//   - [CandidateRecord] - one provisional transaction per amount-bearing
//     line, valid or flagged with a parse error
//   - [Row] - a final ledger CSV row with a UTC date string
//
// All types are plain values. Nothing in this package mutates a Detection
// after construction; downstream stages derive new values instead.
package model
