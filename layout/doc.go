// Package layout reconstructs transaction records from spatially-located
// OCR detections.
//
// The input is an unordered set of detections (bounding box, text,
// confidence) for one screenshot of the payment app's history view. The
// package works in two stages:
//
//  1. [GroupLines] clusters tokens into horizontal text lines by vertical
//     proximity - a single-pass greedy clustering, not a general one.
//  2. [Parser.Parse] walks the lines top to bottom, tracking the active
//     date anchor, and turns each amount-bearing line into a
//     [model.CandidateRecord] by associating time, merchant and currency
//     tokens through spatial and confidence heuristics.
//
// The parser is deliberately conservative: a record with any unresolved
// field is flagged as a parse error rather than filled by guesswork,
// because the output feeds tax reporting and a wrong merchant or amount
// costs more than a missing row. Invalid records are still emitted so the
// caller can count and report them.
package layout
