// Package koinshot converts screenshots of a payment app's transaction
// history into a ledger-import CSV.
//
// Basic usage:
//
//	cfg := config.Default()
//	cfg.InputPath = "shots/"
//	result, err := koinshot.New(cfg).Run()
//
// The pipeline per image: load and preprocess, OCR the header band and
// gate on the "History" title, OCR the full image, reconstruct records
// from the detections, convert dates to UTC, then merge everything with
// the existing output file, deduplicate, sort, and write.
//
// Failures stay local: an unreadable image, a missing header, an OCR
// error or an unparseable record each become a counter and a log entry,
// and the run moves on. Only an unwritable output file aborts.
package koinshot

import (
	"fmt"
	"image"
	"log/slog"
	"strings"

	"github.com/tsawler/koinshot/config"
	"github.com/tsawler/koinshot/images"
	"github.com/tsawler/koinshot/koinly"
	"github.com/tsawler/koinshot/layout"
	"github.com/tsawler/koinshot/model"
	"github.com/tsawler/koinshot/ocr"
)

// Engine produces text detections for an image. The production
// implementation is the ocr package's Tesseract client; tests inject
// scripted fakes.
type Engine interface {
	Detections(img image.Image) ([]model.Detection, error)
	Close() error
}

// FileError collects the human-readable error descriptions for one input
// file, in the order they occurred.
type FileError struct {
	Path     string
	Messages []string
}

// Result is the outcome of a run: aggregate counters plus the per-file
// error listing.
type Result struct {
	Stats      model.RunStats
	FileErrors []FileError
}

// Runner drives the conversion pipeline. Create one with New, optionally
// adjust it with the With methods, then call Run.
type Runner struct {
	cfg    config.Config
	log    *slog.Logger
	parser *layout.Parser

	engine     Engine
	ownsEngine bool
	engineErr  error
	newEngine  func() (Engine, error)
}

// New creates a Runner for the given configuration.
func New(cfg config.Config) *Runner {
	return &Runner{
		cfg:    cfg,
		log:    slog.Default(),
		parser: layout.NewParser(),
		newEngine: func() (Engine, error) {
			c, err := ocr.New()
			if err != nil {
				return nil, err
			}
			return c, nil
		},
	}
}

// WithLogger replaces the default logger.
func (r *Runner) WithLogger(log *slog.Logger) *Runner {
	r.log = log
	return r
}

// WithParser replaces the default layout parser, e.g. to adjust
// thresholds.
func (r *Runner) WithParser(p *layout.Parser) *Runner {
	r.parser = p
	return r
}

// WithEngine injects an OCR engine. The caller keeps ownership and must
// close it; Run will not.
func (r *Runner) WithEngine(e Engine) *Runner {
	r.engine = e
	return r
}

// Run executes the conversion and returns the accumulated statistics and
// error listing. The Result is valid even when err is non-nil.
func (r *Runner) Run() (*Result, error) {
	res := &Result{}
	res.Stats.Start()

	defer func() {
		if r.ownsEngine && r.engine != nil {
			r.engine.Close()
			r.engine = nil
			r.ownsEngine = false
		}
	}()

	paths, err := images.Find(r.cfg.InputPath)
	if err != nil {
		// No input is not fatal: the run still merges and rewrites any
		// existing output file, same as an empty directory would.
		r.log.Warn("input path not usable", "path", r.cfg.InputPath, "error", err)
	}

	var fresh []model.Row
	for _, p := range paths {
		fresh = append(fresh, r.processImage(p, res)...)
	}

	koinly.SortRows(fresh)

	existing := koinly.ReadExisting(r.cfg.OutputFile)
	merged, dupes := koinly.Merge(existing, fresh)
	res.Stats.DuplicatesRemoved = dupes
	koinly.SortRows(merged)

	if err := koinly.Write(r.cfg.OutputFile, merged); err != nil {
		return res, fmt.Errorf("%w: %v", ErrWriteOutput, err)
	}
	res.Stats.RecordsWritten = len(merged)

	r.log.Info("run complete",
		"files_processed", res.Stats.FilesProcessed,
		"files_ignored", res.Stats.FilesIgnored,
		"records_read", res.Stats.RecordsRead,
		"records_written", res.Stats.RecordsWritten,
		"duplicates", res.Stats.DuplicatesRemoved,
		"errors", res.Stats.RecordErrors,
		"duration", res.Stats.Duration(),
	)
	for _, fe := range res.FileErrors {
		for _, msg := range fe.Messages {
			r.log.Info("record error", "file", fe.Path, "detail", msg)
		}
	}

	return res, nil
}

// processImage runs the per-image pipeline and returns the valid rows it
// produced. All failures are handled locally.
func (r *Runner) processImage(path string, res *Result) []model.Row {
	res.Stats.FilesProcessed++

	img, err := images.Load(path)
	if err != nil {
		res.Stats.FilesIgnored++
		r.log.Warn("cannot load image", "file", path, "error", err)
		return nil
	}
	img = images.Preprocess(img)

	headerDets := r.detect(images.HeaderBand(img), path)
	found, snippet := images.HasHistoryHeader(headerDets)
	r.log.Info("header check", "file", path, "found", found)
	if snippet != "" {
		r.log.Debug("header snippet", "file", path, "text", snippet)
	}
	if !found {
		res.Stats.FilesIgnored++
		return nil
	}

	dets := r.detect(img, path)
	if len(dets) == 0 {
		r.log.Warn("no detections; skipping parsing", "file", path)
		return nil
	}
	for _, d := range dets {
		r.log.Debug("detection", "file", path, "conf", d.Confidence, "text", d.Text)
	}

	records, errs := r.parser.Parse(dets)
	res.Stats.RecordsRead += len(records)
	res.Stats.RecordErrors += errs

	var rows []model.Row
	for _, rec := range records {
		if rec.ParseError {
			detail := parseErrorDetail(rec)
			r.addFileError(res, path, detail)
			r.log.Warn("parse error record", "file", path, "detail", detail)
			continue
		}

		label := koinly.ShapeLabel(rec.Merchant)
		kdate, err := koinly.ToUTC(rec.DateLine, rec.Time, r.cfg.Year, r.cfg.Timezone)
		if err != nil {
			// The record parsed cleanly but its date did not convert;
			// counted and reported separately from parse errors.
			res.Stats.RecordErrors++
			detail := fmt.Sprintf("%s - Date conversion failed (%s, %s, %s, %s)",
				label, rec.DateLine, rec.Time, rec.Amount, rec.Currency)
			r.addFileError(res, path, detail)
			r.log.Warn("date conversion failed", "file", path, "detail", detail)
			continue
		}

		rows = append(rows, model.Row{
			KoinlyDate: kdate,
			Amount:     rec.Amount,
			Currency:   rec.Currency,
			Label:      label,
		})
	}
	return rows
}

// detect runs OCR on an image, degrading any engine failure to an empty
// detection set.
func (r *Runner) detect(img image.Image, path string) []model.Detection {
	engine := r.engineFor()
	if engine == nil {
		return nil
	}
	dets, err := engine.Detections(img)
	if err != nil {
		r.log.Warn("detection failed", "file", path, "error", err)
		return nil
	}
	return dets
}

// engineFor returns the OCR engine, creating it on first use. A creation
// failure is remembered so it is logged once, not per image.
func (r *Runner) engineFor() Engine {
	if r.engine != nil {
		return r.engine
	}
	if r.engineErr != nil {
		return nil
	}
	engine, err := r.newEngine()
	if err != nil {
		r.engineErr = err
		r.log.Warn("OCR engine unavailable", "error", err)
		return nil
	}
	r.engine = engine
	r.ownsEngine = true
	return r.engine
}

func (r *Runner) addFileError(res *Result, path, message string) {
	for i := range res.FileErrors {
		if res.FileErrors[i].Path == path {
			res.FileErrors[i].Messages = append(res.FileErrors[i].Messages, message)
			return
		}
	}
	res.FileErrors = append(res.FileErrors, FileError{Path: path, Messages: []string{message}})
}

// parseErrorDetail formats one flagged record for the per-file listing:
// the merchant (or a placeholder), which fields were missing, and whatever
// fields did resolve.
func parseErrorDetail(rec model.CandidateRecord) string {
	desc := "Parse error"
	if missing := rec.MissingFields(); len(missing) > 0 {
		desc = "Missing " + strings.Join(missing, ", ")
	}

	merchant := rec.Merchant
	if merchant == "" {
		merchant = "Unknown merchant"
	}

	var details []string
	for _, field := range []string{rec.DateLine, rec.Time, rec.Amount, rec.Currency} {
		if field != "" {
			details = append(details, field)
		}
	}
	joined := "No details"
	if len(details) > 0 {
		joined = strings.Join(details, " ")
	}

	return fmt.Sprintf("%s - %s (%s)", merchant, desc, joined)
}
