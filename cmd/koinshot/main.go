// Command koinshot converts screenshots of a payment app's transaction
// history into a ledger-import CSV.
//
// Usage:
//
//	koinshot -input shots/ -output redotpay.csv -timezone Asia/Jerusalem -year 2025
//
// OCR requires Tesseract and the "ocr" build tag; see the ocr package.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tsawler/koinshot"
	"github.com/tsawler/koinshot/config"
)

const version = "1.1.0"

func main() {
	defaults := config.Default()

	inputFlag := flag.String("input", defaults.InputPath, "Input image file or directory (no recursion)")
	outputFlag := flag.String("output", defaults.OutputFile, "Output CSV filename")
	configFlag := flag.String("config", "", "Path to YAML config file")
	tzFlag := flag.String("timezone", defaults.Timezone, "Timezone the screenshots were taken in")
	yearFlag := flag.Int("year", defaults.Year, "Transaction year to apply to parsed dates")
	verboseFlag := flag.Bool("v", false, "Verbose logging")
	printLogsFlag := flag.Bool("print-logs", false, "Print log messages to the console")
	versionFlag := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(*configFlag)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Explicit flags win over config file values.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputFlag
		case "output":
			cfg.OutputFile = *outputFlag
		case "timezone":
			cfg.Timezone = *tzFlag
		case "year":
			cfg.Year = *yearFlag
		case "v":
			cfg.Verbose = *verboseFlag
		case "print-logs":
			cfg.PrintLogs = *printLogsFlag
		}
	})

	logger, closeLog, err := setupLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer closeLog()

	result, err := koinshot.New(cfg).WithLogger(logger).Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	printSummary(result)
}

// setupLogging builds the structured logger: a log file when configured,
// mirrored to the console when requested.
func setupLogging(cfg config.Config) (*slog.Logger, func(), error) {
	var writers []io.Writer
	closeLog := func() {}

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot open log file %q: %v", cfg.LogFile, err)
		}
		writers = append(writers, f)
		closeLog = func() { f.Close() }
	}
	if cfg.PrintLogs {
		writers = append(writers, os.Stderr)
	}
	if len(writers) == 0 {
		writers = append(writers, io.Discard)
	}

	level := slog.LevelInfo
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(io.MultiWriter(writers...), &slog.HandlerOptions{Level: level})
	return slog.New(handler), closeLog, nil
}

func printSummary(result *koinshot.Result) {
	s := result.Stats
	fmt.Printf("Processed %d files (ignored: %d) in %.2fs\n",
		s.FilesProcessed, s.FilesIgnored, s.Duration().Seconds())
	fmt.Printf("Records read: %d, written: %d, duplicates: %d, errors: %d\n",
		s.RecordsRead, s.RecordsWritten, s.DuplicatesRemoved, s.RecordErrors)

	if len(result.FileErrors) == 0 {
		return
	}
	fmt.Println("\nFiles with errors:")
	for _, fe := range result.FileErrors {
		fmt.Printf("\n%s:\n", fe.Path)
		for _, msg := range fe.Messages {
			fmt.Printf("  %s\n", msg)
		}
	}
}
