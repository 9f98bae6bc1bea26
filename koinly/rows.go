package koinly

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/tsawler/koinshot/model"
)

// Header is the fixed five-column header of the output file. Column order
// matters to the importer.
var Header = []string{"Koinly Date", "Amount", "Currency", "Label", "TxHash"}

// emptyDateSortKey places rows with an unresolved date after every dated
// row when sorting.
const emptyDateSortKey = "9999-12-31 23:59 UTC"

// ReadExisting reads back rows from a previous run's output file.
//
// The header is validated against the expected schema; a mismatched header
// is preserved as a data row rather than discarded. Rows are normalized to
// exactly five columns. Any read failure, including a missing file,
// degrades to no existing rows and never aborts the run.
func ReadExisting(path string) []model.Row {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	var rows []model.Row

	header, err := reader.Read()
	if err != nil {
		return nil
	}
	if !headerMatches(header) {
		rows = append(rows, model.RowFromFields(header))
	}

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Partial readback is worse than none: a half-merged file
			// would drop rows on rewrite.
			return nil
		}
		rows = append(rows, model.RowFromFields(record))
	}

	return rows
}

func headerMatches(header []string) bool {
	if len(header) != len(Header) {
		return false
	}
	for i, h := range header {
		if strings.TrimSpace(h) != Header[i] {
			return false
		}
	}
	return true
}

// Merge combines existing rows with a freshly produced batch, removing
// duplicates by dedup key. The first occurrence of a key wins. A duplicate
// is only counted when the discarded row came from the fresh batch;
// pre-existing rows colliding with each other are dropped silently.
func Merge(existing, fresh []model.Row) (merged []model.Row, newDuplicates int) {
	seen := make(map[model.Key]bool)

	for _, row := range existing {
		key := row.DedupKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		merged = append(merged, row)
	}

	for _, row := range fresh {
		key := row.DedupKey()
		if seen[key] {
			newDuplicates++
			continue
		}
		seen[key] = true
		merged = append(merged, row)
	}

	return merged, newDuplicates
}

// SortRows orders rows ascending by date string, with empty dates last.
func SortRows(rows []model.Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		return sortKey(rows[i]) < sortKey(rows[j])
	})
}

func sortKey(r model.Row) string {
	if r.KoinlyDate == "" {
		return emptyDateSortKey
	}
	return r.KoinlyDate
}

// Write writes the header and rows to the output file, replacing any
// previous content.
func Write(path string, rows []model.Row) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("koinly: cannot create output file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(Header); err != nil {
		return fmt.Errorf("koinly: cannot write header: %w", err)
	}
	for _, row := range rows {
		if err := w.Write(row.Fields()); err != nil {
			return fmt.Errorf("koinly: cannot write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}
