package koinly

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tsawler/koinshot/model"
)

func makeRow(date, amount, currency, label string) model.Row {
	return model.Row{KoinlyDate: date, Amount: amount, Currency: currency, Label: label}
}

func TestMerge_CountsOnlyFreshDuplicates(t *testing.T) {
	existing := []model.Row{
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"),
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"), // pre-existing collision
	}
	fresh := []model.Row{
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"),
		makeRow("2025-09-04 08:00 UTC", "-3.00", "EUR", "BAKERY"),
	}

	merged, dupes := Merge(existing, fresh)
	if dupes != 1 {
		t.Errorf("Expected 1 new duplicate (existing collisions don't count), got %d", dupes)
	}
	if len(merged) != 2 {
		t.Errorf("Expected 2 merged rows, got %d", len(merged))
	}
}

func TestMerge_Idempotent(t *testing.T) {
	// Re-running the same batch against its own output must produce the
	// identical row set, with every fresh row counted as a duplicate.
	batch := []model.Row{
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"),
		makeRow("2025-09-04 08:00 UTC", "-3.00", "EUR", "BAKERY"),
		makeRow("2025-09-05 09:00 UTC", "+2.00", "USD", "WALLET"),
	}

	firstRun, dupes := Merge(nil, batch)
	if dupes != 0 {
		t.Errorf("First run should find no duplicates, got %d", dupes)
	}

	secondRun, dupes := Merge(firstRun, batch)
	if dupes != len(batch) {
		t.Errorf("Expected %d duplicates on re-run, got %d", len(batch), dupes)
	}
	if !reflect.DeepEqual(firstRun, secondRun) {
		t.Errorf("Re-run changed the row set")
	}
}

func TestMerge_KeyGranularity(t *testing.T) {
	existing := []model.Row{
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE SHOP"),
	}

	t.Run("label beyond sixth character ignored", func(t *testing.T) {
		fresh := []model.Row{makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE HOUSE")}
		_, dupes := Merge(existing, fresh)
		if dupes != 1 {
			t.Errorf("Expected label-prefix collision, got %d duplicates", dupes)
		}
	})

	t.Run("different amount never deduplicated", func(t *testing.T) {
		fresh := []model.Row{makeRow("2025-09-03 11:30 UTC", "-10.51", "USD", "COFFEE SHOP")}
		merged, dupes := Merge(existing, fresh)
		if dupes != 0 || len(merged) != 2 {
			t.Errorf("Amount difference must keep both rows, got %d rows / %d dupes", len(merged), dupes)
		}
	})
}

func TestSortRows_EmptyDatesLast(t *testing.T) {
	rows := []model.Row{
		makeRow("", "-1.00", "USD", "UNDATED"),
		makeRow("2025-09-04 08:00 UTC", "-3.00", "EUR", "BAKERY"),
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"),
	}

	SortRows(rows)

	if rows[0].Label != "COFFEE" || rows[1].Label != "BAKERY" {
		t.Errorf("Dated rows not ascending: %v", rows)
	}
	if rows[2].Label != "UNDATED" {
		t.Errorf("Undated row must sort last, got %v", rows[2])
	}
}

func TestWriteAndReadBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	rows := []model.Row{
		makeRow("2025-09-03 11:30 UTC", "-10.50", "USD", "COFFEE"),
		makeRow("2025-09-04 08:00 UTC", "-3.00", "EUR", "BAKERY"),
	}

	if err := Write(path, rows); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got := ReadExisting(path)
	if !reflect.DeepEqual(got, rows) {
		t.Errorf("Round trip mismatch:\n got %v\nwant %v", got, rows)
	}
}

func TestReadExisting_MissingFile(t *testing.T) {
	if rows := ReadExisting(filepath.Join(t.TempDir(), "nope.csv")); rows != nil {
		t.Errorf("Expected nil rows for a missing file, got %v", rows)
	}
}

func TestReadExisting_ForeignHeaderKeptAsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	content := "Date,Description\n2025-01-01,something\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows := ReadExisting(path)
	if len(rows) != 2 {
		t.Fatalf("Expected header preserved as data row, got %d rows", len(rows))
	}
	if rows[0].KoinlyDate != "Date" {
		t.Errorf("Mismatched header should become the first data row, got %v", rows[0])
	}
}

func TestReadExisting_NormalizesColumnCount(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	content := "Koinly Date,Amount,Currency,Label,TxHash\n" +
		"2025-09-03 11:30 UTC,-10.50\n" +
		"2025-09-04 08:00 UTC,-3.00,EUR,BAKERY,,extra,columns\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	rows := ReadExisting(path)
	if len(rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(rows))
	}
	if rows[0].Currency != "" || rows[0].TxHash != "" {
		t.Errorf("Short row not padded: %v", rows[0])
	}
	if rows[1].Label != "BAKERY" || rows[1].TxHash != "" {
		t.Errorf("Long row not truncated: %v", rows[1])
	}
}
