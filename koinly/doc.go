// Package koinly produces the ledger-import CSV consumed by the tax tool.
//
// The schema is fixed at five columns (Koinly Date, Amount, Currency,
// Label, TxHash) with dates as "YYYY-MM-DD HH:MM UTC" strings. The package
// converts parsed local date/time pairs to UTC, shapes merchant labels,
// and handles the incremental output file: reading back existing rows,
// merging with a new batch, deduplicating, and writing the sorted result.
package koinly
