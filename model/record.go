package model

// CandidateRecord is a provisional transaction extracted from one
// amount-bearing line. Invalid records are kept, not dropped, so callers
// can count and report them; ParseError marks a record with one or more
// unresolved fields.
type CandidateRecord struct {
	// DateLine is the raw text of the date anchor the record fell under,
	// e.g. "Wed, Sep 3".
	DateLine string

	// Time is the normalized time of day ("HH:MM:SS"), or empty when no
	// time token resolved.
	Time string

	// Amount is the signed decimal amount exactly as OCR produced it.
	Amount string

	// Currency is the 3-letter uppercase code from the amount token, or
	// empty when the code was not co-located with the amount.
	Currency string

	// Merchant is the reconstructed merchant name, or empty when no
	// candidate survived the filters.
	Merchant string

	// ParseError is true when any of merchant, amount, currency or time is
	// unresolved, or the alignment check failed.
	ParseError bool
}

// MissingFields names the unresolved fields, in reporting order. An empty
// result for a ParseError record means the alignment check alone failed.
func (r CandidateRecord) MissingFields() []string {
	var missing []string
	if r.Merchant == "" {
		missing = append(missing, "merchant")
	}
	if r.Time == "" {
		missing = append(missing, "time")
	}
	if r.Amount == "" {
		missing = append(missing, "amount")
	}
	if r.Currency == "" {
		missing = append(missing, "currency")
	}
	return missing
}

// Row is a final ledger CSV row. TxHash is always empty in this schema but
// kept as a column for compatibility with the import format.
type Row struct {
	KoinlyDate string
	Amount     string
	Currency   string
	Label      string
	TxHash     string
}

// Fields returns the row as a CSV record in column order.
func (r Row) Fields() []string {
	return []string{r.KoinlyDate, r.Amount, r.Currency, r.Label, r.TxHash}
}

// RowFromFields builds a Row from a CSV record, padding or truncating to
// exactly five columns.
func RowFromFields(fields []string) Row {
	f := make([]string, 5)
	copy(f, fields)
	return Row{
		KoinlyDate: f[0],
		Amount:     f[1],
		Currency:   f[2],
		Label:      f[3],
		TxHash:     f[4],
	}
}

// Key is the deduplication key: date, amount, currency, and the first six
// characters of the label. Rows differing only beyond the sixth label
// character are considered duplicates.
type Key struct {
	Date, Amount, Currency, LabelPrefix string
}

// DedupKey computes the row's deduplication Key.
func (r Row) DedupKey() Key {
	prefix := r.Label
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	return Key{Date: r.KoinlyDate, Amount: r.Amount, Currency: r.Currency, LabelPrefix: prefix}
}
