package koinly

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// DateFormat is the timestamp layout required by the import schema.
const DateFormat = "2006-01-02 15:04 UTC"

// parseLayout matches strings like "Sep 3 2025 14:30:03".
const parseLayout = "Jan 2 2006 15:04:05"

// ToUTC converts a date-anchor string and a normalized time to the UTC
// timestamp format.
//
// The date line looks like "Wed, Sep 3", "Mon; Dec 8" or "Fri. Nov 21":
// a weekday, a separator the OCR renders as comma, semicolon or period,
// then month abbreviation and day. The year is supplied by the caller
// since the app never displays it. When the named timezone cannot be
// loaded the local time is treated as already UTC; when the date or time
// strings do not parse an error is returned and the caller must treat the
// record as a date conversion failure, not abort.
func ToUTC(dateLine, timeStr string, year int, tzName string) (string, error) {
	if dateLine == "" || timeStr == "" {
		return "", fmt.Errorf("koinly: empty date line or time")
	}

	parts := splitDateLine(dateLine)
	dtStr := fmt.Sprintf("%s %d %s", parts, year, timeStr)

	loc, locErr := time.LoadLocation(tzName)
	if locErr != nil {
		loc = time.UTC
	}

	dt, err := time.ParseInLocation(parseLayout, dtStr, loc)
	if err != nil {
		return "", fmt.Errorf("koinly: cannot parse %q: %w", dtStr, err)
	}

	return dt.UTC().Format(DateFormat), nil
}

// splitDateLine strips the weekday prefix, trying the separators in the
// order the OCR most often produces them.
func splitDateLine(dateLine string) string {
	for _, sep := range []string{",", ";", "."} {
		if _, rest, found := strings.Cut(dateLine, sep); found {
			if trimmed := strings.TrimSpace(rest); trimmed != "" {
				return trimmed
			}
		}
	}
	return strings.TrimSpace(dateLine)
}

var trailingJunkRE = regexp.MustCompile(`[A-Za-z0-9][^A-Za-z0-9]+$`)

// ShapeLabel uppercases a merchant name into a ledger label. A name ending
// in non-alphanumeric garbage loses the garbage together with the final
// alphanumeric character, which the OCR probably misread too, and gains a
// "..." suffix: "Store5!!!" becomes "STORE...".
func ShapeLabel(merchant string) string {
	label := strings.ToUpper(strings.TrimSpace(merchant))
	if trailingJunkRE.MatchString(label) {
		label = strings.TrimSpace(trailingJunkRE.ReplaceAllString(label, "..."))
	}
	return label
}
