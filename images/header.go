package images

import (
	"strings"

	"github.com/tsawler/koinshot/model"
)

// HasHistoryHeader checks the header-band detections for the "History"
// title that gates transaction parsing. It returns whether the marker was
// found plus the joined OCR text, useful for diagnostics when it wasn't.
// No detections means no header: the band is never assumed readable.
func HasHistoryHeader(dets []model.Detection) (bool, string) {
	if len(dets) == 0 {
		return false, ""
	}

	texts := make([]string, 0, len(dets))
	for _, d := range dets {
		texts = append(texts, d.Text)
	}
	joined := strings.TrimSpace(strings.Join(texts, " "))

	return strings.Contains(strings.ToLower(joined), "history"), joined
}
