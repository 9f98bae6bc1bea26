package layout

import (
	"sort"
	"strings"

	"github.com/tsawler/koinshot/model"
)

// GrouperConfig holds configuration for line grouping.
type GrouperConfig struct {
	// YTolerance is the maximum vertical gap, in pixels, between a token
	// and the last token appended to the open line for the two to be
	// grouped together. Two date anchors whose centroids fall within this
	// band merge into a single line; resolution order for that case is
	// unspecified and the merged text is matched as-is.
	YTolerance float64
}

// DefaultGrouperConfig returns the tolerance used for the main parsing pass.
func DefaultGrouperConfig() GrouperConfig {
	return GrouperConfig{YTolerance: 30}
}

// GroupLines clusters tokens into horizontal lines.
//
// Tokens are sorted by Y, then a new line starts whenever the gap between
// the current token's Y and the last-appended token's Y exceeds the
// tolerance. Within each finished line tokens are sorted by X and their
// texts space-joined. The pass is order-sensitive: it assumes line bands do
// not overlap after Y-sorting, and can mis-group a token whose vertical
// span straddles two visual lines.
func GroupLines(tokens []model.Token, cfg GrouperConfig) []model.Line {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Y < sorted[j].Y
	})

	var groups [][]model.Token
	for _, tok := range sorted {
		if len(groups) == 0 {
			groups = append(groups, []model.Token{tok})
			continue
		}
		open := groups[len(groups)-1]
		if abs(tok.Y-open[len(open)-1].Y) <= cfg.YTolerance {
			groups[len(groups)-1] = append(open, tok)
		} else {
			groups = append(groups, []model.Token{tok})
		}
	}

	lines := make([]model.Line, 0, len(groups))
	for _, grp := range groups {
		sort.SliceStable(grp, func(i, j int) bool {
			return grp[i].X < grp[j].X
		})

		texts := make([]string, len(grp))
		var sumY float64
		for i, tok := range grp {
			texts[i] = tok.Text
			sumY += tok.Y
		}

		lines = append(lines, model.Line{
			Y:      sumY / float64(len(grp)),
			Text:   strings.Join(texts, " "),
			Tokens: grp,
		})
	}

	return lines
}

func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}
