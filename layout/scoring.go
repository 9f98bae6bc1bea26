package layout

import (
	"math"
	"sort"

	"github.com/tsawler/koinshot/model"
)

// TimeCandidate is a scored time/prefix token. Index refers to the
// position in the token slice passed to [RankTimeCandidates].
type TimeCandidate struct {
	Score int
	Index int
}

// RankTimeCandidates scores tokens as time/prefix candidates and returns
// them best first.
//
// Scoring rules:
//   - +10 when the token matches the prefixed time-of-day pattern
//   - +5 when the record is negative and the token contains a bare 4-digit
//     run (a card suffix)
//   - +5 when the record is positive and the token mentions "Wallet"
//   - plus the token confidence scaled to 0-10
//
// The confidence bonus applies only to tokens that earned at least one
// rule point; tokens scoring zero are not candidates at all. Ties are
// broken toward the higher index, i.e. the rightmost token when callers
// pass an X-sorted slice.
func RankTimeCandidates(tokens []model.Token, negative, positive bool, minConfidence float64) []TimeCandidate {
	var ranked []TimeCandidate
	for i, tok := range tokens {
		if tok.Confidence < minConfidence {
			continue
		}

		score := 0
		if timeRE.MatchString(tok.Text) {
			score += 10
		}
		if negative && fourDigitRE.MatchString(tok.Text) {
			score += 5
		}
		if positive && walletWordRE.MatchString(tok.Text) {
			score += 5
		}
		if score == 0 {
			continue
		}

		score += int(math.Round(tok.Confidence * 10))
		ranked = append(ranked, TimeCandidate{Score: score, Index: i})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index > ranked[j].Index
	})
	return ranked
}

// MergeAdjacentTokens greedily merges horizontally adjacent merchant tokens
// into multi-word spans. Tokens must be X-sorted.
//
// Two tokens merge when they sit on the same visual line, the gap from the
// span's right edge to the token's left edge is tight, and both carry
// enough confidence to trust the join. A merged span keeps the first
// token's position, box and confidence; only the text grows.
func MergeAdjacentTokens(tokens []model.Token, cfg ParserConfig) []model.Token {
	var spans []model.Token
	for _, tok := range tokens {
		if len(spans) > 0 {
			prev := &spans[len(spans)-1]
			sameLine := abs(tok.Y-prev.Y) <= cfg.MergeLineTolerance
			if sameLine {
				gap := tok.Box.MinX() - prev.Box.MaxX()
				if gap >= cfg.MergeGapMin && gap <= cfg.MergeGapMax &&
					prev.Confidence > cfg.MergeMinConfidence && tok.Confidence > cfg.MergeMinConfidence {
					prev.Text = prev.Text + " " + tok.Text
					continue
				}
			}
		}
		spans = append(spans, tok)
	}
	return spans
}

// SelectMerchantSpan picks the best merchant span by confidence rounded to
// one decimal, then text length; the first of equals wins. The rounding
// keeps a marginally-more-confident short token from beating a long,
// comparably confident merchant name.
func SelectMerchantSpan(spans []model.Token) model.Token {
	if len(spans) == 0 {
		return model.Token{}
	}
	best := spans[0]
	for _, s := range spans[1:] {
		bc := math.Round(best.Confidence*10) / 10
		sc := math.Round(s.Confidence*10) / 10
		if sc > bc || (sc == bc && len(s.Text) > len(best.Text)) {
			best = s
		}
	}
	return best
}
