package layout

import (
	"testing"

	"github.com/tsawler/koinshot/model"
)

func TestRankTimeCandidates_RulePoints(t *testing.T) {
	tokens := []model.Token{
		makeToken("Coffee Shop", 200, 100, 0.9),      // no rule matches
		makeToken("1234 14:30:03", 240, 140, 0.5),    // time pattern + 4-digit run
		makeToken("5678", 300, 140, 0.5),             // 4-digit run only
		makeToken("Wallet balance", 350, 140, 0.5),   // wallet word only
		makeToken("1234 14:30:03", 240, 180, 0.05),   // below confidence floor
	}

	t.Run("negative record", func(t *testing.T) {
		ranked := RankTimeCandidates(tokens, true, false, 0.19)
		if len(ranked) != 2 {
			t.Fatalf("Expected 2 candidates, got %d", len(ranked))
		}
		// time match (10) + 4-digit (5) + conf (5) = 20
		if ranked[0].Index != 1 || ranked[0].Score != 20 {
			t.Errorf("Expected index 1 score 20 first, got index %d score %d", ranked[0].Index, ranked[0].Score)
		}
		// 4-digit (5) + conf (5) = 10
		if ranked[1].Index != 2 || ranked[1].Score != 10 {
			t.Errorf("Expected index 2 score 10 second, got index %d score %d", ranked[1].Index, ranked[1].Score)
		}
	})

	t.Run("positive record", func(t *testing.T) {
		ranked := RankTimeCandidates(tokens, false, true, 0.19)
		if len(ranked) != 2 {
			t.Fatalf("Expected 2 candidates, got %d", len(ranked))
		}
		// time match (10) + conf (5) = 15 beats wallet (5) + conf (5) = 10
		if ranked[0].Index != 1 {
			t.Errorf("Expected time-pattern token first, got index %d", ranked[0].Index)
		}
		if ranked[1].Index != 3 {
			t.Errorf("Expected wallet token second, got index %d", ranked[1].Index)
		}
	})

	t.Run("unsigned record", func(t *testing.T) {
		ranked := RankTimeCandidates(tokens, false, false, 0.19)
		if len(ranked) != 1 || ranked[0].Index != 1 {
			t.Errorf("Unsigned record should only score the time pattern, got %v", ranked)
		}
	})
}

func TestRankTimeCandidates_TieBreaksRightmost(t *testing.T) {
	tokens := []model.Token{
		makeToken("1234 14:30:03", 200, 100, 0.5),
		makeToken("5678 15:45:10", 400, 100, 0.5),
	}

	ranked := RankTimeCandidates(tokens, false, false, 0.19)
	if len(ranked) != 2 {
		t.Fatalf("Expected 2 candidates, got %d", len(ranked))
	}
	if ranked[0].Index != 1 {
		t.Errorf("Equal scores must prefer the higher index, got %d", ranked[0].Index)
	}
}

func TestMergeAdjacentTokens(t *testing.T) {
	cfg := DefaultParserConfig()

	near := func(txt string, left, right, y, conf float64) model.Token {
		return model.Token{
			X:          (left + right) / 2,
			Y:          y,
			Text:       txt,
			Confidence: conf,
			Box:        model.NewQuadFromRect(left, y-10, right, y+10),
		}
	}

	t.Run("tight gap merges", func(t *testing.T) {
		tokens := []model.Token{
			near("Coffee", 150, 240, 100, 0.9),
			near("Shop", 245, 300, 102, 0.85),
		}
		spans := MergeAdjacentTokens(tokens, cfg)
		if len(spans) != 1 {
			t.Fatalf("Expected 1 merged span, got %d", len(spans))
		}
		if spans[0].Text != "Coffee Shop" {
			t.Errorf("Expected 'Coffee Shop', got %q", spans[0].Text)
		}
		if spans[0].Confidence != 0.9 {
			t.Errorf("Merged span must keep the first token's confidence")
		}
	})

	t.Run("wide gap stays split", func(t *testing.T) {
		tokens := []model.Token{
			near("Coffee", 150, 240, 100, 0.9),
			near("Shop", 280, 340, 102, 0.85),
		}
		if spans := MergeAdjacentTokens(tokens, cfg); len(spans) != 2 {
			t.Errorf("Expected 2 spans for a 40px gap, got %d", len(spans))
		}
	})

	t.Run("low confidence stays split", func(t *testing.T) {
		tokens := []model.Token{
			near("Coffee", 150, 240, 100, 0.9),
			near("Shop", 245, 300, 102, 0.3),
		}
		if spans := MergeAdjacentTokens(tokens, cfg); len(spans) != 2 {
			t.Errorf("Expected 2 spans when one token is weak, got %d", len(spans))
		}
	})

	t.Run("different lines stay split", func(t *testing.T) {
		tokens := []model.Token{
			near("Coffee", 150, 240, 100, 0.9),
			near("Shop", 245, 300, 140, 0.85),
		}
		if spans := MergeAdjacentTokens(tokens, cfg); len(spans) != 2 {
			t.Errorf("Expected 2 spans across lines, got %d", len(spans))
		}
	})

	t.Run("gap measured from span head", func(t *testing.T) {
		// The merged span keeps the first token's box, so a third token
		// is measured against the head of the chain, not the tail.
		tokens := []model.Token{
			near("Big", 150, 240, 100, 0.9),
			near("Box", 245, 300, 100, 0.85),
			near("Store", 305, 380, 100, 0.85),
		}
		spans := MergeAdjacentTokens(tokens, cfg)
		if len(spans) != 2 {
			t.Fatalf("Expected chain to break at the third token, got %d spans", len(spans))
		}
		if spans[0].Text != "Big Box" {
			t.Errorf("Expected 'Big Box' span, got %q", spans[0].Text)
		}
	})
}

func TestSelectMerchantSpan(t *testing.T) {
	t.Run("rounded confidence then length", func(t *testing.T) {
		spans := []model.Token{
			makeToken("Short", 100, 100, 0.94),
			makeToken("Longer merchant", 300, 100, 0.88),
		}
		// Both round to 0.9; the longer text wins.
		best := SelectMerchantSpan(spans)
		if best.Text != "Longer merchant" {
			t.Errorf("Expected length tiebreak, got %q", best.Text)
		}
	})

	t.Run("higher confidence wins outright", func(t *testing.T) {
		spans := []model.Token{
			makeToken("Longer merchant", 100, 100, 0.7),
			makeToken("Hi", 300, 100, 0.9),
		}
		best := SelectMerchantSpan(spans)
		if best.Text != "Hi" {
			t.Errorf("Expected confidence to dominate, got %q", best.Text)
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if best := SelectMerchantSpan(nil); best.Text != "" {
			t.Errorf("Expected zero token for empty input")
		}
	})
}

func TestNormalizeTime(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234 14:30:03", "14:30:03"},
		{"1234 14.30;03", "14:30:03"},
		{"Wallet 09*15*22", "09:15:22"},
		{"1234 14::30::03", "14:30:03"},
		{"1234 14 30 03", "14:30:03"},
		{"no time here", ""},
		{"", ""},
		{"14:30:03", ""}, // bare time without prefix is not trusted
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeTime(tt.in); got != tt.want {
				t.Errorf("NormalizeTime(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
