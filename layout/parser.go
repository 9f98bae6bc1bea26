package layout

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tsawler/koinshot/model"
)

// endOfHistorySentinel marks the end of the transaction list in the app's
// UI. A line starting with it halts parsing for the whole image.
const endOfHistorySentinel = "no more records"

var (
	// dateAnchorRE matches a date-anchor line: weekday, a separator the
	// OCR may misread as comma, period or semicolon, then month
	// abbreviation and day.
	dateAnchorRE = regexp.MustCompile(`^(?:Mon|Tue|Wed|Thu|Fri|Sat|Sun)\s*[,.;]\s+[A-Za-z]{3}\s+\d{1,2}`)

	// timeRE matches a prefixed time of day: a 4-digit card suffix or the
	// word "Wallet", then hour, minute and second as 2-digit groups joined
	// by one or two separator characters. '*' appears when the OCR
	// corrupts a colon or a digit.
	timeRE = regexp.MustCompile(`(?:\b\d{4}\b|Wallet)\s+(\d{2}[:.;* ]{1,2}\d{2}[:.;* ]{1,2}\d{2})`)

	// amountRE matches a decimal amount with an optional sign marker.
	// '~' and the unicode minus and en-dash are common OCR readings of
	// a minus sign.
	amountRE = regexp.MustCompile(`[+\-~` + "−–" + `]?\d+\.\d+`)

	// amountCurrencyRE extracts amount and currency from a single token
	// after sign folding. The currency must be co-located in the token.
	amountCurrencyRE = regexp.MustCompile(`([+-]?\d+\.\d+)\s*([A-Z]{3})\b`)

	fourDigitRE   = regexp.MustCompile(`\b\d{4}\b`)
	walletWordRE  = regexp.MustCompile(`(?i)\bWallet\b`)
	alphaRE       = regexp.MustCompile(`[A-Za-z]`)
	leadingJunkRE = regexp.MustCompile(`^[^a-zA-Z0-9]+`)
	separatorRE   = regexp.MustCompile(`[:.;* ]+`)
	colonRunRE    = regexp.MustCompile(`:+`)

	signFoldRE = regexp.MustCompile(`[~` + "−–" + `]`)
)

// ParserConfig holds the thresholds and window sizes the parser uses. The
// pixel values are empirically tuned against the target app's layout;
// override them rather than re-deriving.
type ParserConfig struct {
	// MinTokenConfidence is the floor below which detections are discarded
	// as noise before grouping.
	MinTokenConfidence float64

	// MinMerchantConfidence admits partially garbled but readable merchant
	// names into the candidate pool.
	MinMerchantConfidence float64

	// MinTimeConfidence is the floor for time/prefix candidates. Slightly
	// under 0.2 to absorb floating-point wobble in reported confidences.
	MinTimeConfidence float64

	// YTolerance is the line-grouping tolerance for the main pass.
	YTolerance float64

	// TimeVicinity is the vertical window, in pixels, around the amount
	// token within which left-context tokens are collected. Twice this
	// window is searched when hunting for time/prefix tokens, which can
	// sit below the merchant line.
	TimeVicinity float64

	// MergeLineTolerance is the maximum vertical distance for two merchant
	// tokens to count as the same visual line when merging.
	MergeLineTolerance float64

	// MergeGapMin and MergeGapMax bound the horizontal gap (right edge of
	// the previous token to left edge of the current) for merging
	// adjacent merchant tokens. Slightly negative gaps occur when boxes
	// overlap.
	MergeGapMin float64
	MergeGapMax float64

	// MergeMinConfidence is required of both tokens before they merge.
	MergeMinConfidence float64

	// AlignmentSlack is the margin, in pixels, by which the amount token's
	// left edge must clear the rightmost left-context token. Guards
	// against numeric tokens inside the merchant text being misread as
	// the amount.
	AlignmentSlack float64

	// IconZoneFraction is the fraction of the observed image width, from
	// the left, treated as an icon zone and excluded from merchant
	// candidates.
	IconZoneFraction float64

	// RightHalfFraction is the fraction of the observed image width an
	// amount token must lie beyond.
	RightHalfFraction float64
}

// DefaultParserConfig returns the thresholds tuned for the target app.
func DefaultParserConfig() ParserConfig {
	return ParserConfig{
		MinTokenConfidence:    0.10,
		MinMerchantConfidence: 0.15,
		MinTimeConfidence:     0.19,
		YTolerance:            30,
		TimeVicinity:          40,
		MergeLineTolerance:    20,
		MergeGapMin:           -10,
		MergeGapMax:           10,
		MergeMinConfidence:    0.4,
		AlignmentSlack:        5,
		IconZoneFraction:      0.10,
		RightHalfFraction:     0.5,
	}
}

// Parser turns OCR detections for one screenshot into candidate records.
type Parser struct {
	config ParserConfig
}

// NewParser creates a parser with the default configuration.
func NewParser() *Parser {
	return &Parser{config: DefaultParserConfig()}
}

// NewParserWithConfig creates a parser with custom thresholds.
func NewParserWithConfig(config ParserConfig) *Parser {
	return &Parser{config: config}
}

// Parse reconstructs candidate records from raw detections.
//
// It returns every candidate, valid or not, plus the count of candidates
// flagged with a parse error. The two always satisfy
// len(records) == valid + errors: once a line yields an amount token it
// produces exactly one record, never a silent drop.
func (p *Parser) Parse(detections []model.Detection) ([]model.CandidateRecord, int) {
	cfg := p.config

	var tokens []model.Token
	var maxX float64
	for _, det := range detections {
		if det.Confidence < cfg.MinTokenConfidence {
			continue
		}
		if mx := det.Box.MaxX(); mx > maxX {
			maxX = mx
		}
		tokens = append(tokens, model.NewToken(det))
	}

	lines := GroupLines(tokens, GrouperConfig{YTolerance: cfg.YTolerance})

	var records []model.CandidateRecord
	errors := 0
	currentDate := ""

	for _, line := range lines {
		txt := strings.TrimSpace(line.Text)
		if txt == "" {
			continue
		}
		if strings.HasPrefix(strings.ToLower(txt), endOfHistorySentinel) {
			break
		}
		if dateAnchorRE.MatchString(txt) {
			currentDate = txt
			continue
		}

		// Strict mode: lines before the first anchor never become records.
		if currentDate == "" {
			continue
		}

		// Rightmost amount-looking token on the right half of the image.
		// The right-half restriction keeps time strings on the left from
		// being mistaken for amounts.
		amountTok, ok := p.findAmountToken(line.Tokens, maxX)
		if !ok {
			continue
		}

		rec := p.parseRecord(amountTok, tokens, maxX)
		rec.DateLine = currentDate
		if rec.ParseError {
			errors++
		}
		records = append(records, rec)
	}

	return records, errors
}

func (p *Parser) findAmountToken(toks []model.Token, maxX float64) (model.Token, bool) {
	for i := len(toks) - 1; i >= 0; i-- {
		tok := toks[i]
		if amountRE.MatchString(tok.Text) && tok.X > maxX*p.config.RightHalfFraction {
			return tok, true
		}
	}
	return model.Token{}, false
}

// parseRecord resolves the fields of one candidate record anchored at the
// given amount token.
func (p *Parser) parseRecord(amountTok model.Token, tokens []model.Token, maxX float64) model.CandidateRecord {
	cfg := p.config

	folded := signFoldRE.ReplaceAllString(amountTok.Text, "-")

	var amount, currency string
	if m := amountCurrencyRE.FindStringSubmatch(folded); m != nil {
		amount = m[1]
		currency = m[2]
	} else {
		// Currency not co-located with the amount is a strict parse
		// error; it is never inferred from neighboring tokens.
		amount = amountRE.FindString(folded)
	}

	negative := strings.Contains(folded, "-")
	positive := strings.Contains(folded, "+") && !negative

	// Left context: tokens in close vertical vicinity of the amount token.
	var leftTokens []model.Token
	for _, t := range tokens {
		if abs(t.Y-amountTok.Y) <= cfg.TimeVicinity && t.X < amountTok.X {
			leftTokens = append(leftTokens, t)
		}
	}

	var merchant, prefixTime string
	var timeTok *model.Token

	if len(leftTokens) > 0 {
		sort.SliceStable(leftTokens, func(i, j int) bool {
			return leftTokens[i].X < leftTokens[j].X
		})

		// The time token can sit below the merchant line, outside the
		// narrow window; hunt for it in a doubled one.
		var wideTokens []model.Token
		for _, t := range tokens {
			if t.X < amountTok.X && abs(t.Y-amountTok.Y) <= cfg.TimeVicinity*2 {
				wideTokens = append(wideTokens, t)
			}
		}
		sort.SliceStable(wideTokens, func(i, j int) bool {
			return wideTokens[i].X < wideTokens[j].X
		})

		if ranked := RankTimeCandidates(wideTokens, negative, positive, cfg.MinTimeConfidence); len(ranked) > 0 {
			best := ranked[0]
			timeTok = &wideTokens[best.Index]
			prefixTime = strings.TrimSpace(timeTok.Text)
		}

		// Merchant pool sits above the time token; without one, every
		// left-context token is fair game.
		var pool []model.Token
		if timeTok != nil {
			for _, t := range leftTokens {
				if t.Y < timeTok.Y {
					pool = append(pool, t)
				}
			}
		} else {
			pool = leftTokens
		}

		merchant = p.reconstructMerchant(pool, maxX)
	}

	aligned := p.alignedRight(amountTok, leftTokens)
	timeNorm := NormalizeTime(prefixTime)

	rec := model.CandidateRecord{
		Time:     timeNorm,
		Amount:   amount,
		Currency: currency,
		Merchant: merchant,
	}
	rec.ParseError = merchant == "" || amount == "" || currency == "" || timeNorm == "" || !aligned
	return rec
}

// reconstructMerchant picks the merchant name from the pool: filter to
// tokens that look like names, merge horizontally adjacent ones, then keep
// the best span. Falling back to joining arbitrary tokens or icon glyphs is
// deliberately not done.
func (p *Parser) reconstructMerchant(pool []model.Token, maxX float64) string {
	cfg := p.config

	iconZone := 100.0
	if maxX > 0 {
		iconZone = maxX * cfg.IconZoneFraction
	}

	var candidates []model.Token
	for _, t := range pool {
		if alphaRE.MatchString(t.Text) && t.X > iconZone && t.Confidence >= cfg.MinMerchantConfidence {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return ""
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].X < candidates[j].X
	})

	spans := MergeAdjacentTokens(candidates, cfg)
	best := SelectMerchantSpan(spans)

	merchant := strings.TrimSpace(best.Text)
	return leadingJunkRE.ReplaceAllString(merchant, "")
}

// alignedRight checks that the amount token's left edge clears the
// rightmost edge of every narrow left-context token by the configured
// slack.
func (p *Parser) alignedRight(amountTok model.Token, leftTokens []model.Token) bool {
	amountLeft := amountTok.Box.MinX()

	var leftMaxRight float64
	for _, t := range leftTokens {
		if r := t.Box.MaxX(); r > leftMaxRight {
			leftMaxRight = r
		}
	}
	return amountLeft > leftMaxRight+p.config.AlignmentSlack
}

// NormalizeTime extracts the time-of-day substring from a prefix+time token
// text and collapses separator runs to single colons, yielding canonical
// HH:MM:SS. Returns empty when no time pattern is present.
func NormalizeTime(prefixTime string) string {
	if prefixTime == "" {
		return ""
	}
	m := timeRE.FindStringSubmatch(prefixTime)
	if m == nil {
		return ""
	}
	s := separatorRE.ReplaceAllString(m[1], ":")
	return colonRunRE.ReplaceAllString(s, ":")
}
