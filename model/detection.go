package model

import "strings"

// Detection is a single unit of OCR engine output: a bounding quadrilateral,
// the recognized text, and a confidence score normalized to [0,1].
// Detections are immutable once produced.
type Detection struct {
	Box        Quad
	Text       string
	Confidence float64
}

// Token is a Detection reduced to the form the layout parser works with:
// the box centroid, trimmed text, and the original box kept for edge
// calculations.
type Token struct {
	X          float64
	Y          float64
	Text       string
	Confidence float64
	Box        Quad
}

// NewToken derives a Token from a Detection.
func NewToken(d Detection) Token {
	c := d.Box.Centroid()
	return Token{
		X:          c.X,
		Y:          c.Y,
		Text:       strings.TrimSpace(d.Text),
		Confidence: d.Confidence,
		Box:        d.Box,
	}
}

// Line is an ordered group of tokens sharing an approximate vertical
// position. Tokens are sorted left to right; Text is their space-joined
// texts and Y the mean of their centroids.
type Line struct {
	Y      float64
	Text   string
	Tokens []Token
}
