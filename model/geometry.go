package model

// Point represents a 2D point in image coordinates (origin top-left,
// Y increasing downward).
type Point struct {
	X, Y float64
}

// Quad is a quadrilateral bounding box as reported by the OCR engine:
// four corner points in no guaranteed order. An axis-aligned rectangle is
// the common case, but skewed text may produce a true quadrilateral.
type Quad [4]Point

// NewQuadFromRect builds an axis-aligned Quad from edge coordinates.
func NewQuadFromRect(left, top, right, bottom float64) Quad {
	return Quad{
		{X: left, Y: top},
		{X: right, Y: top},
		{X: right, Y: bottom},
		{X: left, Y: bottom},
	}
}

// Centroid returns the mean of the four corner points.
func (q Quad) Centroid() Point {
	var sx, sy float64
	for _, p := range q {
		sx += p.X
		sy += p.Y
	}
	return Point{X: sx / 4, Y: sy / 4}
}

// MinX returns the leftmost X coordinate of the quadrilateral.
func (q Quad) MinX() float64 {
	min := q[0].X
	for _, p := range q[1:] {
		if p.X < min {
			min = p.X
		}
	}
	return min
}

// MaxX returns the rightmost X coordinate of the quadrilateral.
func (q Quad) MaxX() float64 {
	max := q[0].X
	for _, p := range q[1:] {
		if p.X > max {
			max = p.X
		}
	}
	return max
}

// MinY returns the topmost Y coordinate of the quadrilateral.
func (q Quad) MinY() float64 {
	min := q[0].Y
	for _, p := range q[1:] {
		if p.Y < min {
			min = p.Y
		}
	}
	return min
}

// MaxY returns the bottommost Y coordinate of the quadrilateral.
func (q Quad) MaxY() float64 {
	max := q[0].Y
	for _, p := range q[1:] {
		if p.Y > max {
			max = p.Y
		}
	}
	return max
}
