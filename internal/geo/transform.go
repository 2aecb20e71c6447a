package geo

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/project"
)

// ErrTransformFailed is returned when a transform produces non-finite output.
var ErrTransformFailed = errors.New("coordinate transform failed")

// densifyPoints is the number of points sampled along each rectangle edge by
// TransformBoundingBox, corners included.
const densifyPoints = 21

// Rect is an axis-aligned rectangle in some CRS.
type Rect = orb.Bound

// NewRect builds a rectangle from two corners, normalizing so Min <= Max on
// both axes.
func NewRect(xmin, ymin, xmax, ymax float64) Rect {
	return orb.MultiPoint{{xmin, ymin}, {xmax, ymax}}.Bound()
}

// FormatRect renders a rectangle as "xmin,ymin : xmax,ymax".
func FormatRect(b Rect) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.Min[0]) + "," + f(b.Min[1]) + " : " + f(b.Max[0]) + "," + f(b.Max[1])
}

// FormatBounds renders a rectangle as "xmin, ymin, xmax, ymax".
func FormatBounds(b Rect) string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.Min[0]) + ", " + f(b.Min[1]) + ", " + f(b.Max[0]) + ", " + f(b.Max[1])
}

// Transform converts coordinates from a source CRS to a destination CRS.
type Transform struct {
	src, dst CRS
}

// NewTransform returns the transform from src to dst.
func NewTransform(src, dst CRS) (Transform, error) {
	if src.IsZero() || dst.IsZero() {
		return Transform{}, fmt.Errorf("%w: source and destination must both be set", ErrUnknownCRS)
	}
	return Transform{src: src, dst: dst}, nil
}

// IsIdentity reports whether source and destination are the same system.
func (t Transform) IsIdentity() bool {
	return t.src.ID == t.dst.ID
}

// Projection returns the transform as an orb.Projection.
func (t Transform) Projection() orb.Projection {
	if t.IsIdentity() {
		return identity
	}
	return func(p orb.Point) orb.Point {
		return t.dst.fromWGS84(t.src.toWGS84(p))
	}
}

// Point transforms a single coordinate.
func (t Transform) Point(p orb.Point) (orb.Point, error) {
	out := t.Projection()(p)
	if !finite(out) {
		return orb.Point{}, fmt.Errorf("%w: %v → %v (%s → %s)", ErrTransformFailed, p, out, t.src, t.dst)
	}
	return out, nil
}

// TransformBoundingBox transforms a rectangle by sampling densifyPoints points
// along each edge and returning the bounding box of the transformed samples.
// An identity transform returns b unchanged.
func (t Transform) TransformBoundingBox(b Rect) (Rect, error) {
	if t.IsIdentity() {
		return b, nil
	}

	proj := t.Projection()
	var out Rect
	first := true
	dx := (b.Max[0] - b.Min[0]) / float64(densifyPoints-1)
	dy := (b.Max[1] - b.Min[1]) / float64(densifyPoints-1)

	for i := 0; i < densifyPoints; i++ {
		x := b.Min[0] + float64(i)*dx
		y := b.Min[1] + float64(i)*dy
		for _, p := range [4]orb.Point{
			{x, b.Min[1]},
			{x, b.Max[1]},
			{b.Min[0], y},
			{b.Max[0], y},
		} {
			q := proj(p)
			if !finite(q) {
				return Rect{}, fmt.Errorf("%w: %v → %v (%s → %s)", ErrTransformFailed, p, q, t.src, t.dst)
			}
			if first {
				out = Rect{Min: q, Max: q}
				first = false
				continue
			}
			out = out.Extend(q)
		}
	}
	return out, nil
}

// Geometry transforms a copy of g; g itself is left untouched.
func (t Transform) Geometry(g orb.Geometry) orb.Geometry {
	if g == nil || t.IsIdentity() {
		return g
	}
	return project.Geometry(orb.Clone(g), t.Projection())
}

func finite(p orb.Point) bool {
	return !math.IsNaN(p[0]) && !math.IsNaN(p[1]) && !math.IsInf(p[0], 0) && !math.IsInf(p[1], 0)
}
