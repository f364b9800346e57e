// Package spatial holds the shapes the triangulation pipeline partitions space
// with, and a flat global index over them.
package spatial

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
)

// An axis aligned rectangle, closed on all sides. Sides may be infinite.
type Rectangle struct {
	r2.Rect
}

// The rectangle spanning the two corners, in either order.
func NewRectangle(x1, y1, x2, y2 float64) Rectangle {
	return Rectangle{r2.Rect{
		X: r1.Interval{Lo: math.Min(x1, x2), Hi: math.Max(x1, x2)},
		Y: r1.Interval{Lo: math.Min(y1, y2), Hi: math.Max(y1, y2)},
	}}
}

// The whole plane.
func Everything() Rectangle {
	inf := math.Inf(1)
	return NewRectangle(-inf, -inf, inf, inf)
}

func EmptyRectangle() Rectangle {
	return Rectangle{r2.EmptyRect()}
}

func (r Rectangle) MinX() float64 { return r.X.Lo }
func (r Rectangle) MinY() float64 { return r.Y.Lo }
func (r Rectangle) MaxX() float64 { return r.X.Hi }
func (r Rectangle) MaxY() float64 { return r.Y.Hi }

func (r Rectangle) Width() float64  { return r.X.Length() }
func (r Rectangle) Height() float64 { return r.Y.Length() }

// Area of the rectangle; zero when empty.
func (r Rectangle) Area() float64 {
	if r.IsEmpty() {
		return 0
	}
	return r.Width() * r.Height()
}

func (r Rectangle) MBR() Rectangle { return r }

func (r Rectangle) Intersects(other Rectangle) bool {
	return r.Rect.Intersects(other.Rect)
}

func (r Rectangle) ContainsXY(x, y float64) bool {
	return r.ContainsPoint(r2.Point{X: x, Y: y})
}

// Euclidean distance from (x, y) to the nearest point of the rectangle; zero
// inside.
func (r Rectangle) DistanceTo(x, y float64) float64 {
	if r.IsEmpty() {
		return math.Inf(1)
	}
	p := r2.Point{X: x, Y: y}
	return r.ClampPoint(p).Sub(p).Norm()
}

func (r Rectangle) Union(other Rectangle) Rectangle {
	return Rectangle{r.Rect.Union(other.Rect)}
}

func (r Rectangle) String() string {
	return fmt.Sprintf("[%g, %g] x [%g, %g]", r.X.Lo, r.X.Hi, r.Y.Lo, r.Y.Hi)
}

// Four big endian doubles: x1, y1, x2, y2.
func (r Rectangle) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 32)
	for i, v := range []float64{r.X.Lo, r.Y.Lo, r.X.Hi, r.Y.Hi} {
		binary.BigEndian.PutUint64(buf[8*i:], math.Float64bits(v))
	}
	n, err := w.Write(buf)
	return int64(n), errors.Wrap(err, "writing rectangle")
}

func (r *Rectangle) ReadFrom(rd io.Reader) (int64, error) {
	buf := make([]byte, 32)
	n, err := io.ReadFull(rd, buf)
	if err != nil {
		return int64(n), errors.Wrap(err, "reading rectangle")
	}
	var v [4]float64
	for i := range v {
		v[i] = math.Float64frombits(binary.BigEndian.Uint64(buf[8*i:]))
	}
	// Not normalised, so empty rectangles survive the round trip.
	r.Rect = r2.Rect{
		X: r1.Interval{Lo: v[0], Hi: v[2]},
		Y: r1.Interval{Lo: v[1], Hi: v[3]},
	}
	return int64(n), nil
}
