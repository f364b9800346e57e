package internal

import (
	"fmt"
	"math"
	"sort"

	"github.com/golang/geo/r2"
)

type Point struct {
	X float64
	Y float64
}

// Triangles are reported counterclockwise.
type Triangle struct {
	A, B, C Point
}

func (p Point) String() string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}

func (p Point) R2() r2.Point {
	return r2.Point{X: p.X, Y: p.Y}
}

// Lexicographic order on (x, y). This is the order sites are sorted in, and
// every other ordering decision in the package must agree with it.
func (p Point) Less(q Point) bool {
	if p.X != q.X {
		return p.X < q.X
	}
	return p.Y < q.Y
}

func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (t Triangle) Points() [3]Point {
	return [3]Point{t.A, t.B, t.C}
}

// Canonical form for set comparisons: the vertices in lexicographic order.
func (t Triangle) Sorted() [3]Point {
	pts := t.Points()
	sort.Slice(pts[:], func(i, j int) bool { return pts[i].Less(pts[j]) })
	return pts
}

func (t Triangle) String() string {
	return fmt.Sprintf("[%v %v %v]", t.A, t.B, t.C)
}

// Circumcircle of the triangle, computed in double precision relative to A to
// keep the magnitudes small. Collinear triangles have an infinite radius.
func (t Triangle) Circumcircle() (center Point, radius float64) {
	bx, by := t.B.X-t.A.X, t.B.Y-t.A.Y
	cx, cy := t.C.X-t.A.X, t.C.Y-t.A.Y
	d := 2 * (bx*cy - by*cx)
	if d == 0 {
		return Point{math.Inf(1), math.Inf(1)}, math.Inf(1)
	}
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	ux := (cy*b2 - by*c2) / d
	uy := (bx*c2 - cx*b2) / d
	return Point{t.A.X + ux, t.A.Y + uy}, math.Hypot(ux, uy)
}
