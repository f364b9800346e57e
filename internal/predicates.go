package internal

// Geometric predicates. These are the only source of geometric branching in
// the package.
//
// Both determinants are alternating functions of their arguments, so we always
// evaluate them on the lexicographically sorted argument tuple and flip the
// sign by the parity of the sorting permutation. Plain double precision can
// still be wrong near degeneracy, but it can never be wrong in two different
// ways: orient(a, b, c) and orient(b, a, c) always disagree, and the same holds
// for every permutation of the in-circle arguments.

type Orientation int

const (
	Collinear Orientation = iota
	Left                  // counterclockwise turn
	Right                 // clockwise turn
)

func (o Orientation) String() string {
	switch o {
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "collinear"
}

type CircleSide int

const (
	OnCircle CircleSide = iota
	Inside
	Outside
)

func (s CircleSide) String() string {
	switch s {
	case Inside:
		return "inside"
	case Outside:
		return "outside"
	}
	return "on"
}

// Sign of (b-a)x(c-a): Left if c lies to the left of the directed line a->b.
func Orient2D(a, b, c Point) Orientation {
	pts := [3]Point{a, b, c}
	odd := sortWithParity(pts[:])
	det := cross(pts[0], pts[1], pts[2])
	if odd {
		det = -det
	}
	switch {
	case det > 0:
		return Left
	case det < 0:
		return Right
	}
	return Collinear
}

// Where d lies relative to the circle through a, b, c, which are assumed to be
// counterclockwise. For a clockwise triple the answer is mirrored.
func InCircle(a, b, c, d Point) CircleSide {
	pts := [4]Point{a, b, c, d}
	odd := sortWithParity(pts[:])
	det := inCircleDet(pts[0], pts[1], pts[2], pts[3])
	if odd {
		det = -det
	}
	switch {
	case det > 0:
		return Inside
	case det < 0:
		return Outside
	}
	return OnCircle
}

func SquaredDistance(p, q Point) float64 {
	dx := p.X - q.X
	dy := p.Y - q.Y
	return dx*dx + dy*dy
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// The lifted 3x3 determinant, translated so that d is the origin.
func inCircleDet(a, b, c, d Point) float64 {
	adx, ady := a.X-d.X, a.Y-d.Y
	bdx, bdy := b.X-d.X, b.Y-d.Y
	cdx, cdy := c.X-d.X, c.Y-d.Y
	alift := adx*adx + ady*ady
	blift := bdx*bdx + bdy*bdy
	clift := cdx*cdx + cdy*cdy
	return adx*(bdy*clift-cdy*blift) -
		ady*(bdx*clift-cdx*blift) +
		alift*(bdx*cdy-cdx*bdy)
}

// Insertion sort by Point.Less. Returns true if the permutation applied was
// odd. Equal points are never swapped, which is fine: any determinant with a
// repeated point is zero anyway.
func sortWithParity(pts []Point) bool {
	odd := false
	for i := 1; i < len(pts); i++ {
		for j := i; j > 0 && pts[j].Less(pts[j-1]); j-- {
			pts[j], pts[j-1] = pts[j-1], pts[j]
			odd = !odd
		}
	}
	return odd
}
