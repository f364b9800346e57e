// Package advanced exposes the building blocks of the tiled triangulation
// pipeline: building from points or from partial triangulations, splitting a
// tile into its final and pending parts, and the wire record passed between
// workers.
//
// Everything here recovers internal precondition panics into errors, like the
// top level package does.
package advanced

import (
	"io"

	"github.com/osuushi/delaunay/internal"
	"github.com/osuushi/delaunay/spatial"
)

type Point = internal.Point
type Triangle = internal.Triangle
type Triangulation = internal.Triangulation
type SiteSet = internal.SiteSet
type Config = internal.Config
type Orientation = internal.Orientation
type CircleSide = internal.CircleSide

const (
	Collinear = internal.Collinear
	Left      = internal.Left
	Right     = internal.Right

	OnCircle = internal.OnCircle
	Inside   = internal.Inside
	Outside  = internal.Outside
)

var ErrPrecondition = internal.ErrPrecondition

func DefaultConfig() Config { return internal.DefaultConfig() }

// Orientation of c relative to the directed line from a to b.
func Orient2D(a, b, c Point) Orientation { return internal.Orient2D(a, b, c) }

// Position of d relative to the circle through a, b and c, which must be
// counterclockwise.
func InCircle(a, b, c, d Point) CircleSide { return internal.InCircle(a, b, c, d) }

// Triangulate points, in any order. Every site is scheduled for emission.
func Build(points []Point, cfg Config) (result *Triangulation, err error) {
	defer recoverInto(&err)
	return internal.Build(internal.Points(points), cfg), nil
}

// Merge partial triangulations, typically unsafe parts of neighbouring tiles,
// into one. The parts must be given in lexicographic order of their sites, with
// no overlap. Every site none of the parts reported is scheduled for emission
// in the result; the parts themselves are not modified.
func Merge(parts []*Triangulation, cfg Config) (result *Triangulation, err error) {
	defer recoverInto(&err)
	return internal.Build(internal.Partials(parts), cfg), nil
}

// Split t against the tile it was built for. Triangles of the safe part are
// final: their circumdisks lie strictly inside tile, so no site outside it can
// change them. The unsafe part carries everything else, with nothing scheduled
// for emission, and is meant to be merged with its neighbours.
func Split(t *Triangulation, tile spatial.Rectangle, cfg Config) (safe, unsafe *Triangulation, err error) {
	defer recoverInto(&err)
	safe, unsafe = t.Split(tile, cfg)
	return safe, unsafe, nil
}

// Decode a record written by Triangulation.WriteTo.
func ReadTriangulation(r io.Reader) (*Triangulation, error) {
	return internal.ReadTriangulation(r)
}

func recoverInto(err *error) {
	if recovered := internal.HandlePanicRecover(recover()); recovered != nil {
		*err = recovered
	}
}
