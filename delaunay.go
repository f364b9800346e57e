// Delaunay triangulation of planar point sets, built for tiled and
// distributed use.
//
// For a one shot triangulation, use [Triangulate]. [TriangulateTiled] cuts the
// input into strips, triangulates them in parallel, keeps the triangles each
// strip can vouch for, and merges the rest once. The building blocks of that
// pipeline are in the advanced package.
package delaunay

import (
	"github.com/osuushi/delaunay/advanced"
	"github.com/osuushi/delaunay/internal"
)

type Point = advanced.Point
type Triangle = advanced.Triangle
type Config = advanced.Config

var ErrPrecondition = advanced.ErrPrecondition

func DefaultConfig() Config { return advanced.DefaultConfig() }

// Triangulate a set of points. The points may come in any order, but there
// must be at least two and no duplicates. Triangles are counterclockwise, in no
// particular order. Collinear inputs have no triangles.
func Triangulate(points ...Point) ([]Triangle, error) {
	tri, err := advanced.Build(points, DefaultConfig())
	if err != nil {
		return nil, err
	}
	return tri.CollectTriangles(), nil
}

// Like Triangulate, but each triangle is given as indices into points.
func TriangulateIndices(points ...Point) (result [][3]int, err error) {
	defer func() {
		recoveredErr := internal.HandlePanicRecover(recover())
		if recoveredErr != nil {
			result = nil
			err = recoveredErr
		}
	}()
	tri := internal.Build(internal.Points(points), DefaultConfig())
	for face := range tri.Faces() {
		result = append(result, [3]int{tri.Origin(face[0]), tri.Origin(face[1]), tri.Origin(face[2])})
	}
	return result, nil
}
