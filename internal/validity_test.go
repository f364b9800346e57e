package internal

// This contains no actual tests. It is just a helper for testing triangulation
// validity.

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper to check that a triangulation of a full point set is valid. The rules
// are:
// 1. Adjacency is symmetric and has no self loops.
// 2. Every ring is in strictly counterclockwise angular order.
// 3. Every triangle is counterclockwise and appears once.
// 4. No site lies strictly inside any triangle's circumcircle.
// 5. There are 2n - 2 - h triangles, where h counts the hull sites, unless the
//    sites are all collinear, in which case there are none and the edges form
//    a path.
func AssertValidTriangulation(t *testing.T, tri *Triangulation, triangles []Triangle) {
	t.Helper()
	n := tri.Size()
	for u := 0; u < n; u++ {
		ring := tri.Ring(u)
		for i, v := range ring {
			require.NotEqual(t, u, v, "self loop at %d", u)
			require.True(t, tri.AreNeighbors(v, u), "edge %d->%d has no reverse", u, v)
			if i > 0 {
				require.True(t, tri.angleLess(u, ring[i-1], v), "ring of %d out of order at %d", u, i)
			}
		}
	}

	seen := make(map[[3]Point]struct{})
	for _, tr := range triangles {
		require.Equal(t, Left, Orient2D(tr.A, tr.B, tr.C), "clockwise or flat triangle: %s", tr)
		key := tr.Sorted()
		_, dup := seen[key]
		require.False(t, dup, "triangle %s emitted twice", tr)
		seen[key] = struct{}{}
		for i := 0; i < n; i++ {
			p := tri.Site(i)
			assert.NotEqual(t, Inside, InCircle(tr.A, tr.B, tr.C, p), "site %v inside circumcircle of %s", p, tr)
		}
	}

	hull := distinct(tri.Hull())
	if allCollinear(tri) {
		assert.Empty(t, triangles)
		assert.Equal(t, n-1, tri.EdgeCount(), "collinear sites should form a path")
		return
	}
	assert.Len(t, triangles, 2*n-2-len(hull), "Euler relation (n = %d, h = %d)", n, len(hull))
}

func allCollinear(tri *Triangulation) bool {
	for i := 2; i < tri.Size(); i++ {
		if Orient2D(tri.Site(0), tri.Site(1), tri.Site(i)) != Collinear {
			return false
		}
	}
	return true
}

func distinct(sites []int) map[int]struct{} {
	out := make(map[int]struct{}, len(sites))
	for _, s := range sites {
		out[s] = struct{}{}
	}
	return out
}

// Canonical multiset of triangles, for comparing results of different builds.
func triangleSet(triangles []Triangle) map[[3]Point]int {
	out := make(map[[3]Point]int, len(triangles))
	for _, tr := range triangles {
		out[tr.Sorted()]++
	}
	return out
}

// Every empty-circumcircle triangle of a small point set in general position,
// by brute force.
func bruteForceDelaunay(points []Point) map[[3]Point]int {
	out := make(map[[3]Point]int)
	for i := range points {
		for j := i + 1; j < len(points); j++ {
			for k := j + 1; k < len(points); k++ {
				a, b, c := points[i], points[j], points[k]
				switch Orient2D(a, b, c) {
				case Collinear:
					continue
				case Right:
					b, c = c, b
				}
				empty := true
				for l, d := range points {
					if l != i && l != j && l != k && InCircle(a, b, c, d) != Outside {
						empty = false
						break
					}
				}
				if empty {
					out[Triangle{a, b, c}.Sorted()]++
				}
			}
		}
	}
	return out
}
