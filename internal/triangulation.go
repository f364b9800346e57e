package internal

import (
	"fmt"
	"iter"

	"github.com/logrusorgru/aurora"
)

// A Delaunay triangulation of a lexicographically sorted site array, along
// with the bookkeeping that decides which of its triangles get surfaced.
//
// Triangles are never stored. A face (s, a, b) is emitted from s when s is in
// sitesToReport but not reportedSites, a and b are consecutive in s's ring and
// adjacent to each other, none of the three is in reportedSites, and s has the
// smallest index among the face's vertices that are up for emission.
type Triangulation struct {
	SiteGraph
	// Index of the input point each site came from.
	origins  []int
	reported *SiteSet
	toReport *SiteSet
}

func newTriangulation(sites []Point, origins []int) *Triangulation {
	return &Triangulation{
		SiteGraph: newSiteGraph(sites),
		origins:   origins,
		reported:  NewSiteSet(len(sites)),
		toReport:  NewSiteSet(len(sites)),
	}
}

// Index of the input point that site i was built from. Splits and merge mode
// builds carry origins through unchanged, so they keep referring to the points
// of the original build.
func (t *Triangulation) Origin(i int) int {
	return t.origins[i]
}

// Copy of the sites, in their sorted order.
func (t *Triangulation) Sites() []Point {
	return append([]Point(nil), t.sites...)
}

// Copy of the neighbour ring of site i, counterclockwise.
func (t *Triangulation) Neighbors(i int) []int {
	return append([]int(nil), t.rings[i]...)
}

func (t *Triangulation) ReportedSites() *SiteSet { return t.reported.Clone() }

func (t *Triangulation) SitesToReport() *SiteSet { return t.toReport.Clone() }

// Schedule every not yet reported site for emission. This is what a merge mode
// build does to its result, and what a caller does to an unsafe part that will
// never be merged with anything.
func (t *Triangulation) ReportUnreported() {
	t.toReport = t.reported.Invert()
}

// Faces as counterclockwise site index triples. The sequence is single use:
// once it finishes, or the consumer stops early, every site in sitesToReport is
// marked as reported, so iterating again yields nothing.
func (t *Triangulation) Faces() iter.Seq[[3]int] {
	return func(yield func([3]int) bool) {
		emit := t.toReport.Difference(t.reported)
		defer t.reported.UnionWith(t.toReport)
		for s := range emit.All() {
			for face := range t.facesAround(s) {
				a, b := face[1], face[2]
				if t.reported.Contains(a) || t.reported.Contains(b) {
					continue
				}
				if (emit.Contains(a) && a < s) || (emit.Contains(b) && b < s) {
					continue
				}
				if !yield(face) {
					return
				}
			}
		}
	}
}

// Like Faces, but with coordinates.
func (t *Triangulation) Triangles() iter.Seq[Triangle] {
	return func(yield func(Triangle) bool) {
		for f := range t.Faces() {
			if !yield(t.triangle(f)) {
				return
			}
		}
	}
}

// Drain Triangles into a slice.
func (t *Triangulation) CollectTriangles() []Triangle {
	var out []Triangle
	for tri := range t.Triangles() {
		out = append(out, tri)
	}
	return out
}

// Every undirected edge once, as (a, b) with a < b. Does not touch the report
// bookkeeping.
func (t *Triangulation) Edges() iter.Seq2[int, int] {
	return func(yield func(int, int) bool) {
		for a, ring := range t.rings {
			for _, b := range ring {
				if a < b && !yield(a, b) {
					return
				}
			}
		}
	}
}

func (t *Triangulation) EdgeCount() int {
	degrees := 0
	for _, ring := range t.rings {
		degrees += len(ring)
	}
	return degrees / 2
}

// Counterclockwise convex hull of the sites, with sites on hull edges kept.
// A fully collinear set yields its back and forth chain.
func (t *Triangulation) Hull() []int {
	if t.Size() == 0 {
		return nil
	}
	return monotoneHull(t.sites, 0, t.Size()).sites
}

// The faces around s, as (s, a, b) for consecutive ring entries a, b that are
// adjacent and turn left. This ignores the report bookkeeping.
func (t *Triangulation) facesAround(s int) iter.Seq[[3]int] {
	return func(yield func([3]int) bool) {
		ring := t.rings[s]
		if len(ring) < 2 {
			return
		}
		for i, a := range ring {
			// With two neighbours both orders come up, but at most one turns left.
			b := ring[(i+1)%len(ring)]
			if !t.AreNeighbors(a, b) {
				continue
			}
			if Orient2D(t.sites[s], t.sites[a], t.sites[b]) != Left {
				continue
			}
			if !yield([3]int{s, a, b}) {
				return
			}
		}
	}
}

// Faces none of whose vertices are reported, each exactly once, from its
// smallest vertex.
func (t *Triangulation) liveFaces() iter.Seq[[3]int] {
	return func(yield func([3]int) bool) {
		for s := range t.reported.Invert().All() {
			for face := range t.facesAround(s) {
				a, b := face[1], face[2]
				if a < s || b < s || t.reported.Contains(a) || t.reported.Contains(b) {
					continue
				}
				if !yield(face) {
					return
				}
			}
		}
	}
}

func (t *Triangulation) triangle(f [3]int) Triangle {
	return Triangle{t.sites[f[0]], t.sites[f[1]], t.sites[f[2]]}
}

func (t *Triangulation) String() string {
	return fmt.Sprintf("Triangulation{sites: %v, edges: %v, reported: %v, to report: %v}",
		aurora.Cyan(t.Size()),
		aurora.Cyan(t.EdgeCount()),
		aurora.Yellow(t.reported.Count()),
		aurora.Green(t.toReport.Count()),
	)
}
