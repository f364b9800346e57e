package internal

import (
	"math"

	"github.com/osuushi/delaunay/dbg"
	"github.com/osuushi/delaunay/spatial"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Split the triangulation against a tile rectangle.
//
// A live triangle (one with no reported vertex) is safe when its closed
// circumdisk lies strictly inside rect, by at least the configured margin. A
// disk tangent to the boundary is unsafe. No site beyond rect can invalidate a
// safe triangle, so safe triangles are final.
//
// Sites touching an unsafe live triangle, and the convex hull sites, are
// unsafe. Every other unreported site is safe, and all of its live triangles
// are safe.
//
//   - The safe part holds the edges of the safe triangles and every edge of a
//     safe site, and reports from the safe sites.
//   - The unsafe part holds the unsafe and hull sites along with all their
//     neighbours, so their rings are complete, and every edge among those. Sites
//     that are not unsafe are marked as reported, so triangles emitted from the
//     safe part never come up again. Nothing is scheduled for emission: merge
//     it with its peers in a merge mode build, or call ReportUnreported.
//
// Neither part shares memory with t. t itself is left untouched.
func (t *Triangulation) Split(rect spatial.Rectangle, cfg Config) (safe, unsafe *Triangulation) {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	n := t.Size()
	unsafeSites := NewSiteSet(n)
	safeEdges := make(map[[2]int]struct{})
	safeFaces, unsafeFaces := 0, 0
	for f := range t.liveFaces() {
		if circumdiskInside(t.triangle(f), rect, cfg.SafetyMargin) {
			safeFaces++
			for k := 0; k < 3; k++ {
				safeEdges[edgeKey(f[k], f[(k+1)%3])] = struct{}{}
			}
			continue
		}
		unsafeFaces++
		for _, v := range f {
			unsafeSites.Set(v)
		}
	}

	// The outer face is unsafe too. The merge walks the hull, so hull sites need
	// complete rings in the unsafe part whether or not they were reported.
	core := unsafeSites.Clone()
	for _, v := range t.Hull() {
		core.Set(v)
		if !t.reported.Contains(v) {
			unsafeSites.Set(v)
		}
	}

	safeSites := t.reported.Invert().Difference(unsafeSites)

	keepSafe := NewSiteSet(n)
	for v := range safeSites.All() {
		keepSafe.Set(v)
		for _, w := range t.rings[v] {
			keepSafe.Set(w)
		}
	}
	for e := range safeEdges {
		keepSafe.Set(e[0])
		keepSafe.Set(e[1])
	}
	safe, remap := t.subgraph(keepSafe, func(u, v int) bool {
		if safeSites.Contains(u) || safeSites.Contains(v) {
			return true
		}
		_, ok := safeEdges[edgeKey(u, v)]
		return ok
	})
	safe.reported = t.reported.Remap(safe.Size(), remap)
	safe.toReport = safeSites.Remap(safe.Size(), remap)

	keepUnsafe := core.Clone()
	for v := range core.All() {
		for _, w := range t.rings[v] {
			keepUnsafe.Set(w)
		}
	}
	unsafe, remap = t.subgraph(keepUnsafe, func(u, v int) bool { return true })
	unsafe.reported = unsafeSites.Remap(unsafe.Size(), remap).Invert()
	unsafe.toReport = NewSiteSet(unsafe.Size())

	if ce := cfg.logger().Check(zapcore.DebugLevel, "split triangulation"); ce != nil {
		ce.Write(
			zap.String("name", dbg.Name(t)),
			zap.Int("sites", n),
			zap.Int("safe_triangles", safeFaces),
			zap.Int("unsafe_triangles", unsafeFaces),
			zap.Int("safe_sites", safeSites.Count()),
			zap.Int("unsafe_sites", unsafeSites.Count()),
			zap.Int("safe_part_sites", safe.Size()),
			zap.Int("unsafe_part_sites", unsafe.Size()),
		)
	}
	return safe, unsafe
}

// The sub-triangulation on the kept sites, re-indexed in their existing order,
// with the kept edges among them. Returns the map from old to new indices.
// Report sets are left empty.
func (t *Triangulation) subgraph(keep *SiteSet, keepEdge func(u, v int) bool) (*Triangulation, map[int]int) {
	remap := make(map[int]int, keep.Count())
	sites := make([]Point, 0, keep.Count())
	origins := make([]int, 0, keep.Count())
	for v := range keep.All() {
		remap[v] = len(sites)
		sites = append(sites, t.sites[v])
		origins = append(origins, t.origins[v])
	}
	sub := newTriangulation(sites, origins)
	for v := range keep.All() {
		var ring []int
		for _, w := range t.rings[v] {
			if keep.Contains(w) && keepEdge(v, w) {
				ring = append(ring, remap[w])
			}
		}
		// A filtered ring is still in counterclockwise order.
		sub.rings[remap[v]] = ring
	}
	return sub, remap
}

func edgeKey(u, v int) [2]int {
	if u > v {
		u, v = v, u
	}
	return [2]int{u, v}
}

// Whether the closed circumdisk of tri lies inside rect, clearing every side by
// margin scaled to the magnitude of the numbers involved. Unbounded sides
// always clear.
func circumdiskInside(tri Triangle, rect spatial.Rectangle, margin float64) bool {
	c, r := tri.Circumcircle()
	if math.IsInf(r, 0) || math.IsNaN(r) {
		return false
	}
	scale := math.Max(1, math.Max(r, math.Max(math.Abs(c.X), math.Abs(c.Y))))
	m := margin * scale
	return c.X-r > rect.X.Lo+m &&
		c.X+r < rect.X.Hi-m &&
		c.Y-r > rect.Y.Lo+m &&
		c.Y+r < rect.Y.Hi-m
}
