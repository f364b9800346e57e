package internal

import (
	"fmt"
	"sort"
)

// The adjacency store. Sites live in an arena and are addressed by index; each
// site keeps its neighbours as a ring sorted counterclockwise by angle,
// starting from the positive x direction.
type SiteGraph struct {
	sites []Point
	rings [][]int
}

func newSiteGraph(sites []Point) SiteGraph {
	return SiteGraph{
		sites: sites,
		rings: make([][]int, len(sites)),
	}
}

func (g *SiteGraph) Size() int { return len(g.sites) }

func (g *SiteGraph) Site(i int) Point { return g.sites[i] }

// Neighbours of u in counterclockwise order. The slice is owned by the graph.
func (g *SiteGraph) Ring(u int) []int { return g.rings[u] }

func (g *SiteGraph) Degree(u int) int { return len(g.rings[u]) }

// Insert v into u's ring at its angular position around u. Inserting an
// existing neighbour is a no-op.
func (g *SiteGraph) AddNeighborInOrder(u, v int) {
	if u == v {
		panic(fmt.Sprintf("self loop at site %d", u))
	}
	ring := g.rings[u]
	i := sort.Search(len(ring), func(i int) bool {
		return !g.angleLess(u, ring[i], v)
	})
	if i < len(ring) && ring[i] == v {
		return
	}
	ring = append(ring, 0)
	copy(ring[i+1:], ring[i:])
	ring[i] = v
	g.rings[u] = ring
}

func (g *SiteGraph) RemoveNeighbor(u, v int) {
	ring := g.rings[u]
	i := g.position(u, v)
	if i < 0 {
		return
	}
	g.rings[u] = append(ring[:i], ring[i+1:]...)
}

// Add the undirected edge (u, v).
func (g *SiteGraph) Connect(u, v int) {
	g.AddNeighborInOrder(u, v)
	g.AddNeighborInOrder(v, u)
}

// Remove the undirected edge (u, v).
func (g *SiteGraph) Disconnect(u, v int) {
	g.RemoveNeighbor(u, v)
	g.RemoveNeighbor(v, u)
}

func (g *SiteGraph) AreNeighbors(u, v int) bool {
	return g.position(u, v) >= 0
}

// The neighbour of u immediately counterclockwise of v. v must be a neighbour
// of u.
func (g *SiteGraph) NextCCW(u, v int) int {
	ring := g.rings[u]
	i := g.mustPosition(u, v)
	return ring[(i+1)%len(ring)]
}

// The neighbour of u immediately clockwise of v.
func (g *SiteGraph) NextCW(u, v int) int {
	ring := g.rings[u]
	i := g.mustPosition(u, v)
	return ring[(i-1+len(ring))%len(ring)]
}

func (g *SiteGraph) position(u, v int) int {
	for i, w := range g.rings[u] {
		if w == v {
			return i
		}
	}
	return -1
}

func (g *SiteGraph) mustPosition(u, v int) int {
	i := g.position(u, v)
	if i < 0 {
		panic(fmt.Sprintf("site %d is not a neighbour of %d", v, u))
	}
	return i
}

// Whether the direction u->a comes before u->b when sweeping counterclockwise
// from the positive x axis. The upper half plane (including the positive x
// axis itself) comes first; within a half plane, orientation decides.
func (g *SiteGraph) angleLess(u, a, b int) bool {
	ha := halfPlane(g.sites[u], g.sites[a])
	hb := halfPlane(g.sites[u], g.sites[b])
	if ha != hb {
		return ha < hb
	}
	return Orient2D(g.sites[u], g.sites[a], g.sites[b]) == Left
}

// 0 for directions in [0, pi), 1 for [pi, 2pi). The sign of a difference of two
// doubles is always exact, so this agrees with the predicates.
func halfPlane(origin, p Point) int {
	dy := p.Y - origin.Y
	if dy > 0 || (dy == 0 && p.X > origin.X) {
		return 0
	}
	return 1
}

// Deep copy of the adjacency, sharing nothing with g.
func (g *SiteGraph) clone() SiteGraph {
	out := SiteGraph{
		sites: append([]Point(nil), g.sites...),
		rings: make([][]int, len(g.rings)),
	}
	for i, ring := range g.rings {
		out.rings[i] = append([]int(nil), ring...)
	}
	return out
}
