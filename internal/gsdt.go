package internal

import (
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// What a build starts from: either raw points, or a sequence of partial
// triangulations (typically unsafe parts of neighbouring tiles) to be merged.
type Input interface {
	isInput()
}

// Raw points, in any order. There must be at least two, all finite and
// distinct.
type Points []Point

// Previously built triangulations, in order. Each must be non-empty and every
// site of a part must sort before every site of the next part.
type Partials []*Triangulation

func (Points) isInput()   {}
func (Partials) isInput() {}

// Build a triangulation. Precondition failures panic with an *Error, which the
// public API recovers.
func Build(in Input, cfg Config) *Triangulation {
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	switch in := in.(type) {
	case Points:
		return buildFromPoints(in, cfg)
	case Partials:
		return buildFromPartials(in, cfg)
	}
	fatalf("unknown build input %T", in)
	return nil
}

type builder struct {
	t   *Triangulation
	log *zap.Logger

	seams   int
	added   int
	removed int
}

func newBuilder(t *Triangulation, cfg Config) *builder {
	return &builder{t: t, log: cfg.logger()}
}

func buildFromPoints(points Points, cfg Config) *Triangulation {
	n := len(points)
	if n < 2 {
		fatalf("need at least 2 points to triangulate, got %d", n)
	}
	for i, p := range points {
		if !p.IsFinite() {
			fatalf("point %d has a non-finite coordinate: %v", i, p)
		}
	}

	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return points[order[i]].Less(points[order[j]])
	})
	sites := make([]Point, n)
	for i, o := range order {
		sites[i] = points[o]
	}
	if cfg.CheckDuplicates {
		for i := 1; i < n; i++ {
			if sites[i] == sites[i-1] {
				fatalf("duplicate point %v at input positions %d and %d", sites[i], order[i-1], order[i])
			}
		}
	}

	t := newTriangulation(sites, order)
	b := newBuilder(t, cfg)
	b.log.Debug("building triangulation", zap.String("mode", "points"), zap.Int("sites", n))
	b.triangulate(0, n)
	t.toReport = FullSiteSet(n)
	b.done()
	return t
}

func buildFromPartials(parts Partials, cfg Config) *Triangulation {
	if len(parts) == 0 {
		fatalf("merge needs at least one partial triangulation")
	}
	total := 0
	for i, part := range parts {
		if part == nil || part.Size() == 0 {
			fatalf("partial triangulation %d is empty", i)
		}
		for j := 1; j < part.Size(); j++ {
			if !part.sites[j-1].Less(part.sites[j]) {
				fatalf("partial triangulation %d is not sorted at site %d", i, j)
			}
		}
		if i > 0 {
			prev := parts[i-1]
			if !prev.sites[prev.Size()-1].Less(part.sites[0]) {
				fatalf("partial triangulations %d and %d overlap: %v does not precede %v",
					i-1, i, prev.sites[prev.Size()-1], part.sites[0])
			}
		}
		total += part.Size()
	}
	if total < 2 {
		fatalf("need at least 2 sites to triangulate, got %d", total)
	}

	// Concatenate. Rings keep their order, since offsets don't change angles.
	sites := make([]Point, 0, total)
	origins := make([]int, 0, total)
	reportedParts := make([]*SiteSet, len(parts))
	hulls := make([]hull, len(parts))
	t := &Triangulation{}
	rings := make([][]int, 0, total)
	offset := 0
	for i, part := range parts {
		sites = append(sites, part.sites...)
		origins = append(origins, part.origins...)
		for _, ring := range part.rings {
			shifted := make([]int, len(ring))
			for k, v := range ring {
				shifted[k] = v + offset
			}
			rings = append(rings, shifted)
		}
		reportedParts[i] = part.reported
		offset += part.Size()
	}
	t.SiteGraph = SiteGraph{sites: sites, rings: rings}
	t.origins = origins
	t.reported = ConcatSiteSets(reportedParts...)

	offset = 0
	for i, part := range parts {
		hulls[i] = monotoneHull(sites, offset, offset+part.Size())
		offset += part.Size()
	}

	b := newBuilder(t, cfg)
	b.log.Debug("building triangulation",
		zap.String("mode", "merge"),
		zap.Int("parts", len(parts)),
		zap.Int("sites", total),
		zap.Int("reported", t.reported.Count()),
	)
	b.mergeParts(hulls)
	t.ReportUnreported()
	b.done()
	return t
}

// Triangulate sites lo..hi-1, returning their hull.
func (b *builder) triangulate(lo, hi int) hull {
	g := &b.t.SiteGraph
	switch hi - lo {
	case 2:
		g.Connect(lo, lo+1)
		return hull{sites: []int{lo, lo + 1}, minPos: 0, maxPos: 1}
	case 3:
		a, m, c := lo, lo+1, lo+2
		g.Connect(a, m)
		g.Connect(m, c)
		switch Orient2D(g.sites[a], g.sites[m], g.sites[c]) {
		case Left:
			g.Connect(a, c)
			return hull{sites: []int{a, m, c}, minPos: 0, maxPos: 2}
		case Right:
			g.Connect(a, c)
			return hull{sites: []int{a, c, m}, minPos: 0, maxPos: 1}
		}
		// Collinear: a chain of two edges.
		return hull{sites: []int{a, m, c, m}, minPos: 0, maxPos: 2}
	}
	mid := (lo + hi) / 2
	left := b.triangulate(lo, mid)
	right := b.triangulate(mid, hi)
	return b.merge(left, right)
}

// Merge the hulls of consecutive parts of a merge mode build. No base case is
// entered; each part is already triangulated.
func (b *builder) mergeParts(hulls []hull) hull {
	if len(hulls) == 1 {
		return hulls[0]
	}
	mid := len(hulls) / 2
	return b.merge(b.mergeParts(hulls[:mid]), b.mergeParts(hulls[mid:]))
}

func (b *builder) done() {
	b.log.Debug("built triangulation",
		zap.Int("sites", b.t.Size()),
		zap.Int("edges", b.t.EdgeCount()),
		zap.Int("seams", b.seams),
		zap.Int("edges_added", b.added),
		zap.Int("edges_removed", b.removed),
	)
}

func (b *builder) logSeam(left, right hull, lower, upper [2]int, added, removed int) {
	if ce := b.log.Check(zapcore.DebugLevel, "merged seam"); ce != nil {
		ce.Write(
			zap.Int("left_hull", left.len()),
			zap.Int("right_hull", right.len()),
			zap.Ints("lower_tangent", lower[:]),
			zap.Ints("upper_tangent", upper[:]),
			zap.Int("edges_added", added),
			zap.Int("edges_removed", removed),
		)
	}
}
