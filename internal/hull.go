package internal

// A convex hull as a counterclockwise cycle of site indices. Sites lying on a
// hull edge are kept. When every site is collinear the cycle degenerates into
// a back and forth chain [p0 .. pk, pk-1 .. p1], so that every hull edge is
// still a pair of consecutive entries.
//
// minPos and maxPos are the positions of the lexicographically smallest and
// largest sites, each of which appears exactly once.
type hull struct {
	sites  []int
	minPos int
	maxPos int
}

func (h *hull) at(i int) int {
	return h.sites[CircularIndex(i, len(h.sites))]
}

func (h *hull) len() int { return len(h.sites) }

// Hull of the sites lo..hi-1 of a lexicographically sorted slice, using
// Andrew's monotone chain. Popping only on a strict right turn keeps collinear
// boundary sites.
func monotoneHull(sites []Point, lo, hi int) hull {
	n := hi - lo
	if n == 1 {
		return hull{sites: []int{lo}}
	}
	chain := make([]int, 0, 2*n)
	turnsRight := func(a, b, c int) bool {
		return Orient2D(sites[a], sites[b], sites[c]) == Right
	}
	for i := lo; i < hi; i++ {
		for len(chain) >= 2 && turnsRight(chain[len(chain)-2], chain[len(chain)-1], i) {
			chain = chain[:len(chain)-1]
		}
		chain = append(chain, i)
	}
	lowerLen := len(chain)
	for i := hi - 2; i >= lo; i-- {
		for len(chain) > lowerLen && turnsRight(chain[len(chain)-2], chain[len(chain)-1], i) {
			chain = chain[:len(chain)-1]
		}
		chain = append(chain, i)
	}
	// The last entry repeats the first site.
	chain = chain[:len(chain)-1]
	return hull{sites: chain, minPos: 0, maxPos: lowerLen - 1}
}

// Wrap an index into [0, n).
func CircularIndex(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
