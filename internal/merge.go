package internal

// Merge two adjacent triangulations along the vertical seam between them. Every
// site of left must sort before every site of right. Returns the hull of the
// union.
func (b *builder) merge(left, right hull) hull {
	b.seams++
	addedBefore, removedBefore := b.added, b.removed
	pt := b.t.Site

	// Bottom common tangent. Start from the rightmost site of the left hull and
	// the leftmost site of the right hull, and walk each endpoint down its hull
	// while the next site lies strictly below the tangent line. Clockwise on a
	// counterclockwise cycle is a step back.
	il, jl := left.maxPos, right.minPos
	for {
		moved := false
		for Orient2D(pt(left.at(il)), pt(right.at(jl)), pt(left.at(il-1))) == Right {
			il = CircularIndex(il-1, left.len())
			moved = true
		}
		for Orient2D(pt(left.at(il)), pt(right.at(jl)), pt(right.at(jl+1))) == Right {
			jl = CircularIndex(jl+1, right.len())
			moved = true
		}
		if !moved {
			break
		}
	}

	// Top common tangent, symmetrically.
	iu, ju := left.maxPos, right.minPos
	for {
		moved := false
		for Orient2D(pt(left.at(iu)), pt(right.at(ju)), pt(left.at(iu+1))) == Left {
			iu = CircularIndex(iu+1, left.len())
			moved = true
		}
		for Orient2D(pt(left.at(iu)), pt(right.at(ju)), pt(right.at(ju-1))) == Left {
			ju = CircularIndex(ju-1, right.len())
			moved = true
		}
		if !moved {
			break
		}
	}

	b.zip(left.at(il), right.at(jl))

	merged := spliceHulls(left, right, il, jl, iu, ju)
	b.logSeam(left, right,
		[2]int{left.at(il), right.at(jl)},
		[2]int{left.at(iu), right.at(ju)},
		b.added-addedBefore, b.removed-removedBefore,
	)
	return merged
}

// Zip up from the base edge (l, r) until neither side has a candidate left.
func (b *builder) zip(l, r int) {
	pt := b.t.Site
	b.connect(l, r)
	for {
		lcand, lok := b.leftCandidate(l, r)
		rcand, rok := b.rightCandidate(l, r)
		if !lok && !rok {
			// (l, r) is the top common tangent.
			return
		}
		// Cocircular candidates resolve to the left, whose sites are
		// lexicographically smaller.
		if !lok || (rok && InCircle(pt(l), pt(r), pt(lcand), pt(rcand)) == Inside) {
			b.connect(l, rcand)
			r = rcand
		} else {
			b.connect(lcand, r)
			l = lcand
		}
	}
}

// The left candidate for base edge (l, r): the first neighbour of l
// counterclockwise from r, after deleting the edges from l that the new
// triangle on (l, r) would invalidate.
func (b *builder) leftCandidate(l, r int) (int, bool) {
	g := &b.t.SiteGraph
	pt := g.Site
	cand := g.NextCCW(l, r)
	if Orient2D(pt(l), pt(r), pt(cand)) != Left {
		return 0, false
	}
	for {
		next := g.NextCCW(l, cand)
		if next == r || InCircle(pt(l), pt(r), pt(cand), pt(next)) != Inside {
			break
		}
		b.disconnect(l, cand)
		cand = next
	}
	return cand, Orient2D(pt(l), pt(r), pt(cand)) == Left
}

// Mirror image of leftCandidate, walking clockwise around r from l.
func (b *builder) rightCandidate(l, r int) (int, bool) {
	g := &b.t.SiteGraph
	pt := g.Site
	cand := g.NextCW(r, l)
	if Orient2D(pt(l), pt(r), pt(cand)) != Left {
		return 0, false
	}
	for {
		next := g.NextCW(r, cand)
		if next == l || InCircle(pt(l), pt(r), pt(cand), pt(next)) != Inside {
			break
		}
		b.disconnect(r, cand)
		cand = next
	}
	return cand, Orient2D(pt(l), pt(r), pt(cand)) == Left
}

func (b *builder) connect(u, v int) {
	b.t.Connect(u, v)
	b.added++
}

func (b *builder) disconnect(u, v int) {
	b.t.Disconnect(u, v)
	b.removed++
}

// The hull of the union: the right hull counterclockwise from its end of the
// bottom tangent to its end of the top tangent, then the left hull from the top
// tangent back down to the bottom one.
//
// If both tangents coincide, everything is collinear, and each side contributes
// its whole chain, so that the result is again a back and forth chain.
func spliceHulls(left, right hull, il, jl, iu, ju int) hull {
	collinear := il == iu && jl == ju
	out := make([]int, 0, left.len()+right.len())
	walk := func(h hull, from, to int) {
		steps := CircularIndex(to-from, h.len())
		if collinear && h.len() > 1 {
			steps = h.len()
		}
		for k := 0; k <= steps; k++ {
			out = append(out, h.at(from+k))
		}
	}
	walk(right, jl, ju)
	walk(left, iu, il)

	minSite, maxSite := left.sites[left.minPos], right.sites[right.maxPos]
	merged := hull{sites: out}
	for i, s := range out {
		switch s {
		case minSite:
			merged.minPos = i
		case maxSite:
			merged.maxPos = i
		}
	}
	return merged
}
