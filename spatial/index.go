package spatial

import (
	"encoding/binary"
	"io"
	"iter"
	"math"
	"sort"

	"github.com/pkg/errors"
)

// A flat global index: an array of shapes scanned linearly. It is meant for
// the partitions of a dataset, so it stays small, and range and nearest
// neighbour queries are cheap enough without a tree.
type GlobalIndex[S Shape] struct {
	shapes  []S
	compact bool
}

// Replace the contents of the index with copies of shapes. Shapes
// implementing Cloner[S] are cloned, so the index never aliases the caller's
// values.
func (idx *GlobalIndex[S]) BulkLoad(shapes []S) {
	idx.shapes = make([]S, len(shapes))
	for i, s := range shapes {
		if c, ok := any(s).(Cloner[S]); ok {
			s = c.Clone()
		}
		idx.shapes[i] = s
	}
}

func (idx *GlobalIndex[S]) Size() int { return len(idx.shapes) }

// The i-th shape in load order.
func (idx *GlobalIndex[S]) At(i int) S { return idx.shapes[i] }

// Shapes in load order.
func (idx *GlobalIndex[S]) All() iter.Seq[S] {
	return func(yield func(S) bool) {
		for _, s := range idx.shapes {
			if !yield(s) {
				return
			}
		}
	}
}

// Whether the shapes are minimal covers of their contents. When they are not,
// an empty region may still be claimed by some shape.
func (idx *GlobalIndex[S]) Compact() bool { return idx.compact }

func (idx *GlobalIndex[S]) SetCompact(compact bool) { idx.compact = compact }

// The union of every shape's MBR. False if the index is empty.
func (idx *GlobalIndex[S]) MBR() (Rectangle, bool) {
	if len(idx.shapes) == 0 {
		return EmptyRectangle(), false
	}
	mbr := idx.shapes[0].MBR()
	for _, s := range idx.shapes[1:] {
		mbr = mbr.Union(s.MBR())
	}
	return mbr, true
}

// Pass every shape intersecting query to out, in load order, and return how
// many there were. A nil collector just counts.
func (idx *GlobalIndex[S]) RangeQuery(query Rectangle, out ResultCollector[S]) int {
	count := 0
	for _, s := range idx.shapes {
		if !s.Intersects(query) {
			continue
		}
		count++
		if out != nil {
			out.Collect(s)
		}
	}
	return count
}

type neighbor[S any] struct {
	shape    S
	distance float64
}

// Find the k shapes nearest to (qx, qy), passing each to out with its distance
// in increasing order of distance. Returns min(k, Size()), or fewer when some
// shapes are at no finite distance (an empty rectangle, say). A query with a
// non-finite coordinate finds nothing. Ties are broken arbitrarily.
//
// The search window is a square around the query, sized at first so that it
// should hold about k shapes if they were spread evenly over the MBR. If it
// holds fewer than k, the side doubles, until the window covers the MBR. If
// the k-th candidate is further away than half the side, something nearer may
// be lurking outside the window, so the side grows to twice that distance,
// which is enough to settle it. A side that overflows to infinity ends the
// search with one pass over every shape.
func (idx *GlobalIndex[S]) KNN(qx, qy float64, k int, out ResultCollector2[S, float64]) int {
	n := len(idx.shapes)
	if n == 0 || k <= 0 || !isFinite(qx) || !isFinite(qy) {
		return 0
	}
	mbr, _ := idx.MBR()
	side := math.Sqrt(mbr.Area() * float64(k) / float64(n) / math.Pi)
	if !(side > 0) || math.IsInf(side, 0) {
		side = initialSide(mbr, n)
	}

	var candidates []neighbor[S]
	collect := CollectorFunc[S](func(s S) {
		candidates = append(candidates, neighbor[S]{s, s.DistanceTo(qx, qy)})
	})
	byDistance := func() {
		sort.SliceStable(candidates, func(i, j int) bool {
			return candidates[i].distance < candidates[j].distance
		})
	}
	for {
		candidates = candidates[:0]
		if math.IsInf(side, 1) {
			for _, s := range idx.shapes {
				if d := s.DistanceTo(qx, qy); isFinite(d) {
					candidates = append(candidates, neighbor[S]{s, d})
				}
			}
			byDistance()
			break
		}
		window := NewRectangle(qx-side/2, qy-side/2, qx+side/2, qy+side/2)
		idx.RangeQuery(window, collect)
		covered := window.Contains(mbr.Rect)
		if len(candidates) < k && len(candidates) < n && !covered {
			side *= 2
			continue
		}
		byDistance()
		if len(candidates) == n || len(candidates) < k {
			break
		}
		if d := candidates[k-1].distance; d > side/2 {
			side = 2 * d
			continue
		}
		break
	}

	count := min(k, len(candidates))
	if out != nil {
		for _, c := range candidates[:count] {
			out.Collect(c.shape, c.distance)
		}
	}
	return count
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// A starting window for degenerate MBRs, where the area estimate is zero or
// meaningless.
func initialSide(mbr Rectangle, n int) float64 {
	extent := math.Max(mbr.Width(), mbr.Height())
	if extent > 0 && !math.IsInf(extent, 0) {
		return extent / float64(n)
	}
	return 1
}

// Report every pair of intersecting shapes across the two indexes, using a
// plane sweep over the x extents of their MBRs. Returns the number of pairs.
func SpatialJoin[S1, S2 Shape](a *GlobalIndex[S1], b *GlobalIndex[S2], out ResultCollector2[S1, S2]) int {
	left := sortedByMinX(a.shapes)
	right := sortedByMinX(b.shapes)
	count := 0
	report := func(s1 S1, s2 S2) {
		if !s1.MBR().Intersects(s2.MBR()) {
			return
		}
		count++
		if out != nil {
			out.Collect(s1, s2)
		}
	}
	i, j := 0, 0
	for i < len(left) && j < len(right) {
		r1 := left[i].MBR()
		r2 := right[j].MBR()
		if r1.MinX() <= r2.MinX() {
			// left[i] starts first; everything on the right starting before it
			// ends may overlap it.
			for jj := j; jj < len(right) && right[jj].MBR().MinX() <= r1.MaxX(); jj++ {
				report(left[i], right[jj])
			}
			i++
		} else {
			for ii := i; ii < len(left) && left[ii].MBR().MinX() <= r2.MaxX(); ii++ {
				report(left[ii], right[j])
			}
			j++
		}
	}
	return count
}

func sortedByMinX[S Shape](shapes []S) []S {
	out := append([]S(nil), shapes...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].MBR().MinX() < out[j].MBR().MinX()
	})
	return out
}

// Write the index as a big endian uint32 count followed by each shape's own
// record. Every shape must implement io.WriterTo.
func (idx *GlobalIndex[S]) WriteTo(w io.Writer) (int64, error) {
	var head [4]byte
	binary.BigEndian.PutUint32(head[:], uint32(len(idx.shapes)))
	n, err := w.Write(head[:])
	total := int64(n)
	if err != nil {
		return total, errors.Wrap(err, "writing index size")
	}
	for i, s := range idx.shapes {
		wt, ok := any(s).(io.WriterTo)
		if !ok {
			return total, errors.Errorf("shape %d (%T) cannot be serialized", i, s)
		}
		m, err := wt.WriteTo(w)
		total += m
		if err != nil {
			return total, errors.Wrapf(err, "writing shape %d", i)
		}
	}
	return total, nil
}

// Read an index written by WriteTo. The compact flag is not part of the record.
func ReadIndex[S Shape, PS interface {
	*S
	io.ReaderFrom
}](r io.Reader) (*GlobalIndex[S], error) {
	var head [4]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return nil, errors.Wrap(err, "reading index size")
	}
	size := binary.BigEndian.Uint32(head[:])
	idx := &GlobalIndex[S]{}
	for i := uint32(0); i < size; i++ {
		var s S
		if _, err := PS(&s).ReadFrom(r); err != nil {
			return nil, errors.Wrapf(err, "reading shape %d of %d", i, size)
		}
		idx.shapes = append(idx.shapes, s)
	}
	return idx, nil
}
