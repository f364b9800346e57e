package spatial

import (
	"bytes"
	"math"
	"math/rand"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Squares of the given side centred on the integer points of [lo, hi]^2.
func latticeSquares(lo, hi int, side float64) []Rectangle {
	var out []Rectangle
	for x := lo; x <= hi; x++ {
		for y := lo; y <= hi; y++ {
			cx, cy := float64(x), float64(y)
			out = append(out, NewRectangle(cx-side/2, cy-side/2, cx+side/2, cy+side/2))
		}
	}
	return out
}

func TestGlobalIndex_RangeQuery(t *testing.T) {
	var idx GlobalIndex[Rectangle]
	idx.BulkLoad(latticeSquares(0, 2, 0.5))
	require.Equal(t, 9, idx.Size())

	var found SliceCollector[Rectangle]
	count := idx.RangeQuery(NewRectangle(0.5, 0.5, 2.5, 2.5), &found)
	assert.Equal(t, 4, count)
	assert.Len(t, found.Items, 4)
	for _, r := range found.Items {
		assert.GreaterOrEqual(t, r.MinX(), 0.75)
		assert.GreaterOrEqual(t, r.MinY(), 0.75)
	}

	assert.Equal(t, 4, idx.RangeQuery(NewRectangle(0.5, 0.5, 2.5, 2.5), nil), "nil collector counts")
	assert.Equal(t, 0, idx.RangeQuery(NewRectangle(10, 10, 11, 11), nil))
	assert.Equal(t, 9, idx.RangeQuery(Everything(), nil))
}

func TestGlobalIndex_KNN(t *testing.T) {
	var idx GlobalIndex[Rectangle]
	idx.BulkLoad(latticeSquares(-10, 10, 1))

	var distances []float64
	count := idx.KNN(0, 0, 5, Collector2Func[Rectangle, float64](func(r Rectangle, d float64) {
		assert.Equal(t, r.DistanceTo(0, 0), d)
		distances = append(distances, d)
	}))
	assert.Equal(t, 5, count)
	assert.True(t, sort.Float64sAreSorted(distances))
	assert.Equal(t, bruteForceKNN(&idx, 0, 0, 5), distances)
}

func TestGlobalIndex_KNNMatchesBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var points []Point
	for i := 0; i < 300; i++ {
		// Clustered, so the uniform density estimate is off
		points = append(points, Point{rng.ExpFloat64() * 10, rng.NormFloat64()})
	}
	var idx GlobalIndex[Point]
	idx.BulkLoad(points)

	for trial := 0; trial < 50; trial++ {
		qx, qy := rng.Float64()*200-50, rng.Float64()*40-20
		k := 1 + rng.Intn(20)
		var got []float64
		idx.KNN(qx, qy, k, Collector2Func[Point, float64](func(_ Point, d float64) {
			got = append(got, d)
		}))
		require.Equal(t, bruteForceKNN(&idx, qx, qy, k), got, "query (%g, %g) k=%d", qx, qy, k)
	}
}

func TestGlobalIndex_KNNEdgeCases(t *testing.T) {
	var empty GlobalIndex[Point]
	assert.Equal(t, 0, empty.KNN(0, 0, 3, nil))

	var idx GlobalIndex[Point]
	idx.BulkLoad([]Point{{0, 0}, {0, 0}, {3, 4}})
	assert.Equal(t, 0, idx.KNN(0, 0, 0, nil))
	assert.Equal(t, 0, idx.KNN(0, 0, -2, nil))

	// Asking for more than there are returns everything
	var got []Point
	n := idx.KNN(100, 100, 10, Collector2Func[Point, float64](func(p Point, _ float64) {
		got = append(got, p)
	}))
	assert.Equal(t, 3, n)
	assert.Equal(t, Point{3, 4}, got[0])

	// All shapes in one spot leave a zero area MBR
	var same GlobalIndex[Point]
	same.BulkLoad([]Point{{1, 1}, {1, 1}, {1, 1}, {1, 1}})
	assert.Equal(t, 2, same.KNN(-5, 3, 2, nil))
}

func TestGlobalIndex_KNNNonFiniteQuery(t *testing.T) {
	var idx GlobalIndex[Point]
	idx.BulkLoad([]Point{{0, 0}, {1, 1}, {2, 2}})
	assert.Equal(t, 0, idx.KNN(math.NaN(), 0, 2, nil))
	assert.Equal(t, 0, idx.KNN(0, math.NaN(), 2, nil))
	assert.Equal(t, 0, idx.KNN(math.Inf(1), 0, 2, nil))
	assert.Equal(t, 0, idx.KNN(0, math.Inf(-1), 2, nil))
}

func TestGlobalIndex_KNNSkipsEmptyShapes(t *testing.T) {
	// An empty rectangle is at no finite distance, so it is never found, and
	// the search must stop once the window covers everything else
	var idx GlobalIndex[Rectangle]
	idx.BulkLoad([]Rectangle{
		NewRectangle(0, 0, 1, 1),
		EmptyRectangle(),
		NewRectangle(2, 0, 3, 1),
	})
	var distances []float64
	n := idx.KNN(0, 0, 3, Collector2Func[Rectangle, float64](func(_ Rectangle, d float64) {
		distances = append(distances, d)
	}))
	assert.Equal(t, 2, n)
	assert.Equal(t, []float64{0, 2}, distances)

	// An unbounded MBR can only be covered by an infinite window
	var unbounded GlobalIndex[Rectangle]
	unbounded.BulkLoad([]Rectangle{Everything(), EmptyRectangle()})
	var got []Rectangle
	n = unbounded.KNN(5, 5, 3, Collector2Func[Rectangle, float64](func(r Rectangle, _ float64) {
		got = append(got, r)
	}))
	assert.Equal(t, 1, n)
	assert.Equal(t, []Rectangle{Everything()}, got)
}

func TestGlobalIndex_MBR(t *testing.T) {
	var idx GlobalIndex[Rectangle]
	_, ok := idx.MBR()
	assert.False(t, ok)

	idx.BulkLoad([]Rectangle{NewRectangle(0, 0, 1, 1), NewRectangle(5, -2, 6, 0)})
	mbr, ok := idx.MBR()
	assert.True(t, ok)
	assert.Equal(t, NewRectangle(0, -2, 6, 1), mbr)
}

// A shape holding a pointer, to check that loading clones.
type boxRef struct{ r *Rectangle }

func (b boxRef) MBR() Rectangle                  { return *b.r }
func (b boxRef) Intersects(r Rectangle) bool     { return b.r.Intersects(r) }
func (b boxRef) DistanceTo(x, y float64) float64 { return b.r.DistanceTo(x, y) }
func (b boxRef) Clone() boxRef {
	r := *b.r
	return boxRef{&r}
}

func TestGlobalIndex_BulkLoadClones(t *testing.T) {
	r := NewRectangle(0, 0, 1, 1)
	var idx GlobalIndex[boxRef]
	idx.BulkLoad([]boxRef{{&r}})
	r = NewRectangle(10, 10, 11, 11)
	assert.Equal(t, NewRectangle(0, 0, 1, 1), idx.At(0).MBR())
}

func TestGlobalIndex_Compact(t *testing.T) {
	var idx GlobalIndex[Partition]
	assert.False(t, idx.Compact())
	idx.SetCompact(true)
	assert.True(t, idx.Compact())

	p := Partition{Cell: NewRectangle(0, 0, 10, 10), Content: NewRectangle(2, 2, 3, 3)}
	assert.Equal(t, p.Content, p.Bounds(idx.Compact()))
	assert.Equal(t, p.Cell, p.Bounds(false))
}

func TestSpatialJoin(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	randomRects := func(n int) []Rectangle {
		var out []Rectangle
		for i := 0; i < n; i++ {
			x, y := rng.Float64()*100, rng.Float64()*100
			out = append(out, NewRectangle(x, y, x+rng.Float64()*15, y+rng.Float64()*15))
		}
		return out
	}
	var a, b GlobalIndex[Rectangle]
	a.BulkLoad(randomRects(80))
	b.BulkLoad(randomRects(60))

	type pair struct{ r1, r2 Rectangle }
	expected := map[pair]int{}
	for r1 := range a.All() {
		for r2 := range b.All() {
			if r1.Intersects(r2) {
				expected[pair{r1, r2}]++
			}
		}
	}

	got := map[pair]int{}
	count := SpatialJoin(&a, &b, Collector2Func[Rectangle, Rectangle](func(r1, r2 Rectangle) {
		got[pair{r1, r2}]++
	}))
	assert.Equal(t, expected, got, "every intersecting pair exactly once")
	assert.Equal(t, len(expected), count)
	assert.Equal(t, count, SpatialJoin(&a, &b, nil))
}

func TestSpatialJoin_MixedShapes(t *testing.T) {
	var cells GlobalIndex[Partition]
	cells.BulkLoad([]Partition{
		{ID: 0, Cell: NewRectangle(0, 0, 5, 5)},
		{ID: 1, Cell: NewRectangle(5, 0, 10, 5)},
	})
	var points GlobalIndex[Point]
	points.BulkLoad([]Point{{1, 1}, {5, 2}, {9, 4}, {20, 0}})

	ids := map[Point][]int{}
	SpatialJoin(&points, &cells, Collector2Func[Point, Partition](func(p Point, c Partition) {
		ids[p] = append(ids[p], c.ID)
	}))
	for p := range ids {
		slices.Sort(ids[p])
	}
	assert.Equal(t, map[Point][]int{
		{1, 1}: {0},
		{5, 2}: {0, 1},
		{9, 4}: {1},
	}, ids)
}

func TestGlobalIndex_RoundTrip(t *testing.T) {
	var idx GlobalIndex[Partition]
	idx.BulkLoad([]Partition{
		{ID: 3, Cell: NewRectangle(math.Inf(-1), 0, 4, 8), Content: NewRectangle(1, 1, 3, 7), Count: 120},
		{ID: -1, Cell: Everything(), Content: EmptyRectangle(), Count: 0},
	})

	var buf bytes.Buffer
	n, err := idx.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, 4+2*(4+32+32+4), n)

	back, err := ReadIndex[Partition](&buf)
	require.NoError(t, err)
	require.Equal(t, 2, back.Size())
	assert.Equal(t, idx.At(0), back.At(0))
	assert.Equal(t, -1, back.At(1).ID)
	assert.True(t, back.At(1).Content.IsEmpty())

	var points GlobalIndex[Point]
	points.BulkLoad([]Point{{1, 2}, {-3, 0.5}})
	buf.Reset()
	_, err = points.WriteTo(&buf)
	require.NoError(t, err)
	pointsBack, err := ReadIndex[Point](&buf)
	require.NoError(t, err)
	assert.Equal(t, []Point{{1, 2}, {-3, 0.5}}, slices.Collect(pointsBack.All()))

	_, err = ReadIndex[Point](bytes.NewReader([]byte{0, 0, 0, 2, 1}))
	assert.Error(t, err, "truncated")
}

func TestGlobalIndex_WriteRejectsUnserializable(t *testing.T) {
	r := NewRectangle(0, 0, 1, 1)
	var idx GlobalIndex[boxRef]
	idx.BulkLoad([]boxRef{{&r}})
	_, err := idx.WriteTo(&bytes.Buffer{})
	assert.Error(t, err)
}

func bruteForceKNN[S Shape](idx *GlobalIndex[S], qx, qy float64, k int) []float64 {
	var all []float64
	for s := range idx.All() {
		all = append(all, s.DistanceTo(qx, qy))
	}
	sort.Float64s(all)
	return all[:min(k, len(all))]
}
