package internal

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_RoundTrip(t *testing.T) {
	tri := Build(Points(RandomPoints(6, 40, 100)), testConfig(t))
	// Half of the sites reported, the rest pending
	for i := 0; i < tri.Size(); i += 2 {
		tri.reported.Set(i)
	}

	var buf bytes.Buffer
	n, err := tri.WriteTo(&buf)
	require.NoError(t, err)
	assert.EqualValues(t, buf.Len(), n)

	back, err := ReadTriangulation(&buf)
	require.NoError(t, err)
	assert.Equal(t, tri.Sites(), back.Sites())
	for i := 0; i < tri.Size(); i++ {
		assert.Equal(t, tri.Ring(i), back.Ring(i), "ring of %d", i)
		assert.Equal(t, i, back.Origin(i))
	}
	assert.True(t, tri.ReportedSites().Equal(back.ReportedSites()))
	assert.True(t, tri.SitesToReport().Equal(back.SitesToReport()))
	assert.Equal(t, triangleSet(tri.CollectTriangles()), triangleSet(back.CollectTriangles()))
}

func TestCodec_StreamOfRecords(t *testing.T) {
	cfg := testConfig(t)
	first := Build(Points{{0, 0}, {1, 0}, {0, 1}}, cfg)
	second := Build(Points(Lattice(3, 3, 1)), cfg)

	var buf bytes.Buffer
	_, err := first.WriteTo(&buf)
	require.NoError(t, err)
	_, err = second.WriteTo(&buf)
	require.NoError(t, err)

	a, err := ReadTriangulation(&buf)
	require.NoError(t, err)
	b, err := ReadTriangulation(&buf)
	require.NoError(t, err)
	assert.Equal(t, 3, a.Size())
	assert.Equal(t, 9, b.Size())

	_, err = ReadTriangulation(&buf)
	assert.True(t, errors.Is(err, io.EOF), "%v", err)
}

func TestCodec_Empty(t *testing.T) {
	var buf bytes.Buffer
	_, err := newTriangulation(nil, nil).WriteTo(&buf)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 16), buf.Bytes())

	back, err := ReadTriangulation(&buf)
	require.NoError(t, err)
	assert.Equal(t, 0, back.Size())
}

// Hand-assembled record for the malformed cases.
type record struct {
	sites    []Point
	entries  [][2]uint32
	reported []byte
	bits     [2]uint32
}

func (r record) encode() []byte {
	var buf bytes.Buffer
	put := func(v any) { _ = binary.Write(&buf, binary.BigEndian, v) }
	put(uint32(len(r.sites)))
	for _, p := range r.sites {
		put(math.Float64bits(p.X))
		put(math.Float64bits(p.Y))
	}
	put(uint32(len(r.entries)))
	for _, e := range r.entries {
		put(e)
	}
	for _, bits := range r.bits {
		put(bits)
		data := make([]byte, (bits+7)/8)
		copy(data, r.reported)
		buf.Write(data)
	}
	return buf.Bytes()
}

func TestCodec_Malformed(t *testing.T) {
	triangle := []Point{{0, 0}, {0, 1}, {1, 0}}
	edges := [][2]uint32{{0, 1}, {1, 0}, {1, 2}, {2, 1}, {0, 2}, {2, 0}}
	cases := map[string]record{
		"missing reverse": {sites: triangle, entries: edges[:5], bits: [2]uint32{3, 3}},
		"out of range":    {sites: triangle, entries: append(edges, [2]uint32{0, 7}, [2]uint32{7, 0}), bits: [2]uint32{3, 3}},
		"self loop":       {sites: triangle, entries: append(edges, [2]uint32{1, 1}), bits: [2]uint32{3, 3}},
		"repeated":        {sites: triangle, entries: append(edges, [2]uint32{0, 1}), bits: [2]uint32{3, 3}},
		"unsorted":        {sites: []Point{{0, 1}, {0, 0}, {1, 0}}, entries: edges, bits: [2]uint32{3, 3}},
		"duplicate site":  {sites: []Point{{0, 0}, {0, 0}, {1, 0}}, entries: edges, bits: [2]uint32{3, 3}},
		"nan site":        {sites: []Point{{0, 0}, {0, 1}, {math.NaN(), 0}}, entries: edges, bits: [2]uint32{3, 3}},
		"short bitset":    {sites: triangle, entries: edges, bits: [2]uint32{2, 3}},
		"stray bit":       {sites: triangle, entries: edges, reported: []byte{0x08}, bits: [2]uint32{3, 3}},
	}
	for name, rec := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadTriangulation(bytes.NewReader(rec.encode()))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrPrecondition), "%v", err)
		})
	}

	// The well formed version of the same record decodes
	good := record{sites: triangle, entries: edges, reported: []byte{0x02}, bits: [2]uint32{3, 3}}
	tri, err := ReadTriangulation(bytes.NewReader(good.encode()))
	require.NoError(t, err)
	assert.Equal(t, 3, tri.EdgeCount())
	assert.True(t, tri.ReportedSites().Contains(1))
}

func TestCodec_Truncated(t *testing.T) {
	var buf bytes.Buffer
	_, err := Build(Points(Lattice(4, 4, 1)), testConfig(t)).WriteTo(&buf)
	require.NoError(t, err)
	data := buf.Bytes()

	for _, cut := range []int{2, 20, len(data) / 2, len(data) - 1} {
		_, err := ReadTriangulation(bytes.NewReader(data[:cut]))
		require.Error(t, err, "cut at %d", cut)
		assert.False(t, errors.Is(err, ErrPrecondition), "truncation is an I/O failure")
	}
}
