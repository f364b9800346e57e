package internal

import (
	"bufio"
	"encoding/binary"
	"io"
	"math"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// The wire record passed between tiles and the reducer. All integers are big
// endian uint32s.
//
//	site count, then x and y of each site as IEEE 754 doubles
//	directed adjacency entry count, then (from, to) pairs
//	reportedSites: length in bits, then ceil(len/8) bytes, LSB first
//	sitesToReport: same layout
//
// Both directions of every edge are written. Origins are not part of the
// record.
func (t *Triangulation) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: bufio.NewWriter(w)}
	cw.u32(uint32(t.Size()))
	for _, p := range t.sites {
		cw.u64(math.Float64bits(p.X))
		cw.u64(math.Float64bits(p.Y))
	}
	entries := 0
	for _, ring := range t.rings {
		entries += len(ring)
	}
	cw.u32(uint32(entries))
	for from, ring := range t.rings {
		for _, to := range ring {
			cw.u32(uint32(from))
			cw.u32(uint32(to))
		}
	}
	for _, set := range []*SiteSet{t.reported, t.toReport} {
		cw.u32(uint32(set.Len()))
		cw.bytes(set.Bytes())
	}
	if cw.err == nil {
		cw.err = cw.w.Flush()
	}
	return cw.n, errors.Wrap(cw.err, "writing triangulation")
}

// Decode a record written by WriteTo. The record is validated: indices in
// range, no self loops or repeated entries, every edge present in both
// directions, sites strictly increasing in lexicographic order, and bitsets
// sized to the site count. Rings are rebuilt in counterclockwise order rather
// than trusting the entry order. Validation failures are precondition errors.
func ReadTriangulation(r io.Reader) (*Triangulation, error) {
	rd := &reader{r: r}
	n := int(rd.u32())
	if rd.err != nil {
		return nil, errors.Wrap(rd.err, "reading site count")
	}
	sites := make([]Point, 0, min(n, 1<<16))
	for i := 0; i < n && rd.err == nil; i++ {
		x := math.Float64frombits(rd.u64())
		y := math.Float64frombits(rd.u64())
		sites = append(sites, Point{x, y})
	}
	if rd.err != nil {
		return nil, errors.Wrapf(rd.err, "reading %d sites", n)
	}

	entryCount := int(rd.u32())
	type entry struct{ from, to int }
	entries := make([]entry, 0, min(entryCount, 1<<16))
	for i := 0; i < entryCount && rd.err == nil; i++ {
		from, to := int(rd.u32()), int(rd.u32())
		entries = append(entries, entry{from, to})
	}
	if rd.err != nil {
		return nil, errors.Wrapf(rd.err, "reading %d adjacency entries", entryCount)
	}

	var sets [2]*SiteSet
	for k, name := range []string{"reportedSites", "sitesToReport"} {
		bits := int(rd.u32())
		if rd.err == nil && bits != n {
			return nil, newError(KindPrecondition, errors.Errorf("%s has %d bits for %d sites", name, bits, n))
		}
		data := rd.bytes((bits + 7) / 8)
		if rd.err != nil {
			return nil, errors.Wrapf(rd.err, "reading %s", name)
		}
		set, err := SiteSetFromBytes(bits, data)
		if err != nil {
			return nil, newError(KindPrecondition, errors.Wrap(err, name))
		}
		sets[k] = set
	}

	var defects error
	for i := 1; i < n; i++ {
		if !sites[i-1].Less(sites[i]) {
			defects = multierr.Append(defects, errors.Errorf("site %d %v does not follow site %d %v", i, sites[i], i-1, sites[i-1]))
		}
	}
	for i, p := range sites {
		if !p.IsFinite() {
			defects = multierr.Append(defects, errors.Errorf("site %d has a non-finite coordinate %v", i, p))
		}
	}
	seen := make(map[entry]struct{}, len(entries))
	for _, e := range entries {
		switch {
		case e.from < 0 || e.from >= n || e.to < 0 || e.to >= n:
			defects = multierr.Append(defects, errors.Errorf("entry %d->%d out of range for %d sites", e.from, e.to, n))
			continue
		case e.from == e.to:
			defects = multierr.Append(defects, errors.Errorf("self loop at site %d", e.from))
			continue
		}
		if _, dup := seen[e]; dup {
			defects = multierr.Append(defects, errors.Errorf("repeated entry %d->%d", e.from, e.to))
			continue
		}
		seen[e] = struct{}{}
	}
	for e := range seen {
		if _, ok := seen[entry{e.to, e.from}]; !ok {
			defects = multierr.Append(defects, errors.Errorf("edge %d->%d has no reverse entry", e.from, e.to))
		}
	}
	if defects != nil {
		return nil, newError(KindPrecondition, errors.Wrap(defects, "malformed triangulation record"))
	}

	origins := make([]int, n)
	for i := range origins {
		origins[i] = i
	}
	t := newTriangulation(sites, origins)
	for _, e := range entries {
		t.AddNeighborInOrder(e.from, e.to)
	}
	t.reported, t.toReport = sets[0], sets[1]
	return t, nil
}

// A writer that remembers the first error and counts bytes, so encoding can
// run straight through and check once.
type countingWriter struct {
	w   *bufio.Writer
	n   int64
	err error
	buf [8]byte
}

func (c *countingWriter) bytes(b []byte) {
	if c.err != nil {
		return
	}
	n, err := c.w.Write(b)
	c.n += int64(n)
	c.err = err
}

func (c *countingWriter) u32(v uint32) {
	binary.BigEndian.PutUint32(c.buf[:4], v)
	c.bytes(c.buf[:4])
}

func (c *countingWriter) u64(v uint64) {
	binary.BigEndian.PutUint64(c.buf[:], v)
	c.bytes(c.buf[:])
}

type reader struct {
	r   io.Reader
	err error
	buf [8]byte
}

func (r *reader) bytes(n int) []byte {
	if r.err != nil {
		return nil
	}
	out := make([]byte, n)
	_, r.err = io.ReadFull(r.r, out)
	return out
}

func (r *reader) u32() uint32 {
	if r.err != nil {
		return 0
	}
	_, r.err = io.ReadFull(r.r, r.buf[:4])
	return binary.BigEndian.Uint32(r.buf[:4])
}

func (r *reader) u64() uint64 {
	if r.err != nil {
		return 0
	}
	_, r.err = io.ReadFull(r.r, r.buf[:])
	return binary.BigEndian.Uint64(r.buf[:])
}
