package spatial

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
)

// Anything the global index can hold.
type Shape interface {
	MBR() Rectangle
	Intersects(r Rectangle) bool
	DistanceTo(x, y float64) float64
}

// Shapes with reference semantics implement Cloner so that bulk loading an
// index decouples it from the caller's values.
type Cloner[S any] interface {
	Clone() S
}

// Receives shapes one at a time.
type ResultCollector[S any] interface {
	Collect(S)
}

// Receives pairs: joined shapes, or a shape and its distance.
type ResultCollector2[S1, S2 any] interface {
	Collect(S1, S2)
}

type CollectorFunc[S any] func(S)

func (f CollectorFunc[S]) Collect(s S) { f(s) }

type Collector2Func[S1, S2 any] func(S1, S2)

func (f Collector2Func[S1, S2]) Collect(a S1, b S2) { f(a, b) }

// A collector appending to a slice.
type SliceCollector[S any] struct {
	Items []S
}

func (c *SliceCollector[S]) Collect(s S) { c.Items = append(c.Items, s) }

// A point shape.
type Point struct {
	X, Y float64
}

func (p Point) MBR() Rectangle { return NewRectangle(p.X, p.Y, p.X, p.Y) }

func (p Point) Intersects(r Rectangle) bool { return r.ContainsXY(p.X, p.Y) }

func (p Point) DistanceTo(x, y float64) float64 { return math.Hypot(p.X-x, p.Y-y) }

func (p Point) String() string { return fmt.Sprintf("(%g, %g)", p.X, p.Y) }

func (p Point) WriteTo(w io.Writer) (int64, error) {
	buf := make([]byte, 16)
	binary.BigEndian.PutUint64(buf, math.Float64bits(p.X))
	binary.BigEndian.PutUint64(buf[8:], math.Float64bits(p.Y))
	n, err := w.Write(buf)
	return int64(n), errors.Wrap(err, "writing point")
}

func (p *Point) ReadFrom(r io.Reader) (int64, error) {
	buf := make([]byte, 16)
	n, err := io.ReadFull(r, buf)
	if err != nil {
		return int64(n), errors.Wrap(err, "reading point")
	}
	p.X = math.Float64frombits(binary.BigEndian.Uint64(buf))
	p.Y = math.Float64frombits(binary.BigEndian.Uint64(buf[8:]))
	return int64(n), nil
}

// A tile of a partitioned dataset. Cell is the region of the plane the tile is
// responsible for, and Content is the MBR of the data that actually fell in it,
// which may be much smaller.
type Partition struct {
	ID      int
	Cell    Rectangle
	Content Rectangle
	Count   int
}

// The rectangle to treat the partition as: its content when the index holding
// it is compact, and its cell otherwise.
func (p Partition) Bounds(compact bool) Rectangle {
	if compact {
		return p.Content
	}
	return p.Cell
}

func (p Partition) MBR() Rectangle { return p.Cell }

func (p Partition) Intersects(r Rectangle) bool { return p.Cell.Intersects(r) }

func (p Partition) DistanceTo(x, y float64) float64 { return p.Cell.DistanceTo(x, y) }

func (p Partition) String() string {
	return fmt.Sprintf("partition %d: cell %v, content %v, %d records", p.ID, p.Cell, p.Content, p.Count)
}

// ID and count as big endian int32s around the two rectangles.
func (p Partition) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var head [4]byte
	binary.BigEndian.PutUint32(head[:], uint32(int32(p.ID)))
	n, err := w.Write(head[:])
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(err, "writing partition")
	}
	for _, r := range []Rectangle{p.Cell, p.Content} {
		m, err := r.WriteTo(w)
		total += m
		if err != nil {
			return total, errors.Wrapf(err, "writing partition %d", p.ID)
		}
	}
	binary.BigEndian.PutUint32(head[:], uint32(int32(p.Count)))
	n, err = w.Write(head[:])
	total += int64(n)
	return total, errors.Wrapf(err, "writing partition %d", p.ID)
}

func (p *Partition) ReadFrom(r io.Reader) (int64, error) {
	var total int64
	var head [4]byte
	n, err := io.ReadFull(r, head[:])
	total += int64(n)
	if err != nil {
		return total, errors.Wrap(err, "reading partition")
	}
	p.ID = int(int32(binary.BigEndian.Uint32(head[:])))
	for _, rect := range []*Rectangle{&p.Cell, &p.Content} {
		m, err := rect.ReadFrom(r)
		total += m
		if err != nil {
			return total, errors.Wrapf(err, "reading partition %d", p.ID)
		}
	}
	n, err = io.ReadFull(r, head[:])
	total += int64(n)
	if err != nil {
		return total, errors.Wrapf(err, "reading partition %d", p.ID)
	}
	p.Count = int(int32(binary.BigEndian.Uint32(head[:])))
	return total, nil
}
