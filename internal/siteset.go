package internal

import (
	"fmt"
	"iter"
	"strings"

	"github.com/bits-and-blooms/bitset"
	"github.com/pkg/errors"
)

// A set of site indices over a fixed domain [0, n). Backs both reportedSites
// and sitesToReport.
type SiteSet struct {
	n    int
	bits *bitset.BitSet
}

func NewSiteSet(n int) *SiteSet {
	return &SiteSet{n: n, bits: bitset.New(uint(n))}
}

// A set containing every index in [0, n).
func FullSiteSet(n int) *SiteSet {
	return NewSiteSet(n).Invert()
}

func (s *SiteSet) Len() int { return s.n }

func (s *SiteSet) Set(i int) {
	s.check(i)
	s.bits.Set(uint(i))
}

func (s *SiteSet) Remove(i int) {
	s.check(i)
	s.bits.Clear(uint(i))
}

func (s *SiteSet) Contains(i int) bool {
	if i < 0 || i >= s.n {
		return false
	}
	return s.bits.Test(uint(i))
}

func (s *SiteSet) Count() int {
	return int(s.bits.Count())
}

func (s *SiteSet) IsEmpty() bool {
	return s.bits.None()
}

// A new set holding every index of the domain not in s.
func (s *SiteSet) Invert() *SiteSet {
	out := &SiteSet{n: s.n, bits: bitset.New(uint(s.n))}
	out.bits.InPlaceUnion(s.bits)
	out.bits.FlipRange(0, uint(s.n))
	return out
}

// Add every member of other to s. Both sets must share a domain.
func (s *SiteSet) UnionWith(other *SiteSet) {
	s.sameDomain(other)
	s.bits.InPlaceUnion(other.bits)
}

// A new set of the members of s that are not in other.
func (s *SiteSet) Difference(other *SiteSet) *SiteSet {
	s.sameDomain(other)
	return &SiteSet{n: s.n, bits: s.bits.Difference(other.bits)}
}

func (s *SiteSet) Clone() *SiteSet {
	return &SiteSet{n: s.n, bits: s.bits.Clone()}
}

func (s *SiteSet) Equal(other *SiteSet) bool {
	return s.n == other.n && s.bits.Equal(other.bits)
}

// Members in increasing order.
func (s *SiteSet) All() iter.Seq[int] {
	return func(yield func(int) bool) {
		for i, ok := s.bits.NextSet(0); ok && int(i) < s.n; i, ok = s.bits.NextSet(i + 1) {
			if !yield(int(i)) {
				return
			}
		}
	}
}

// A set over a new domain of size n, where each member i of s that appears in
// remap becomes remap[i]. Used when re-indexing sites into a sub-triangulation.
func (s *SiteSet) Remap(n int, remap map[int]int) *SiteSet {
	out := NewSiteSet(n)
	for i := range s.All() {
		if j, ok := remap[i]; ok {
			out.Set(j)
		}
	}
	return out
}

// A set over the concatenated domain of all parts, each part's members shifted
// by the sizes of the parts before it.
func ConcatSiteSets(parts ...*SiteSet) *SiteSet {
	total := 0
	for _, p := range parts {
		total += p.n
	}
	out := NewSiteSet(total)
	offset := 0
	for _, p := range parts {
		for i := range p.All() {
			out.Set(offset + i)
		}
		offset += p.n
	}
	return out
}

// The bytes of the set, LSB-first: bit i lives in byte i/8 at position i%8.
func (s *SiteSet) Bytes() []byte {
	out := make([]byte, (s.n+7)/8)
	for i := range s.All() {
		out[i/8] |= 1 << (uint(i) % 8)
	}
	return out
}

// Inverse of Bytes. Bits beyond n in the final byte must be clear.
func SiteSetFromBytes(n int, data []byte) (*SiteSet, error) {
	if len(data) != (n+7)/8 {
		return nil, errors.Errorf("bitset of %d bits needs %d bytes, got %d", n, (n+7)/8, len(data))
	}
	out := NewSiteSet(n)
	for i, b := range data {
		for bit := 0; bit < 8; bit++ {
			if b&(1<<uint(bit)) == 0 {
				continue
			}
			idx := i*8 + bit
			if idx >= n {
				return nil, errors.Errorf("bit %d set beyond bitset length %d", idx, n)
			}
			out.Set(idx)
		}
	}
	return out, nil
}

func (s *SiteSet) String() string {
	var b strings.Builder
	b.WriteByte('{')
	first := true
	for i := range s.All() {
		if !first {
			b.WriteByte(' ')
		}
		first = false
		fmt.Fprint(&b, i)
	}
	b.WriteByte('}')
	return b.String()
}

func (s *SiteSet) check(i int) {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("site index %d out of range [0, %d)", i, s.n))
	}
}

func (s *SiteSet) sameDomain(other *SiteSet) {
	if s.n != other.n {
		panic(fmt.Sprintf("site set domains differ: %d vs %d", s.n, other.n))
	}
}
