package vm

import (
	"github.com/chazu/nick/bits"
	"src.elv.sh/pkg/persistent/hash"
	"src.elv.sh/pkg/persistent/hashmap"
	"src.elv.sh/pkg/persistent/vector"
)

// ---------------------------------------------------------------------------
// Set: persistent insertion-ordered map keyed by bit sequences
// ---------------------------------------------------------------------------
//
// Entries live in a persistent vector in insertion order; a persistent hash
// map from key to vector index finds them. Replacing the value of an
// existing key keeps its original position. Every update returns a new Set
// and shares structure with the old one, so scopes captured by closures
// never change underneath them.

// Entry is one key/value binding of a set.
type Entry struct {
	Key   bits.BitSeq
	Value Value
}

// Set is an immutable ordered mapping from bit sequences to values.
type Set struct {
	entries vector.Vector
	index   hashmap.Map
}

func (*Set) Kind() Kind { return KindSet }

var emptySet = &Set{
	entries: vector.Empty,
	index:   hashmap.New(keyEqual, keyHash),
}

// EmptySet returns the set with no entries.
func EmptySet() *Set {
	return emptySet
}

// NewSet builds a set from entries in order. Later entries replace earlier
// ones with the same key.
func NewSet(entries ...Entry) *Set {
	s := emptySet
	for _, e := range entries {
		s = s.With(e.Key, e.Value)
	}
	return s
}

func keyEqual(a, b any) bool {
	return a.(string) == b.(string)
}

func keyHash(k any) uint32 {
	return hash.String(k.(string))
}

// Len returns the number of entries.
func (s *Set) Len() int {
	return s.entries.Len()
}

// Get returns the value bound to key.
func (s *Set) Get(key bits.BitSeq) (Value, bool) {
	i, ok := s.index.Index(key.Key())
	if !ok {
		return nil, false
	}
	e, _ := s.entries.Index(i.(int))
	return e.(Entry).Value, true
}

// With returns a set with key bound to v.
func (s *Set) With(key bits.BitSeq, v Value) *Set {
	k := key.Key()
	entry := Entry{Key: key, Value: v}
	if i, ok := s.index.Index(k); ok {
		return &Set{entries: s.entries.Assoc(i.(int), entry), index: s.index}
	}
	return &Set{
		entries: s.entries.Conj(entry),
		index:   s.index.Assoc(k, s.entries.Len()),
	}
}

// Merge returns the union of s and other. Values from other win on key
// collisions; keys new to s follow s's entries in other's order.
func (s *Set) Merge(other *Set) *Set {
	if other.Len() == 0 {
		return s
	}
	if s.Len() == 0 {
		return other
	}
	out := s
	for i := 0; i < other.Len(); i++ {
		e := other.At(i)
		out = out.With(e.Key, e.Value)
	}
	return out
}

// At returns the i'th entry in iteration order.
func (s *Set) At(i int) Entry {
	e, _ := s.entries.Index(i)
	return e.(Entry)
}

// Entries returns all entries in iteration order.
func (s *Set) Entries() []Entry {
	out := make([]Entry, s.Len())
	for i := range out {
		out[i] = s.At(i)
	}
	return out
}
