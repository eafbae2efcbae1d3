package bencode

import (
	"bytes"
	"sort"
)

// Dict is a mapping from ByteString keys to Values. Keys are unique and
// entries are always kept sorted in ascending byte order of the key: this
// is an invariant the encoder relies on for deterministic, round-trippable
// output, not merely a convenience.
type Dict struct {
	entries []dictEntry
}

type dictEntry struct {
	key []byte
	val Value
}

// Len returns the number of entries.
func (d *Dict) Len() int { return len(d.entries) }

func (d *Dict) search(key []byte) (int, bool) {
	i := sort.Search(len(d.entries), func(i int) bool {
		return bytes.Compare(d.entries[i].key, key) >= 0
	})
	if i < len(d.entries) && bytes.Equal(d.entries[i].key, key) {
		return i, true
	}
	return i, false
}

// Get returns the value for key and true, or the zero Value and false.
func (d *Dict) Get(key []byte) (Value, bool) {
	i, found := d.search(key)
	if !found {
		return Value{}, false
	}
	return d.entries[i].val, true
}

// GetPtr returns a mutable pointer to the stored value for key, or nil.
func (d *Dict) GetPtr(key []byte) *Value {
	i, found := d.search(key)
	if !found {
		return nil
	}
	return &d.entries[i].val
}

// Set inserts key/val or overwrites the existing entry for key, keeping
// entries sorted.
func (d *Dict) Set(key []byte, val Value) {
	i, found := d.search(key)
	if found {
		d.entries[i].val = val
		return
	}
	owned := make([]byte, len(key))
	copy(owned, key)
	d.entries = append(d.entries, dictEntry{})
	copy(d.entries[i+1:], d.entries[i:])
	d.entries[i] = dictEntry{key: owned, val: val}
}

// Delete removes the entry for key if present. It is a no-op otherwise.
func (d *Dict) Delete(key []byte) {
	i, found := d.search(key)
	if !found {
		return
	}
	d.entries = append(d.entries[:i], d.entries[i+1:]...)
}

// Keys returns the dict's keys in ascending order. The returned slices
// alias internal storage and must not be mutated.
func (d *Dict) Keys() [][]byte {
	keys := make([][]byte, len(d.entries))
	for i, e := range d.entries {
		keys[i] = e.key
	}
	return keys
}

// Each calls fn for every entry in ascending key order. fn must not
// mutate d.
func (d *Dict) Each(fn func(key []byte, val Value)) {
	for _, e := range d.entries {
		fn(e.key, e.val)
	}
}

// EachMut calls fn with a mutable pointer to every entry's value, in
// ascending key order.
func (d *Dict) EachMut(fn func(key []byte, val *Value)) {
	for i := range d.entries {
		fn(d.entries[i].key, &d.entries[i].val)
	}
}

func (d *Dict) clone() *Dict {
	if d == nil {
		return &Dict{}
	}
	out := &Dict{entries: make([]dictEntry, len(d.entries))}
	for i, e := range d.entries {
		k := make([]byte, len(e.key))
		copy(k, e.key)
		out.entries[i] = dictEntry{key: k, val: e.val.Clone()}
	}
	return out
}

func (d *Dict) equal(other *Dict) bool {
	if d == nil || other == nil {
		return d == other
	}
	if len(d.entries) != len(other.entries) {
		return false
	}
	for i, e := range d.entries {
		oe := other.entries[i]
		if !bytes.Equal(e.key, oe.key) || !e.val.Equal(oe.val) {
			return false
		}
	}
	return true
}

func (d *Dict) compare(other *Dict) int {
	n := len(d.entries)
	if len(other.entries) < n {
		n = len(other.entries)
	}
	for i := 0; i < n; i++ {
		if c := bytes.Compare(d.entries[i].key, other.entries[i].key); c != 0 {
			return c
		}
		if c := d.entries[i].val.Compare(other.entries[i].val); c != 0 {
			return c
		}
	}
	switch {
	case len(d.entries) < len(other.entries):
		return -1
	case len(d.entries) > len(other.entries):
		return 1
	default:
		return 0
	}
}
