// Package editor wraps a bencode.Value tree in a session: load it from a
// file, address and mutate it by selector string, and write it back.
// Every mutation goes through the bencode/selector primitives; editor
// only adds file I/O and the dirty-check spec.md's collaborator contract
// (§6.3) asks for: hashing the tree before and after a Set to report
// whether it actually changed anything.
package editor

import (
	"fmt"
	"os"

	"github.com/omkarkirpan/bencedit/bencode"
	"github.com/omkarkirpan/bencedit/traverse"
)

// Session holds one in-memory bencode tree plus the path it was loaded
// from (if any), for Save to default to.
type Session struct {
	Root  bencode.Value
	Path  string
	Dirty bool
}

// New returns a Session over an already-built root value, with no
// backing file (Save requires an explicit path until one is set by Load).
func New(root bencode.Value) *Session {
	return &Session{Root: root}
}

// Load reads and decodes the file at path into a new Session.
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("editor: reading %s: %w", path, err)
	}
	root, err := bencode.LoadBytes(data)
	if err != nil {
		return nil, fmt.Errorf("editor: decoding %s: %w", path, err)
	}
	return &Session{Root: root, Path: path}, nil
}

// Save encodes the session's tree and writes it to path, or back to the
// path it was loaded from when path is empty.
func (s *Session) Save(path string) error {
	if path == "" {
		path = s.Path
	}
	if path == "" {
		return fmt.Errorf("editor: no path to save to")
	}
	encoded, err := bencode.EncodeBytes(s.Root)
	if err != nil {
		return fmt.Errorf("editor: encoding: %w", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		return fmt.Errorf("editor: writing %s: %w", path, err)
	}
	s.Path = path
	s.Dirty = false
	return nil
}

// Select resolves selStr against the session's tree for reading.
func (s *Session) Select(selStr string) (*bencode.Value, error) {
	return bencode.Select(&s.Root, selStr)
}

// Set replaces the value addressed by selStr with v, returning whether
// the tree's structural hash actually changed. This is the hashing-based
// dirty-check spec.md §6.3 specifies: a Set that writes back an
// identical value is reported as unchanged rather than marking the
// session dirty.
func (s *Session) Set(selStr string, v bencode.Value) (changed bool, err error) {
	node, err := bencode.SelectMut(&s.Root, selStr)
	if err != nil {
		return false, err
	}
	before := traverse.Hash(node)
	*node = v
	after := traverse.Hash(node)
	changed = before != after
	if changed {
		s.Dirty = true
	}
	return changed, nil
}

// InsertKey inserts or overwrites key with v in the Dict addressed by
// containerSel.
func (s *Session) InsertKey(containerSel string, key []byte, v bencode.Value) error {
	node, err := bencode.SelectMut(&s.Root, containerSel)
	if err != nil {
		return err
	}
	if err := node.InsertKey(key, v); err != nil {
		return err
	}
	s.Dirty = true
	return nil
}

// InsertIndex inserts v at position i in the List addressed by
// containerSel.
func (s *Session) InsertIndex(containerSel string, i int, v bencode.Value) error {
	node, err := bencode.SelectMut(&s.Root, containerSel)
	if err != nil {
		return err
	}
	if err := node.InsertIndex(i, v); err != nil {
		return err
	}
	s.Dirty = true
	return nil
}

// Append pushes v onto the List addressed by containerSel.
func (s *Session) Append(containerSel string, v bencode.Value) error {
	node, err := bencode.SelectMut(&s.Root, containerSel)
	if err != nil {
		return err
	}
	if err := node.Push(v); err != nil {
		return err
	}
	s.Dirty = true
	return nil
}

// Clear resets the value addressed by selStr to the empty value of its
// own kind (see bencode.Value.Clear).
func (s *Session) Clear(selStr string) error {
	node, err := bencode.SelectMut(&s.Root, selStr)
	if err != nil {
		return err
	}
	node.Clear()
	s.Dirty = true
	return nil
}

// Remove deletes the node addressed by selStr from its parent container.
// selStr must not be empty: the root itself cannot be removed.
func (s *Session) Remove(selStr string) error {
	if err := bencode.RemovePath(&s.Root, selStr); err != nil {
		return err
	}
	s.Dirty = true
	return nil
}

// Hash returns the structural hash of the session's current tree.
func (s *Session) Hash() uint64 {
	return traverse.Hash(&s.Root)
}
