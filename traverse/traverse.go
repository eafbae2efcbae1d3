// Package traverse implements an iterative, visitor-driven depth-first
// walk over a bencode.Value tree, plus a structural hash built on top of
// it. The walk never recurses into the host call stack — nesting depth
// lives in an explicit frame stack — so it tolerates arbitrarily deep
// trees the same way the decoder does.
package traverse

import "github.com/omkarkirpan/bencedit/bencode"

// Action is returned by a Visitor to steer the walk.
type Action int

const (
	// Continue proceeds with the next sibling without descending into
	// the value just visited, even if it is a container.
	Continue Action = iota
	// Enter descends into the container just visited. Returning Enter
	// for a non-container value is equivalent to Continue.
	Enter
	// Exit unwinds the container currently being iterated — the one
	// the just-visited element belongs to — without visiting its
	// remaining siblings.
	Exit
	// Stop ends the walk immediately.
	Stop
)

// ElemKind distinguishes the root callback from a dict-key or list-index
// step.
type ElemKind int

const (
	RootElem ElemKind = iota
	KeyElem
	IndexElem
)

// PathElem identifies one step of the walk: how the visited value was
// reached from its parent.
type PathElem struct {
	Kind  ElemKind
	Key   []byte
	Index int
}

// Visitor is called once for the root (elem.Kind == RootElem, parent ==
// nil), once for every key/index encountered in a container, and once
// more at each container's exit with value == nil and parent set to the
// container that just finished.
type Visitor func(elem PathElem, parent *bencode.Value, value *bencode.Value) Action

// frame tracks iteration position over one open container.
type frame struct {
	elemKind ElemKind
	value    *bencode.Value
	dict     *bencode.Dict
	dictKeys [][]byte
	list     *bencode.List
	pos      int
	length   int
}

func newFrame(v *bencode.Value) *frame {
	f := &frame{value: v}
	if d, ok := v.AsDict(); ok {
		f.dict = d
		f.dictKeys = d.Keys()
		f.length = len(f.dictKeys)
		f.elemKind = KeyElem
		return f
	}
	l, _ := v.AsList()
	f.list = l
	f.length = l.Len()
	f.elemKind = IndexElem
	return f
}

func (f *frame) next() (PathElem, *bencode.Value) {
	i := f.pos
	f.pos++
	if f.dict != nil {
		key := f.dictKeys[i]
		return PathElem{Kind: KeyElem, Key: key}, f.dict.GetPtr(key)
	}
	return PathElem{Kind: IndexElem, Index: i}, f.list.AtPtr(i)
}

// Walk performs the traversal described in the package doc, calling
// visit for every step.
func Walk(root *bencode.Value, visit Visitor) {
	action := visit(PathElem{Kind: RootElem}, nil, root)
	if action != Enter {
		return
	}
	if !root.IsDict() && !root.IsList() {
		return
	}

	stack := []*frame{newFrame(root)}
	for len(stack) > 0 {
		top := stack[len(stack)-1]

		if top.pos >= top.length {
			stack = stack[:len(stack)-1]
			if visit(PathElem{Kind: top.elemKind}, top.value, nil) == Stop {
				return
			}
			continue
		}

		elem, child := top.next()
		switch visit(elem, top.value, child) {
		case Stop:
			return
		case Enter:
			if child != nil && (child.IsDict() || child.IsList()) {
				stack = append(stack, newFrame(child))
			}
		case Exit:
			stack = stack[:len(stack)-1]
			if visit(PathElem{Kind: top.elemKind}, top.value, nil) == Stop {
				return
			}
		}
	}
}
