package bencode

import (
	"fmt"

	"github.com/omkarkirpan/bencedit/selector"
)

// SelectErrorKind classifies a SelectError.
type SelectErrorKind int

const (
	SelSyntax            SelectErrorKind = iota // malformed selector text
	SelNotIndexable                              // '[' applied to a Dict
	SelNotSubscriptable                          // '.' applied to a List
	SelPrimitive                                  // any accessor applied to Int/ByteString
	SelMissingKey                                 // dict lookup miss
	SelIndexOutOfRange                            // list lookup out of range
)

// SelectError is returned by Select/SelectMut when a selector cannot be
// resolved against a tree. Context is the selector prefix up to and
// including the accessor that failed (or selector.RootContext for a
// selector syntax error, where no accessor was resolved) — the REPL shows
// this to the user, so it must always be populated.
type SelectError struct {
	Kind    SelectErrorKind
	Context string
	Detail  string
}

func (e *SelectError) Error() string {
	return fmt.Sprintf("bencode: %s (at %s)", e.Detail, e.Context)
}

func selectErr(kind SelectErrorKind, ctx, format string, args ...interface{}) *SelectError {
	return &SelectError{Kind: kind, Context: ctx, Detail: fmt.Sprintf(format, args...)}
}

func wrapSelectorSyntax(err *selector.Error) *SelectError {
	return &SelectError{Kind: SelSyntax, Context: selector.RootContext, Detail: err.Error()}
}

func contextFor(acc selector.Accessor) string {
	if acc.Prefix == "" {
		return selector.RootContext
	}
	return acc.Prefix
}

// Select resolves selStr against root and returns a pointer to the
// addressed node. Select(root, "") always returns root. Select must not
// be used to mutate the tree — use SelectMut for that; Go has no way to
// enforce that at the type level, so this is a caller contract, not a
// compiler-checked one.
func Select(root *Value, selStr string) (*Value, error) {
	sel, err := selector.Parse(selStr)
	if err != nil {
		serr, ok := err.(*selector.Error)
		if !ok {
			return nil, &SelectError{Kind: SelSyntax, Context: selector.RootContext, Detail: err.Error()}
		}
		return nil, wrapSelectorSyntax(serr)
	}
	return resolve(root, sel)
}

// SelectMut has the same resolution contract as Select; the name marks
// intent at call sites that the caller means to mutate through the
// returned pointer.
func SelectMut(root *Value, selStr string) (*Value, error) {
	return Select(root, selStr)
}

func resolve(root *Value, sel selector.Selector) (*Value, error) {
	cur := root
	for _, acc := range sel.Accessors {
		ctx := contextFor(acc)
		switch acc.Kind {
		case selector.KeyKind:
			switch {
			case cur.IsList():
				return nil, selectErr(SelNotSubscriptable, ctx, "not subscriptable: current node is a list")
			case !cur.IsDict():
				return nil, selectErr(SelPrimitive, ctx, "primitive, not selectable: current node is a %s", cur.Kind())
			}
			d, _ := cur.AsDict()
			next := d.GetPtr(acc.Key)
			if next == nil {
				return nil, selectErr(SelMissingKey, ctx, "missing key %q", acc.Key)
			}
			cur = next

		case selector.IndexKind:
			switch {
			case cur.IsDict():
				return nil, selectErr(SelNotIndexable, ctx, "not indexable: current node is a dict")
			case !cur.IsList():
				return nil, selectErr(SelPrimitive, ctx, "primitive, not selectable: current node is a %s", cur.Kind())
			}
			l, _ := cur.AsList()
			next := l.AtPtr(acc.Index)
			if next == nil {
				return nil, selectErr(SelIndexOutOfRange, ctx, "index %d out of range (len %d)", acc.Index, l.Len())
			}
			cur = next
		}
	}
	return cur, nil
}

// InsertKey inserts or overwrites val at key in v, which must be a Dict.
func (v *Value) InsertKey(key []byte, val Value) error {
	d, ok := v.AsDict()
	if !ok {
		return newWrongKindError("insert by key requires a dict, got %s", v.Kind())
	}
	d.Set(key, val)
	return nil
}

// InsertIndex inserts val at position i in v, which must be a List, with
// 0 <= i <= v's length.
func (v *Value) InsertIndex(i int, val Value) error {
	l, ok := v.AsList()
	if !ok {
		return newWrongKindError("insert by index requires a list, got %s", v.Kind())
	}
	if !l.Insert(i, val) {
		return newOutOfBoundsError("insert index %d out of range (len %d)", i, l.Len())
	}
	return nil
}

// Push appends val to v, which must be a List.
func (v *Value) Push(val Value) error {
	l, ok := v.AsList()
	if !ok {
		return newWrongKindError("push requires a list, got %s", v.Kind())
	}
	l.Push(val)
	return nil
}

// RemoveKey removes key from v, which must be a Dict. Removing an absent
// key is a no-op, not an error.
func (v *Value) RemoveKey(key []byte) error {
	d, ok := v.AsDict()
	if !ok {
		return newWrongKindError("remove by key requires a dict, got %s", v.Kind())
	}
	d.Delete(key)
	return nil
}

// RemoveIndex removes the item at position i in v, which must be a List,
// with 0 <= i < v's length.
func (v *Value) RemoveIndex(i int) error {
	l, ok := v.AsList()
	if !ok {
		return newWrongKindError("remove by index requires a list, got %s", v.Kind())
	}
	if !l.RemoveAt(i) {
		return newOutOfBoundsError("remove index %d out of range (len %d)", i, l.Len())
	}
	return nil
}

// RemovePath removes the node addressed by selStr entirely: the selector
// is split at its last accessor, the parent is resolved with SelectMut,
// and the final accessor drives RemoveKey/RemoveIndex on the parent. This
// is the building block the editor's "remove" command uses — selStr must
// not be empty, since the root itself cannot be removed.
func RemovePath(root *Value, selStr string) error {
	sel, err := selector.Parse(selStr)
	if err != nil {
		serr, ok := err.(*selector.Error)
		if !ok {
			return &SelectError{Kind: SelSyntax, Context: selector.RootContext, Detail: err.Error()}
		}
		return wrapSelectorSyntax(serr)
	}
	if len(sel.Accessors) == 0 {
		return newWrongKindError("cannot remove the root")
	}
	last := sel.Accessors[len(sel.Accessors)-1]
	parentSel := selector.Selector{Accessors: sel.Accessors[:len(sel.Accessors)-1], Raw: sel.Raw}
	parent, err := resolve(root, parentSel)
	if err != nil {
		return err
	}
	switch last.Kind {
	case selector.KeyKind:
		return parent.RemoveKey(last.Key)
	default:
		return parent.RemoveIndex(last.Index)
	}
}
