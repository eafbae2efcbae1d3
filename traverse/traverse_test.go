package traverse

import (
	"testing"

	"github.com/omkarkirpan/bencedit/bencode"
)

func buildSample() bencode.Value {
	inner := bencode.NewList()
	il, _ := inner.AsList()
	il.Push(bencode.Int(1))
	il.Push(bencode.Int(2))

	root := bencode.NewDict()
	rd, _ := root.AsDict()
	rd.Set([]byte("name"), bencode.String("demo"))
	rd.Set([]byte("nums"), inner)
	return root
}

func TestWalkVisitsEveryNodeAndFiresExit(t *testing.T) {
	root := buildSample()

	type seen struct {
		kind  ElemKind
		key   string
		index int
		exit  bool
	}
	var got []seen

	Walk(&root, func(elem PathElem, parent *bencode.Value, value *bencode.Value) Action {
		got = append(got, seen{kind: elem.Kind, key: string(elem.Key), index: elem.Index, exit: value == nil})
		if value != nil && (value.IsDict() || value.IsList()) {
			return Enter
		}
		return Continue
	})

	want := []seen{
		{kind: RootElem},
		{kind: KeyElem, key: "name"},
		{kind: KeyElem, key: "nums"},
		{kind: IndexElem, index: 0},
		{kind: IndexElem, index: 1},
		{kind: IndexElem, exit: true}, // list exit: signalled via its child elem kind, no index/key attached
		{kind: KeyElem, exit: true},   // dict exit: signalled via its child elem kind, no index/key attached
	}
	if len(got) != len(want) {
		t.Fatalf("got %d steps, want %d: %+v", len(got), len(want), got)
	}
	for i, w := range want {
		if got[i].kind != w.kind || got[i].key != w.key || got[i].exit != w.exit {
			t.Errorf("step %d = %+v, want %+v", i, got[i], w)
		}
	}
}

func TestWalkStop(t *testing.T) {
	root := buildSample()
	count := 0
	Walk(&root, func(elem PathElem, parent *bencode.Value, value *bencode.Value) Action {
		count++
		if elem.Kind == KeyElem && string(elem.Key) == "name" {
			return Stop
		}
		return Enter
	})
	if count != 2 {
		t.Errorf("visited %d steps before Stop, want 2", count)
	}
}

func TestWalkContinueSkipsContainerChildren(t *testing.T) {
	root := buildSample()
	var sawNumsChild bool
	Walk(&root, func(elem PathElem, parent *bencode.Value, value *bencode.Value) Action {
		if elem.Kind == KeyElem && string(elem.Key) == "nums" {
			return Continue // treat the nested list as a leaf
		}
		if elem.Kind == IndexElem {
			sawNumsChild = true
		}
		return Enter
	})
	if sawNumsChild {
		t.Errorf("expected Continue on a container to skip its children")
	}
}

func TestHashEqualForEqualValues(t *testing.T) {
	a := buildSample()
	b := buildSample()
	if Hash(&a) != Hash(&b) {
		t.Errorf("structurally equal values hashed differently")
	}
}

func TestHashDiffersForDifferentValues(t *testing.T) {
	a := buildSample()
	b := buildSample()
	bd, _ := b.AsDict()
	bd.Set([]byte("name"), bencode.String("other"))
	if Hash(&a) == Hash(&b) {
		t.Errorf("differing values hashed the same")
	}
}

func TestHashDistinguishesIntFromString(t *testing.T) {
	a := bencode.Int(0)
	b := bencode.String("")
	if Hash(&a) == Hash(&b) {
		t.Errorf("Int(0) and empty ByteString hashed the same")
	}
}

func TestHashStableAcrossDictKeyInsertionOrder(t *testing.T) {
	a := bencode.NewDict()
	ad, _ := a.AsDict()
	ad.Set([]byte("b"), bencode.Int(2))
	ad.Set([]byte("a"), bencode.Int(1))

	b := bencode.NewDict()
	bd, _ := b.AsDict()
	bd.Set([]byte("a"), bencode.Int(1))
	bd.Set([]byte("b"), bencode.Int(2))

	if Hash(&a) != Hash(&b) {
		t.Errorf("dict hash should not depend on insertion order")
	}
}
