package bencode

import "testing"

func sampleTorrent() Value {
	files := NewList()
	fl, _ := files.AsList()
	f0 := NewDict()
	f0d, _ := f0.AsDict()
	f0d.Set([]byte("length"), Int(100))
	f0d.Set([]byte("path"), String("a.txt"))
	fl.Push(f0)

	info := NewDict()
	infoD, _ := info.AsDict()
	infoD.Set([]byte("name"), String("demo"))
	infoD.Set([]byte("files"), files)

	root := NewDict()
	rootD, _ := root.AsDict()
	rootD.Set([]byte("info"), info)
	rootD.Set([]byte("announce"), String("udp://tracker"))
	return root
}

func TestSelect(t *testing.T) {
	root := sampleTorrent()

	t.Run("root", func(t *testing.T) {
		got, err := Select(&root, "")
		if err != nil {
			t.Fatalf("Select error = %v, want nil", err)
		}
		if !got.Equal(root) {
			t.Errorf("Select(\"\") did not return root")
		}
	})

	t.Run("nested key", func(t *testing.T) {
		got, err := Select(&root, ".info.name")
		if err != nil {
			t.Fatalf("Select error = %v, want nil", err)
		}
		s, ok := got.AsString()
		if !ok || s != "demo" {
			t.Errorf("got %v, want String(demo)", got)
		}
	})

	t.Run("key then index then key", func(t *testing.T) {
		got, err := Select(&root, ".info.files[0].length")
		if err != nil {
			t.Fatalf("Select error = %v, want nil", err)
		}
		n, ok := got.AsInt()
		if !ok || n != 100 {
			t.Errorf("got %v, want Int(100)", got)
		}
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := Select(&root, ".nope")
		serr, ok := err.(*SelectError)
		if !ok {
			t.Fatalf("err = %v (%T), want *SelectError", err, err)
		}
		if serr.Kind != SelMissingKey {
			t.Errorf("Kind = %v, want SelMissingKey", serr.Kind)
		}
		if serr.Context != ".nope" {
			t.Errorf("Context = %q, want %q", serr.Context, ".nope")
		}
	})

	t.Run("index out of range", func(t *testing.T) {
		_, err := Select(&root, ".info.files[9]")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelIndexOutOfRange {
			t.Fatalf("err = %v, want SelIndexOutOfRange", err)
		}
		if serr.Context != ".info.files[9]" {
			t.Errorf("Context = %q, want %q", serr.Context, ".info.files[9]")
		}
	})

	t.Run("bracket on dict is not indexable", func(t *testing.T) {
		_, err := Select(&root, ".info[0]")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelNotIndexable {
			t.Fatalf("err = %v, want SelNotIndexable", err)
		}
	})

	t.Run("dot on list is not subscriptable", func(t *testing.T) {
		_, err := Select(&root, ".info.files.length")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelNotSubscriptable {
			t.Fatalf("err = %v, want SelNotSubscriptable", err)
		}
	})

	t.Run("accessor on primitive", func(t *testing.T) {
		_, err := Select(&root, ".info.name.x")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelPrimitive {
			t.Fatalf("err = %v, want SelPrimitive", err)
		}
	})

	t.Run("malformed selector", func(t *testing.T) {
		_, err := Select(&root, "oops")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelSyntax {
			t.Fatalf("err = %v, want SelSyntax", err)
		}
	})
}

func TestMutationPrimitives(t *testing.T) {
	t.Run("insert key into dict", func(t *testing.T) {
		root := NewDict()
		if err := root.InsertKey([]byte("k"), Int(1)); err != nil {
			t.Fatalf("InsertKey error = %v", err)
		}
		d, _ := root.AsDict()
		v, ok := d.Get([]byte("k"))
		if !ok || v.Equal(Int(1)) == false {
			t.Errorf("got %v, want Int(1)", v)
		}
	})

	t.Run("insert key into list is wrong kind", func(t *testing.T) {
		root := NewList()
		err := root.InsertKey([]byte("k"), Int(1))
		merr, ok := err.(*MutationError)
		if !ok || merr.Kind != ErrWrongKind {
			t.Fatalf("err = %v, want ErrWrongKind", err)
		}
	})

	t.Run("insert index within bounds", func(t *testing.T) {
		root := NewList()
		root.Push(Int(1))
		root.Push(Int(3))
		if err := root.InsertIndex(1, Int(2)); err != nil {
			t.Fatalf("InsertIndex error = %v", err)
		}
		l, _ := root.AsList()
		for i, want := range []int64{1, 2, 3} {
			v, _ := l.At(i)
			n, _ := v.AsInt()
			if n != want {
				t.Errorf("item[%d] = %d, want %d", i, n, want)
			}
		}
	})

	t.Run("insert index out of bounds", func(t *testing.T) {
		root := NewList()
		err := root.InsertIndex(5, Int(1))
		merr, ok := err.(*MutationError)
		if !ok || merr.Kind != ErrOutOfBounds {
			t.Fatalf("err = %v, want ErrOutOfBounds", err)
		}
	})

	t.Run("push", func(t *testing.T) {
		root := NewList()
		if err := root.Push(Int(9)); err != nil {
			t.Fatalf("Push error = %v", err)
		}
		l, _ := root.AsList()
		if l.Len() != 1 {
			t.Errorf("Len = %d, want 1", l.Len())
		}
	})

	t.Run("remove key is no-op when absent", func(t *testing.T) {
		root := NewDict()
		if err := root.RemoveKey([]byte("missing")); err != nil {
			t.Errorf("RemoveKey error = %v, want nil", err)
		}
	})

	t.Run("remove index", func(t *testing.T) {
		root := NewList()
		root.Push(Int(1))
		root.Push(Int(2))
		if err := root.RemoveIndex(0); err != nil {
			t.Fatalf("RemoveIndex error = %v", err)
		}
		l, _ := root.AsList()
		if l.Len() != 1 {
			t.Fatalf("Len = %d, want 1", l.Len())
		}
		v, _ := l.At(0)
		n, _ := v.AsInt()
		if n != 2 {
			t.Errorf("remaining item = %d, want 2", n)
		}
	})

	t.Run("clear", func(t *testing.T) {
		v := Int(5)
		v.Clear()
		n, _ := v.AsInt()
		if n != 0 {
			t.Errorf("Clear on int = %d, want 0", n)
		}
	})
}

func TestRemovePath(t *testing.T) {
	t.Run("removes nested key", func(t *testing.T) {
		root := sampleTorrent()
		if err := RemovePath(&root, ".info.name"); err != nil {
			t.Fatalf("RemovePath error = %v", err)
		}
		if _, err := Select(&root, ".info.name"); err == nil {
			t.Errorf("expected .info.name to be gone")
		}
	})

	t.Run("removes list item", func(t *testing.T) {
		root := sampleTorrent()
		if err := RemovePath(&root, ".info.files[0]"); err != nil {
			t.Fatalf("RemovePath error = %v", err)
		}
		info, _ := Select(&root, ".info.files")
		l, _ := info.AsList()
		if l.Len() != 0 {
			t.Errorf("Len = %d, want 0", l.Len())
		}
	})

	t.Run("rejects removing root", func(t *testing.T) {
		root := sampleTorrent()
		if err := RemovePath(&root, ""); err == nil {
			t.Errorf("expected error removing root")
		}
	})

	t.Run("propagates missing parent", func(t *testing.T) {
		root := sampleTorrent()
		err := RemovePath(&root, ".nope.x")
		serr, ok := err.(*SelectError)
		if !ok || serr.Kind != SelMissingKey {
			t.Fatalf("err = %v, want SelMissingKey", err)
		}
	})
}
