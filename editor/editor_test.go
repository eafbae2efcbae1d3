package editor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omkarkirpan/bencedit/bencode"
)

func newFixtureSession(t *testing.T) *Session {
	t.Helper()
	root, err := bencode.LoadBytes([]byte("d3:bari1e3:fooi0ee"))
	require.NoError(t, err)
	return New(root)
}

func TestLoadSaveRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.torrent")
	require.NoError(t, os.WriteFile(path, []byte("d3:bari1e3:fooi0ee"), 0o644))

	sess, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, sess.Path)

	out := filepath.Join(dir, "b.torrent")
	require.NoError(t, sess.Save(out))

	reloaded, err := Load(out)
	require.NoError(t, err)
	assert.True(t, sess.Root.Equal(reloaded.Root))
}

func TestSaveWithNoPathFails(t *testing.T) {
	sess := newFixtureSession(t)
	err := sess.Save("")
	assert.Error(t, err)
}

func TestSetReportsChanged(t *testing.T) {
	sess := newFixtureSession(t)

	changed, err := sess.Set(".bar", bencode.Int(2))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, sess.Dirty)

	v, err := sess.Select(".bar")
	require.NoError(t, err)
	n, _ := v.AsInt()
	assert.Equal(t, int64(2), n)
}

func TestSetReportsUnchangedWhenValueIsIdentical(t *testing.T) {
	sess := newFixtureSession(t)

	changed, err := sess.Set(".bar", bencode.Int(1))
	require.NoError(t, err)
	assert.False(t, changed)
}

func TestSetOnMissingSelectorErrors(t *testing.T) {
	sess := newFixtureSession(t)
	_, err := sess.Set(".nope", bencode.Int(1))
	assert.Error(t, err)
}

func TestInsertKeyAndAppend(t *testing.T) {
	sess := newFixtureSession(t)

	require.NoError(t, sess.InsertKey("", []byte("baz"), bencode.Int(2)))
	v, err := sess.Select(".baz")
	require.NoError(t, err)
	n, _ := v.AsInt()
	assert.Equal(t, int64(2), n)
	assert.True(t, sess.Dirty)

	require.NoError(t, sess.InsertKey("", []byte("list"), bencode.NewList()))
	require.NoError(t, sess.Append(".list", bencode.String("x")))
	require.NoError(t, sess.Append(".list", bencode.String("y")))

	lv, err := sess.Select(".list")
	require.NoError(t, err)
	l, ok := lv.AsList()
	require.True(t, ok)
	assert.Equal(t, 2, l.Len())
}

func TestInsertIndex(t *testing.T) {
	sess := newFixtureSession(t)
	require.NoError(t, sess.InsertKey("", []byte("list"), bencode.NewList()))
	require.NoError(t, sess.Append(".list", bencode.Int(1)))
	require.NoError(t, sess.Append(".list", bencode.Int(3)))
	require.NoError(t, sess.InsertIndex(".list", 1, bencode.Int(2)))

	lv, err := sess.Select(".list")
	require.NoError(t, err)
	l, _ := lv.AsList()
	require.Equal(t, 3, l.Len())
	for i, want := range []int64{1, 2, 3} {
		item, _ := l.At(i)
		n, _ := item.AsInt()
		assert.Equal(t, want, n)
	}
}

func TestClear(t *testing.T) {
	sess := newFixtureSession(t)
	require.NoError(t, sess.Clear(".bar"))
	v, err := sess.Select(".bar")
	require.NoError(t, err)
	n, _ := v.AsInt()
	assert.Equal(t, int64(0), n)
}

func TestRemove(t *testing.T) {
	sess := newFixtureSession(t)
	require.NoError(t, sess.Remove(".bar"))
	_, err := sess.Select(".bar")
	assert.Error(t, err)

	v, err := sess.Select("")
	require.NoError(t, err)
	d, _ := v.AsDict()
	assert.Equal(t, 1, d.Len())
}

func TestRemoveRootFails(t *testing.T) {
	sess := newFixtureSession(t)
	assert.Error(t, sess.Remove(""))
}

func TestHashStableAcrossEquivalentSessions(t *testing.T) {
	a := newFixtureSession(t)
	b := newFixtureSession(t)
	assert.Equal(t, a.Hash(), b.Hash())

	require.NoError(t, b.Clear(".bar"))
	assert.NotEqual(t, a.Hash(), b.Hash())
}
