package filelisting

import (
	"testing"

	"github.com/C-Sto/gomftdump/pkg/mft"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLister(t *testing.T, opts ...Option) *Lister {
	res, err := mft.NewResolver(newTree(), mft.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	l, err := New(res, 63, opts...)
	require.NoError(t, err)
	return l
}

func TestListFile(t *testing.T) {
	l := newTestLister(t)
	entries, err := l.List(40)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "notes.txt", e.Filename)
	assert.Equal(t, `.\Users\alice`, e.Directory)
	assert.Equal(t, `.\Users\alice\notes.txt`, e.FullPath)
	assert.Equal(t, "txt", e.Extension)
	assert.Equal(t, uint64(11), e.Size)
	assert.True(t, e.IsFile)
	assert.False(t, e.IsDirectory)
	assert.False(t, e.Deleted)
	assert.Equal(t, uint64(40), e.Inode)
	assert.Equal(t, uint64(31), e.ParentInode)
	assert.Equal(t, uint64(777), e.USN)
	assert.Equal(t, "2020-01-01T00:00:00Z", e.Created)
	assert.Equal(t, "2020-01-01T00:00:00Z", e.FilenameAccessed)
	assert.Equal(t, []mft.FileAttribute{mft.Archive}, e.Attributes)
	assert.Equal(t, []string{"$STANDARD_INFORMATION", "$FILE_NAME", "$DATA"}, e.AttributeList)
}

func TestListPaths(t *testing.T) {
	l := newTestLister(t)

	root, err := l.List(RootIndex)
	require.NoError(t, err)
	require.Len(t, root, 1)
	assert.Equal(t, ".", root[0].FullPath)
	assert.True(t, root[0].IsDirectory)

	users, err := l.List(30)
	require.NoError(t, err)
	assert.Equal(t, `.\Users`, users[0].FullPath)
	assert.Equal(t, ".", users[0].Directory)

	orphan, err := l.List(41)
	require.NoError(t, err)
	assert.Equal(t, `$OrphanFiles\old.doc`, orphan[0].FullPath)

	deleted, err := l.List(42)
	require.NoError(t, err)
	assert.True(t, deleted[0].Deleted)
	assert.Equal(t, `.\Users\alice\gone.tmp`, deleted[0].FullPath)

	loop, err := l.List(62)
	require.NoError(t, err)
	assert.Equal(t, `$OrphanFiles\b\a\loop.txt`, loop[0].FullPath)

	names, err := l.List(44)
	require.NoError(t, err)
	require.Len(t, names, 2)
	assert.Equal(t, `.\Users\alice\LongFileName.txt`, names[0].FullPath)
	assert.Equal(t, mft.Dos, names[1].Namespace)
	assert.Equal(t, `.\Users\alice\LONGFI~1.TXT`, names[1].FullPath)
	assert.Equal(t, uint64(5), names[1].Size)
}

func TestListExtensionAndEmpty(t *testing.T) {
	l := newTestLister(t)
	entries, err := l.List(43)
	assert.NoError(t, err)
	assert.Nil(t, entries)

	_, err = l.List(7)
	assert.Equal(t, mft.ErrBadSignature, errors.Cause(err))
}

func TestPathCache(t *testing.T) {
	tr := newTree()
	res, err := mft.NewResolver(tr, mft.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	p := NewPathResolver(res, 10)

	assert.Equal(t, `.\Users\alice`, p.Directory(mft.Reference{Index: 31, Sequence: 1}))
	assert.Equal(t, 2, p.CacheLen())
	reads := tr.reads

	assert.Equal(t, `.\Users\alice`, p.Directory(mft.Reference{Index: 31, Sequence: 1}))
	assert.Equal(t, reads, tr.reads)

	//stale sequence is never served from the cache
	assert.Equal(t, OrphanDir, p.Directory(mft.Reference{Index: 31, Sequence: 9}))
}

func TestPathCacheLimit(t *testing.T) {
	res, err := mft.NewResolver(newTree(), mft.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	p := NewPathResolver(res, 2)
	for i := uint64(100); i < 110; i++ {
		p.Remember(mft.Reference{Index: i, Sequence: 1}, "x")
	}
	assert.Equal(t, 2, p.CacheLen())
}

func TestDumpSharedPathResolver(t *testing.T) {
	res, err := mft.NewResolver(newTree(), mft.WithLogger(zap.NewNop()))
	require.NoError(t, err)
	paths := NewPathResolver(res, 3)
	l := newTestLister(t, WithWorkers(2), WithPathResolver(paths))
	go l.Dump()

	found := map[string]bool{}
	for e := range l.GetOutChan() {
		found[e.FullPath] = true
	}
	assert.True(t, found[`.\Users\alice\notes.txt`])
	assert.Equal(t, 3, paths.CacheLen())
}

func TestDump(t *testing.T) {
	l := newTestLister(t, WithWorkers(4))
	go l.Dump()

	paths := map[string]bool{}
	n := 0
	for e := range l.GetOutChan() {
		paths[e.FullPath] = true
		n++
	}
	assert.Equal(t, 12, n)
	assert.True(t, paths[`.\Users\alice\notes.txt`])
	assert.True(t, paths[`$OrphanFiles\old.doc`])

	resolved, skipped, failed := l.Stats()
	assert.Equal(t, uint64(11), resolved)
	assert.Equal(t, uint64(52), skipped)
	assert.Equal(t, uint64(0), failed)
}

func TestExtension(t *testing.T) {
	assert.Equal(t, "txt", extension("a.txt"))
	assert.Equal(t, "gz", extension("a.tar.gz"))
	assert.Equal(t, "", extension("README"))
	assert.Equal(t, "", extension("trailing."))
}

func TestEntryDict(t *testing.T) {
	d := Entry{Filename: "a.txt", Inode: 40}.ToDict()
	keys := d.Keys()
	assert.Equal(t, "filename", keys[0])
	assert.Contains(t, keys, "full_path")
	v, ok := d.Get("inode")
	require.True(t, ok)
	assert.Equal(t, uint64(40), v)
}
