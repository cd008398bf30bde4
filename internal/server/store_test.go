package server

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gostones/resumable/internal/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "uploads"))
	require.NoError(t, err)
	return s
}

func TestStoreChunks(t *testing.T) {
	s := newTestStore(t)
	id := "12-data.bin"

	assert.False(t, s.HasChunk(id, 1))
	assert.Equal(t, 0, s.Received(id, 3))

	n, err := s.PutChunk(id, 2, strings.NewReader("56789"))
	require.NoError(t, err)
	assert.Equal(t, int64(5), n)
	assert.True(t, s.HasChunk(id, 2))
	assert.False(t, s.HasChunk(id, 1))
	assert.False(t, s.HasChunk("other", 2))
	assert.Equal(t, 1, s.Received(id, 3))

	_, err = s.PutChunk(id, 1, strings.NewReader("01234"))
	require.NoError(t, err)
	_, err = s.PutChunk(id, 3, strings.NewReader("ab"))
	require.NoError(t, err)
	assert.Equal(t, 3, s.Received(id, 3))

	entries, err := os.ReadDir(filepath.Join(s.uploadDir(id), chunksDir))
	require.NoError(t, err)
	assert.Len(t, entries, 3, "no temp files are left behind")
}

func TestStoreAssemble(t *testing.T) {
	s := newTestStore(t)
	id := "12-data.bin"
	for i, part := range []string{"01234", "56789", "ab"} {
		_, err := s.PutChunk(id, i+1, strings.NewReader(part))
		require.NoError(t, err)
	}

	fp, err := s.Assemble(id, "../../data.bin", 3)
	require.NoError(t, err)
	assert.Equal(t, "data.bin", filepath.Base(fp))
	assert.True(t, strings.HasPrefix(fp, s.uploadDir(id)))

	b, err := os.ReadFile(fp)
	require.NoError(t, err)
	assert.Equal(t, "0123456789ab", string(b))
	assert.Equal(t, 3, s.Received(id, 3))

	require.NoError(t, s.RemoveChunks(id))
	assert.Equal(t, 0, s.Received(id, 3))
}

func TestStoreAssembleMissingChunk(t *testing.T) {
	s := newTestStore(t)
	id := "10-x"
	_, err := s.PutChunk(id, 1, strings.NewReader("01234"))
	require.NoError(t, err)

	_, err = s.Assemble(id, "x", 2)
	assert.Error(t, err)
	assert.True(t, s.HasChunk(id, 1), "chunks survive a failed assembly")
}

func TestStoreComplete(t *testing.T) {
	s := newTestStore(t)
	id := "3-abc"

	_, ok, err := s.Complete(id)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.PutChunk(id, 1, strings.NewReader("abc"))
	require.NoError(t, err)
	want := &types.CompleteUploadResponse{Identifier: id, Filename: "abc", Size: 3, MD5: "900150983cd24fb0d6963f7d28e17f72"}
	require.NoError(t, s.SetComplete(want))

	got, ok, err := s.Complete(id)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, want, got)
	assert.True(t, s.HasChunk(id, 7), "every chunk of a complete upload exists")
}

func TestCleanFilename(t *testing.T) {
	for in, want := range map[string]string{
		"a.txt":         "a.txt",
		"dir/a.txt":     "a.txt",
		"../../etc/pwd": "pwd",
	} {
		got, err := cleanFilename(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	for _, in := range []string{"", "..", "/", "."} {
		_, err := cleanFilename(in)
		assert.Error(t, err, "%q", in)
	}
}
