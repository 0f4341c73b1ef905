package unpack

import (
	"archive/zip"
	"compress/gzip"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type collected map[string]string

func (c collected) hook(r io.Reader, info fs.FileInfo) {
	data, _ := io.ReadAll(r)
	c[info.Name()] = string(data)
}

func TestWalkUnpacked_PlainFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "movie.srt")
	require.NoError(t, os.WriteFile(p, []byte("1\n00:00:01,000 --> 00:00:02,000\nhi\n"), 0644))

	got := collected{}
	require.NoError(t, WalkUnpacked(p, got.hook))
	assert.Equal(t, collected{"movie.srt": "1\n00:00:01,000 --> 00:00:02,000\nhi\n"}, got)
}

func TestWalkUnpacked_Zip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "subs.zip")
	f, err := os.Create(p)
	require.NoError(t, err)
	zw := zip.NewWriter(f)
	for name, body := range map[string]string{"a.srt": "first", "nested/b.ass": "second"} {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(body))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	require.NoError(t, f.Close())

	got := collected{}
	require.NoError(t, WalkUnpacked(p, got.hook))

	names := make([]string, 0, len(got))
	for n := range got {
		names = append(names, n)
	}
	sort.Strings(names)
	assert.Equal(t, []string{"a.srt", "b.ass"}, names)
	assert.Equal(t, "second", got["b.ass"])
}

func TestWalkUnpacked_Missing(t *testing.T) {
	err := WalkUnpacked(filepath.Join(t.TempDir(), "missing.zip"), collected{}.hook)
	assert.Error(t, err)
}

func TestWalkUnpacked_Gzip(t *testing.T) {
	p := filepath.Join(t.TempDir(), "movie.srt.gz")
	f, err := os.Create(p)
	require.NoError(t, err)
	gw := gzip.NewWriter(f)
	_, err = gw.Write([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, gw.Close())
	require.NoError(t, f.Close())

	got := collected{}
	require.NoError(t, WalkUnpacked(p, got.hook))
	assert.Equal(t, collected{"movie.srt": "payload"}, got)
}
