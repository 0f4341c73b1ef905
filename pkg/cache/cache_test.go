package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatKey(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"))

	ok, err := c.StatKey(time.Hour, "/videos/movie.mkv")
	require.NoError(t, err)
	assert.True(t, ok, "first call runs")

	ok, err = c.StatKey(time.Hour, "/videos/movie.mkv")
	require.NoError(t, err)
	assert.False(t, ok, "throttled within the interval")

	ok, err = c.StatKey(0, "/videos/movie.mkv")
	require.NoError(t, err)
	assert.True(t, ok, "zero interval never throttles")

	ok, err = c.StatKey(time.Hour, "/videos/other.mkv")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStatKey_Expired(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.StatKey(time.Hour, "k")
	require.NoError(t, err)

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(c.Dir(), md5Key("k")), old, old))

	ok, err := c.StatKey(time.Hour, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestTryGet(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "cache"))
	work := t.TempDir()

	calls := 0
	produce := func() (string, error) {
		calls++
		p := filepath.Join(work, "movie.en.srt")
		return p, os.WriteFile(p, []byte("subs"), 0644)
	}

	first, err := c.TryGet("movie", produce)
	require.NoError(t, err)
	assert.Equal(t, "movie.en.srt", filepath.Base(first))
	assert.NoFileExists(t, filepath.Join(work, "movie.en.srt"))

	second, err := c.TryGet("movie", produce)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	data, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, "subs", string(data))
}

func TestTryGet_ProduceError(t *testing.T) {
	c := New(t.TempDir())
	boom := errors.New("boom")
	_, err := c.TryGet("k", func() (string, error) { return "", boom })
	assert.ErrorIs(t, err, boom)
}

func TestMergeKeys(t *testing.T) {
	assert.Equal(t, "[movie.mkv en]", MergeKeys("movie.mkv", "en"))
}
