package main

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subplay/pkg/config"
	"subplay/pkg/download"
	"subplay/pkg/logging"
)

type failingProvider struct{}

func (failingProvider) Name() string { return "failing" }

func (failingProvider) Search(context.Context, download.Query) ([]string, error) {
	return nil, errors.New("site down")
}

func TestDownloaderFor_OneComponentPerLine(t *testing.T) {
	dir := t.TempDir()
	cfg = config.Default()
	cfg.Download.CacheDir = filepath.Join(dir, "cache")
	var buf bytes.Buffer
	logger = logging.NewWithWriter(logging.Config{Level: "debug", Format: "json"}, &buf)

	res := downloaderFor(failingProvider{}).Fetch(context.Background(), filepath.Join(dir, "Movie.2019.mkv"))
	require.Error(t, res.Err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		assert.Equal(t, 1, strings.Count(line, `"component"`), line)
	}
}
