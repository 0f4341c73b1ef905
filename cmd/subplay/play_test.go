package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subplay/pkg/layout"
	"subplay/pkg/overlay"
	"subplay/pkg/player"
)

func TestParseButton(t *testing.T) {
	b, err := parseButton("right")
	require.NoError(t, err)
	assert.Equal(t, overlay.RightButton, b)
	b, err = parseButton("")
	require.NoError(t, err)
	assert.Equal(t, overlay.LeftButton, b)
	_, err = parseButton("thumb")
	assert.Error(t, err)
}

func TestRunLine(t *testing.T) {
	dir := t.TempDir()
	video := filepath.Join(dir, "clip.mkv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clip.srt"), []byte("1\n00:00:01,000 --> 00:00:02,000\nHi there\n"), 0644))

	var out bytes.Buffer
	host := &printHost{out: &out}
	media := player.NewVirtualMedia(60000)
	measure := layout.MeasureFunc(func(w string) (float64, float64) { return float64(len(w)) * 10, 20 })
	s := player.NewSession(media, host, measure, nil, player.DefaultOptions(), zerolog.Nop())
	s.Resize(640, 480)
	s.Open(video)

	ctx := context.Background()
	require.NoError(t, runLine(ctx, s, media, host, "tick 1500"))
	assert.Contains(t, out.String(), `overlay="Hi there"`)

	require.NoError(t, runLine(ctx, s, media, host, "hover 1 300"))
	assert.Contains(t, out.String(), "eval: video-player-lookup [there 300")

	require.NoError(t, runLine(ctx, s, media, host, "save"))
	assert.Contains(t, out.String(), "message: session: 1500")

	assert.Error(t, runLine(ctx, s, media, host, "seek soon"))
	assert.Error(t, runLine(ctx, s, media, host, "rewind"))
}
