package player

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"subplay/pkg/download"
	"subplay/pkg/layout"
	"subplay/pkg/overlay"
)

const sampleSRT = `1
00:00:01,000 --> 00:00:02,000
Hello world

2
00:00:03,000 --> 00:00:04,500
Second cue here

3
01:02:03,500 --> 01:02:05,000
Third
`

type evalCall struct {
	name string
	args []any
}

type fakeHost struct {
	mu       sync.Mutex
	messages []string
	evals    []evalCall
}

func (h *fakeHost) Message(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, text)
}

func (h *fakeHost) Eval(name string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evals = append(h.evals, evalCall{name: name, args: args})
}

func (h *fakeHost) last() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return ""
	}
	return h.messages[len(h.messages)-1]
}

// popupMeasure is 10px per rune on a single 20px row unless wrapped.
type popupMeasure struct{}

func (popupMeasure) MeasureWrapped(text string, maxWidth float64) (float64, float64) {
	w := float64(len(text)) * 10
	if w <= maxWidth {
		return w, 20
	}
	return maxWidth, 20 * math.Ceil(w/maxWidth)
}

type fakeDownloader struct {
	result download.Result
	videos []string
}

func (d *fakeDownloader) Start(_ context.Context, videoPath string) <-chan download.Result {
	d.videos = append(d.videos, videoPath)
	out := make(chan download.Result, 1)
	res := d.result
	res.Video = videoPath
	out <- res
	close(out)
	return out
}

var wordMeasure = layout.MeasureFunc(func(word string) (float64, float64) {
	return float64(len(word)) * 10, 20
})

func newSession(t *testing.T, withSub bool) (*Session, *VirtualMedia, *fakeHost, string) {
	t.Helper()
	dir := t.TempDir()
	video := filepath.Join(dir, "movie.mp4")
	require.NoError(t, os.WriteFile(video, nil, 0644))
	if withSub {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "movie.srt"), []byte(sampleSRT), 0644))
	}
	media := NewVirtualMedia(4000000)
	host := &fakeHost{}
	s := NewSession(media, host, wordMeasure, popupMeasure{}, DefaultOptions(), zerolog.Nop())
	s.Resize(800, 600)
	s.Open(video)
	return s, media, host, video
}

func TestOpen_NoSubtitles(t *testing.T) {
	s, media, host, _ := newSession(t, false)
	assert.Equal(t, []string{"There is no subtitles."}, host.messages)
	assert.True(t, media.Playing())
	assert.Nil(t, s.Track())
	assert.False(t, s.OnPosition(1500))
}

func TestOpen_WithSubtitles(t *testing.T) {
	s, media, host, video := newSession(t, true)
	want := filepath.Join(filepath.Dir(video), "movie.srt")
	assert.Equal(t, []string{"Subtitle is: " + want}, host.messages)
	assert.Equal(t, want, s.SubtitlePath())
	assert.True(t, media.Playing())
	assert.Equal(t, 3, s.Track().Len())
	assert.True(t, s.Overlay().Empty())
}

func TestOnPosition_ChangesOnlyOnTransition(t *testing.T) {
	s, _, _, _ := newSession(t, true)

	assert.True(t, s.OnPosition(1500))
	assert.Equal(t, "Hello world", s.Overlay().Sentence())
	assert.False(t, s.OnPosition(1600))
	// gap keeps the previous cue
	assert.False(t, s.OnPosition(2500))
	assert.Equal(t, "Hello world", s.Overlay().Sentence())
	assert.True(t, s.OnPosition(3000))
	assert.Equal(t, "Second cue here", s.Overlay().Sentence())
}

func TestResize_Reflows(t *testing.T) {
	s, _, _, _ := newSession(t, true)
	s.OnPosition(1500)
	b := s.Overlay().Bounds
	assert.Equal(t, 347.5, b.X)
	assert.Equal(t, 520.0, b.Y)

	s.Resize(1000, 700)
	b = s.Overlay().Bounds
	assert.Equal(t, 447.5, b.X)
	assert.Equal(t, 620.0, b.Y)
}

func TestForwardBackward(t *testing.T) {
	s, media, host, _ := newSession(t, true)
	media.SetDuration(100000)

	s.Forward()
	assert.Equal(t, int64(10000), media.Position())
	assert.Equal(t, "Forward to: 10%", host.last())

	media.SetPosition(5000)
	s.Backward()
	assert.Equal(t, int64(0), media.Position())
	assert.Equal(t, "Backward to: 0%", host.last())
}

func TestForward_UnknownDuration(t *testing.T) {
	s, media, host, _ := newSession(t, false)
	media.SetDuration(0)
	s.Forward()
	assert.Equal(t, int64(10000), media.Position())
	assert.Equal(t, "Forward to: 0%", host.last())
}

func TestSubtitleSeek(t *testing.T) {
	s, media, host, _ := newSession(t, true)

	s.ForwardSubtitle()
	assert.Equal(t, int64(1000), media.Position())
	assert.Equal(t, "Forward to: 00:00:01,000", host.last())

	s.ForwardSubtitle()
	assert.Equal(t, int64(3000), media.Position())
	assert.Equal(t, "Second cue here", s.Overlay().Sentence())

	s.ForwardSubtitle()
	assert.Equal(t, int64(3723500), media.Position())
	assert.Equal(t, "Forward to: 01:02:03,500", host.last())

	// clamped at the last cue
	s.ForwardSubtitle()
	assert.Equal(t, int64(3723500), media.Position())

	s.BackwardSubtitle()
	assert.Equal(t, int64(3000), media.Position())
	assert.Equal(t, "Backward to: 00:00:03,000", host.last())
}

func TestSubtitleSeek_NoTrack(t *testing.T) {
	s, media, host, _ := newSession(t, false)
	media.SetPosition(500)
	s.ForwardSubtitle()
	assert.Equal(t, int64(500), media.Position())
	assert.Equal(t, "There is no subtitles.", host.last())
}

func TestVolume(t *testing.T) {
	s, media, host, _ := newSession(t, false)

	s.IncreaseVolume()
	assert.Equal(t, 1.0, media.Volume())
	assert.Equal(t, "Increase volume to: 100%", host.last())

	s.DecreaseVolume()
	assert.Equal(t, 0.9, media.Volume())
	assert.Equal(t, "Decrease volume to: 90%", host.last())

	for i := 0; i < 12; i++ {
		s.DecreaseVolume()
	}
	assert.Equal(t, 0.0, media.Volume())
	assert.Equal(t, "Decrease volume to: 0%", host.last())
}

func TestSaveRestoreSession(t *testing.T) {
	s, media, _, _ := newSession(t, true)
	media.SetPosition(1234)
	assert.Equal(t, "1234", s.SaveSession())

	require.NoError(t, s.RestoreSession("3500"))
	assert.Equal(t, int64(3500), media.Position())
	assert.Equal(t, "Second cue here", s.Overlay().Sentence())

	assert.Error(t, s.RestoreSession("abc"))
	assert.Equal(t, int64(3500), media.Position())
}

func TestRestart(t *testing.T) {
	s, media, _, _ := newSession(t, false)
	media.SetPosition(90000)
	s.Restart()
	assert.Equal(t, int64(0), media.Position())
}

func TestWheel(t *testing.T) {
	s, media, _, _ := newSession(t, true)

	s.Wheel(200)
	assert.Equal(t, int64(0), media.Position())
	s.Wheel(200)
	assert.Equal(t, int64(1000), media.Position())

	s.Wheel(-200)
	assert.Equal(t, int64(1000), media.Position())
	s.Wheel(200)
	s.Wheel(301)
	assert.Equal(t, int64(3000), media.Position())
	s.Wheel(-301)
	assert.Equal(t, int64(1000), media.Position())
}

func TestPlayStateAcrossViews(t *testing.T) {
	s, media, _, _ := newSession(t, false)

	s.HideViews()
	assert.False(t, media.Playing())
	s.ShowViews()
	assert.True(t, media.Playing())

	s.Click()
	assert.False(t, media.Playing())
	s.HideViews()
	s.ShowViews()
	assert.False(t, media.Playing())

	s.TogglePlay()
	assert.True(t, media.Playing())
}

func TestControlPanel(t *testing.T) {
	s, _, _, _ := newSession(t, false)
	s.MouseMove(550)
	assert.True(t, s.PanelVisible())
	s.MouseMove(540)
	assert.False(t, s.PanelVisible())
	assert.Equal(t, layout.Rect{X: 0, Y: 540, W: 800, H: 60}, s.PanelRect())
}

func TestScrubProgress(t *testing.T) {
	s, media, _, _ := newSession(t, false)
	s.Scrub(0.5)
	assert.Equal(t, int64(2000000), media.Position())
	assert.Equal(t, 0.5, s.Progress())
	s.Scrub(2)
	assert.Equal(t, int64(4000000), media.Position())

	media.SetDuration(0)
	assert.Equal(t, 0.0, s.Progress())
}

func TestWordEvents(t *testing.T) {
	s, media, host, _ := newSession(t, true)
	s.OnPosition(1500)
	top := s.Overlay().Bounds.Y

	s.HoverWord(1, 123)
	assert.False(t, media.Playing())
	assert.Equal(t, 1, s.Highlighted())
	_, visible := s.Popup()
	assert.True(t, visible)
	require.Len(t, host.evals, 1)
	assert.Equal(t, "video-player-lookup", host.evals[0].name)
	assert.Equal(t, []any{"world", 123.0, top}, host.evals[0].args)

	s.LeaveWord(1)
	assert.True(t, media.Playing())
	assert.Equal(t, -1, s.Highlighted())
	_, visible = s.Popup()
	assert.False(t, visible)

	assert.False(t, s.PressWord(0, overlay.LeftButton))
	assert.True(t, s.PressWord(0, overlay.RightButton))
	assert.False(t, media.Playing())
	require.Len(t, host.evals, 2)
	assert.Equal(t, "video-player-explain-sentence", host.evals[1].name)
	assert.Equal(t, "Hello world", host.evals[1].args[0])

	s.HoverWord(7, 0)
	assert.Len(t, host.evals, 2)
}

func TestShowTranslation(t *testing.T) {
	s, _, _, _ := newSession(t, false)

	s.ShowTranslation("twenty chars of text", 400, 300)
	p, _ := s.Popup()
	assert.Equal(t, layout.Rect{X: 300, Y: 280, W: 200, H: 20}, p.Rect)

	long := string(make([]byte, 100))
	s.ShowTranslation(long, 400, 300)
	p, _ = s.Popup()
	assert.Equal(t, layout.Rect{X: 25, Y: 260, W: 750, H: 40}, p.Rect)

	s.ShowTranslation("twenty chars of text", 790, 10)
	p, _ = s.Popup()
	assert.Equal(t, layout.Rect{X: 600, Y: 0, W: 200, H: 20}, p.Rect)
}

func TestReloadSubtitles(t *testing.T) {
	s, _, host, video := newSession(t, false)
	require.NoError(t, os.WriteFile(filepath.Join(filepath.Dir(video), "movie.srt"), []byte(sampleSRT), 0644))
	s.ReloadSubtitles()
	assert.Equal(t, 3, s.Track().Len())
	assert.Contains(t, host.last(), "Subtitle is: ")
}

func TestDownloadSubtitles(t *testing.T) {
	s, _, host, video := newSession(t, false)
	d := &fakeDownloader{result: download.Result{Path: "movie.en.srt", Language: "en"}}
	s.SetDownloader(d)

	res := <-s.DownloadSubtitles(context.Background())
	require.NoError(t, res.Err)
	assert.Equal(t, []string{video}, d.videos)
	assert.Equal(t, []string{
		"There is no subtitles.",
		"Downloading subtitle.",
		"Subtitle download complete.",
	}, host.messages)
}

func TestDownloadSubtitles_Error(t *testing.T) {
	s, _, host, _ := newSession(t, false)
	s.SetDownloader(&fakeDownloader{result: download.Result{Err: errors.New("boom")}})

	res := <-s.DownloadSubtitles(context.Background())
	assert.EqualError(t, res.Err, "boom")
	assert.Equal(t, "Error downloading subtitles: boom", host.last())
}

func TestDownloadSubtitles_NoDownloader(t *testing.T) {
	s, _, host, _ := newSession(t, false)
	res := <-s.DownloadSubtitles(context.Background())
	assert.ErrorIs(t, res.Err, ErrNoDownloader)
	assert.Equal(t, "Error downloading subtitles: no subtitle provider configured", host.last())
}

func TestVirtualMedia_Advance(t *testing.T) {
	m := NewVirtualMedia(1000)
	assert.Equal(t, int64(0), m.Advance(500))
	m.Play()
	assert.Equal(t, int64(500), m.Advance(500))
	assert.Equal(t, int64(1000), m.Advance(800))
	assert.False(t, m.Playing())
	m.SetPosition(-5)
	assert.Equal(t, int64(0), m.Position())
}
