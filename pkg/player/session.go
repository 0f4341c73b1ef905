package player

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"subplay/pkg/download"
	"subplay/pkg/layout"
	"subplay/pkg/logging"
	"subplay/pkg/overlay"
	"subplay/pkg/subtitle"
)

var ErrNoDownloader = errors.New("no subtitle provider configured")

// WrapMeasurer sizes a block of text wrapped to a maximum width.
type WrapMeasurer interface {
	MeasureWrapped(text string, maxWidth float64) (width, height float64)
}

// Downloader fetches a subtitle for a video in the background.
type Downloader interface {
	Start(ctx context.Context, videoPath string) <-chan download.Result
}

type Options struct {
	SeekStep       int64 // milliseconds
	VolumeStep     float64
	WheelThreshold int
	PanelHeight    float64
	Style          layout.Style
	Commands       overlay.Commands
}

func DefaultOptions() Options {
	return Options{
		SeekStep:       10000,
		VolumeStep:     0.1,
		WheelThreshold: 300,
		PanelHeight:    60,
		Style:          layout.DefaultStyle(),
		Commands:       overlay.DefaultCommands(),
	}
}

// Popup is the translation box shown above a hovered word.
type Popup struct {
	Text string
	Rect layout.Rect
}

// Session owns the subtitle track and overlay of one video. Every method
// except the result delivery of DownloadSubtitles runs on the caller's
// goroutine; callers must not share a Session between goroutines.
type Session struct {
	media      Media
	host       Host
	words      layout.Measurer
	popupText  WrapMeasurer
	downloader Downloader
	opts       Options
	log        zerolog.Logger

	track        *subtitle.Track
	subtitlePath string
	viewport     layout.Viewport
	overlay      layout.Layout
	highlight    int
	popup        Popup
	popupVisible bool
	panelVisible bool
	needReplay   bool
	wheelDelta   int
}

func NewSession(media Media, host Host, words layout.Measurer, popupText WrapMeasurer, opts Options, log zerolog.Logger) *Session {
	return &Session{
		media:     media,
		host:      host,
		words:     words,
		popupText: popupText,
		opts:      opts,
		log:       logging.Component(log, "player"),
		highlight: -1,
	}
}

// SetDownloader enables DownloadSubtitles.
func (s *Session) SetDownloader(d Downloader) {
	s.downloader = d
}

// Open loads the video and its sidecar subtitle, then starts playback.
func (s *Session) Open(videoPath string) {
	s.media.SetSource(videoPath)
	s.loadSubtitles(videoPath)
	s.media.Play()
	s.needReplay = false
}

func (s *Session) loadSubtitles(videoPath string) {
	s.track, s.subtitlePath = nil, ""
	s.setOverlay(layout.Layout{})

	track, path, err := subtitle.Open(videoPath)
	switch {
	case errors.Is(err, subtitle.ErrNotFound):
		s.host.Message("There is no subtitles.")
		return
	case err != nil:
		s.log.Warn().Err(err).Str("video", videoPath).Msg("load subtitle failed")
		s.host.Message(fmt.Sprintf("Error loading subtitles: %v", err))
		return
	}
	s.track, s.subtitlePath = track, path
	s.log.Info().Str("path", path).Int("cues", track.Len()).Msg("subtitle loaded")
	s.host.Message("Subtitle is: " + path)
	s.OnPosition(s.media.Position())
}

// OnPosition follows the playback clock. It reports whether the overlay
// changed, which only happens when a different cue becomes active.
func (s *Session) OnPosition(ms int64) bool {
	if s.track == nil {
		return false
	}
	transitioned, cue, _ := s.track.UpdatePosition(float64(ms))
	if !transitioned {
		return false
	}
	s.log.Debug().Int("index", cue.Index).Int64("position", ms).Msg("cue changed")
	s.reflow()
	return true
}

func (s *Session) reflow() {
	cue, ok := s.track.Current()
	if !ok {
		s.setOverlay(layout.Layout{})
		return
	}
	s.setOverlay(layout.Flow(cue.Text, s.words, s.viewport, s.opts.Style))
}

func (s *Session) setOverlay(l layout.Layout) {
	s.overlay = l
	s.highlight = -1
}

// Resize stores the viewport and lays the current cue out again.
func (s *Session) Resize(width, height float64) {
	s.viewport = layout.Viewport{Width: width, Height: height}
	if s.track != nil {
		s.reflow()
	}
}

func (s *Session) seek(ms int64) {
	if ms < 0 {
		ms = 0
	}
	s.media.SetPosition(ms)
	s.OnPosition(s.media.Position())
}

func (s *Session) percent() string {
	d := s.media.Duration()
	if d <= 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(s.media.Position())/float64(d)*100)
}

func (s *Session) TogglePlay() {
	if s.media.Playing() {
		s.media.Pause()
		s.needReplay = false
	} else {
		s.media.Play()
		s.needReplay = true
	}
}

func (s *Session) Forward() {
	s.seek(s.media.Position() + s.opts.SeekStep)
	s.host.Message("Forward to: " + s.percent())
}

func (s *Session) Backward() {
	s.seek(s.media.Position() - s.opts.SeekStep)
	s.host.Message("Backward to: " + s.percent())
}

func (s *Session) ForwardSubtitle() {
	s.seekCue("Forward", s.track.Next)
}

func (s *Session) BackwardSubtitle() {
	s.seekCue("Backward", s.track.Prev)
}

func (s *Session) seekCue(direction string, pick func() (subtitle.Cue, bool)) {
	if s.track == nil {
		s.host.Message("There is no subtitles.")
		return
	}
	cue, ok := pick()
	if !ok {
		return
	}
	s.seek(int64(math.Floor(cue.Start)))
	s.host.Message(direction + " to: " + cue.StartTimestamp().String())
}

func (s *Session) IncreaseVolume() {
	s.setVolume(s.media.Volume() + s.opts.VolumeStep)
	s.host.Message(fmt.Sprintf("Increase volume to: %.0f%%", s.media.Volume()*100))
}

func (s *Session) DecreaseVolume() {
	s.setVolume(s.media.Volume() - s.opts.VolumeStep)
	s.host.Message(fmt.Sprintf("Decrease volume to: %.0f%%", s.media.Volume()*100))
}

func (s *Session) setVolume(v float64) {
	v = math.Round(v*100) / 100
	s.media.SetVolume(math.Max(0, math.Min(1, v)))
}

func (s *Session) ReloadSubtitles() {
	s.loadSubtitles(s.media.Source())
}

func (s *Session) Restart() {
	s.seek(0)
}

// DownloadSubtitles fetches a subtitle for the current video in the
// background. Progress is reported to the host; the returned channel yields
// the single result once the host has been told.
func (s *Session) DownloadSubtitles(ctx context.Context) <-chan download.Result {
	out := make(chan download.Result, 1)
	video := s.media.Source()
	if s.downloader == nil {
		s.host.Message(fmt.Sprintf("Error downloading subtitles: %v", ErrNoDownloader))
		out <- download.Result{Video: video, Err: ErrNoDownloader}
		close(out)
		return out
	}

	s.host.Message("Downloading subtitle.")
	in := s.downloader.Start(ctx, video)
	host := s.host
	go func() {
		defer close(out)
		res, ok := <-in
		if !ok {
			res = download.Result{Video: video, Err: errors.New("download aborted")}
		}
		if res.Err != nil {
			host.Message(fmt.Sprintf("Error downloading subtitles: %v", res.Err))
		} else {
			host.Message("Subtitle download complete.")
		}
		out <- res
	}()
	return out
}

// SaveSession returns the playback position in milliseconds.
func (s *Session) SaveSession() string {
	return strconv.FormatInt(s.media.Position(), 10)
}

func (s *Session) RestoreSession(data string) error {
	ms, err := strconv.ParseInt(strings.TrimSpace(data), 10, 64)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	s.seek(ms)
	return nil
}

// Wheel accumulates scroll deltas; crossing the threshold either way jumps
// one cue and starts over.
func (s *Session) Wheel(delta int) {
	s.wheelDelta += delta
	switch {
	case s.wheelDelta < -s.opts.WheelThreshold:
		s.wheelDelta = 0
		s.BackwardSubtitle()
	case s.wheelDelta > s.opts.WheelThreshold:
		s.wheelDelta = 0
		s.ForwardSubtitle()
	}
}

func (s *Session) Click() {
	s.TogglePlay()
}

// HideViews pauses playback while no view shows the video.
func (s *Session) HideViews() {
	if s.media.Playing() {
		s.media.Pause()
		s.needReplay = true
	}
}

func (s *Session) ShowViews() {
	if s.needReplay {
		s.media.Play()
	}
}

// MouseMove shows the control panel while the pointer is over the bottom band.
func (s *Session) MouseMove(y float64) {
	s.panelVisible = y > s.viewport.Height-s.opts.PanelHeight
}

func (s *Session) PanelVisible() bool {
	return s.panelVisible
}

func (s *Session) PanelRect() layout.Rect {
	return layout.Rect{
		X: 0,
		Y: s.viewport.Height - s.opts.PanelHeight,
		W: s.viewport.Width,
		H: s.opts.PanelHeight,
	}
}

// Scrub seeks to a fraction of the duration.
func (s *Session) Scrub(fraction float64) {
	fraction = math.Max(0, math.Min(1, fraction))
	s.seek(int64(float64(s.media.Duration()) * fraction))
}

func (s *Session) Progress() float64 {
	d := s.media.Duration()
	if d <= 0 {
		return 0
	}
	return float64(s.media.Position()) / float64(d)
}

func (s *Session) HoverWord(index int, pointerX float64) {
	s.apply(overlay.Hover(s.overlay, index, pointerX, s.opts.Commands))
}

func (s *Session) LeaveWord(index int) {
	s.apply(overlay.Leave(index))
}

func (s *Session) PressWord(index int, button overlay.Button) bool {
	intents := overlay.Press(s.overlay, index, button, s.opts.Commands)
	s.apply(intents)
	return len(intents) > 0
}

func (s *Session) apply(intents []overlay.Intent) {
	for _, in := range intents {
		switch in.Kind {
		case overlay.Pause:
			s.media.Pause()
		case overlay.Play:
			s.media.Play()
		case overlay.Highlight:
			s.highlight = in.Index
		case overlay.Unhighlight:
			if s.highlight == in.Index {
				s.highlight = -1
			}
		case overlay.ShowPopup:
			s.popupVisible = true
		case overlay.HidePopup:
			s.popupVisible = false
		case overlay.HostCommand:
			s.host.Eval(in.Command.Name, in.Command.Args...)
		}
	}
}

// ShowTranslation fills the popup with text anchored at (x, y). Text as wide
// as the viewport is wrapped to the popup width.
func (s *Session) ShowTranslation(text string, x, y float64) {
	w, h := s.popupText.MeasureWrapped(text, math.Inf(1))
	if w >= s.viewport.Width {
		w, h = s.popupText.MeasureWrapped(text, layout.PopupWrapWidth(s.viewport.Width))
	}
	pos := layout.PlacePopup(w, h, x, y, s.viewport.Width)
	s.popup = Popup{Text: text, Rect: layout.Rect{X: pos.X, Y: pos.Y, W: w, H: h}}
}

func (s *Session) Popup() (Popup, bool) {
	return s.popup, s.popupVisible
}

func (s *Session) Overlay() layout.Layout {
	return s.overlay
}

// Highlighted returns the index of the highlighted word, -1 for none.
func (s *Session) Highlighted() int {
	return s.highlight
}

func (s *Session) Track() *subtitle.Track {
	return s.track
}

func (s *Session) SubtitlePath() string {
	return s.subtitlePath
}

func (s *Session) Viewport() layout.Viewport {
	return s.viewport
}

func (s *Session) Media() Media {
	return s.media
}
