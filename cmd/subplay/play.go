package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"subplay/pkg/ffmpeg"
	"subplay/pkg/layout"
	"subplay/pkg/overlay"
	"subplay/pkg/player"
)

var (
	playDuration int64
	playWidth    float64
	playHeight   float64
	playDownload bool
)

var playCmd = &cobra.Command{
	Use:   "play <video>",
	Short: "Run a headless playback session driven by commands on stdin",
	Long: `play opens a video on a virtual clock and reads one command per line
from stdin, printing host messages and host commands as they happen.

Commands: tick <ms>, seek <ms>, resize <w> <h>, toggle, click, forward,
backward, next, prev, volume+, volume-, reload, download, restart, save,
restore <ms>, wheel <delta>, hide, show, mouse <y>, scrub <fraction>,
hover <word> <x>, leave <word>, press <word> <left|right|middle>,
translate <x> <y> <text>, state.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().Int64Var(&playDuration, "duration", 0, "media duration in milliseconds (default: probed with ffprobe)")
	playCmd.Flags().Float64Var(&playWidth, "width", 1280, "viewport width")
	playCmd.Flags().Float64Var(&playHeight, "height", 720, "viewport height")
	playCmd.Flags().BoolVar(&playDownload, "with-download", false, "enable the download command (launches a browser)")
	rootCmd.AddCommand(playCmd)
}

// printHost prints what an editor would receive.
type printHost struct {
	mu  sync.Mutex
	out io.Writer
}

func (h *printHost) Message(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, "message: %s\n", text)
}

func (h *printHost) Eval(name string, args ...any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	fmt.Fprintf(h.out, "eval: %s %v\n", name, args)
}

func runPlay(cmd *cobra.Command, args []string) error {
	words, err := wordMeasurer()
	if err != nil {
		return err
	}
	defer words.Close()
	popup, err := layout.NewFaceMeasurer(cfg.Popup.FontSize, layout.DefaultTextMargin)
	if err != nil {
		return fmt.Errorf("popup font: %w", err)
	}
	defer popup.Close()

	out := cmd.OutOrStdout()
	host := &printHost{out: out}
	media := player.NewVirtualMedia(mediaDuration(cmd.Context(), args[0]))
	s := player.NewSession(media, host, words, popup, playerOptions(), logger)
	if playDownload {
		d, closeBrowser, err := newDownloader()
		if err != nil {
			return err
		}
		defer closeBrowser()
		s.SetDownloader(d)
	}
	s.Resize(playWidth, playHeight)
	s.Open(args[0])

	sc := bufio.NewScanner(cmd.InOrStdin())
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := runLine(cmd.Context(), s, media, host, line); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
	return sc.Err()
}

const fallbackDuration = 2 * 60 * 60 * 1000

func mediaDuration(ctx context.Context, video string) int64 {
	if playDuration > 0 {
		return playDuration
	}
	if !ffmpeg.Available() {
		return fallbackDuration
	}
	info, err := ffmpeg.ProbeVideo(ctx, video)
	if err != nil || info.Duration <= 0 {
		logger.Warn().Err(err).Str("video", video).Msg("probe duration failed")
		return fallbackDuration
	}
	logger.Debug().Int64("duration", info.Duration).Int("subtitleStreams", len(info.SubtitleStreams())).Msg("probed")
	return info.Duration
}

func runLine(ctx context.Context, s *player.Session, media *player.VirtualMedia, host *printHost, line string) error {
	fields := strings.Fields(line)
	name, rest := fields[0], fields[1:]
	arg := func(i int) string {
		if i < len(rest) {
			return rest[i]
		}
		return ""
	}

	switch name {
	case "tick":
		ms, err := strconv.ParseInt(arg(0), 10, 64)
		if err != nil {
			return err
		}
		if s.OnPosition(media.Advance(ms)) {
			printState(host, s)
		}
	case "seek":
		ms, err := strconv.ParseInt(arg(0), 10, 64)
		if err != nil {
			return err
		}
		media.SetPosition(ms)
		s.OnPosition(media.Position())
	case "resize":
		w, err := strconv.ParseFloat(arg(0), 64)
		if err != nil {
			return err
		}
		h, err := strconv.ParseFloat(arg(1), 64)
		if err != nil {
			return err
		}
		s.Resize(w, h)
	case "toggle":
		s.TogglePlay()
	case "click":
		s.Click()
	case "forward":
		s.Forward()
	case "backward":
		s.Backward()
	case "next":
		s.ForwardSubtitle()
	case "prev":
		s.BackwardSubtitle()
	case "volume+":
		s.IncreaseVolume()
	case "volume-":
		s.DecreaseVolume()
	case "reload":
		s.ReloadSubtitles()
	case "download":
		if res := <-s.DownloadSubtitles(ctx); res.Err == nil {
			s.ReloadSubtitles()
		}
	case "restart":
		s.Restart()
	case "save":
		host.Message("session: " + s.SaveSession())
	case "restore":
		return s.RestoreSession(arg(0))
	case "wheel":
		delta, err := strconv.Atoi(arg(0))
		if err != nil {
			return err
		}
		s.Wheel(delta)
	case "hide":
		s.HideViews()
	case "show":
		s.ShowViews()
	case "mouse":
		y, err := strconv.ParseFloat(arg(0), 64)
		if err != nil {
			return err
		}
		s.MouseMove(y)
	case "scrub":
		f, err := strconv.ParseFloat(arg(0), 64)
		if err != nil {
			return err
		}
		s.Scrub(f)
	case "hover":
		i, err := strconv.Atoi(arg(0))
		if err != nil {
			return err
		}
		x, err := strconv.ParseFloat(arg(1), 64)
		if err != nil {
			return err
		}
		s.HoverWord(i, x)
	case "leave":
		i, err := strconv.Atoi(arg(0))
		if err != nil {
			return err
		}
		s.LeaveWord(i)
	case "press":
		i, err := strconv.Atoi(arg(0))
		if err != nil {
			return err
		}
		b, err := parseButton(arg(1))
		if err != nil {
			return err
		}
		s.PressWord(i, b)
	case "translate":
		x, err := strconv.ParseFloat(arg(0), 64)
		if err != nil {
			return err
		}
		y, err := strconv.ParseFloat(arg(1), 64)
		if err != nil {
			return err
		}
		s.ShowTranslation(strings.Join(rest[min(2, len(rest)):], " "), x, y)
		p, visible := s.Popup()
		host.Message(fmt.Sprintf("popup %.1f,%.1f %.1fx%.1f visible=%v", p.Rect.X, p.Rect.Y, p.Rect.W, p.Rect.H, visible))
	case "state":
		printState(host, s)
	default:
		return fmt.Errorf("unknown command %q", name)
	}
	return nil
}

func parseButton(s string) (overlay.Button, error) {
	switch s {
	case "left", "":
		return overlay.LeftButton, nil
	case "right":
		return overlay.RightButton, nil
	case "middle":
		return overlay.MiddleButton, nil
	}
	return 0, fmt.Errorf("unknown button %q", s)
}

func printState(host *printHost, s *player.Session) {
	media := s.Media()
	l := s.Overlay()
	host.Message(fmt.Sprintf("at %d (%.1f%%) playing=%v volume=%.0f%% panel=%v highlight=%d overlay=%q",
		media.Position(), s.Progress()*100, media.Playing(), media.Volume()*100,
		s.PanelVisible(), s.Highlighted(), l.Sentence()))
}
