package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

type StreamInfo struct {
	Index     int    `json:"index"`
	CodecName string `json:"codec_name"`
	CodecType string `json:"codec_type"`
	Tags      struct {
		Language string `json:"language"`
		Title    string `json:"title"`
	} `json:"tags"`
}

// Info is what the player needs to know about a video before playing it.
type Info struct {
	Duration int64 // milliseconds
	Streams  []StreamInfo
}

func (i Info) SubtitleStreams() []StreamInfo {
	var subs []StreamInfo
	for _, s := range i.Streams {
		if s.CodecType == "subtitle" {
			subs = append(subs, s)
		}
	}
	return subs
}

type ffprobeInfo struct {
	Streams []StreamInfo `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func Available() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

func ProbeVideo(ctx context.Context, path string) (Info, error) {
	const args = "-v quiet -print_format json -show_format -show_streams"
	argExec := strings.Fields(args)
	argExec = append(argExec, path)
	cmd := exec.CommandContext(ctx, "ffprobe", argExec...)
	buf := bytes.NewBuffer(nil)
	cmd.Stdout = buf
	if err := cmd.Run(); err != nil {
		return Info{}, fmt.Errorf("ffprobe %v: %w", path, err)
	}
	return parseProbe(buf.Bytes())
}

func parseProbe(data []byte) (Info, error) {
	var r ffprobeInfo
	if err := json.Unmarshal(data, &r); err != nil {
		return Info{}, err
	}
	info := Info{Streams: r.Streams}
	if r.Format.Duration != "" {
		seconds, err := strconv.ParseFloat(r.Format.Duration, 64)
		if err != nil {
			return Info{}, fmt.Errorf("bad duration %q: %w", r.Format.Duration, err)
		}
		info.Duration = int64(math.Round(seconds * 1000))
	}
	return info, nil
}
