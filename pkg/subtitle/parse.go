package subtitle

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/asticode/go-astisub"

	"subplay/pkg/charset"
	"subplay/pkg/subtype"
)

var (
	// ErrNotFound reports that no sidecar subtitle exists for a video.
	ErrNotFound = errors.New("subtitle not found")
	ErrEmpty    = errors.New("subtitle has no cues")
)

// Read parses subtitle bytes in the given format into astisub's model. When
// the declared format fails or yields nothing, the format is sniffed from
// the content and parsing is retried once. The effective format is returned.
func Read(data []byte, format string) (*astisub.Subtitles, string, error) {
	if transformed, err := charset.AnyToUTF8(data); err == nil {
		data = transformed
	}
	s, err := readAs(data, format)
	if err == nil && s != nil && len(s.Items) > 0 {
		return s, format, nil
	}
	guessed := subtype.GuessingType(string(data))
	if guessed == "" || guessed == format {
		if err == nil {
			err = ErrEmpty
		}
		return nil, format, err
	}
	s, err = readAs(data, guessed)
	if err != nil {
		return nil, guessed, err
	}
	if len(s.Items) == 0 {
		return nil, guessed, ErrEmpty
	}
	return s, guessed, nil
}

func readAs(data []byte, format string) (*astisub.Subtitles, error) {
	switch format {
	case subtype.SRT:
		return astisub.ReadFromSRT(bytes.NewReader(data))
	case subtype.ASS, subtype.SSA:
		// common typo in the style section
		data = bytes.Replace(data, []byte(",&H00H202020,"), []byte(",&H00202020,"), 1)
		return astisub.ReadFromSSA(bytes.NewReader(data))
	case subtype.VTT:
		return astisub.ReadFromWebVTT(bytes.NewReader(data))
	}
	return nil, fmt.Errorf("unsupported subtitle format %q", format)
}

// Parse builds a Track from subtitle bytes.
func Parse(data []byte, format string) (*Track, error) {
	s, _, err := Read(data, format)
	if err != nil {
		return nil, err
	}
	return FromAstisub(s), nil
}

// FromAstisub converts parsed items to cues, keeping file order.
func FromAstisub(s *astisub.Subtitles) *Track {
	cues := make([]Cue, 0, len(s.Items))
	for i, item := range s.Items {
		lines := make([]string, 0, len(item.Lines))
		for _, l := range item.Lines {
			lines = append(lines, l.String())
		}
		index := item.Index
		if index == 0 {
			index = i + 1
		}
		cues = append(cues, Cue{
			Index: index,
			Start: TimeToMillis(TimestampFromDuration(item.StartAt)),
			End:   TimeToMillis(TimestampFromDuration(item.EndAt)),
			Text:  strings.Join(lines, "\n"),
		})
	}
	return NewTrack(cues)
}

// Load reads and parses a subtitle file.
func Load(path string) (*Track, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %v", ErrNotFound, path)
		}
		return nil, err
	}
	format := subtype.FromName(path)
	if format == "" {
		format = subtype.SRT
	}
	t, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("parse %v: %w", path, err)
	}
	return t, nil
}

// Open discovers the sidecar of a video and loads it. The resolved path is
// returned alongside the track.
func Open(videoPath string) (*Track, string, error) {
	subPath, ok := Discover(videoPath)
	if !ok {
		return nil, "", ErrNotFound
	}
	if _, err := os.Stat(subPath); err != nil {
		return nil, subPath, fmt.Errorf("%w: %v", ErrNotFound, subPath)
	}
	t, err := Load(subPath)
	return t, subPath, err
}
