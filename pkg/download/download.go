package download

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/asticode/go-astisub"
	"github.com/rs/zerolog"

	"subplay/pkg/cache"
	"subplay/pkg/episode"
	"subplay/pkg/subtitle"
	"subplay/pkg/subtype"
	"subplay/pkg/unpack"
)

var (
	ErrNoSubtitle        = errors.New("no matching subtitle found")
	ErrRecentlyAttempted = errors.New("subtitle search ran recently for this video")
)

// Query describes the video a provider should find subtitles for.
type Query struct {
	Title   string
	Year    int
	Season  int
	Episode int
}

// Keywords lists search strings from most to least specific.
func (q Query) Keywords() []string {
	var keywords []string
	switch {
	case q.Season > 0 && q.Episode > 0:
		keywords = append(keywords, fmt.Sprintf("%s S%02dE%02d", q.Title, q.Season, q.Episode))
	case q.Year != 0:
		keywords = append(keywords, fmt.Sprintf("%s (%d)", q.Title, q.Year))
		// year offset +-1
		keywords = append(keywords, fmt.Sprintf("%s (%d)", q.Title, q.Year+1))
		keywords = append(keywords, fmt.Sprintf("%s (%d)", q.Title, q.Year-1))
	}
	return append(keywords, q.Title)
}

func QueryFromPath(videoPath string) Query {
	name := filepath.Base(videoPath)
	return Query{
		Title:   episode.NameToTitle(name),
		Year:    episode.NameToYear(name),
		Season:  episode.NameToSeason(name),
		Episode: episode.NameToEpisode(name),
	}
}

// Provider finds subtitles and stores them as local files, archives or plain
// subtitle files, returning their paths in preference order.
type Provider interface {
	Name() string
	Search(ctx context.Context, q Query) ([]string, error)
}

// Result is the outcome of one download, delivered once and never mutated.
type Result struct {
	Video    string
	Path     string
	Language string
	Err      error
}

type Options struct {
	Language string // ISO 639-1
	Interval time.Duration
	Timeout  time.Duration
}

type Downloader struct {
	provider Provider
	cache    *cache.Cache
	opts     Options
	log      zerolog.Logger
}

func New(provider Provider, c *cache.Cache, opts Options, log zerolog.Logger) *Downloader {
	if opts.Language == "" {
		opts.Language = "en"
	}
	return &Downloader{
		provider: provider,
		cache:    c,
		opts:     opts,
		log:      log.With().Str("component", "download").Str("provider", provider.Name()).Logger(),
	}
}

// Start runs Fetch on its own goroutine. The channel yields exactly one
// Result and is then closed.
func (d *Downloader) Start(ctx context.Context, videoPath string) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		defer func() {
			if r := recover(); r != nil {
				out <- Result{Video: videoPath, Err: fmt.Errorf("download panicked: %v", r)}
			}
		}()
		out <- d.Fetch(ctx, videoPath)
	}()
	return out
}

// Fetch finds a subtitle in the configured language for videoPath and
// writes it next to the video as <base>.<lang>.srt.
func (d *Downloader) Fetch(ctx context.Context, videoPath string) Result {
	res := Result{Video: videoPath, Language: d.opts.Language}
	if d.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.opts.Timeout)
		defer cancel()
	}

	key := cache.MergeKeys(videoPath, d.opts.Language)
	cached, err := d.cache.TryGet(key, func() (string, error) {
		ok, err := d.cache.StatKey(d.opts.Interval, key)
		if err != nil {
			d.log.Warn().Err(err).Msg("cache dir may be wrong")
		} else if !ok {
			return "", ErrRecentlyAttempted
		}
		return d.search(ctx, videoPath)
	})
	if err != nil {
		res.Err = err
		return res
	}

	target := SidecarPath(videoPath, d.opts.Language)
	data, err := os.ReadFile(cached)
	if err == nil {
		err = os.WriteFile(target, data, 0644)
	}
	if err != nil {
		res.Err = fmt.Errorf("write subtitle: %w", err)
		return res
	}
	d.log.Info().Str("path", target).Msg("subtitle written")
	res.Path = target
	return res
}

// SidecarPath names a downloaded subtitle so sidecar discovery picks it up.
func SidecarPath(videoPath, lang string) string {
	return strings.TrimSuffix(videoPath, filepath.Ext(videoPath)) + "." + lang + subtitle.Ext
}

type candidate struct {
	name string
	subs *astisub.Subtitles
	lang string
}

func (d *Downloader) search(ctx context.Context, videoPath string) (string, error) {
	q := QueryFromPath(videoPath)
	d.log.Info().Str("title", q.Title).Int("year", q.Year).Int("episode", q.Episode).Msg("searching")

	files, err := d.provider.Search(ctx, q)
	if err != nil {
		return "", fmt.Errorf("%v: %w", d.provider.Name(), err)
	}

	var found []candidate
	for _, f := range files {
		err := unpack.WalkUnpacked(f, func(r io.Reader, info fs.FileInfo) {
			if c, ok := d.inspect(r, info); ok {
				found = append(found, c)
			}
		})
		if err != nil {
			d.log.Warn().Err(err).Str("file", f).Msg("open subtitle archive failed")
		}
	}

	for _, c := range found {
		if c.lang != d.opts.Language {
			continue
		}
		var buf bytes.Buffer
		if err := c.subs.WriteToSRT(&buf); err != nil {
			d.log.Warn().Err(err).Str("name", c.name).Msg("convert to srt failed")
			continue
		}
		tmp, err := os.CreateTemp("", "subplay-*"+subtitle.Ext)
		if err != nil {
			return "", err
		}
		_, err = tmp.Write(buf.Bytes())
		if cerr := tmp.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(tmp.Name())
			return "", err
		}
		d.log.Info().Str("name", c.name).Msg("subtitle selected")
		return tmp.Name(), nil
	}
	return "", ErrNoSubtitle
}

func (d *Downloader) inspect(r io.Reader, info fs.FileInfo) (candidate, bool) {
	name := info.Name()
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		d.log.Debug().Str("name", name).Msg("ignoring empty sub")
		return candidate{}, false
	}
	format := subtype.FromName(name)
	if format == "" {
		format = subtype.GuessingType(string(data))
	}
	if format == "" {
		return candidate{}, false
	}
	s, format, err := subtitle.Read(data, format)
	if err != nil {
		d.log.Debug().Err(err).Str("name", name).Str("format", format).Msg("ignoring sub")
		return candidate{}, false
	}
	return candidate{name: name, subs: s, lang: DetectLanguage(s)}, true
}

// DetectLanguage returns the ISO 639-1 code of the dominant language of the
// first line of every item, "" when undetermined.
func DetectLanguage(s *astisub.Subtitles) string {
	counts := map[whatlanggo.Lang]int{}
	for _, item := range s.Items {
		if len(item.Lines) == 0 {
			continue
		}
		line := strings.TrimSpace(item.Lines[0].String())
		if line == "" {
			continue
		}
		info := whatlanggo.Detect(line)
		if info.Lang < 0 {
			continue
		}
		counts[info.Lang]++
	}
	best, most := whatlanggo.Lang(-1), 0
	for lang, n := range counts {
		if n > most || n == most && lang < best {
			best, most = lang, n
		}
	}
	if most == 0 {
		return ""
	}
	return best.Iso6391()
}
