package zimuku

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	rawRod "github.com/go-rod/rod"
	"github.com/rs/zerolog"

	"subplay/pkg/download"
	"subplay/pkg/logging"
	"subplay/pkg/rod"
)

const (
	siteURL = "https://zimuku.org/"

	searchInput  = "body > div.navbar.navbar-inverse.navbar-static-top > div > div.navbar-header > div > form > div > input"
	searchButton = "body > div.navbar.navbar-inverse.navbar-static-top > div > div.navbar-header > div > form > div > span > button"
	firstResult  = "body > div.container > div > div > div.box.clearfix > div:nth-child(2) > div.litpic.hidden-xs > a"
	subRow       = "#subtb > tbody > tr:nth-child(%d)"
	downloadPage = "#down1"
	mirrorLink   = "body > main > div > div > div > table > tbody > tr > td:nth-child(1) > div > ul > li:nth-child(1) > a"
)

var (
	ErrNotFound = errors.New("zimuku: no detail page found")
	votingRe    = regexp.MustCompile("[0-9.]+")
	dateRe      = regexp.MustCompile(" .*\n (.+)")
)

type Options struct {
	Languages []string // language labels accepted, as shown on the site
	Limit     int
	Timeout   time.Duration
}

type Zimuku struct {
	browser *rod.Rod
	opts    Options
	log     zerolog.Logger
}

type subInfo struct {
	downloadElement *rawRod.Element
	language        []string
	downloadCount   int
	votingScore     float64
	time            int64
	format          string
}

func New(browser *rod.Rod, opts Options, log zerolog.Logger) *Zimuku {
	if opts.Limit < 1 {
		opts.Limit = 3
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	return &Zimuku{
		browser: browser,
		opts:    opts,
		log:     logging.Component(log, "zimuku"),
	}
}

func (z *Zimuku) Name() string {
	return "zimuku"
}

func (z *Zimuku) Search(ctx context.Context, q download.Query) ([]string, error) {
	var pageGC []*rawRod.Page
	defer func() {
		for i := range pageGC {
			pageGC[i].Close()
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, z.opts.Timeout)
	defer cancel()

	var page *rawRod.Page
	err := rawRod.Try(func() {
		for _, k := range q.Keywords() {
			z.log.Info().Str("keyword", k).Msg("searching")
			page = z.searchMainPage(ctx, k, &pageGC)
			if page != nil {
				break
			}
			z.log.Debug().Str("keyword", k).Msg("not found")
		}
		if page != nil {
			page.MustWaitLoad()
		}
	})
	if err != nil {
		return nil, fmt.Errorf("zimuku: detail page: %w", err)
	}
	if page == nil {
		return nil, ErrNotFound
	}

	var subs []subInfo
	err = rawRod.Try(func() {
		for childid := 1; ; childid++ {
			has, element, _ := page.Has(fmt.Sprintf(subRow, childid))
			if !has {
				break
			}
			subs = append(subs, z.parseInfo(element))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("zimuku: parse detail page: %w", err)
	}
	subs = z.filter(subs)
	if len(subs) == 0 {
		return nil, nil
	}
	rank(subs)

	var files []string
	limit := z.opts.Limit
	for i, v := range subs {
		if i >= limit {
			break
		}
		file, err := z.fetch(page, v, &pageGC)
		if err != nil || file == "" {
			// try one more candidate in place of the failed one
			limit++
			z.log.Warn().Err(err).Msg("sub download failed")
			continue
		}
		files = append(files, file)
	}
	return files, nil
}

func (z *Zimuku) filter(subs []subInfo) []subInfo {
	out := subs[:0]
	for _, s := range subs {
		if s.format == "sup" {
			continue
		}
		for _, l := range s.language {
			if z.accepts(l) {
				out = append(out, s)
				break
			}
		}
	}
	return out
}

func (z *Zimuku) accepts(label string) bool {
	for _, want := range z.opts.Languages {
		if strings.EqualFold(label, want) {
			return true
		}
	}
	return false
}

// rank orders by download count, pushing poorly rated entries last.
func rank(subs []subInfo) {
	poor := func(s subInfo) bool { return s.votingScore > 0 && s.votingScore <= 5 }
	sort.SliceStable(subs, func(i, j int) bool {
		if pi, pj := poor(subs[i]), poor(subs[j]); pi != pj {
			return pj
		}
		if subs[i].downloadCount != subs[j].downloadCount {
			return subs[i].downloadCount > subs[j].downloadCount
		}
		return subs[i].time > subs[j].time
	})
}

func (z *Zimuku) fetch(page *rawRod.Page, v subInfo, gc *[]*rawRod.Page) (string, error) {
	ctx, cancel := context.WithTimeout(page.GetContext(), 30*time.Second)
	defer cancel()

	var file string
	err := rawRod.Try(func() {
		wait := page.Context(ctx).MustWaitOpen()
		v.downloadElement.MustEval(`() => { this.target = "_blank" }`)
		v.downloadElement.MustClick()
		detail := wait()
		*gc = append(*gc, detail)

		element := detail.MustElement(downloadPage)
		element.MustEval(`() => { this.target = "" }`)
		element.MustScrollIntoView()
		element.MustClick()
		file = z.browser.HookDownload(30*time.Second, func() {
			detail.MustElement(mirrorLink).MustClick()
		})
	})
	if err != nil {
		return "", err
	}
	if file != "" && filepath.Ext(file) == "" && v.format != "" {
		if err := os.Rename(file, file+"."+v.format); err == nil {
			file += "." + v.format
		}
	}
	return file, nil
}

func (z *Zimuku) parseInfo(element *rawRod.Element) subInfo {
	sub := subInfo{}
	sub.downloadElement = element.MustElement("td.first > a")
	sub.downloadCount = parseCount(element.MustElement("td:nth-child(4)").MustText())
	if m := dateRe.FindStringSubmatch(element.MustElement("td:nth-child(5)").MustText()); len(m) == 2 {
		sub.time = parseDate(m[1], time.Now())
	}
	format := element.MustElement("td.first > span:nth-child(2)").MustText()
	if has, _, _ := element.Has("td.first > span:nth-child(3)"); !has {
		sub.format = parseFormat(format)
	}
	for langid := 1; ; langid++ {
		has, image, _ := element.Has("td.tac.lang > img:nth-child(" + strconv.Itoa(langid) + ")")
		if !has {
			break
		}
		if alt := image.MustAttribute("alt"); alt != nil {
			sub.language = append(sub.language, *alt)
		}
	}
	if voting := element.MustElement("td:nth-child(3) > i").MustAttribute("data-original-title"); voting != nil {
		sub.votingScore, _ = strconv.ParseFloat(votingRe.FindString(*voting), 64)
	}
	return sub
}

func (z *Zimuku) searchMainPage(ctx context.Context, keyword string, gc *[]*rawRod.Page) *rawRod.Page {
	page := z.browser.Context(ctx).MustPage(siteURL)
	*gc = append(*gc, page)
	page.MustElement(searchInput).MustInput(keyword)
	page.MustElement(searchButton).MustClick()

	page.WaitElementsMoreThan("button", 1) // if first access
	has, element, _ := page.Has(firstResult)
	if !has {
		return nil
	}
	element.MustEval(`() => { this.target = "" }`)
	element.MustClick()

	return page
}

func parseCount(count string) int {
	count = strings.TrimSpace(count)
	if strings.HasSuffix(count, "万") {
		f, _ := strconv.ParseFloat(strings.TrimSuffix(count, "万"), 64)
		return int(f * 10000)
	}
	n, _ := strconv.Atoi(count)
	return n
}

func parseFormat(label string) string {
	switch label {
	case "ASS/SSA":
		return "ass"
	case "SRT":
		return "srt"
	case "SUP":
		return "sup"
	}
	return ""
}

// parseDate turns the site's relative or short dates into unix seconds.
func parseDate(date string, now time.Time) int64 {
	relative := []struct {
		suffix string
		unit   time.Duration
	}{
		{"天前", 24 * time.Hour},
		{"小时前", time.Hour},
		{"分钟前", time.Minute},
	}
	for _, r := range relative {
		if strings.HasSuffix(date, r.suffix) {
			n, _ := strconv.ParseInt(strings.TrimSuffix(date, r.suffix), 10, 64)
			return now.Add(-time.Duration(n) * r.unit).Unix()
		}
	}
	if date == "刚刚" {
		return now.Unix()
	}
	if t, err := time.Parse("06/1/2", date); err == nil {
		return t.Unix() - 8*3600 // UTC+8
	}
	if t, err := time.Parse("1月2日2006", date+strconv.Itoa(now.Year())); err == nil {
		return t.Unix() - 8*3600
	}
	return 0
}
