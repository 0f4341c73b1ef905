package episode

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
)

var (
	rangeRe        = regexp.MustCompile(`(\b|\d)[eE]\d+-[eE]\d+\b`)
	wholeSeasonRe  = regexp.MustCompile(`全([一二三四五六七八九十]+|[\d]+)集`)
	episodeRe      = regexp.MustCompile(`(\b|\d)[eE](\d+)\b`)
	seasonRe       = regexp.MustCompile(`\b[sS](\d{1,2})(?:[eE]\d+|\b)`)
	cnEpisodeRe    = regexp.MustCompile(`第(\d+)集`)
	cnEpisodeWord  = regexp.MustCompile(`第(.+)集`)
	yearRe         = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
	titleStopRe    = regexp.MustCompile(`(?i)\b(19\d{2}|20\d{2}|s\d{1,2}e\d+|s\d{1,2}|e\d+|\d{3,4}p|bluray|blu-ray|web-?dl|webrip|hdtv|x264|x265|h264|h265|hevc|remux|proper|repack)\b`)
	separatorsRe   = regexp.MustCompile(`[._\s]+`)
	bracketGroupRe = regexp.MustCompile(`\[[^\]]*\]|\([^)]*\)`)
)

// NameToSeason returns the season number in a release name, or -1.
func NameToSeason(name string) int {
	match := seasonRe.FindStringSubmatch(name)
	if len(match) == 2 {
		if i, err := strconv.Atoi(match[1]); err == nil {
			return i
		}
	}
	return -1
}

// NameToEpisode returns the episode number in a release name, or -1 when
// there is none or the name covers several episodes.
func NameToEpisode(name string) int {
	if rangeRe.MatchString(name) || wholeSeasonRe.MatchString(name) {
		return -1
	}
	match := episodeRe.FindStringSubmatch(name)
	if len(match) == 3 {
		if i, err := strconv.Atoi(match[2]); err == nil {
			return i
		}
	}
	match = cnEpisodeRe.FindStringSubmatch(name)
	if len(match) == 2 {
		if i, err := strconv.Atoi(match[1]); err == nil {
			return i
		}
	}
	match = cnEpisodeWord.FindStringSubmatch(name)
	if len(match) == 2 {
		if i, err := strconv.Atoi(fromChineseDigital(match[1])); err == nil {
			return i
		}
	}
	return -1
}

// NameToYear returns the release year in a name, or 0.
func NameToYear(name string) int {
	match := yearRe.FindStringSubmatch(name)
	if len(match) == 2 {
		if i, err := strconv.Atoi(match[1]); err == nil {
			return i
		}
	}
	return 0
}

// NameToTitle strips release tags from a file name and returns the title part.
func NameToTitle(name string) string {
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = bracketGroupRe.ReplaceAllString(name, " ")
	name = separatorsRe.ReplaceAllString(name, " ")
	if loc := titleStopRe.FindStringIndex(name); loc != nil && loc[0] > 0 {
		name = name[:loc[0]]
	}
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(name), "-"))
}

// 一 - 九十九
func fromChineseDigital(c string) string {
	var chineseDigital = map[rune]rune{
		'一': '1',
		'二': '2',
		'三': '3',
		'四': '4',
		'五': '5',
		'六': '6',
		'七': '7',
		'八': '8',
		'九': '9',
	}

	c = strings.Map(func(r rune) rune {
		if d, ok := chineseDigital[r]; ok {
			return d
		}
		return r
	}, c)

	switch {
	case c == "十":
		c = "10"
	case strings.HasPrefix(c, "十"):
		c = strings.Replace(c, "十", "1", 1)
	case strings.HasSuffix(c, "十"):
		c = strings.Replace(c, "十", "0", 1)
	default:
		c = strings.Replace(c, "十", "", 1)
	}

	return c
}
