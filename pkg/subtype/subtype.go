package subtype

import (
	"path/filepath"
	"regexp"
	"strings"
)

const (
	SRT = "srt"
	ASS = "ass"
	SSA = "ssa"
	VTT = "vtt"
)

var timingLine = regexp.MustCompile(`(\d{1,2}):(\d{2}):(\d{2})[.,](\d{2,3})`)

// GuessingType sniffs the subtitle format from file content, "" when unknown.
func GuessingType(sub string) string {
	lsub := strings.ToLower(sub)
	if strings.Contains(lsub, "[v4+ styles]") {
		return ASS
	}
	if strings.Contains(lsub, "[v4 styles]") {
		return SSA
	}
	if strings.HasPrefix(strings.TrimLeft(sub, " \ufeff"), "WEBVTT") {
		return VTT
	}
	for _, l := range strings.Split(sub, "\n") {
		if len(timingLine.FindAllString(l, 3)) == 2 {
			return SRT
		}
	}
	return ""
}

// FromName maps a file name to a format by extension, "" when unsupported.
func FromName(name string) string {
	switch ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."); ext {
	case SRT, ASS, SSA, VTT:
		return ext
	}
	return ""
}
