package subtitle

import (
	"os"
	"path/filepath"
	"strings"
)

const Ext = ".srt"

// Discover looks for a sidecar subtitle next to a video. The video path minus
// its extension is used as a plain string prefix against every .srt path in
// the directory, so "movie.mp4" also accepts "movie.en.srt" and "movie2.srt".
// Both sides are compared in cleaned form. Entries are visited in os.ReadDir
// order (sorted by name) and the first hit is returned.
func Discover(videoPath string) (string, bool) {
	base := filepath.Clean(strings.TrimSuffix(videoPath, filepath.Ext(videoPath)))
	directory := filepath.Dir(videoPath)
	entries, err := os.ReadDir(directory)
	if err != nil {
		return "", false
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), Ext) {
			continue
		}
		subPath := filepath.Join(directory, entry.Name())
		if strings.HasPrefix(subPath, base) {
			return subPath, true
		}
	}
	return "", false
}
