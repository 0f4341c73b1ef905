package rod

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
)

type Options struct {
	Dir      string // holds user-data and downloads
	Headless bool
	Trace    bool
}

type Rod struct {
	*rod.Browser
	dir string
	mu  *sync.Mutex
}

func New(opts Options) (*Rod, error) {
	l := launcher.New().
		Headless(opts.Headless).
		UserDataDir(filepath.Join(opts.Dir, "user-data"))
	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch browser: %w", err)
	}
	browser := rod.New().ControlURL(url).Trace(opts.Trace)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	return &Rod{
		Browser: browser,
		dir:     opts.Dir,
		mu:      new(sync.Mutex),
	}, nil
}

func (r *Rod) DownloadDir() string {
	return filepath.Join(r.dir, "downloads")
}

// HookDownload runs action and waits for the download it triggers. The saved
// file path is returned, "" when nothing arrived before timeout.
func (r *Rod) HookDownload(timeout time.Duration, action func()) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	dir := r.DownloadDir()

	wait := r.Timeout(timeout).WaitDownload(dir)
	action()
	info := wait()
	if info == nil {
		return ""
	}
	if info.SuggestedFilename != "" && info.SuggestedFilename != "download" {
		named := filepath.Join(dir, info.SuggestedFilename)
		if err := os.Rename(filepath.Join(dir, info.GUID), named); err == nil {
			return named
		}
	}
	return filepath.Join(dir, info.GUID)
}
