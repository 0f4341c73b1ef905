package cache

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

/*

<dir>/<md5 key>          stamp file, StatKey
<dir>/<md5 key>.d/<name> cached result, TryGet

*/

type Cache struct {
	dir string
}

func New(dir string) *Cache {
	return &Cache{dir: dir}
}

func (c *Cache) Dir() string {
	return c.dir
}

func ensureDir(d string) error {
	info, err := os.Stat(d)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return os.MkdirAll(d, 0755)
		}
		return err
	}
	if !info.IsDir() {
		if err := os.Remove(d); err != nil {
			return err
		}
		return os.MkdirAll(d, 0755)
	}
	return nil
}

func md5Key(k string) string {
	hash := md5.Sum([]byte(k))
	return hex.EncodeToString(hash[:])
}

func MergeKeys(k ...interface{}) string {
	return fmt.Sprintf("%v", k)
}

// StatKey reports whether work keyed by k may run again. The first call for a
// key, and any call at least interval after the last permitted one, returns
// true and restamps the key.
func (c *Cache) StatKey(interval time.Duration, k string) (bool, error) {
	if err := ensureDir(c.dir); err != nil {
		return false, err
	}

	fn := filepath.Join(c.dir, md5Key(k))
	s, err := os.Stat(fn)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f, err := os.Create(fn)
			if err != nil {
				return false, err
			}
			return true, f.Close()
		}
		return false, err
	}
	if time.Since(s.ModTime()) >= interval {
		now := time.Now()
		if err := os.Chtimes(fn, now, now); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// TryGet returns the file cached under k. On a miss, produce is called and the
// file it returns is moved into the cache.
func (c *Cache) TryGet(k string, produce func() (string, error)) (string, error) {
	dir := filepath.Join(c.dir, md5Key(k)+".d")
	if entries, err := os.ReadDir(dir); err == nil {
		for _, e := range entries {
			if !e.IsDir() {
				return filepath.Join(dir, e.Name()), nil
			}
		}
	}

	s, err := produce()
	if err != nil || s == "" {
		return s, err
	}
	if err := ensureDir(dir); err != nil {
		return s, nil
	}
	cached := filepath.Join(dir, filepath.Base(s))
	if err := moveFile(s, cached); err != nil {
		return s, nil
	}
	return cached, nil
}

// moveFile renames src to dst, copying when they sit on different devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}
