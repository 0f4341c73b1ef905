package unpack

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/mholt/archiver/v4"
)

// Hook receives every regular file found in an archive.
type Hook func(io.Reader, fs.FileInfo)

// WalkUnpacked calls hook for each file inside packed. Zip, tar, rar and the
// compressed tar variants go through archiver, 7z through sevenzip; anything
// else is handed to hook as a single plain file.
func WalkUnpacked(packed string, hook Hook) (err error) {
	file, err := os.Open(packed)
	if err != nil {
		return err
	}
	defer file.Close()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("unpack %v: %v", packed, r)
		}
	}()

	format, _, err := archiver.Identify("", file)
	if errors.Is(err, archiver.ErrNoMatch) {
		return walkSevenZip(packed, file, hook)
	}
	if err != nil {
		return err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	ex, ok := format.(archiver.Extractor)
	if !ok {
		if dec, ok := format.(archiver.Decompressor); ok {
			return decompress(packed, file, dec, hook)
		}
		return plain(packed, file, hook)
	}
	return ex.Extract(context.Background(), file, nil, func(_ context.Context, f archiver.File) error {
		if f.IsDir() {
			return nil
		}
		rc, err := f.Open()
		if err != nil {
			return nil
		}
		defer rc.Close()
		hook(rc, f.FileInfo)
		return nil
	})
}

func walkSevenZip(packed string, file *os.File, hook Hook) error {
	r, err := sevenzip.OpenReader(packed)
	if err != nil {
		return plain(packed, file, hook)
	}
	defer r.Close()
	for _, f := range r.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			continue
		}
		hook(rc, f.FileInfo())
		rc.Close()
	}
	return nil
}

// renamed reports a different base name for an existing file.
type renamed struct {
	fs.FileInfo
	name string
}

func (r renamed) Name() string { return r.name }

func decompress(packed string, file *os.File, dec archiver.Decompressor, hook Hook) error {
	info, err := os.Lstat(packed)
	if err != nil {
		return err
	}
	rc, err := dec.OpenReader(file)
	if err != nil {
		return err
	}
	defer rc.Close()
	name := strings.TrimSuffix(info.Name(), filepath.Ext(info.Name()))
	hook(rc, renamed{FileInfo: info, name: name})
	return nil
}

func plain(packed string, file *os.File, hook Hook) error {
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	info, err := os.Lstat(packed)
	if err != nil {
		return err
	}
	hook(file, info)
	return nil
}
