// Package archive packs the generated documentation tree into a single zip file.
package archive

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zip"
)

// entryTime is stamped on every entry so identical trees produce identical bytes.
var entryTime = time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC)

// Info describes a written archive.
type Info struct {
	Path  string
	Files int
	Size  int64
}

// ZipDir writes every regular file under src into dst, using slash-separated paths
// relative to src in lexical order with fixed timestamps. dst is replaced atomically and may live inside src;
// it is never added to itself.
func ZipDir(src, dst string) (Info, error) {
	absDst, err := filepath.Abs(dst)
	if err != nil {
		return Info{}, err
	}
	if err := os.MkdirAll(filepath.Dir(absDst), 0o750); err != nil {
		return Info{}, fmt.Errorf("create archive directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(absDst), ".archive-*.zip")
	if err != nil {
		return Info{}, fmt.Errorf("create archive: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}

	zw := zip.NewWriter(tmp)
	files := 0
	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if abs == absDst || abs == tmpName {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if err := addFile(zw, path, filepath.ToSlash(rel), d); err != nil {
			return err
		}
		files++
		return nil
	})
	if walkErr != nil {
		cleanup()
		return Info{}, fmt.Errorf("archive %s: %w", src, walkErr)
	}
	if err := zw.Close(); err != nil {
		cleanup()
		return Info{}, fmt.Errorf("finalize archive: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return Info{}, fmt.Errorf("close archive: %w", err)
	}
	if err := os.Rename(tmpName, absDst); err != nil {
		_ = os.Remove(tmpName)
		return Info{}, fmt.Errorf("move archive into place: %w", err)
	}
	st, err := os.Stat(absDst)
	if err != nil {
		return Info{}, err
	}
	return Info{Path: absDst, Files: files, Size: st.Size()}, nil
}

func addFile(zw *zip.Writer, path, name string, d fs.DirEntry) error {
	info, err := d.Info()
	if err != nil {
		return err
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	hdr.Name = name
	hdr.Method = zip.Deflate
	hdr.Modified = entryTime
	w, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()
	_, err = io.Copy(w, f)
	return err
}
