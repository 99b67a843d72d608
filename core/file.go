package pack

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// packFile serves a pack on disk as a ByteSource. The size is captured when
// the file is opened so later appends by another process are not observed.
type packFile struct {
	*os.File
	size int64
	id   string
}

var _ ByteSource = (*packFile)(nil)

// openPackFile opens path for random access and records its revision.
func openPackFile(path string) (*packFile, error) {
	f, err := os.Open(path) //nolint:gosec // callers choose which pack to read
	if err != nil {
		return nil, fmt.Errorf("open pack file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat pack file: %w", err)
	}
	return &packFile{File: f, size: info.Size(), id: revision(path, info)}, nil
}

func (p *packFile) Size() int64 { return p.size }

func (p *packFile) SourceID() string { return p.id }

// FileSourceID returns the identifier ReadFile derives for the pack at path.
// It changes whenever the file is replaced, resized or touched.
func FileSourceID(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	return revision(path, info), nil
}

// revision names one version of a file by absolute path, length and mtime.
func revision(path string, info fs.FileInfo) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return "file:" + path + ":" +
		strconv.FormatInt(info.Size(), 10) + ":" +
		strconv.FormatInt(info.ModTime().UnixNano(), 10)
}
