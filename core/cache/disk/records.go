package disk

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"
)

// tempPrefix names records still being written by Put.
const tempPrefix = "cache-"

// record is one committed cache file.
type record struct {
	path string
	size int64
	used time.Time // mtime, refreshed on every hit
}

// listRecords walks root and returns every committed record and their
// total size. A missing root holds no records.
func listRecords(root string) ([]record, int64, error) {
	var (
		records []record
		total   int64
	)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), tempPrefix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		records = append(records, record{path: path, size: info.Size(), used: info.ModTime()})
		total += info.Size()
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return nil, 0, nil
	}
	if err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// evict removes the least recently used records until total is at or below
// target. It returns the bytes freed and the bytes left.
func evict(records []record, total, target int64) (freed, remaining int64, err error) {
	remaining = total
	if remaining <= target {
		return 0, remaining, nil
	}
	slices.SortFunc(records, func(a, b record) int {
		if c := a.used.Compare(b.used); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})
	for _, r := range records {
		if remaining <= target {
			break
		}
		if err := os.Remove(r.path); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return freed, remaining, err
		}
		remaining -= r.size
		freed += r.size
	}
	return freed, remaining, nil
}

// writeTemp writes data to a new temp file in dir and returns its path.
func writeTemp(dir string, data []byte) (string, error) {
	tmp, err := os.CreateTemp(dir, tempPrefix+"*")
	if err != nil {
		return "", err
	}
	path := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close() //nolint:errcheck // the write error wins
		_ = os.Remove(path)
		return "", err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}
