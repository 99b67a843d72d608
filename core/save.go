package pack

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// tempPattern names in-progress writes next to their target.
const tempPattern = ".modpack-*"

// WriteFile writes a container holding entries to path, creating parent
// directories as needed. The target is replaced atomically: on failure an
// existing file at path is left untouched.
func WriteFile(path string, entries []Entry) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("pack: create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return fmt.Errorf("pack: write %s: %w", path, err)
	}
	committed := false
	defer func() {
		if !committed {
			tmp.Close() //nolint:errcheck // already failing
			os.Remove(tmp.Name())
		}
	}()

	bw := bufio.NewWriter(tmp)
	if err := Write(bw, entries); err != nil {
		return fmt.Errorf("pack: write %s: %w", path, err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("pack: write %s: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("pack: sync %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("pack: write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("pack: replace %s: %w", path, err)
	}
	committed = true
	return nil
}
