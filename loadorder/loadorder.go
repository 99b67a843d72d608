// Package loadorder orders mods for a game launch and writes the mod-list
// script the game reads on startup.
package loadorder

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
)

// PatchName is the default file name of the session patch container.
// The leading bangs make it sort ahead of every mod.
const PatchName = "!!!!out.pack"

// Mod is one pack the game should load.
type Mod struct {
	// Name is the pack file name, e.g. "my_mod.pack".
	Name string
	// Dir is the directory holding the pack.
	Dir string
	// LoadOrder pins the mod to an index in the sorted list.
	LoadOrder *int
}

// FromPath returns a Mod for the pack at path.
func FromPath(path string) Mod {
	return Mod{Name: filepath.Base(path), Dir: filepath.Dir(path)}
}

// Patch locates the session patch container.
type Patch struct {
	Dir  string
	Name string
}

// CompareNames orders pack names case-insensitively. A name that is a prefix
// of another sorts after it, so "ab.pack" loads before "ab".
func CompareNames(a, b string) int {
	a = strings.ToLower(a)
	b = strings.ToLower(b)
	for i := 0; i < max(len(a), len(b)); i++ {
		if i == len(a) {
			return 1
		}
		if i == len(b) {
			return -1
		}
		if a[i] != b[i] {
			if a[i] < b[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

// Sort returns mods in load order. Mods are ordered by name, then every mod
// with an explicit LoadOrder is moved to that index, lowest order first.
// An index past the end appends. The input slice is not modified.
func Sort(mods []Mod) []Mod {
	sorted := slices.Clone(mods)
	slices.SortStableFunc(sorted, func(a, b Mod) int {
		return CompareNames(a.Name, b.Name)
	})

	var pinned []Mod
	sorted = slices.DeleteFunc(sorted, func(m Mod) bool {
		if m.LoadOrder != nil {
			pinned = append(pinned, m)
			return true
		}
		return false
	})
	slices.SortStableFunc(pinned, func(a, b Mod) int {
		return *a.LoadOrder - *b.LoadOrder
	})
	for _, m := range pinned {
		idx := min(max(*m.LoadOrder, 0), len(sorted))
		sorted = slices.Insert(sorted, idx, m)
	}
	return sorted
}

// Script renders the mod-list script for mods in the given order.
// Each directory outside dataDir gets one add_working_directory line. A
// non-nil patch is appended last with its own working directory.
func Script(mods []Mod, dataDir string, patch *Patch) string {
	var lines []string
	seen := make(map[string]bool)
	for _, m := range mods {
		if sameDir(m.Dir, dataDir) || seen[m.Dir] {
			continue
		}
		seen[m.Dir] = true
		lines = append(lines, `add_working_directory "`+m.Dir+`";`)
	}
	for _, m := range mods {
		lines = append(lines, `mod "`+m.Name+`";`)
	}

	text := strings.Join(lines, "\n")
	if patch != nil {
		name := patch.Name
		if name == "" {
			name = PatchName
		}
		text += "\nadd_working_directory \"" + patch.Dir + "\";\nmod \"" + name + "\";"
	}
	return text
}

// WriteScript writes the mod-list script to w.
func WriteScript(w io.Writer, mods []Mod, dataDir string, patch *Patch) error {
	bw := bufio.NewWriter(w)
	if _, err := bw.WriteString(Script(mods, dataDir, patch)); err != nil {
		return fmt.Errorf("loadorder: write script: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("loadorder: write script: %w", err)
	}
	return nil
}

func sameDir(a, b string) bool {
	if b == "" {
		return false
	}
	return strings.EqualFold(filepath.Clean(a), filepath.Clean(b))
}

var savePackName = regexp.MustCompile(`\x00([^\x00]+?\.pack)`)

// PacksInSave returns the pack names a save file references, in the order
// they appear. Names are NUL-prefixed strings ending in ".pack".
func PacksInSave(r io.Reader) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("loadorder: read save: %w", err)
	}
	matches := savePackName.FindAllSubmatch(data, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, string(m[1]))
	}
	return names, nil
}
