package schema

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/opencontainers/go-digest"
)

// Column describes one column of a table version.
type Column struct {
	Name  string     `json:"name"`
	Type  ColumnType `json:"field_type"`
	IsKey bool       `json:"is_key"`
}

// UnmarshalJSON requires an explicit field_type.
func (c *Column) UnmarshalJSON(b []byte) error {
	var raw struct {
		Name  string      `json:"name"`
		Type  *ColumnType `json:"field_type"`
		IsKey bool        `json:"is_key"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type == nil {
		return fmt.Errorf("%w: column %q has no field_type", ErrInvalidCatalogue, raw.Name)
	}
	*c = Column{Name: raw.Name, Type: *raw.Type, IsKey: raw.IsKey}
	return nil
}

// Version is the column layout of one table version.
type Version struct {
	Version int32    `json:"version"`
	Columns []Column `json:"fields"`
}

// KeyColumns returns the indexes of the key columns in layout order.
func (v *Version) KeyColumns() []int {
	var keys []int
	for i, c := range v.Columns {
		if c.IsKey {
			keys = append(keys, i)
		}
	}
	return keys
}

// SoleKey returns the key column when the layout has exactly one.
func (v *Version) SoleKey() (Column, int, bool) {
	keys := v.KeyColumns()
	if len(keys) != 1 {
		return Column{}, -1, false
	}
	return v.Columns[keys[0]], keys[0], true
}

// ColumnIndex returns the index of the named column, or -1.
func (v *Version) ColumnIndex(name string) int {
	return slices.IndexFunc(v.Columns, func(c Column) bool { return c.Name == name })
}

// Resolution is the layout chosen for an encoded table version.
type Resolution struct {
	Layout *Version
	// Exact is false when the table's default layout was used because no
	// layout matched the encoded version.
	Exact bool
}

// Catalogue maps table names to their known versions.
//
// A Catalogue is read-only after construction and safe for concurrent use.
type Catalogue struct {
	tables      map[string][]Version
	fingerprint digest.Digest
}

// NewCatalogue validates tables and returns a Catalogue over a copy of them.
func NewCatalogue(tables map[string][]Version) (*Catalogue, error) {
	owned := make(map[string][]Version, len(tables))
	for name, versions := range tables {
		if name == "" {
			return nil, fmt.Errorf("%w: empty table name", ErrInvalidCatalogue)
		}
		seen := make(map[int32]struct{}, len(versions))
		cp := make([]Version, len(versions))
		for i, v := range versions {
			if _, dup := seen[v.Version]; dup {
				return nil, fmt.Errorf("%w: %s: duplicate version %d", ErrInvalidCatalogue, name, v.Version)
			}
			seen[v.Version] = struct{}{}
			if err := validateColumns(name, v); err != nil {
				return nil, err
			}
			cp[i] = Version{Version: v.Version, Columns: slices.Clone(v.Columns)}
		}
		owned[name] = cp
	}

	canonical, err := json.Marshal(owned)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}
	return &Catalogue{tables: owned, fingerprint: digest.FromBytes(canonical)}, nil
}

func validateColumns(table string, v Version) error {
	names := make(map[string]struct{}, len(v.Columns))
	for _, c := range v.Columns {
		if c.Name == "" {
			return fmt.Errorf("%w: %s v%d: unnamed column", ErrInvalidCatalogue, table, v.Version)
		}
		if _, dup := names[c.Name]; dup {
			return fmt.Errorf("%w: %s v%d: duplicate column %q", ErrInvalidCatalogue, table, v.Version, c.Name)
		}
		names[c.Name] = struct{}{}
		if _, err := c.Type.codec(); err != nil {
			return fmt.Errorf("%w: %s v%d: column %q: %w", ErrInvalidCatalogue, table, v.Version, c.Name, err)
		}
	}
	return nil
}

// LoadCatalogue reads a JSON catalogue of the form
// {"<table>": [{"version": N, "fields": [{"name", "field_type", "is_key"}]}]}.
func LoadCatalogue(r io.Reader) (*Catalogue, error) {
	var tables map[string][]Version
	dec := json.NewDecoder(r)
	if err := dec.Decode(&tables); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalogue, err)
	}
	return NewCatalogue(tables)
}

// LoadCatalogueFile reads a JSON catalogue from path.
func LoadCatalogueFile(path string) (*Catalogue, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	c, err := LoadCatalogue(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Tables returns the known table names in sorted order.
func (c *Catalogue) Tables() []string {
	names := make([]string, 0, len(c.tables))
	for name := range c.tables {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Versions returns the layouts known for table.
func (c *Catalogue) Versions(table string) []Version {
	return c.tables[table]
}

// Lookup returns the layout for an exact table version.
func (c *Catalogue) Lookup(table string, version int32) (*Version, bool) {
	versions := c.tables[table]
	for i := range versions {
		if versions[i].Version == version {
			return &versions[i], true
		}
	}
	return nil, false
}

// Resolve picks the layout used to decode a fragment of table whose encoded
// version is encoded.
//
// An exact match wins. Otherwise the table's version 0 layout is the
// default. ok is false when the table is unknown, when neither layout exists,
// or when the resolved layout is newer than the encoded version.
func (c *Catalogue) Resolve(table string, encoded int32) (Resolution, bool) {
	if v, ok := c.Lookup(table, encoded); ok {
		return Resolution{Layout: v, Exact: true}, true
	}
	v, ok := c.Lookup(table, 0)
	if !ok || v.Version > encoded {
		return Resolution{}, false
	}
	return Resolution{Layout: v}, true
}

// Fingerprint identifies the catalogue contents.
func (c *Catalogue) Fingerprint() digest.Digest {
	return c.fingerprint
}
