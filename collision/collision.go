package collision

import (
	"strings"

	pack "github.com/meigma/modpack/core"
)

// DefaultBasePack is the base-game data container. It never collides.
const DefaultBasePack = "data.pack"

// ReservedFileName is an entry name present in packs saved by editing tools;
// it never collides.
const ReservedFileName = "settings.rpfm_reserved"

// File records two packs holding an entry at the same virtual path.
type File struct {
	FirstPack  string `json:"first_pack"`
	SecondPack string `json:"second_pack"`
	FileName   string `json:"file_name"`
}

// Table records two table fragments holding a row with the same key value.
//
// Key is the name of the key column in the first fragment's layout.
type Table struct {
	FirstPack      string `json:"first_pack"`
	SecondPack     string `json:"second_pack"`
	FileName       string `json:"file_name"`
	SecondFileName string `json:"second_file_name"`
	Key            string `json:"key"`
	Value          string `json:"value"`
}

// Mirror returns the record seen from the second pack.
func (c File) Mirror() File {
	return File{FirstPack: c.SecondPack, SecondPack: c.FirstPack, FileName: c.FileName}
}

// Involves reports whether the record names the pack in either role.
func (c File) Involves(name string) bool {
	return c.FirstPack == name || c.SecondPack == name
}

// Involves reports whether the record names the pack in either role.
func (c Table) Involves(name string) bool {
	return c.FirstPack == name || c.SecondPack == name
}

// Between returns the collisions between a and b in both directions.
//
// Packs with the same name and the base pack named basePack never collide.
func Between(a, b *pack.Pack, basePack string) ([]File, []Table) {
	if !collides(a, b, basePack) {
		return nil, nil
	}
	return fileCollisions(a, b), tableCollisions(a, b)
}

func collides(a, b *pack.Pack, basePack string) bool {
	if a == nil || b == nil || a == b || a.Name == b.Name {
		return false
	}
	return !isBase(a.Name, basePack) && !isBase(b.Name, basePack)
}

func isBase(name, basePack string) bool {
	return basePack != "" && strings.EqualFold(name, basePack)
}

func fileCollisions(a, b *pack.Pack) []File {
	names := make(map[string]struct{}, len(b.Files))
	for i := range b.Files {
		names[b.Files[i].Name] = struct{}{}
	}
	var out []File
	seen := make(map[string]struct{})
	for i := range a.Files {
		name := a.Files[i].Name
		if name == ReservedFileName {
			continue
		}
		if _, ok := names[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		c := File{FirstPack: a.Name, SecondPack: b.Name, FileName: name}
		out = append(out, c, c.Mirror())
	}
	return out
}

// keyedFragment is a decoded fragment of a single-key table.
type keyedFragment struct {
	file *pack.PackedFile
	key  string
	col  int
}

// keyedFragments returns a's decoded fragments of tables with exactly one
// key column, grouped by table.
func keyedFragments(p *pack.Pack) map[string][]keyedFragment {
	out := make(map[string][]keyedFragment)
	for i := range p.Files {
		f := &p.Files[i]
		if f.Table == "" || !f.Decoded() {
			continue
		}
		key, col, ok := f.Layout.SoleKey()
		if !ok {
			continue
		}
		out[f.Table] = append(out[f.Table], keyedFragment{file: f, key: key.Name, col: col})
	}
	return out
}

// keyValues returns the key value of every row of frag in row order.
func keyValues(frag keyedFragment) []string {
	rows := frag.file.Rows()
	out := make([]string, len(rows))
	for i, row := range rows {
		out[i] = row[frag.col].KeyValue()
	}
	return out
}

func tableCollisions(a, b *pack.Pack) []Table {
	fromA := keyedFragments(a)
	if len(fromA) == 0 {
		return nil
	}
	fromB := keyedFragments(b)

	var out []Table
	seen := make(map[Table]struct{})
	emit := func(c Table) {
		if _, dup := seen[c]; dup {
			return
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	for table, fragsA := range orderedTables(a, fromA) {
		fragsB := fromB[table]
		for _, fa := range fragsA {
			valuesA := keyValues(fa)
			for _, fragB := range fragsB {
				inB := make(map[string]struct{})
				for _, v := range keyValues(fragB) {
					inB[v] = struct{}{}
				}
				for _, v := range valuesA {
					if _, ok := inB[v]; !ok {
						continue
					}
					emit(Table{
						FirstPack: a.Name, SecondPack: b.Name,
						FileName: fa.file.Name, SecondFileName: fragB.file.Name,
						Key: fa.key, Value: v,
					})
					emit(Table{
						FirstPack: b.Name, SecondPack: a.Name,
						FileName: fragB.file.Name, SecondFileName: fa.file.Name,
						Key: fragB.key, Value: v,
					})
				}
			}
		}
	}
	return out
}

// orderedTables yields the fragments of p grouped by table in the order the
// tables first appear in p, so output order follows the container.
func orderedTables(p *pack.Pack, frags map[string][]keyedFragment) func(func(string, []keyedFragment) bool) {
	return func(yield func(string, []keyedFragment) bool) {
		done := make(map[string]bool, len(frags))
		for i := range p.Files {
			table := p.Files[i].Table
			fs, ok := frags[table]
			if !ok || done[table] {
				continue
			}
			done[table] = true
			if !yield(table, fs) {
				return
			}
		}
	}
}
