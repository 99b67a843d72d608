// Package synth builds session-only patch containers.
//
// A patch container applies gameplay toggles for one game launch. It can force
// every custom battle unit to be recruitable as a general, blank out the
// intro movies and switch on script logging.
package synth

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	pack "github.com/meigma/modpack/core"
	"github.com/meigma/modpack/schema"
)

// ForceGeneralsFragment names the synthesized permissions fragment.
const ForceGeneralsFragment = "modpack_force_generals"

// ScriptLoggingPath is the script hook that enables console logging.
const ScriptLoggingPath = `script\enable_console_logging`

// DefaultMoviePaths are the intro movies replaced by empty entries.
var DefaultMoviePaths = []string{
	`movies\epilepsy_warning\epilepsy_warning_br.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_cn.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_cz.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_de.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_en.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_es.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_fr.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_it.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_kr.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_pl.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_ru.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_tr.ca_vp8`,
	`movies\epilepsy_warning\epilepsy_warning_zh.ca_vp8`,
	`movies\startup_movie_01.ca_vp8`,
	`movies\startup_movie_02.ca_vp8`,
	`movies\startup_movie_03.ca_vp8`,
	`movies\gam_int.ca_vp8`,
}

var (
	// ErrNoEntries is returned when no option produced an entry.
	ErrNoEntries = errors.New("synth: nothing to write")

	// ErrNoGeneralColumn is returned when the permissions layout lacks the
	// general unit column.
	ErrNoGeneralColumn = errors.New("synth: permissions layout has no general column")
)

// Options selects the toggles a patch container applies.
type Options struct {
	ForceGenerals bool
	SkipMovies    bool
	ScriptLogging bool

	// MoviePaths overrides DefaultMoviePaths when non-empty.
	MoviePaths []string
}

// Enabled reports whether any toggle is set.
func (o Options) Enabled() bool {
	return o.ForceGenerals || o.SkipMovies || o.ScriptLogging
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLogger sets the logger for synthesis.
// If not set, logging is disabled.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Synthesizer) {
		s.logger = logger
	}
}

// WithGUIDFunc sets the generator for fragment GUIDs. Defaults to random
// version 4 UUIDs.
func WithGUIDFunc(fn func() string) Option {
	return func(s *Synthesizer) {
		if fn != nil {
			s.newGUID = fn
		}
	}
}

// Synthesizer builds patch containers.
type Synthesizer struct {
	logger  *slog.Logger
	newGUID func() string
}

// log returns the logger, falling back to a discard logger if nil.
func (s *Synthesizer) log() *slog.Logger {
	if s.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return s.logger
}

// New creates a Synthesizer.
func New(opts ...Option) *Synthesizer {
	s := &Synthesizer{newGUID: uuid.NewString}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build returns the entries of the patch container for the enabled packs.
//
// Entries are ordered: the permissions fragment, the movie blanks, then the
// script hook.
func (s *Synthesizer) Build(enabled []*pack.Pack, o Options) ([]pack.Entry, error) {
	var entries []pack.Entry
	if o.ForceGenerals {
		e, ok, err := s.ForceGenerals(enabled)
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, e)
		}
	}
	if o.SkipMovies {
		paths := o.MoviePaths
		if len(paths) == 0 {
			paths = DefaultMoviePaths
		}
		for _, path := range paths {
			entries = append(entries, pack.Entry{Name: path})
		}
	}
	if o.ScriptLogging {
		entries = append(entries, pack.Entry{Name: ScriptLoggingPath, Data: []byte{0}})
	}
	return entries, nil
}

// WriteFile builds the patch container and writes it to path.
// It returns ErrNoEntries, leaving path untouched, when nothing was built.
func (s *Synthesizer) WriteFile(path string, enabled []*pack.Pack, o Options) error {
	entries, err := s.Build(enabled, o)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return ErrNoEntries
	}
	if err := pack.WriteFile(path, entries); err != nil {
		return fmt.Errorf("synth: %w", err)
	}
	s.log().Info("patch container written", "path", path, "entries", len(entries))
	return nil
}

// ForceGenerals concatenates every decoded custom battle permissions row of
// enabled into one fragment with the general unit column set on every row.
//
// The layout and encoded version of the first decoded fragment are used;
// fragments decoded with a different layout are left out. ok is false when
// no rows were found.
func (s *Synthesizer) ForceGenerals(enabled []*pack.Pack) (entry pack.Entry, ok bool, err error) {
	var layout *schema.Version
	var version int32
	var fields []schema.SchemaField
	for _, p := range enabled {
		for _, f := range p.Tables(schema.PermissionsTable) {
			if !f.Decoded() {
				continue
			}
			if layout == nil {
				layout = f.Layout
				version = f.Version // 0 without a version marker
			}
			if f.Layout.Version != layout.Version {
				s.log().Warn("permissions fragment layout differs, leaving it out",
					"pack", p.Name,
					"entry", f.Name,
					"version", f.Layout.Version,
					"want", layout.Version,
				)
				continue
			}
			fields = append(fields, f.Fields...)
		}
	}
	if layout == nil || len(fields) == 0 {
		return pack.Entry{}, false, nil
	}

	general := layout.ColumnIndex(schema.GeneralUnitColumn)
	if general < 0 || layout.Columns[general].Type != schema.ColumnBoolean {
		return pack.Entry{}, false, ErrNoGeneralColumn
	}
	cols := len(layout.Columns)
	out := slices.Clone(fields)
	for i := general; i < len(out); i += cols {
		out[i] = schema.SchemaField{
			Type:   schema.ColumnBoolean,
			Fields: []schema.Field{schema.IntField(schema.FieldUint8, 1)},
			IsKey:  out[i].IsKey,
		}
	}

	// The version block repeats what the first source fragment declared,
	// which differs from layout.Version when it was decoded by fallback.
	preamble := schema.Preamble{GUID: s.newGUID(), HasGUID: true, Version: version, HasVersion: true}
	entry, err = pack.TableEntry(schema.TablePath(schema.PermissionsTable, ForceGeneralsFragment), preamble, layout, out)
	if err != nil {
		return pack.Entry{}, false, fmt.Errorf("synth: %w", err)
	}
	s.log().Debug("forced generals", "rows", entry.RowCount)
	return entry, true, nil
}
