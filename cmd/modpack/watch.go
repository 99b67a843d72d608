package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/meigma/modpack/library"
)

type eventJSON struct {
	Kind          string        `json:"kind"`
	Path          string        `json:"path,omitempty"`
	Error         string        `json:"error,omitempty"`
	Failures      []failureJSON `json:"failures,omitempty"`
	Generation    uint64        `json:"generation"`
	Packs         int           `json:"packs"`
	AddedFiles    int           `json:"added_files"`
	RemovedFiles  int           `json:"removed_files"`
	AddedTables   int           `json:"added_tables"`
	RemovedTables int           `json:"removed_tables"`
}

func newEventJSON(ev library.Event) eventJSON {
	out := eventJSON{
		Kind:          ev.Kind.String(),
		Path:          ev.Path,
		Failures:      failuresJSON(ev.Failures),
		Generation:    ev.Snapshot.Generation,
		Packs:         len(ev.Snapshot.Packs),
		AddedFiles:    len(ev.Delta.Collisions.AddedFiles),
		RemovedFiles:  len(ev.Delta.Collisions.RemovedFiles),
		AddedTables:   len(ev.Delta.Collisions.AddedTables),
		RemovedTables: len(ev.Delta.Collisions.RemovedTables),
	}
	if ev.Err != nil {
		out.Error = ev.Err.Error()
	}
	return out
}

func writeEvent(w io.Writer, ev library.Event) {
	switch ev.Kind {
	case library.LibraryLoaded:
		fmt.Fprintf(w, "loaded %d packs, %d failed\n", len(ev.Snapshot.Packs), len(ev.Failures))
	case library.PackFailed:
		fmt.Fprintf(w, "failed %s: %v\n", ev.Path, ev.Err)
	case library.CollisionsUpdated:
		d := ev.Delta.Collisions
		fmt.Fprintf(w, "collisions: files +%d -%d, tables +%d -%d (now %d files, %d tables)\n",
			len(d.AddedFiles), len(d.RemovedFiles), len(d.AddedTables), len(d.RemovedTables),
			len(ev.Snapshot.Files), len(ev.Snapshot.Tables))
	default:
		fmt.Fprintf(w, "%s %s\n", ev.Kind, ev.Path)
	}
}

func newWatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch [dirs...]",
		Short: "Keep reporting collisions while packs are added and removed",
		RunE: func(cmd *cobra.Command, args []string) error {
			dirs, err := a.dirs(args)
			if err != nil {
				return err
			}
			m, err := a.manager()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			var writeErr error
			err = m.Watch(cmd.Context(), dirs, func(ev library.Event) {
				if a.jsonOut {
					if err := writeJSON(w, newEventJSON(ev)); err != nil && writeErr == nil {
						writeErr = err
					}
					return
				}
				writeEvent(w, ev)
			})
			if err != nil {
				return err
			}
			return writeErr
		},
	}
}
