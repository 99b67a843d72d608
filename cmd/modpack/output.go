package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/meigma/modpack/collision"
	"github.com/meigma/modpack/library"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type failureJSON struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

func failuresJSON(results []library.Result) []failureJSON {
	out := make([]failureJSON, 0, len(results))
	for _, r := range results {
		out = append(out, failureJSON{Path: r.Path, Error: r.Err.Error()})
	}
	return out
}

type reportJSON struct {
	Generation uint64            `json:"generation"`
	Packs      []string          `json:"packs"`
	Failures   []failureJSON     `json:"failures"`
	Files      []collision.File  `json:"files"`
	Tables     []collision.Table `json:"tables"`
}

func newReport(snap library.Snapshot, failures []library.Result) reportJSON {
	r := reportJSON{
		Generation: snap.Generation,
		Packs:      make([]string, 0, len(snap.Packs)),
		Failures:   failuresJSON(failures),
		Files:      snap.Files,
		Tables:     snap.Tables,
	}
	for _, p := range snap.Packs {
		r.Packs = append(r.Packs, p.Name)
	}
	if r.Files == nil {
		r.Files = []collision.File{}
	}
	if r.Tables == nil {
		r.Tables = []collision.Table{}
	}
	return r
}

func writeReport(w io.Writer, snap library.Snapshot, failures []library.Result) {
	fmt.Fprintf(w, "%d packs loaded\n", len(snap.Packs))
	for _, f := range failures {
		fmt.Fprintf(w, "failed  %s: %v\n", f.Path, f.Err)
	}
	for _, c := range snap.Files {
		fmt.Fprintf(w, "file    %s %s also in %s\n", c.FirstPack, c.FileName, c.SecondPack)
	}
	for _, c := range snap.Tables {
		fmt.Fprintf(w, "table   %s %s %s=%s also in %s (%s)\n",
			c.FirstPack, c.FileName, c.Key, c.Value, c.SecondPack, c.SecondFileName)
	}
	fmt.Fprintf(w, "%d file collisions, %d table collisions\n", len(snap.Files), len(snap.Tables))
}
