package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/meigma/modpack"
)

type entryJSON struct {
	Name       string `json:"name"`
	Size       uint32 `json:"size"`
	Offset     uint64 `json:"offset"`
	Compressed bool   `json:"compressed"`
	Table      string `json:"table,omitempty"`
	Version    *int32 `json:"version,omitempty"`
	GUID       string `json:"guid,omitempty"`
	Rows       int    `json:"rows"`
	Skip       string `json:"skip,omitempty"`
}

type inspectJSON struct {
	Name        string      `json:"name"`
	Magic       string      `json:"magic"`
	References  []string    `json:"references"`
	PayloadSize uint64      `json:"payload_size"`
	Decoded     int         `json:"decoded_entries"`
	Rows        int         `json:"rows"`
	Entries     []entryJSON `json:"entries"`
}

func newInspectJSON(res *modpack.InspectResult) inspectJSON {
	p := res.Pack()
	out := inspectJSON{
		Name:        p.Name,
		Magic:       string(p.Header.Magic[:]),
		References:  append([]string{}, p.Header.References...),
		PayloadSize: res.PayloadSize(),
		Decoded:     res.DecodedEntries(),
		Rows:        res.RowCount(),
		Entries:     make([]entryJSON, 0, len(p.Files)),
	}
	for i := range p.Files {
		f := &p.Files[i]
		e := entryJSON{
			Name:       f.Name,
			Size:       f.Size,
			Offset:     f.Offset,
			Compressed: f.Compressed,
			Table:      f.Table,
			GUID:       f.GUID,
			Rows:       len(f.Rows()),
		}
		if f.HasVersion {
			v := f.Version
			e.Version = &v
		}
		if f.Table != "" && !f.Decoded() {
			e.Skip = string(f.Skip)
		}
		out.Entries = append(out.Entries, e)
	}
	return out
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file>",
		Short: "Show a pack's header, entries and decoded tables",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.manager()
			if err != nil {
				return err
			}
			res, err := m.Inspect(args[0])
			if err != nil {
				return err
			}
			report := newInspectJSON(res)
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), report)
			}

			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s (%s), %d entries, %d payload bytes\n",
				report.Name, report.Magic, len(report.Entries), report.PayloadSize)
			for _, ref := range report.References {
				fmt.Fprintf(w, "references %s\n", ref)
			}
			tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tSIZE\tCOMPRESSED\tTABLE\tVERSION\tROWS")
			for _, e := range report.Entries {
				version := "-"
				if e.Version != nil {
					version = fmt.Sprint(*e.Version)
				}
				rows := fmt.Sprint(e.Rows)
				if e.Skip != "" {
					rows = e.Skip
				}
				fmt.Fprintf(tw, "%s\t%d\t%t\t%s\t%s\t%s\n", e.Name, e.Size, e.Compressed, e.Table, version, rows)
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(w, "%d of %d table entries decoded, %d rows\n", report.Decoded, res.TableEntries(), report.Rows)
			return nil
		},
	}
}
