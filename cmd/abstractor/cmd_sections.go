package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/report"
)

type sectionsFlags struct {
	noteType string
	format   string
}

func newSectionsCmd(g *globalFlags) *cobra.Command {
	sf := &sectionsFlags{}
	cmd := &cobra.Command{
		Use:   "sections <note-file>",
		Short: "Show the sections found in a note without printing their text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSections(cmd, g, sf, args[0])
		},
	}
	f := cmd.Flags()
	f.StringVar(&sf.noteType, "note-type", "", "Note type label (guessed from the file name and text when empty)")
	f.StringVarP(&sf.format, "format", "f", "table", "Output format: table, markdown or json")
	return cmd
}

type sectionsOutput struct {
	NoteID   string                  `json:"note_id"`
	NoteType domain.NoteType         `json:"note_type"`
	Sections []report.SectionSummary `json:"sections"`
}

func runSections(cmd *cobra.Command, g *globalFlags, sf *sectionsFlags, path string) error {
	p, err := g.pipeline()
	if err != nil {
		return err
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	sn := p.Sectionize(domain.RawNote{ID: id, TypeHint: sf.noteType, Text: string(text)})
	summary := report.Summarize(sn.Sections)

	out := cmd.OutOrStdout()
	switch strings.ToLower(sf.format) {
	case "json":
		return report.WriteJSON(out, sectionsOutput{NoteID: id, NoteType: sn.Type, Sections: summary})
	case "markdown":
		fmt.Fprintln(out, report.SectionsTable(report.Markdown, id, sn.Type, summary))
	case "table":
		fmt.Fprintln(out, report.SectionsTable(report.ASCII, id, sn.Type, summary))
	default:
		return fmt.Errorf("unknown format %q", sf.format)
	}
	return nil
}
