// Package report flattens resolved fields into patient rows and renders
// them as CSV, JSON or terminal tables.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// PatientIDColumn heads the first column of every flattened row.
const PatientIDColumn = "patient_id"

// evidenceWidth caps snippet columns in terminal tables.
const evidenceWidth = 60

// Column is one field of a flattened patient row.
type Column struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

// Row is one patient with a value (possibly empty) for every tracked field.
type Row struct {
	PatientID string   `json:"patient_id"`
	Columns   []Column `json:"columns"`
}

// Flatten orders resolved values by tracked. Unresolved fields are empty.
func Flatten(patientID string, resolved map[string]domain.ResolvedField, tracked []string) Row {
	row := Row{PatientID: patientID, Columns: make([]Column, len(tracked))}
	for i, f := range tracked {
		row.Columns[i] = Column{Field: f}
		if rf, ok := resolved[f]; ok {
			row.Columns[i].Value = rf.Value.String()
		}
	}
	return row
}

// FromResolutions indexes stored resolutions by field.
func FromResolutions(rs []domain.Resolution) map[string]domain.ResolvedField {
	out := make(map[string]domain.ResolvedField, len(rs))
	for _, r := range rs {
		out[r.Field] = r.ResolvedField
	}
	return out
}

// Header is the CSV header for rows built from tracked.
func Header(tracked []string) []string {
	return append([]string{PatientIDColumn}, tracked...)
}

// Record is the row as CSV cells, aligned with Header.
func (r Row) Record() []string {
	rec := make([]string, 0, len(r.Columns)+1)
	rec = append(rec, r.PatientID)
	for _, c := range r.Columns {
		rec = append(rec, c.Value)
	}
	return rec
}

// Map is the row keyed by column name.
func (r Row) Map() map[string]string {
	m := make(map[string]string, len(r.Columns)+1)
	m[PatientIDColumn] = r.PatientID
	for _, c := range r.Columns {
		m[c.Field] = c.Value
	}
	return m
}

func WriteCSV(w io.Writer, tracked []string, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header(tracked)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range rows {
		if err := cw.Write(r.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", r.PatientID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Mode selects the terminal table flavor.
type Mode int

const (
	ASCII Mode = iota
	Markdown
)

func newTable(m Mode) table.Writer {
	t := table.NewWriter()
	if m == ASCII {
		t.SetStyle(table.StyleLight)
	}
	return t
}

func render(t table.Writer, m Mode) string {
	if m == Markdown {
		return t.RenderMarkdown()
	}
	return t.Render()
}

// ResolvedTable renders one patient's resolved fields with their provenance.
func ResolvedTable(m Mode, patientID string, fields []domain.ResolvedField) string {
	t := newTable(m)
	t.SetTitle("Patient " + patientID)
	t.AppendHeader(table.Row{"Field", "Value", "Status", "Note type", "Section", "Note", "Evidence"})
	for _, f := range fields {
		t.AppendRow(table.Row{f.Field, f.Value.String(), f.Status, f.NoteType, f.Section, f.NoteID, f.Evidence})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 7, WidthMax: evidenceWidth}})
	t.AppendFooter(table.Row{"", fmt.Sprintf("%d fields", len(fields))})
	return render(t, m)
}

// EvidenceTable renders the flat candidate list for QA review.
func EvidenceTable(m Mode, patientID string, cands []domain.Candidate) string {
	t := newTable(m)
	t.SetTitle("Evidence " + patientID)
	t.AppendHeader(table.Row{"Field", "Value", "Status", "Conf", "Note type", "Section", "Note", "Evidence"})
	for _, c := range cands {
		t.AppendRow(table.Row{c.Field, c.Value.String(), c.Status, fmt.Sprintf("%.2f", c.Confidence),
			c.NoteType, c.Section, c.NoteID, c.Evidence})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 4, Align: text.AlignRight},
		{Number: 8, WidthMax: evidenceWidth},
	})
	return render(t, m)
}

// SectionSummary is a PHI-free description of one section.
type SectionSummary struct {
	Name  string `json:"name"`
	Lines int    `json:"lines"`
	Chars int    `json:"chars"`
}

// SectionsTable lists section names and sizes without their bodies.
func SectionsTable(m Mode, noteID string, noteType domain.NoteType, secs []SectionSummary) string {
	t := newTable(m)
	t.SetTitle(fmt.Sprintf("Note %s (%s)", noteID, noteType))
	t.AppendHeader(table.Row{"#", "Section", "Lines", "Chars"})
	for i, s := range secs {
		t.AppendRow(table.Row{i + 1, s.Name, s.Lines, s.Chars})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})
	return render(t, m)
}

// Summarize reports each section's name and size.
func Summarize(secs domain.Sections) []SectionSummary {
	out := make([]SectionSummary, len(secs))
	for i, s := range secs {
		lines := 0
		if s.Body != "" {
			lines = 1
			for _, r := range s.Body {
				if r == '\n' {
					lines++
				}
			}
		}
		out[i] = SectionSummary{Name: s.Name, Lines: lines, Chars: len([]rune(s.Body))}
	}
	return out
}
