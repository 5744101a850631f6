package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/textclean"
)

// ColumnMap names the CSV columns a note is rebuilt from. Only pseudonymous
// identifiers are mapped; any other column is ignored.
type ColumnMap struct {
	NoteID    string
	PatientID string
	NoteType  string
	NoteDate  string
	Line      string
	Text      string
}

func DefaultColumnMap() ColumnMap {
	return ColumnMap{
		NoteID:    "NOTE_ID",
		PatientID: "ENCRYPTED_PAT_ID",
		NoteType:  "NOTE_TYPE",
		NoteDate:  "NOTE_DATE_OF_SERVICE",
		Line:      "LINE",
		Text:      "NOTE_TEXT",
	}
}

type CSVOptions struct {
	Columns ColumnMap
	// Windows1252 decodes the input as cp1252, the encoding EHR exports
	// usually ship in. Set false for UTF-8 input.
	Windows1252 bool
}

func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Columns: DefaultColumnMap(), Windows1252: true}
}

type fragment struct {
	line int
	text string
}

type partialNote struct {
	note  domain.RawNote
	parts []fragment
}

// ReadCSV rebuilds whole notes from an export that stores one text line per
// row. Rows are grouped by note id and joined in LINE order; rows without a
// note id are dropped. Notes come back sorted by note id.
func ReadCSV(r io.Reader, opts CSVOptions) ([]domain.RawNote, error) {
	if opts.Windows1252 {
		r = charmap.Windows1252.NewDecoder().Reader(r)
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	col := func(name string, required bool) (int, error) {
		if name == "" {
			return -1, nil
		}
		i, ok := idx[name]
		if !ok {
			if required {
				return -1, fmt.Errorf("expected column %q not found", name)
			}
			return -1, nil
		}
		return i, nil
	}

	c := opts.Columns
	var errs []error
	noteCol, err := col(c.NoteID, true)
	errs = append(errs, err)
	textCol, err := col(c.Text, true)
	errs = append(errs, err)
	lineCol, err := col(c.Line, true)
	errs = append(errs, err)
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	patientCol, _ := col(c.PatientID, false)
	typeCol, _ := col(c.NoteType, false)
	dateCol, _ := col(c.NoteDate, false)

	get := func(rec []string, i int) string {
		if i < 0 || i >= len(rec) {
			return ""
		}
		return rec[i]
	}

	byID := make(map[string]*partialNote)
	row := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", row, err)
		}

		id := strings.TrimSpace(get(rec, noteCol))
		if id == "" {
			continue
		}
		line, err := strconv.Atoi(strings.TrimSpace(get(rec, lineCol)))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid %s: %w", row, c.Line, err)
		}

		pn, ok := byID[id]
		if !ok {
			pn = &partialNote{note: domain.RawNote{
				ID:         id,
				PatientRef: strings.TrimSpace(get(rec, patientCol)),
				TypeHint:   strings.TrimSpace(get(rec, typeCol)),
				Date:       strings.TrimSpace(get(rec, dateCol)),
			}}
			byID[id] = pn
		}
		pn.parts = append(pn.parts, fragment{line: line, text: get(rec, textCol)})
	}

	ids := make([]string, 0, len(byID))
	for id := range byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	notes := make([]domain.RawNote, 0, len(ids))
	for _, id := range ids {
		pn := byID[id]
		sort.SliceStable(pn.parts, func(i, j int) bool { return pn.parts[i].line < pn.parts[j].line })
		texts := make([]string, len(pn.parts))
		for i, p := range pn.parts {
			texts[i] = p.text
		}
		pn.note.Text = strings.TrimSpace(textclean.CleanArtifacts(strings.TrimSpace(strings.Join(texts, "\n"))))
		notes = append(notes, pn.note)
	}
	return notes, nil
}
