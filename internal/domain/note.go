package domain

import (
	"time"

	"github.com/google/uuid"
)

type NoteType string

const (
	NoteTypeOperative       NoteType = "operative"
	NoteTypePreOperative    NoteType = "pre-operative"
	NoteTypeSurgOncConsult  NoteType = "surgical-oncology-consult"
	NoteTypePlasticsConsult NoteType = "plastics-consult"
	NoteTypeFollowUp        NoteType = "follow-up"
	NoteTypeClinic          NoteType = "clinic"
	NoteTypeUnknown         NoteType = "unknown"
)

func AllNoteTypes() []NoteType {
	return []NoteType{
		NoteTypeOperative,
		NoteTypePreOperative,
		NoteTypeSurgOncConsult,
		NoteTypePlasticsConsult,
		NoteTypeClinic,
		NoteTypeFollowUp,
		NoteTypeUnknown,
	}
}

func ValidNoteType(t string) bool {
	for _, nt := range AllNoteTypes() {
		if string(nt) == t {
			return true
		}
	}
	return false
}

// SectionPreamble collects text that precedes the first recognized heading.
const SectionPreamble = "__PREAMBLE__"

// RawNote is one reconstructed clinical note as handed over by ingestion.
// Date is kept as supplied by the source system.
type RawNote struct {
	ID         string `json:"note_id"`
	PatientRef string `json:"patient_id"`
	TypeHint   string `json:"note_type,omitempty"`
	Date       string `json:"note_date,omitempty"`
	Text       string `json:"text"`
}

type Section struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

// Sections is an ordered set of uniquely named sections. Order is the order
// in which each heading first appeared in the note.
type Sections []Section

func (s Sections) Get(name string) (string, bool) {
	for _, sec := range s {
		if sec.Name == name {
			return sec.Body, true
		}
	}
	return "", false
}

func (s Sections) Names() []string {
	names := make([]string, len(s))
	for i, sec := range s {
		names[i] = sec.Name
	}
	return names
}

func (s Sections) Map() map[string]string {
	m := make(map[string]string, len(s))
	for _, sec := range s {
		m[sec.Name] = sec.Body
	}
	return m
}

// SectionedNote is the read-only view extractors scan.
type SectionedNote struct {
	ID       string   `json:"note_id"`
	Type     NoteType `json:"note_type"`
	Date     string   `json:"note_date,omitempty"`
	Sections Sections `json:"sections"`
}

// Note is a persisted RawNote belonging to a patient.
type Note struct {
	ID         uuid.UUID `json:"id"`
	PatientID  uuid.UUID `json:"patient_id"`
	ExternalID string    `json:"note_id"`
	TypeHint   string    `json:"type_hint,omitempty"`
	NoteType   NoteType  `json:"note_type"`
	NoteDate   string    `json:"note_date,omitempty"`
	Text       string    `json:"-"`
	Sections   []string  `json:"sections"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
