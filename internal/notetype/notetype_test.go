package notetype_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/notetype"
)

func TestGuess_Hint(t *testing.T) {
	tests := []struct {
		hint string
		want domain.NoteType
	}{
		{"P001_Op Note_2021", domain.NoteTypeOperative},
		{"operative-2", domain.NoteTypeOperative},
		{"anesthesia eval", domain.NoteTypePreOperative},
		{"pre op visit", domain.NoteTypePreOperative},
		{"Surg Onc consult", domain.NoteTypeSurgOncConsult},
		{"Plastics", domain.NoteTypePlasticsConsult},
		{"Follow-up 3mo", domain.NoteTypeFollowUp},
		{"Breast Clinic", domain.NoteTypeClinic},
	}
	for _, tt := range tests {
		t.Run(tt.hint, func(t *testing.T) {
			assert.Equal(t, tt.want, notetype.Guess(tt.hint, "operative report preoperative diagnosis"))
		})
	}
}

func TestGuess_Content(t *testing.T) {
	tests := []struct {
		name string
		text string
		want domain.NoteType
	}{
		{"op report", "OPERATIVE REPORT\nPREOPERATIVE DIAGNOSIS: cancer", domain.NoteTypeOperative},
		{"procedure without periop", "Procedure was discussed.", domain.NoteTypeUnknown},
		{"asa class", "ASA 2, cleared for surgery", domain.NoteTypePreOperative},
		{"surg onc", "Seen in Surgical Oncology today", domain.NoteTypeSurgOncConsult},
		{"plastics", "We discussed reconstruction options.", domain.NoteTypePlasticsConsult},
		{"nothing", "Patient doing well.", domain.NoteTypeUnknown},
		{"empty", "", domain.NoteTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, notetype.Guess("", tt.text))
		})
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		label string
		want  domain.NoteType
	}{
		{"op_note", domain.NoteTypeOperative},
		{"Op Note", domain.NoteTypeOperative},
		{"Brief Op Notes", domain.NoteTypeOperative},
		{"preop_note", domain.NoteTypePreOperative},
		{"surg_onc_note", domain.NoteTypeSurgOncConsult},
		{"plastics_consult", domain.NoteTypePlasticsConsult},
		{"followup_note", domain.NoteTypeFollowUp},
		{"progress notes", domain.NoteTypeClinic},
		{"operative", domain.NoteTypeOperative},
		{"surgical-oncology-consult", domain.NoteTypeSurgOncConsult},
		{"Telephone Encounter", domain.NoteTypeUnknown},
		{"", domain.NoteTypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			assert.Equal(t, tt.want, notetype.Normalize(tt.label))
		})
	}
}

func TestResolve(t *testing.T) {
	labeled := domain.RawNote{ID: "n1", TypeHint: "Op Note", Text: "follow up"}
	assert.Equal(t, domain.NoteTypeOperative, notetype.Resolve(labeled))

	unlabeled := domain.RawNote{ID: "clinic-7", TypeHint: "Telephone Encounter"}
	assert.Equal(t, domain.NoteTypeClinic, notetype.Resolve(unlabeled))
}
