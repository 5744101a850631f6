// Package extract holds the per-concept detectors that turn a sectioned note
// into evidence candidates. Every detector is a pure function of the note
// and the status cues it was built with.
package extract

import (
	"regexp"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

// Extractor scans one note for one concept.
type Extractor func(domain.SectionedNote) []domain.Candidate

type detector func(status.Cues, domain.SectionedNote) []domain.Candidate

// Run order is fixed so candidate order is stable for identical input.
var detectors = []detector{
	extractBMI,
	extractSmoking,
	extractComorbidities,
	extractReconstruction,
	extractLymphNodeMgmt,
	extractAge,
	extractPriorBreastSurgery,
	extractMastectomy,
	extractCancerTreatment,
	extractOutcomes,
}

// New binds every detector to the given cues.
func New(cues status.Cues) []Extractor {
	out := make([]Extractor, len(detectors))
	for i, d := range detectors {
		out[i] = func(n domain.SectionedNote) []domain.Candidate { return d(cues, n) }
	}
	return out
}

// All returns the registry bound to status.DefaultCues.
func All() []Extractor {
	return New(status.DefaultCues())
}

// Run applies each extractor to the note and concatenates the results.
func Run(extractors []Extractor, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, ex := range extractors {
		out = append(out, ex(n)...)
	}
	return out
}

func ExtractAll(n domain.SectionedNote) []domain.Candidate {
	return Run(All(), n)
}

// ---------------------------------------------------------------------------
// shared helpers
// ---------------------------------------------------------------------------

func mustCompileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(`(?i)` + p)
	}
	return out
}

// findFirst returns the location of the first match of the first pattern
// that matches anywhere in text.
func findFirst(res []*regexp.Regexp, text string) []int {
	for _, re := range res {
		if loc := re.FindStringSubmatchIndex(text); loc != nil {
			return loc
		}
	}
	return nil
}

func hasAny(res []*regexp.Regexp, text string) bool {
	for _, re := range res {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

var (
	familyCues  = []string{"paternal", "maternal", "grandmother", "grandfather", "mother", "father", "sister", "brother", "relation", "family history"}
	allergyCues = []string{"allergen", "reaction", "severity", "allergies", "rash", "anaphyl"}
)

// skipBlock reports whether a match sits inside a family-history or allergy
// block, judged by section name or by vocabulary in the evidence snippet.
func skipBlock(section, evidence string) bool {
	switch strings.ToUpper(section) {
	case "FAMILY HISTORY", "ALLERGIES":
		return true
	}
	ev := strings.ToLower(evidence)
	for _, c := range familyCues {
		if strings.Contains(ev, c) {
			return true
		}
	}
	for _, c := range allergyCues {
		if strings.Contains(ev, c) {
			return true
		}
	}
	return false
}

func isOperative(n domain.SectionedNote) bool {
	return n.Type == domain.NoteTypeOperative
}

// procedureStatus applies the note-type defaults for procedure mentions:
// operative notes assert the procedure unless it is denied or planned, and
// other notes report it as history.
func procedureStatus(n domain.SectionedNote, st domain.Status) domain.Status {
	if isOperative(n) {
		if st != domain.StatusDenied && st != domain.StatusPlanned {
			return domain.StatusPerformed
		}
		return st
	}
	if st == domain.StatusPerformed {
		return domain.StatusHistory
	}
	return st
}

// eventStatus maps performed onto history for conditions and treatments the
// patient carries rather than procedures done in this encounter.
func eventStatus(st domain.Status) domain.Status {
	if st == domain.StatusPerformed {
		return domain.StatusHistory
	}
	return st
}

func byNoteType(n domain.SectionedNote, operative, other float64) float64 {
	if isOperative(n) {
		return operative
	}
	return other
}

func newCandidate(n domain.SectionedNote, section, field string, v domain.FieldValue, st domain.Status, evidence string, confidence float64) domain.Candidate {
	return domain.Candidate{
		Field:      field,
		Value:      v,
		Status:     st,
		Evidence:   evidence,
		Section:    section,
		NoteType:   n.Type,
		NoteID:     n.ID,
		NoteDate:   n.Date,
		Confidence: domain.ClampConfidence(confidence),
	}
}
