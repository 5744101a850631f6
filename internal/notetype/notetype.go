// Package notetype assigns a coarse clinical note type from an identifier
// hint and the note content.
package notetype

import (
	"regexp"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

type hintRule struct {
	needles []string
	t       domain.NoteType
}

// Checked in order; the first rule with a matching substring wins.
var hintRules = []hintRule{
	{[]string{"op note", "operative"}, domain.NoteTypeOperative},
	{[]string{"pre op", "preop", "anesthesia"}, domain.NoteTypePreOperative},
	{[]string{"surg onc", "surgical oncology"}, domain.NoteTypeSurgOncConsult},
	{[]string{"plastic"}, domain.NoteTypePlasticsConsult},
	{[]string{"follow"}, domain.NoteTypeFollowUp},
	{[]string{"clinic"}, domain.NoteTypeClinic},
}

var (
	opReportRe   = regexp.MustCompile(`\boperative\s+report\b|\bprocedure\b`)
	periopRe     = regexp.MustCompile(`\bpostoperative\b|\bpreoperative\b`)
	preopRe      = regexp.MustCompile(`\banesthesia\b|\bpre[- ]op\b|\basa\b`)
	surgOncRe    = regexp.MustCompile(`\bsurgical\s+oncology\b|\bbreast\s+surgery\b`)
	plasticsRe   = regexp.MustCompile(`\bplastic\s+surgery\b|\breconstruction\s+options\b`)
	separatorsRe = regexp.MustCompile(`[\s_]+`)
)

func fromHint(hint string) (domain.NoteType, bool) {
	s := strings.ToLower(hint)
	for _, r := range hintRules {
		for _, n := range r.needles {
			if strings.Contains(s, n) {
				return r.t, true
			}
		}
	}
	return "", false
}

// Guess classifies a note. The identifier hint is consulted first, then the
// note body; anything unmatched is unknown.
func Guess(idHint, text string) domain.NoteType {
	if t, ok := fromHint(idHint); ok {
		return t
	}

	body := strings.ToLower(text)
	switch {
	case opReportRe.MatchString(body) && periopRe.MatchString(body):
		return domain.NoteTypeOperative
	case preopRe.MatchString(body):
		return domain.NoteTypePreOperative
	case surgOncRe.MatchString(body):
		return domain.NoteTypeSurgOncConsult
	case plasticsRe.MatchString(body):
		return domain.NoteTypePlasticsConsult
	}
	return domain.NoteTypeUnknown
}

var legacyLabels = map[string]domain.NoteType{
	"op note":          domain.NoteTypeOperative,
	"op notes":         domain.NoteTypeOperative,
	"brief op note":    domain.NoteTypeOperative,
	"brief op notes":   domain.NoteTypeOperative,
	"preop note":       domain.NoteTypePreOperative,
	"surg onc note":    domain.NoteTypeSurgOncConsult,
	"plastics consult": domain.NoteTypePlasticsConsult,
	"followup note":    domain.NoteTypeFollowUp,
	"clinic note":      domain.NoteTypeClinic,
	"progress note":    domain.NoteTypeClinic,
	"progress notes":   domain.NoteTypeClinic,
	"h&p":              domain.NoteTypePreOperative,
}

// Normalize maps a free-form EHR note-type label onto the closed enum.
// It returns unknown when the label carries no recognizable cue.
func Normalize(label string) domain.NoteType {
	s := strings.ToLower(strings.TrimSpace(separatorsRe.ReplaceAllString(label, " ")))
	if s == "" {
		return domain.NoteTypeUnknown
	}
	if domain.ValidNoteType(s) {
		return domain.NoteType(s)
	}
	if t, ok := legacyLabels[s]; ok {
		return t
	}
	if t, ok := fromHint(s); ok {
		return t
	}
	return domain.NoteTypeUnknown
}

// Resolve picks the note type for a raw note: an explicit label wins when it
// normalizes to a known type, otherwise the note is guessed from its id and
// body.
func Resolve(n domain.RawNote) domain.NoteType {
	if n.TypeHint != "" {
		if t := Normalize(n.TypeHint); t != domain.NoteTypeUnknown {
			return t
		}
	}
	return Guess(n.ID, n.Text)
}
