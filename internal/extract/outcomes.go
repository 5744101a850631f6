package extract

import (
	"regexp"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

var (
	reoperationPatterns = mustCompileAll(
		`\breturn(ed)?\s+to\s+(the\s+)?or\b`,
		`\bback\s+to\s+(the\s+)?or\b`,
		`\btake\s*back\b`,
		`\bre-?operation\b`,
		`\bre-?exploration\b`,
		`\bwashout\b`,
		`\bincision\s+and\s+drainage\b`,
		`\bi\s*&\s*d\b`,
		`\bdebridement\b`,
	)
	rehospitalizationPatterns = mustCompileAll(
		`\breadmit(ted|sion)?\b`,
		`\bre-?admit(ted|sion)?\b`,
		`\brehospitali[sz]ed\b`,
		`\breturn(ed)?\s+to\s+hospital\b`,
	)
	failurePatterns = mustCompileAll(
		`\bflap\s+(loss|failed|failure|necrosis)\b`,
		`\b(total|complete)\s+flap\s+necrosis\b`,
		`\bimplant\s+(loss|removed)\b`,
		`\bexpander\s+(loss|removed)\b`,
		`\bprosthesis\s+removed\b`,
		`\bexplant(ed)?\b`,
	)
	outcomePlanWords = mustCompileAll(
		`\bplanned\b`,
		`\bscheduled\b`,
		`\bwill\b`,
		`\bto\s+be\b`,
		`\bconsider(ing|ed)?\b`,
	)
)

func outcomeConfidence(t domain.NoteType) float64 {
	switch t {
	case domain.NoteTypeOperative:
		return 0.9
	case domain.NoteTypeClinic, domain.NoteTypePreOperative:
		return 0.75
	}
	return 0.6
}

// outcomeFlag emits one early-outcome candidate per section. Outside
// operative notes any plan language near the hit downgrades it to planned.
func outcomeFlag(cues status.Cues, n domain.SectionedNote, field string, patterns []*regexp.Regexp) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		loc := findFirst(patterns, sec.Body)
		if loc == nil {
			continue
		}
		evidence := status.Window(sec.Body, loc[0], loc[1], 180)
		if skipBlock(sec.Name, evidence) {
			continue
		}

		st := status.Classify(sec.Body, loc[0], loc[1], cues)
		value := st != domain.StatusDenied
		if !isOperative(n) && st != domain.StatusDenied && hasAny(outcomePlanWords, evidence) {
			st = domain.StatusPlanned
		}
		out = append(out, newCandidate(n, sec.Name, field,
			domain.Bool(value), st, evidence, outcomeConfidence(n.Type)))
	}
	return out
}

func extractOutcomes(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	out := outcomeFlag(cues, n, domain.FieldReoperation, reoperationPatterns)
	out = append(out, outcomeFlag(cues, n, domain.FieldRehospitalization, rehospitalizationPatterns)...)
	return append(out, outcomeFlag(cues, n, domain.FieldFailure, failurePatterns)...)
}
