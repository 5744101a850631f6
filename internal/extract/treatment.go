package extract

import (
	"regexp"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

var (
	radiationPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bradiation\b`),
		regexp.MustCompile(`(?i)\bradiation\s+therapy\b`),
		regexp.MustCompile(`(?i)\bradiotherapy\b`),
		regexp.MustCompile(`(?i)\bxrt\b`),
		// acronyms only in capitals; lower-case "rt" is usually "right"
		regexp.MustCompile(`\bRT\b`),
		regexp.MustCompile(`\bPMRT\b`),
	}

	chemoPatterns = mustCompileAll(
		`\bchemotherapy\b`,
		`\bchemo\b`,
		`\bneoadjuvant\s+chemo\b`,
		`\badjuvant\s+chemo\b`,
		`\bchemo\s+therapy\b`,
		`\bsystemic\s+therapy\b`,
	)
	chemoAnchorRe = regexp.MustCompile(`(?i)\bchemo\b|\bchemotherapy\b`)

	endocrineTherapy = mustCompileAll(
		`\btamoxifen\b`,
		`\bletrozole\b`,
		`\banastrozole\b`,
		`\bexemestane\b`,
		`\bfulvestrant\b`,
		`\barimidex\b`,
		`\bfemara\b`,
		`\baromasin\b`,
	)
)

// treatmentFlag emits one boolean candidate per section for the first
// treatment mention that survives the block filter and the veto.
func treatmentFlag(cues status.Cues, n domain.SectionedNote, field string, patterns []*regexp.Regexp, veto func(evidence string) bool) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		loc := findFirst(patterns, sec.Body)
		if loc == nil {
			continue
		}
		evidence := status.Window(sec.Body, loc[0], loc[1], 160)
		if skipBlock(sec.Name, evidence) {
			continue
		}
		if veto != nil && veto(evidence) {
			continue
		}

		st := eventStatus(status.Classify(sec.Body, loc[0], loc[1], cues))
		out = append(out, newCandidate(n, sec.Name, field,
			domain.Bool(st != domain.StatusDenied), st, evidence, 0.75))
	}
	return out
}

// endocrineOnly reports evidence that names endocrine therapy without an
// explicit chemotherapy anchor.
func endocrineOnly(evidence string) bool {
	return hasAny(endocrineTherapy, evidence) && !chemoAnchorRe.MatchString(evidence)
}

func extractCancerTreatment(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	out := treatmentFlag(cues, n, domain.FieldRadiation, radiationPatterns, nil)
	return append(out, treatmentFlag(cues, n, domain.FieldChemo, chemoPatterns, endocrineOnly)...)
}
