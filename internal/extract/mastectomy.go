package extract

import (
	"regexp"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

var (
	mastectomyRe = regexp.MustCompile(`(?i)\bmastectomy\b`)
	// breast-conserving procedures that share the word
	partialMastectomyRe = regexp.MustCompile(`(?i)\b(partial|segmental)\s+$`)

	mastectomyTypes = []labeledPattern{
		labeled(`\bnipple[- ]sparing\b`, "nipple-sparing"),
		labeled(`\bskin[- ]sparing\b`, "skin-sparing"),
		labeled(`\bsimple\s+mastectomy\b`, "simple"),
		labeled(`\btotal\s+mastectomy\b`, "simple"),
		labeled(`\bmodified\s+radical\b|\bMRM\b`, "modified radical"),
		labeled(`\bradical\s+mastectomy\b`, "radical"),
	}
)

func mastectomyType(ctx string) (string, bool) {
	for _, p := range mastectomyTypes {
		if p.re.MatchString(ctx) {
			return p.label, true
		}
	}
	return "", false
}

// extractMastectomy emits candidates for every mastectomy mention.
func extractMastectomy(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		for _, loc := range mastectomyRe.FindAllStringIndex(sec.Body, -1) {
			lead := sec.Body[max(0, loc[0]-16):loc[0]]
			if partialMastectomyRe.MatchString(lead) {
				continue
			}

			st := procedureStatus(n, status.Classify(sec.Body, loc[0], loc[1], cues))
			ctx := status.Window(sec.Body, loc[0], loc[1], 140)

			if lat, ok := laterality(ctx); ok {
				out = append(out, newCandidate(n, sec.Name, domain.FieldMastectomyLaterality,
					domain.Text(lat), st, ctx, 0.75))
			}
			if typ, ok := mastectomyType(ctx); ok {
				out = append(out, newCandidate(n, sec.Name, domain.FieldMastectomyType,
					domain.Text(typ), st, ctx, 0.75))
			}
			if st == domain.StatusPerformed || st == domain.StatusHistory {
				out = append(out, newCandidate(n, sec.Name, domain.FieldMastectomyPerformed,
					domain.Bool(true), st, ctx, 0.8))
			}
		}
	}
	return out
}

var (
	pbsLumpectomy = mustCompileAll(
		`\blumpectomy\b`,
		`\bpartial\s+mastectomy\b`,
		`\bsegmental\s+mastectomy\b`,
		`\bbreast[- ]conserving\s+surgery\b`,
		`\bwide\s+local\s+excision\b`,
	)
	pbsOther = mustCompileAll(
		`\bbreast\s+reduction\b`,
		`\breduction\s+mammaplasty\b`,
		`\bbenign\s+excision\b`,
		`\bexcisional\s+biopsy\b`,
		`\bmastopexy\b`,
	)
	pbsNegated = mustCompileAll(
		`no\s+prior\s+breast\s+surgery`,
		`no\s+history\s+of\s+breast\s+surgery`,
		`denies\s+prior\s+breast\s+surgery`,
	)
)

// extractPriorBreastSurgery reports earlier breast surgery. A section that
// explicitly denies prior breast surgery contributes nothing.
func extractPriorBreastSurgery(_ status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		if hasAny(pbsNegated, sec.Body) {
			continue
		}
		if loc := findFirst(pbsLumpectomy, sec.Body); loc != nil {
			out = append(out, newCandidate(n, sec.Name, domain.FieldPBSLumpectomy,
				domain.Bool(true), domain.StatusHistory, status.Window(sec.Body, loc[0], loc[1], 140), 0.75))
		}
		if loc := findFirst(pbsOther, sec.Body); loc != nil {
			out = append(out, newCandidate(n, sec.Name, domain.FieldPBSOther,
				domain.Bool(true), domain.StatusHistory, status.Window(sec.Body, loc[0], loc[1], 140), 0.70))
		}
	}
	return out
}
