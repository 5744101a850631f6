package extract

import (
	"regexp"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

type labeledPattern struct {
	re    *regexp.Regexp
	label string
}

func labeled(pattern, label string) labeledPattern {
	return labeledPattern{re: regexp.MustCompile(`(?i)` + pattern), label: label}
}

const ReconTissueExpander = "tissue expander/implant"

var reconPatterns = []labeledPattern{
	labeled(`\bdiep\s+flap\b`, "diep flap"),
	labeled(`\btram\s+flap\b`, "tram flap"),
	labeled(`\bsiea\s+flap\b`, "siea flap"),
	labeled(`\blatissimus\s+dorsi\s+flap\b`, "latissimus dorsi flap"),
	labeled(`\bdirect\s*[- ]\s*to\s*[- ]\s*implant\b`, "direct-to-implant"),
	labeled(`\btissue\s+expanders?\b`, ReconTissueExpander),
}

var (
	leftRe      = regexp.MustCompile(`(?i)\bleft\b`)
	rightRe     = regexp.MustCompile(`(?i)\bright\b`)
	bilateralRe = regexp.MustCompile(`(?i)\bbilateral\b`)
	immediateRe = regexp.MustCompile(`(?i)\bimmediate\b`)
)

// laterality reads side from whole words only, so "bright" or "leftover"
// say nothing about the breast involved.
func laterality(text string) (string, bool) {
	left, right := leftRe.MatchString(text), rightRe.MatchString(text)
	switch {
	case left && right, bilateralRe.MatchString(text):
		return "bilateral", true
	case left:
		return "left", true
	case right:
		return "right", true
	}
	return "", false
}

// extractReconstruction reads the first reconstruction technique named in
// each section and decomposes it into type, laterality, timing and a
// performed or planned flag. Recon_Performed and Recon_Planned are never
// both emitted for the same mention.
func extractReconstruction(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		for _, p := range reconPatterns {
			loc := p.re.FindStringIndex(sec.Body)
			if loc == nil {
				continue
			}

			st := procedureStatus(n, status.Classify(sec.Body, loc[0], loc[1], cues))
			evidence := status.Window(sec.Body, loc[0], loc[1], 140)

			typeStatus := st
			if st == domain.StatusDenied {
				typeStatus = domain.StatusUnknown
			}
			out = append(out, newCandidate(n, sec.Name, domain.FieldReconType,
				domain.Text(p.label), typeStatus, evidence, byNoteType(n, 0.8, 0.6)))

			if lat, ok := laterality(sec.Body); ok {
				out = append(out, newCandidate(n, sec.Name, domain.FieldReconLaterality,
					domain.Text(lat), st, evidence, 0.7))
			}

			if immediateRe.MatchString(status.Window(sec.Body, loc[0], loc[1], 120)) {
				out = append(out, newCandidate(n, sec.Name, domain.FieldReconTiming,
					domain.Text("immediate"), st, evidence, 0.65))
			}

			if st == domain.StatusPerformed || st == domain.StatusHistory {
				out = append(out, newCandidate(n, sec.Name, domain.FieldReconPerformed,
					domain.Bool(true), st, evidence, byNoteType(n, 0.8, 0.5)))
			} else {
				out = append(out, newCandidate(n, sec.Name, domain.FieldReconPlanned,
					domain.Bool(st != domain.StatusDenied), st, evidence, byNoteType(n, 0.7, 0.55)))
			}
			break
		}
	}
	return out
}

var lymphNodePatterns = []labeledPattern{
	labeled(`\bsentinel\s+lymph\s+node\b|\bsln\b|\bslnb\b`, "SLNB"),
	labeled(`\baxillary\s+lymph\s+node\s+dissection\b|\balnd\b`, "ALND"),
	labeled(`\binternal\s+mammary\s+lymph\s+node\b`, "InternalMammaryLN"),
}

// extractLymphNodeMgmt reads the first nodal procedure named in each
// section. Outside operative notes performed language usually belongs to a
// consult describing the plan, so it is reported as planned.
func extractLymphNodeMgmt(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		for _, p := range lymphNodePatterns {
			loc := p.re.FindStringIndex(sec.Body)
			if loc == nil {
				continue
			}

			st := status.Classify(sec.Body, loc[0], loc[1], cues)
			switch {
			case isOperative(n) && st != domain.StatusDenied && st != domain.StatusPlanned:
				st = domain.StatusPerformed
			case !isOperative(n) && st == domain.StatusPerformed:
				st = domain.StatusPlanned
			}
			evidence := status.Window(sec.Body, loc[0], loc[1], 140)

			out = append(out, newCandidate(n, sec.Name, domain.FieldLymphNodeMgmt,
				domain.Text(p.label), st, evidence, byNoteType(n, 0.8, 0.55)))
			if st == domain.StatusPerformed || st == domain.StatusHistory {
				out = append(out, newCandidate(n, sec.Name, domain.FieldLymphNodePerformed,
					domain.Bool(true), st, evidence, byNoteType(n, 0.8, 0.5)))
			}
			break
		}
	}
	return out
}
