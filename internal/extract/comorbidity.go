package extract

import (
	"regexp"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

type comorbidity struct {
	field    string
	positive []*regexp.Regexp
	exclude  []*regexp.Regexp
	// sections the concept is never read from
	skipSections []string
}

var vteProphylaxis = mustCompileAll(
	`\bprophylaxis\b`,
	`\bppx\b`,
	`\bdvt\s+ppx\b`,
	`\bscds?\b`,
	`\bsequential\s+compression\b`,
	`\bheparin\b.*\bprophylaxis\b`,
	`\bsubcutaneous\s+heparin\b`,
)

var comorbidities = []comorbidity{
	{
		field: domain.FieldDiabetes,
		positive: mustCompileAll(
			`\bdiabetes\b`,
			`\bdm\b`,
			`\btype\s*1\s+diabetes\b`,
			`\btype\s*2\s+diabetes\b`,
		),
		exclude:      mustCompileAll(`\bgestational\b`, `\bpre[- ]?diabetes\b`),
		skipSections: []string{"FAMILY HISTORY"},
	},
	{
		field: domain.FieldHypertension,
		positive: mustCompileAll(
			`\bhypertension\b`,
			`\bhtn\b`,
			`\bhigh blood pressure\b`,
		),
		exclude:      mustCompileAll(`\bno history of hypertension\b`),
		skipSections: []string{"FAMILY HISTORY"},
	},
	{
		field: domain.FieldCardiacDisease,
		positive: mustCompileAll(
			`\bcoronary artery disease\b`,
			`\bcad\b`,
			`\bmyocardial infarction\b`,
			`\bmi\b`,
			`\bcongestive heart failure\b`,
			`\bchf\b`,
			`\bischemic heart disease\b`,
		),
		exclude:      mustCompileAll(`\brisk of\b`, `\brisk factors?\b`, `\bcardiac clearance\b`),
		skipSections: []string{"FAMILY HISTORY"},
	},
	{
		field: domain.FieldVTE,
		positive: mustCompileAll(
			`\bdeep venous thrombosis\b`,
			`\bdeep vein thrombosis\b`,
			`\bdvt\b`,
			`\bpulmonary embol(ism)?\b`,
			`\bpe\b`,
			`\bvenous thromboembol(ism)?\b`,
		),
		exclude:      vteProphylaxis,
		skipSections: []string{"FAMILY HISTORY"},
	},
	{
		field: domain.FieldSteroidUse,
		positive: mustCompileAll(
			`\bchronic steroids?\b`,
			`\bprednisone\b`,
			`\bprednisolone\b`,
			`\bdexamethasone\b`,
			`\bmedrol\b`,
		),
		exclude:      mustCompileAll(`\ballergy\b`, `\ballergies\b`, `\ballergic\b`),
		skipSections: []string{"FAMILY HISTORY", "ALLERGIES"},
	},
}

func (c comorbidity) skips(section string) bool {
	for _, s := range c.skipSections {
		if s == section {
			return true
		}
	}
	return false
}

// extract emits at most one candidate per section: true unless the mention
// is denied.
func (c comorbidity) extract(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		if c.skips(sec.Name) {
			continue
		}
		loc := findFirst(c.positive, sec.Body)
		if loc == nil {
			continue
		}
		evidence := status.Window(sec.Body, loc[0], loc[1], 120)
		if skipBlock(sec.Name, evidence) || hasAny(c.exclude, evidence) {
			continue
		}

		st := eventStatus(status.Classify(sec.Body, loc[0], loc[1], cues))
		out = append(out, newCandidate(n, sec.Name, c.field,
			domain.Bool(st != domain.StatusDenied), st, evidence, 0.75))
	}
	return out
}

var cancerOtherPatterns = mustCompileAll(
	`\bhistory of (.+?) cancer\b`,
	`\bprior (.+?) malignancy\b`,
	`\bmelanoma\b`,
	`\blymphoma\b`,
	`\bleukemia\b`,
)

// indexCancer reports whether a captured organ phrase names the breast
// cancer that put the patient in the cohort.
func indexCancer(body string, loc []int) bool {
	if len(loc) < 4 || loc[2] < 0 {
		return false
	}
	return strings.Contains(strings.ToLower(body[loc[2]:loc[3]]), "breast")
}

func extractCancerHistoryOther(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		var loc []int
	patterns:
		for _, re := range cancerOtherPatterns {
			for _, m := range re.FindAllStringSubmatchIndex(sec.Body, -1) {
				if !indexCancer(sec.Body, m) {
					loc = m
					break patterns
				}
			}
		}
		if loc == nil {
			continue
		}
		evidence := status.Window(sec.Body, loc[0], loc[1], 140)
		if skipBlock(sec.Name, evidence) {
			continue
		}

		st := eventStatus(status.Classify(sec.Body, loc[0], loc[1], cues))
		out = append(out, newCandidate(n, sec.Name, domain.FieldCancerHistoryOther,
			domain.Bool(st != domain.StatusDenied), st, evidence, 0.7))
	}
	return out
}

func extractComorbidities(cues status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, c := range comorbidities {
		out = append(out, c.extract(cues, n)...)
	}
	return append(out, extractCancerHistoryOther(cues, n)...)
}
