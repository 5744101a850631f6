package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/status"
)

const (
	minAge = 10
	maxAge = 100
)

var (
	agePatterns = mustCompileAll(
		`\b(\d{1,3})\s*-?\s*years?[\s-]*old\b`,
		`\b(\d{1,3})\s*-?\s*y\.?\s*o\.?\b`,
		`\b(\d{1,3})\s*yo\b`,
	)
	ageContextRe = regexp.MustCompile(`(?i)\b(female|male|woman|man|patient|pt)\b`)
)

// extractAge emits at most one Age_DOS candidate: the first plausible age
// mentioned next to a patient descriptor.
func extractAge(_ status.Cues, n domain.SectionedNote) []domain.Candidate {
	for _, sec := range n.Sections {
		for _, re := range agePatterns {
			for _, loc := range re.FindAllStringSubmatchIndex(sec.Body, -1) {
				age, err := strconv.Atoi(sec.Body[loc[2]:loc[3]])
				if err != nil || age < minAge || age > maxAge {
					continue
				}
				ctx := status.Window(sec.Body, loc[0], loc[1], 80)
				if !ageContextRe.MatchString(ctx) {
					continue
				}
				return []domain.Candidate{newCandidate(n, sec.Name, domain.FieldAge,
					domain.Number(float64(age)), domain.StatusMeasured, ctx, byNoteType(n, 0.9, 0.8))}
			}
		}
	}
	return nil
}

var bmiPatterns = mustCompileAll(
	`\bBody\s+Mass\s+Index\b\s*[:=]?\s*(\d{1,2}(?:\.\d+)?)\b`,
	`\bBMI\b\s*[:=]?\s*(\d{1,2}(?:\.\d+)?)\b`,
)

// extractBMI emits one measured BMI per section, rounded to one decimal.
func extractBMI(_ status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		loc := findFirst(bmiPatterns, sec.Body)
		if loc == nil {
			continue
		}
		v, err := strconv.ParseFloat(sec.Body[loc[2]:loc[3]], 64)
		if err != nil {
			continue
		}
		out = append(out, newCandidate(n, sec.Name, domain.FieldBMI,
			domain.Number(math.Round(v*10)/10), domain.StatusMeasured,
			status.Window(sec.Body, loc[0], loc[1], 120), 0.95))
	}
	return out
}

var (
	smokeLineRe   = regexp.MustCompile(`(?i)(smoking\s+status|tobacco\s+use|tobacco)\s*[:=]?\s*([^\n]+)`)
	deniesSmokeRe = regexp.MustCompile(`(?i)denies\s+(any\s+)?(tobacco|smoking)[^\n.]*`)

	// Checked in order against the lower-cased value after the label.
	smokingPhrases = []struct{ phrase, value string }{
		{"never smoker", "never"},
		{"nonsmoker", "never"},
		{"non smoker", "never"},
		{"non-smoker", "never"},
		{"no tobacco use", "never"},
		{"denies tobacco", "never"},
		{"former smoker", "former"},
		{"quit smoking", "former"},
		{"stopped smoking", "former"},
		{"ex-smoker", "former"},
		{"current every day smoker", "current"},
		{"current some day smoker", "current"},
		{"current smoker", "current"},
		{"smokes daily", "current"},
	}
)

// normalizeSmoking maps a smoking-status value onto never, former or current.
func normalizeSmoking(value string) (string, bool) {
	s := strings.ToLower(strings.TrimSpace(value))
	for _, p := range smokingPhrases {
		if strings.Contains(s, p.phrase) {
			return p.value, true
		}
	}
	switch {
	case strings.Contains(s, "never"):
		return "never", true
	case strings.Contains(s, "former"), strings.Contains(s, "quit"):
		return "former", true
	case strings.Contains(s, "current"), strings.Contains(s, "smokes"):
		return "current", true
	}
	return "", false
}

func extractSmoking(_ status.Cues, n domain.SectionedNote) []domain.Candidate {
	var out []domain.Candidate
	for _, sec := range n.Sections {
		if loc := smokeLineRe.FindStringSubmatchIndex(sec.Body); loc != nil {
			if v, ok := normalizeSmoking(sec.Body[loc[4]:loc[5]]); ok {
				out = append(out, newCandidate(n, sec.Name, domain.FieldSmokingStatus,
					domain.Text(v), domain.StatusHistory, status.Window(sec.Body, loc[0], loc[1], 120), 0.8))
				continue
			}
		}
		if loc := deniesSmokeRe.FindStringIndex(sec.Body); loc != nil {
			out = append(out, newCandidate(n, sec.Name, domain.FieldSmokingStatus,
				domain.Text("never"), domain.StatusHistory, status.Window(sec.Body, loc[0], loc[1], 120), 0.7))
		}
	}
	return out
}
