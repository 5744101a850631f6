package sectionize

import (
	"regexp"
	"strings"
	"unicode"
)

// canonical maps normalized heading text onto the section key it files under.
var canonical = map[string]string{
	"REASON FOR VISIT": "REASON FOR VISIT",
	"CHIEF COMPLAINT":  "CHIEF COMPLAINT",
	"CC":               "CHIEF COMPLAINT",

	"HPI":                              "HPI",
	"HISTORY OF PRESENT ILLNESS":       "HPI",
	"HISTORY OF PRESENT ILLNESS (HPI)": "HPI",

	"DIAGNOSIS":          "DIAGNOSIS",
	"IMAGING":            "IMAGING",
	"DIAGNOSTIC IMAGING": "IMAGING",
	"PATHOLOGY":          "PATHOLOGY",
	"PATHOLOGY REVIEW":   "PATHOLOGY",

	"PAST MEDICAL HISTORY":  "PAST MEDICAL HISTORY",
	"PAST SURGICAL HISTORY": "PAST SURGICAL HISTORY",
	"FAMILY HISTORY":        "FAMILY HISTORY",

	"MEDICATIONS":                           "MEDICATIONS",
	"CURRENT MEDICATIONS":                   "MEDICATIONS",
	"OUTPATIENT MEDICATIONS PRIOR TO VISIT": "MEDICATIONS",

	"ALLERGIES":         "ALLERGIES",
	"SOCIAL HISTORY":    "SOCIAL HISTORY",
	"REVIEW OF SYSTEMS": "REVIEW OF SYSTEMS",

	"PHYSICAL EXAM": "PHYSICAL EXAM",
	"OBJECTIVE":     "PHYSICAL EXAM",

	"ASSESSMENT":          "ASSESSMENT/PLAN",
	"ASSESSMENT/PLAN":     "ASSESSMENT/PLAN",
	"ASSESSMENT AND PLAN": "ASSESSMENT/PLAN",
	"PLAN":                "ASSESSMENT/PLAN",
	"PLAN OF CARE":        "ASSESSMENT/PLAN",
	"ONCOLOGY CARE MODEL DOCUMENTATION REQUIREMENT": "ASSESSMENT/PLAN",

	"OP NOTE":          "OP NOTE",
	"OPERATIVE REPORT": "OP NOTE",

	"PREOPERATIVE DIAGNOSIS":                "PREOPERATIVE DIAGNOSIS",
	"POSTOPERATIVE DIAGNOSIS":               "POSTOPERATIVE DIAGNOSIS",
	"PROCEDURE":                             "PROCEDURE",
	"ATTENDING SURGEON":                     "ATTENDING SURGEON",
	"ASSISTANT":                             "ASSISTANT",
	"ANESTHESIA":                            "ANESTHESIA",
	"IV FLUIDS":                             "IV FLUIDS",
	"ESTIMATED BLOOD LOSS":                  "ESTIMATED BLOOD LOSS",
	"URINE OUTPUT":                          "URINE OUTPUT",
	"MICRO SURGICAL DETAILS":                "MICRO SURGICAL DETAILS",
	"COMPLICATIONS":                         "COMPLICATIONS",
	"CONDITION AT THE END OF THE PROCEDURE": "CONDITION AT THE END OF THE PROCEDURE",
	"DISPOSITION":                           "DISPOSITION",
	"INDICATIONS FOR OPERATION":             "INDICATIONS FOR OPERATION",
	"DETAILS OF OPERATION":                  "DETAILS OF OPERATION",
}

// strictAllCaps admits op-note style "HEADING:" lines that are not canonical.
var strictAllCaps = map[string]bool{
	"PREOP DIAGNOSES":                       true,
	"POSTOP DIAGNOSES":                      true,
	"PROCEDURES PERFORMED":                  true,
	"DETAILS OF THE PROCEDURE":              true,
	"MICROSURGICAL DETAILS":                 true,
	"DISPOSITION":                           true,
	"PREOPERATIVE DIAGNOSIS":                true,
	"POSTOPERATIVE DIAGNOSIS":               true,
	"PROCEDURE":                             true,
	"ATTENDING SURGEON":                     true,
	"ASSISTANT":                             true,
	"ANESTHESIA":                            true,
	"IV FLUIDS":                             true,
	"ESTIMATED BLOOD LOSS":                  true,
	"URINE OUTPUT":                          true,
	"MICRO SURGICAL DETAILS":                true,
	"COMPLICATIONS":                         true,
	"CONDITION AT THE END OF THE PROCEDURE": true,
	"INDICATIONS FOR OPERATION":             true,
	"DETAILS OF OPERATION":                  true,
}

// titleCaseAllowed headings are accepted without a colon in any casing.
var titleCaseAllowed = map[string]bool{
	"REASON FOR VISIT": true,
	"OP NOTE":          true,
}

var (
	tableRowRe     = regexp.MustCompile(`.+\|.+`)
	numberedItemRe = regexp.MustCompile(`^\s*\d+\.\s+\w+`)
	bulletRe       = regexp.MustCompile(`^\s*[•\-\*]\s+`)
	spaceRunRe     = regexp.MustCompile(`\s+`)

	imagingCuesRe = regexp.MustCompile(`(?i)\b(MAMMOGRAPHIC\s+FINDINGS|ULTRASOUND\s+FINDINGS|BI-?RADS|` +
		`COMPUTER-?AIDED\s+DETECTION|TARGETED\s+ULTRASOUND|` +
		`COMPARISON\s*:|CLINICAL\s+INDICATION\s*:|PER\s+TECHNOLOGIST)`)
	clinicExamCuesRe = regexp.MustCompile(`(?i)\b(BP|Pulse|Temp|Resp|Ht|Wt|BMI|` +
		`General\s+appearance|No\s+acute\s+distress|` +
		`Heart|Lungs?|Abdomen|Extremities|Breasts?|Axillary|Lymph\s+nodes?)\b`)
)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spaceRunRe.ReplaceAllString(s, " "))
}

func stripTrailingColon(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasSuffix(s, ":") {
		return strings.TrimSpace(s[:len(s)-1])
	}
	return s
}

func headingKey(line string) string {
	return strings.ToUpper(collapseSpaces(stripTrailingColon(line)))
}

// inlineLabel splits "Label: content" when Label is a canonical heading.
func inlineLabel(line string) (label, content string, ok bool) {
	left, right, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}
	key := strings.ToUpper(collapseSpaces(left))
	if _, known := canonical[key]; !known {
		return "", "", false
	}
	return key, strings.TrimSpace(right), true
}

// allUpper reports whether s has at least one cased letter and no lower-case ones.
func allUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

// IsHeading reports whether a single line opens a new section.
func IsHeading(line string) bool {
	raw := strings.TrimSpace(line)
	if raw == "" {
		return false
	}
	if tableRowRe.MatchString(raw) || numberedItemRe.MatchString(raw) || bulletRe.MatchString(raw) {
		return false
	}

	key := headingKey(raw)
	if _, ok := canonical[key]; ok {
		return true
	}
	if _, _, ok := inlineLabel(raw); ok {
		return true
	}
	if titleCaseAllowed[key] {
		return true
	}
	if strings.HasSuffix(raw, ":") && allUpper(raw) && strictAllCaps[key] {
		return true
	}
	return false
}

// Canonicalize maps a heading line onto its section key. Unknown headings
// keep their own text with the trailing colon and extra spaces removed.
func Canonicalize(line string) string {
	if label, _, ok := inlineLabel(line); ok {
		return canonical[label]
	}
	if canon, ok := canonical[headingKey(line)]; ok {
		return canon
	}
	return collapseSpaces(stripTrailingColon(line))
}

// Disambiguate corrects a canonical heading using the lines that follow it.
// A PHYSICAL EXAM heading inside a radiology block is filed as IMAGING.
func Disambiguate(canon string, lookahead []string) string {
	if canon != "PHYSICAL EXAM" {
		return canon
	}
	text := strings.Join(lookahead, "\n")
	if imagingCuesRe.MatchString(text) && !clinicExamCuesRe.MatchString(text) {
		return "IMAGING"
	}
	return canon
}
