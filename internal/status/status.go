// Package status judges the assertion state of a matched clinical mention
// from the text immediately around it.
package status

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// ContextWidth is the number of bytes inspected on each side of a match.
const ContextWidth = 120

var templatedNegationRe = regexp.MustCompile(`\(\s*none\s*\)|\b(none|no|denies|denied|negative)\b`)

// Cues holds the caller-supplied cue families. A Cues value is never
// mutated after construction and may be shared between goroutines.
type Cues struct {
	Negation  []*regexp.Regexp
	Planned   []*regexp.Regexp
	Performed []*regexp.Regexp
}

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(patterns))
	for i, p := range patterns {
		out[i] = regexp.MustCompile(p)
	}
	return out
}

var defaultCues = Cues{
	Negation: compileAll(
		`\bno\b`,
		`\bdenies?\b`,
		`\bnot\b`,
		`\bwithout\b`,
		`\bnegative for\b`,
		`\bnone\b`,
	),
	Planned: compileAll(
		`\bplanned\b`,
		`\bscheduled\b`,
		`\bto undergo\b`,
		`\bwill undergo\b`,
		`\bplanned for\b`,
		`\bconsidering\b`,
	),
	Performed: compileAll(
		`\bstatus\s+post\b`,
		`\bs/p\b`,
		`\bhistory of\b`,
		`\bhas\b`,
		`\bhad\b`,
		`\bwas done\b`,
		`\bwas performed\b`,
	),
}

func DefaultCues() Cues {
	return defaultCues
}

// NewCues compiles pattern strings into a Cues value.
func NewCues(negation, planned, performed []string) (Cues, error) {
	var c Cues
	var err error
	if c.Negation, err = compile(negation); err != nil {
		return Cues{}, err
	}
	if c.Planned, err = compile(planned); err != nil {
		return Cues{}, err
	}
	if c.Performed, err = compile(performed); err != nil {
		return Cues{}, err
	}
	return c, nil
}

func compile(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func anyMatch(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

// Classify returns the status of the mention at text[start:end]. The rule
// families are tried in order: templated negation, negation cues, planned
// cues, performed cues. With no cue the mention is history.
func Classify(text string, start, end int, cues Cues) domain.Status {
	ctx := Context(text, start, end, ContextWidth)

	switch {
	case templatedNegationRe.MatchString(ctx):
		return domain.StatusDenied
	case anyMatch(cues.Negation, ctx):
		return domain.StatusDenied
	case anyMatch(cues.Planned, ctx):
		return domain.StatusPlanned
	case anyMatch(cues.Performed, ctx):
		return domain.StatusPerformed
	}
	return domain.StatusHistory
}

// Context returns the lower-cased window of width bytes around the match,
// clipped to the sentence that contains it.
func Context(text string, start, end, width int) string {
	start, end = clampSpan(text, start, end)
	a, b := bounds(text, start, end, width)

	for i := start - 1; i >= a; i-- {
		if isBoundary(text, i) {
			a = i + 1
			break
		}
	}
	for i := end; i < b; i++ {
		if isBoundary(text, i) {
			b = i
			break
		}
	}
	return strings.ToLower(strings.TrimSpace(text[a:b]))
}

// isBoundary reports whether text[i] ends a sentence: a newline, or one of
// .;!? followed by whitespace or the end of text.
func isBoundary(text string, i int) bool {
	switch text[i] {
	case '\n':
		return true
	case '.', ';', '!', '?':
		if i+1 >= len(text) {
			return true
		}
		switch text[i+1] {
		case ' ', '\t', '\n', '\r':
			return true
		}
	}
	return false
}

// Window returns the evidence snippet for a match: width bytes either side,
// newlines flattened to spaces.
func Window(text string, start, end, width int) string {
	start, end = clampSpan(text, start, end)
	a, b := bounds(text, start, end, width)
	return strings.TrimSpace(strings.ReplaceAll(text[a:b], "\n", " "))
}

func clampSpan(text string, start, end int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > len(text) {
		end = len(text)
	}
	if start > end {
		start = end
	}
	return start, end
}

// bounds widens [start,end) by width on both sides, snapping to rune starts.
func bounds(text string, start, end, width int) (int, int) {
	a := start - width
	if a < 0 {
		a = 0
	}
	for a > 0 && a < len(text) && !utf8.RuneStart(text[a]) {
		a++
	}
	b := end + width
	if b > len(text) {
		b = len(text)
	}
	for b < len(text) && !utf8.RuneStart(text[b]) {
		b++
	}
	return a, b
}
