// Package sectionize splits free-text clinical notes into named sections.
package sectionize

import (
	"slices"
	"strings"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

const DefaultLookaheadLines = 12

// DuplicatePolicy decides what happens when a section key appears twice.
type DuplicatePolicy int

const (
	// Concatenate appends later bodies to the first occurrence.
	Concatenate DuplicatePolicy = iota
	// LastWins replaces earlier bodies with the latest occurrence.
	LastWins
)

func (p DuplicatePolicy) String() string {
	if p == LastWins {
		return "last-wins"
	}
	return "concatenate"
}

// ParseDuplicatePolicy accepts "concatenate" or "last-wins". Anything else
// falls back to Concatenate.
func ParseDuplicatePolicy(s string) DuplicatePolicy {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "last-wins", "last_wins", "lastwins":
		return LastWins
	}
	return Concatenate
}

type Options struct {
	LookaheadLines int
	Duplicates     DuplicatePolicy
}

func DefaultOptions() Options {
	return Options{LookaheadLines: DefaultLookaheadLines, Duplicates: Concatenate}
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimSuffix(ln, "\r")
	}
	return lines
}

// lookahead collects up to n non-blank lines after index i, stopping at the
// next heading. Inline content on the heading line itself counts first.
// When that content is a heading of its own the lines below belong to it,
// so there is nothing to look ahead at.
func lookahead(lines []string, i, n int, inline string) []string {
	var out []string
	if inline != "" {
		if IsHeading(inline) {
			return nil
		}
		out = append(out, inline)
	}
	for j := i + 1; j < len(lines) && len(out) < n; j++ {
		if IsHeading(lines[j]) {
			break
		}
		if strings.TrimSpace(lines[j]) != "" {
			out = append(out, lines[j])
		}
	}
	return out
}

// Sectionize splits text into sections keyed by canonical heading. Text
// before the first heading is kept under domain.SectionPreamble and sections
// whose body is blank are dropped. It never fails.
//
// Inline content that is itself a heading ("Assessment: Plan: return in 2
// weeks") opens that section in turn. Under LastWins a repeated heading
// replaces the earlier body only once it contributes text of its own.
func Sectionize(text string, opts Options) domain.Sections {
	if opts.LookaheadLines <= 0 {
		opts.LookaheadLines = DefaultLookaheadLines
	}

	lines := splitLines(text)
	order := []string{domain.SectionPreamble}
	bodies := map[string][]string{domain.SectionPreamble: nil}
	pendingReset := map[string]bool{}
	current := domain.SectionPreamble

	add := func(line string) {
		if pendingReset[current] {
			bodies[current] = nil
			delete(pendingReset, current)
		}
		bodies[current] = append(bodies[current], line)
	}

	for i, ln := range lines {
		if !IsHeading(ln) {
			if strings.TrimSpace(ln) != "" {
				add(ln)
			}
			continue
		}

		for heading := ln; heading != ""; {
			_, content, _ := inlineLabel(strings.TrimSpace(heading))
			canon := Disambiguate(Canonicalize(heading), lookahead(lines, i, opts.LookaheadLines, content))
			current = canon
			if _, seen := bodies[canon]; !seen {
				order = append(order, canon)
				bodies[canon] = nil
			} else if opts.Duplicates == LastWins {
				pendingReset[canon] = true
			}

			heading = ""
			switch {
			case content == "":
			case IsHeading(content):
				heading = content
			default:
				add(content)
			}
		}
	}

	if opts.Duplicates == Concatenate {
		order = settleExam(order, bodies, opts.LookaheadLines)
	}

	out := make(domain.Sections, 0, len(order))
	for _, name := range order {
		body := strings.TrimSpace(strings.Join(bodies[name], "\n"))
		if body == "" {
			continue
		}
		out = append(out, domain.Section{Name: name, Body: body})
	}
	return out
}

// settleExam re-reads a PHYSICAL EXAM body merged from several headings the
// way a single heading over the same text would be read, and files it under
// IMAGING when the merged text calls for it.
func settleExam(order []string, bodies map[string][]string, n int) []string {
	const exam, imaging = "PHYSICAL EXAM", "IMAGING"
	lines := bodies[exam]
	if len(lines) > n {
		lines = lines[:n]
	}
	if Disambiguate(exam, lines) != imaging {
		return order
	}

	if _, ok := bodies[imaging]; ok {
		bodies[imaging] = append(bodies[imaging], bodies[exam]...)
		order = slices.DeleteFunc(order, func(name string) bool { return name == exam })
	} else {
		order[slices.Index(order, exam)] = imaging
		bodies[imaging] = bodies[exam]
	}
	delete(bodies, exam)
	return order
}

// Note builds the sectioned view of a raw note.
func Note(raw domain.RawNote, noteType domain.NoteType, opts Options) domain.SectionedNote {
	return domain.SectionedNote{
		ID:       raw.ID,
		Type:     noteType,
		Date:     raw.Date,
		Sections: Sectionize(raw.Text, opts),
	}
}

// Render writes sections back to plain text: the preamble first, then one
// "NAME:" line per section followed by its body.
func Render(sections domain.Sections) string {
	var b strings.Builder
	if pre, ok := sections.Get(domain.SectionPreamble); ok {
		b.WriteString(pre)
		b.WriteString("\n\n")
	}
	for _, sec := range sections {
		if sec.Name == domain.SectionPreamble {
			continue
		}
		b.WriteString(sec.Name)
		b.WriteString(":\n")
		b.WriteString(sec.Body)
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}
