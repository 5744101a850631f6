// Package aggregate resolves a patient's evidence candidates into one answer
// per tracked field using ordered precedence lists.
package aggregate

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// Unranked is the rank of any value missing from its precedence list. It
// sorts after every listed value.
const Unranked = 10000

// Rank returns the position of value in order, or Unranked.
func Rank[T comparable](value T, order []T) int {
	if i := slices.Index(order, value); i >= 0 {
		return i
	}
	return Unranked
}

func rankTable[T comparable](order []T) map[T]int {
	m := make(map[T]int, len(order))
	for i, v := range order {
		if _, dup := m[v]; !dup {
			m[v] = i
		}
	}
	return m
}

func lookup[T comparable](table map[T]int, v T) int {
	if r, ok := table[v]; ok {
		return r
	}
	return Unranked
}

// FilterPlanned drops planned candidates. When every candidate is planned
// the input is returned unchanged so the field still gets an answer.
func FilterPlanned(cands []domain.Candidate) []domain.Candidate {
	kept := make([]domain.Candidate, 0, len(cands))
	for _, c := range cands {
		if c.Status != domain.StatusPlanned {
			kept = append(kept, c)
		}
	}
	if len(kept) == 0 {
		return cands
	}
	return kept
}

// Engine is immutable after NewEngine and safe for concurrent use.
type Engine struct {
	cfg           Config
	statusRank    map[domain.Status]int
	noteTypeRank  map[domain.NoteType]int
	sectionRank   map[string]int
	tracked       map[string]bool
	performedOnly map[string]bool
}

func NewEngine(cfg Config) *Engine {
	e := &Engine{
		cfg:           cfg,
		statusRank:    rankTable(cfg.Precedence.Status),
		noteTypeRank:  rankTable(cfg.Precedence.NoteType),
		sectionRank:   rankTable(cfg.Precedence.Section),
		tracked:       make(map[string]bool, len(cfg.TrackedFields)),
		performedOnly: make(map[string]bool, len(cfg.PerformedOnly)),
	}
	for _, f := range cfg.TrackedFields {
		e.tracked[f] = true
	}
	for _, f := range cfg.PerformedOnly {
		e.performedOnly[f] = true
	}
	return e
}

func (e *Engine) Config() Config { return e.cfg }

// compare orders candidates best first. After the three precedence ranks
// and descending confidence, the remaining keys only make the order total.
func (e *Engine) compare(a, b domain.Candidate) int {
	return cmp.Or(
		cmp.Compare(lookup(e.statusRank, a.Status), lookup(e.statusRank, b.Status)),
		cmp.Compare(lookup(e.noteTypeRank, a.NoteType), lookup(e.noteTypeRank, b.NoteType)),
		cmp.Compare(lookup(e.sectionRank, a.Section), lookup(e.sectionRank, b.Section)),
		cmp.Compare(b.Confidence, a.Confidence),
		cmp.Compare(a.Status, b.Status),
		cmp.Compare(a.NoteType, b.NoteType),
		cmp.Compare(a.Section, b.Section),
		cmp.Compare(a.NoteID, b.NoteID),
		cmp.Compare(a.NoteDate, b.NoteDate),
		cmp.Compare(a.Evidence, b.Evidence),
		cmp.Compare(a.Value.Kind(), b.Value.Kind()),
		cmp.Compare(a.Value.String(), b.Value.String()),
	)
}

// Rule renders the justification string for a winning candidate.
func Rule(c domain.Candidate) string {
	return fmt.Sprintf("status>%s; note_type>%s; section>%s; conf>%s",
		c.Status, c.NoteType, c.Section, strconv.FormatFloat(c.Confidence, 'f', -1, 64))
}

// Resolve picks the best candidate for one field. It reports false when
// there are no candidates.
func (e *Engine) Resolve(field string, cands []domain.Candidate) (domain.ResolvedField, bool) {
	if len(cands) == 0 {
		return domain.ResolvedField{}, false
	}
	pool := cands
	if e.performedOnly[field] {
		pool = FilterPlanned(cands)
	}
	pool = slices.Clone(pool)
	slices.SortStableFunc(pool, e.compare)

	win := pool[0]
	return domain.ResolvedField{
		Field:    field,
		Value:    win.Value,
		Status:   win.Status,
		Evidence: win.Evidence,
		Section:  win.Section,
		NoteType: win.NoteType,
		NoteID:   win.NoteID,
		NoteDate: win.NoteDate,
		Rule:     Rule(win),
	}, true
}

// AggregatePatient resolves every tracked field that has at least one
// candidate, then applies the configured exclusions. Candidates for
// untracked fields are ignored.
func (e *Engine) AggregatePatient(cands []domain.Candidate) map[string]domain.ResolvedField {
	byField := make(map[string][]domain.Candidate)
	for _, c := range cands {
		if e.tracked[c.Field] {
			byField[c.Field] = append(byField[c.Field], c)
		}
	}

	out := make(map[string]domain.ResolvedField, len(byField))
	for _, field := range e.cfg.TrackedFields {
		if rf, ok := e.Resolve(field, byField[field]); ok {
			out[field] = rf
		}
	}

	for _, ex := range e.cfg.Exclusions {
		if _, ok := out[ex.When]; ok {
			delete(out, ex.Drop)
		}
	}
	return out
}

// Ordered returns the resolved fields in tracked-field order.
func (e *Engine) Ordered(resolved map[string]domain.ResolvedField) []domain.ResolvedField {
	out := make([]domain.ResolvedField, 0, len(resolved))
	for _, f := range e.cfg.TrackedFields {
		if rf, ok := resolved[f]; ok {
			out = append(out, rf)
		}
	}
	return out
}
