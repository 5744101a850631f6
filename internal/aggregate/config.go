package aggregate

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/abstractor/internal/domain"
)

// Precedence holds the three ordered ranking lists. Earlier entries win.
type Precedence struct {
	Status   []domain.Status   `json:"status"`
	NoteType []domain.NoteType `json:"note_type"`
	Section  []string          `json:"section"`
}

// Exclusion removes Drop from a patient's result whenever When was resolved.
type Exclusion struct {
	When string `json:"when"`
	Drop string `json:"drop"`
}

type Config struct {
	Precedence    Precedence  `json:"precedence"`
	TrackedFields []string    `json:"tracked_fields"`
	PerformedOnly []string    `json:"performed_only"`
	Exclusions    []Exclusion `json:"exclusions"`
}

func DefaultStatusOrder() []domain.Status {
	return domain.AllStatuses()
}

func DefaultNoteTypeOrder() []domain.NoteType {
	return domain.AllNoteTypes()
}

// DefaultSectionOrder favors structured operative sections over narrative.
func DefaultSectionOrder() []string {
	return []string{
		"PROCEDURE",
		"DETAILS OF OPERATION",
		"OP NOTE",
		"POSTOPERATIVE DIAGNOSIS",
		"PREOPERATIVE DIAGNOSIS",
		"INDICATIONS FOR OPERATION",
		"PAST SURGICAL HISTORY",
		"PAST MEDICAL HISTORY",
		"SOCIAL HISTORY",
		"PHYSICAL EXAM",
		"MEDICATIONS",
		"HPI",
		"ASSESSMENT/PLAN",
		"DIAGNOSIS",
		"PATHOLOGY",
		"IMAGING",
		"REVIEW OF SYSTEMS",
		"CHIEF COMPLAINT",
		"REASON FOR VISIT",
		domain.SectionPreamble,
	}
}

// DefaultPerformedOnly lists fields for which a planned assertion is not an
// acceptable answer while any other assertion exists.
func DefaultPerformedOnly() []string {
	return []string{
		domain.FieldReconPerformed,
		domain.FieldReconType,
		domain.FieldReconLaterality,
		domain.FieldReconTiming,
		domain.FieldLymphNodePerformed,
		domain.FieldMastectomyPerformed,
	}
}

func DefaultExclusions() []Exclusion {
	return []Exclusion{{When: domain.FieldReconPerformed, Drop: domain.FieldReconPlanned}}
}

func DefaultConfig() Config {
	return Config{
		Precedence: Precedence{
			Status:   DefaultStatusOrder(),
			NoteType: DefaultNoteTypeOrder(),
			Section:  DefaultSectionOrder(),
		},
		TrackedFields: domain.DefaultTrackedFields(),
		PerformedOnly: DefaultPerformedOnly(),
		Exclusions:    DefaultExclusions(),
	}
}

func duplicates[T comparable](list []T) []T {
	seen := make(map[T]bool, len(list))
	var dups []T
	for _, v := range list {
		if seen[v] {
			dups = append(dups, v)
		}
		seen[v] = true
	}
	return dups
}

// Validate reports every problem with the configuration at once.
func (c Config) Validate() error {
	var errs []error

	if len(c.Precedence.Status) == 0 {
		errs = append(errs, errors.New("status precedence is empty"))
	}
	if len(c.Precedence.NoteType) == 0 {
		errs = append(errs, errors.New("note type precedence is empty"))
	}
	if len(c.Precedence.Section) == 0 {
		errs = append(errs, errors.New("section precedence is empty"))
	}
	if len(c.TrackedFields) == 0 {
		errs = append(errs, errors.New("tracked fields are empty"))
	}

	for _, s := range c.Precedence.Status {
		if !domain.ValidStatus(string(s)) {
			errs = append(errs, fmt.Errorf("unknown status %q in precedence", s))
		}
	}
	for _, t := range c.Precedence.NoteType {
		if !domain.ValidNoteType(string(t)) {
			errs = append(errs, fmt.Errorf("unknown note type %q in precedence", t))
		}
	}
	for _, d := range duplicates(c.Precedence.Status) {
		errs = append(errs, fmt.Errorf("duplicate status %q in precedence", d))
	}
	for _, d := range duplicates(c.Precedence.NoteType) {
		errs = append(errs, fmt.Errorf("duplicate note type %q in precedence", d))
	}
	for _, d := range duplicates(c.Precedence.Section) {
		errs = append(errs, fmt.Errorf("duplicate section %q in precedence", d))
	}
	for _, d := range duplicates(c.TrackedFields) {
		errs = append(errs, fmt.Errorf("duplicate tracked field %q", d))
	}

	tracked := make(map[string]bool, len(c.TrackedFields))
	for _, f := range c.TrackedFields {
		if f == "" {
			errs = append(errs, errors.New("empty tracked field name"))
		}
		tracked[f] = true
	}
	for _, f := range c.PerformedOnly {
		if !tracked[f] {
			errs = append(errs, fmt.Errorf("performed-only field %q is not tracked", f))
		}
	}
	for _, e := range c.Exclusions {
		if e.When == "" || e.Drop == "" {
			errs = append(errs, fmt.Errorf("exclusion %q -> %q is incomplete", e.When, e.Drop))
			continue
		}
		if e.When == e.Drop {
			errs = append(errs, fmt.Errorf("exclusion %q drops itself", e.When))
		}
	}

	return errors.Join(errs...)
}
