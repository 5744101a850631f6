// Package pipeline wires the sectionizer, note-type classifier, extractors
// and aggregation engine into per-note, per-patient and batch runs.
package pipeline

import (
	"context"
	"fmt"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/extract"
	"github.com/Harshitk-cp/abstractor/internal/notetype"
	"github.com/Harshitk-cp/abstractor/internal/sectionize"
	"github.com/Harshitk-cp/abstractor/internal/textclean"
)

const DefaultWorkers = 4

type NoteResult struct {
	Note     domain.SectionedNote `json:"note"`
	Evidence []domain.Candidate   `json:"evidence"`
}

type PatientResult struct {
	PatientRef string                          `json:"patient_id"`
	Notes      int                             `json:"notes"`
	Evidence   []domain.Candidate              `json:"evidence,omitempty"`
	Resolved   map[string]domain.ResolvedField `json:"resolved"`
	Err        error                           `json:"-"`
}

// PatientNotes is one patient's slice of a batch.
type PatientNotes struct {
	PatientRef string
	Notes      []domain.RawNote
}

type Pipeline struct {
	sectionOpts sectionize.Options
	extractors  []extract.Extractor
	engine      *aggregate.Engine
}

type Option func(*Pipeline)

func WithSectionOptions(opts sectionize.Options) Option {
	return func(p *Pipeline) { p.sectionOpts = opts }
}

func WithExtractors(ex []extract.Extractor) Option {
	return func(p *Pipeline) { p.extractors = ex }
}

// New builds a pipeline around engine. A nil engine uses the default
// aggregation configuration.
func New(engine *aggregate.Engine, opts ...Option) *Pipeline {
	if engine == nil {
		engine = aggregate.NewEngine(aggregate.DefaultConfig())
	}
	p := &Pipeline{
		sectionOpts: sectionize.DefaultOptions(),
		extractors:  extract.All(),
		engine:      engine,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

func (p *Pipeline) Engine() *aggregate.Engine { return p.engine }

// Sectionize cleans the note text and builds the sectioned view.
func (p *Pipeline) Sectionize(raw domain.RawNote) domain.SectionedNote {
	raw.Text = textclean.CleanArtifacts(raw.Text)
	return sectionize.Note(raw, notetype.Resolve(raw), p.sectionOpts)
}

func (p *Pipeline) ProcessNote(raw domain.RawNote) NoteResult {
	sn := p.Sectionize(raw)
	return NoteResult{Note: sn, Evidence: extract.Run(p.extractors, sn)}
}

// ProcessPatient extracts every note and aggregates the pooled evidence.
func (p *Pipeline) ProcessPatient(notes []domain.RawNote) PatientResult {
	res := PatientResult{Notes: len(notes)}
	if len(notes) > 0 {
		res.PatientRef = notes[0].PatientRef
	}
	for _, n := range notes {
		res.Evidence = append(res.Evidence, p.ProcessNote(n).Evidence...)
	}
	res.Resolved = p.engine.AggregatePatient(res.Evidence)
	return res
}

// safeProcess runs ProcessPatient and turns a panic into the patient's error.
func (p *Pipeline) safeProcess(batch PatientNotes) (res PatientResult) {
	defer func() {
		if r := recover(); r != nil {
			res = PatientResult{
				PatientRef: batch.PatientRef,
				Notes:      len(batch.Notes),
				Err:        fmt.Errorf("patient %s: panic: %v\n%s", batch.PatientRef, r, debug.Stack()),
			}
		}
	}()
	res = p.ProcessPatient(batch.Notes)
	res.PatientRef = batch.PatientRef
	return res
}

// RunBatch processes patients concurrently with at most workers in flight.
// Results keep the input order. A failing patient carries its error in
// PatientResult.Err and never stops the rest of the batch; patients not yet
// started when ctx is cancelled carry ctx.Err().
func (p *Pipeline) RunBatch(ctx context.Context, patients []PatientNotes, workers int) []PatientResult {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	results := make([]PatientResult, len(patients))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, batch := range patients {
		g.Go(func() error {
			if err := gCtx.Err(); err != nil {
				results[i] = PatientResult{PatientRef: batch.PatientRef, Notes: len(batch.Notes), Err: err}
				return nil
			}
			results[i] = p.safeProcess(batch)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

// GroupByPatient splits a flat note list into per-patient batches, keeping
// the order in which each patient first appears.
func GroupByPatient(notes []domain.RawNote) []PatientNotes {
	index := make(map[string]int)
	var out []PatientNotes
	for _, n := range notes {
		i, ok := index[n.PatientRef]
		if !ok {
			i = len(out)
			index[n.PatientRef] = i
			out = append(out, PatientNotes{PatientRef: n.PatientRef})
		}
		out[i].Notes = append(out[i].Notes, n)
	}
	return out
}
