// Package mcp exposes the in-memory abstraction pipeline as MCP tools.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/buildconfig"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
	"github.com/Harshitk-cp/abstractor/internal/report"
)

// Server wraps the MCP SDK server. Nothing is persisted between calls.
type Server struct {
	MCPServer *sdkmcp.Server
	pipeline  *pipeline.Pipeline
	logger    *zap.Logger
}

func NewServer(p *pipeline.Pipeline, logger *zap.Logger) *Server {
	if p == nil {
		p = pipeline.New(nil)
	}
	s := &Server{
		MCPServer: sdkmcp.NewServer(
			&sdkmcp.Implementation{Name: buildconfig.Name, Version: buildconfig.Version()},
			nil,
		),
		pipeline: p,
		logger:   logger,
	}
	s.registerTools()
	return s
}

// Run serves over stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.MCPServer.Run(ctx, &sdkmcp.StdioTransport{})
}

func (s *Server) registerTools() {
	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "sectionize_note",
		Description: "Split a clinical note into canonical sections and classify its note type.",
	}, s.handleSectionize)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "extract_note",
		Description: "Run every field extractor over one note and return the evidence candidates.",
	}, s.handleExtract)

	sdkmcp.AddTool(s.MCPServer, &sdkmcp.Tool{
		Name:        "abstract_patient",
		Description: "Extract all notes of one patient and resolve each tracked field to a single value.",
	}, s.handleAbstractPatient)
}

// --- Tool input/output types ---

type noteInput struct {
	NoteID   string `json:"note_id,omitempty" jsonschema:"note identifier, also used as a note type hint"`
	NoteType string `json:"note_type,omitempty" jsonschema:"EHR note type label if known"`
	NoteDate string `json:"note_date,omitempty" jsonschema:"note date as recorded"`
	Text     string `json:"text" jsonschema:"full note text"`
}

func (n noteInput) raw(patientRef string) domain.RawNote {
	return domain.RawNote{ID: n.NoteID, PatientRef: patientRef, TypeHint: n.NoteType, Date: n.NoteDate, Text: n.Text}
}

type sectionOutput struct {
	Name string `json:"name"`
	Body string `json:"body"`
}

type sectionizeOutput struct {
	NoteType string          `json:"note_type"`
	Sections []sectionOutput `json:"sections"`
}

type candidateOutput struct {
	Field      string  `json:"field"`
	Value      string  `json:"value"`
	Kind       string  `json:"kind"`
	Status     string  `json:"status"`
	Evidence   string  `json:"evidence"`
	Section    string  `json:"section"`
	NoteType   string  `json:"note_type"`
	NoteID     string  `json:"note_id"`
	Confidence float64 `json:"confidence"`
}

type extractOutput struct {
	NoteType string            `json:"note_type"`
	Sections []string          `json:"sections"`
	Evidence []candidateOutput `json:"evidence"`
}

type abstractPatientInput struct {
	PatientID       string      `json:"patient_id" jsonschema:"pseudonymous patient identifier"`
	Notes           []noteInput `json:"notes" jsonschema:"every note of the patient"`
	IncludeEvidence bool        `json:"include_evidence,omitempty" jsonschema:"also return the flat candidate list"`
}

type resolvedOutput struct {
	Field    string `json:"field"`
	Value    string `json:"value"`
	Kind     string `json:"kind"`
	Status   string `json:"status"`
	Evidence string `json:"evidence"`
	Section  string `json:"section"`
	NoteType string `json:"note_type"`
	NoteID   string `json:"note_id"`
	Rule     string `json:"rule"`
}

type abstractPatientOutput struct {
	PatientID string            `json:"patient_id"`
	Notes     int               `json:"notes"`
	Fields    []resolvedOutput  `json:"fields"`
	Row       []report.Column   `json:"row"`
	Evidence  []candidateOutput `json:"evidence,omitempty"`
}

func toCandidateOutputs(cands []domain.Candidate) []candidateOutput {
	out := make([]candidateOutput, len(cands))
	for i, c := range cands {
		out[i] = candidateOutput{
			Field:      c.Field,
			Value:      c.Value.String(),
			Kind:       c.Value.Kind().String(),
			Status:     string(c.Status),
			Evidence:   c.Evidence,
			Section:    c.Section,
			NoteType:   string(c.NoteType),
			NoteID:     c.NoteID,
			Confidence: c.Confidence,
		}
	}
	return out
}

var errTextRequired = errors.New("text is required")

// --- Handlers ---

func (s *Server) handleSectionize(_ context.Context, _ *sdkmcp.CallToolRequest, input noteInput) (*sdkmcp.CallToolResult, sectionizeOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, sectionizeOutput{}, errTextRequired
	}
	sn := s.pipeline.Sectionize(input.raw(""))

	out := sectionizeOutput{NoteType: string(sn.Type), Sections: make([]sectionOutput, len(sn.Sections))}
	for i, sec := range sn.Sections {
		out.Sections[i] = sectionOutput{Name: sec.Name, Body: sec.Body}
	}
	return nil, out, nil
}

func (s *Server) handleExtract(_ context.Context, _ *sdkmcp.CallToolRequest, input noteInput) (*sdkmcp.CallToolResult, extractOutput, error) {
	if strings.TrimSpace(input.Text) == "" {
		return nil, extractOutput{}, errTextRequired
	}
	res := s.pipeline.ProcessNote(input.raw(""))

	s.logger.Debug("extract_note",
		zap.String("note_id", input.NoteID),
		zap.Int("candidates", len(res.Evidence)))

	names := res.Note.Sections.Names()
	return nil, extractOutput{
		NoteType: string(res.Note.Type),
		Sections: names,
		Evidence: toCandidateOutputs(res.Evidence),
	}, nil
}

func (s *Server) handleAbstractPatient(_ context.Context, _ *sdkmcp.CallToolRequest, input abstractPatientInput) (*sdkmcp.CallToolResult, abstractPatientOutput, error) {
	if strings.TrimSpace(input.PatientID) == "" {
		return nil, abstractPatientOutput{}, errors.New("patient_id is required")
	}
	notes := make([]domain.RawNote, 0, len(input.Notes))
	for i, n := range input.Notes {
		if strings.TrimSpace(n.Text) == "" {
			return nil, abstractPatientOutput{}, fmt.Errorf("note %d: %w", i, errTextRequired)
		}
		notes = append(notes, n.raw(input.PatientID))
	}

	res := s.pipeline.ProcessPatient(notes)
	engine := s.pipeline.Engine()
	ordered := engine.Ordered(res.Resolved)

	out := abstractPatientOutput{
		PatientID: input.PatientID,
		Notes:     len(notes),
		Fields:    make([]resolvedOutput, len(ordered)),
		Row:       report.Flatten(input.PatientID, res.Resolved, engine.Config().TrackedFields).Columns,
	}
	for i, rf := range ordered {
		out.Fields[i] = resolvedOutput{
			Field:    rf.Field,
			Value:    rf.Value.String(),
			Kind:     rf.Value.Kind().String(),
			Status:   string(rf.Status),
			Evidence: rf.Evidence,
			Section:  rf.Section,
			NoteType: string(rf.NoteType),
			NoteID:   rf.NoteID,
			Rule:     rf.Rule,
		}
	}
	if input.IncludeEvidence {
		out.Evidence = toCandidateOutputs(res.Evidence)
	}

	s.logger.Info("abstract_patient",
		zap.Int("notes", len(notes)),
		zap.Int("candidates", len(res.Evidence)),
		zap.Int("fields", len(ordered)))

	return nil, out, nil
}
