package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/config"
	"github.com/Harshitk-cp/abstractor/internal/domain"
	"github.com/Harshitk-cp/abstractor/internal/ingest"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
	"github.com/Harshitk-cp/abstractor/internal/report"
)

type runFlags struct {
	input    string
	workers  int
	format   string
	evidence bool
}

var errPatientsFailed = errors.New("one or more patients failed")

func newRunCmd(g *globalFlags) *cobra.Command {
	rf := &runFlags{}
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Abstract every patient in a note file",
		Long: "Reads notes (.jsonl, .json or line-fragment .csv), groups them by patient,\n" +
			"and prints one resolved row per patient. Patients that fail are reported on\n" +
			"stderr and do not stop the batch.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runAbstraction(cmd, g, rf)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&rf.input, "input", "i", "", "Input note file (required)")
	f.IntVarP(&rf.workers, "workers", "w", 0, "Patients processed concurrently (default $BATCH_WORKERS)")
	f.StringVarP(&rf.format, "format", "f", "json", "Output format: json, table, markdown or csv")
	f.BoolVar(&rf.evidence, "evidence", false, "Include the per-candidate evidence list")
	_ = cmd.MarkFlagRequired("input")
	return cmd
}

type patientOutput struct {
	PatientID string                 `json:"patient_id"`
	Notes     int                    `json:"notes"`
	Row       map[string]string      `json:"row"`
	Fields    []domain.ResolvedField `json:"fields"`
	Evidence  []domain.Candidate     `json:"evidence,omitempty"`

	row report.Row
}

func runAbstraction(cmd *cobra.Command, g *globalFlags, rf *runFlags) error {
	format := strings.ToLower(rf.format)
	switch format {
	case "json", "table", "markdown", "csv":
	default:
		return fmt.Errorf("unknown format %q", rf.format)
	}

	logger, err := g.logger()
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	p, err := g.pipeline()
	if err != nil {
		return err
	}

	notes, err := ingest.ReadFile(rf.input)
	if err != nil {
		return fmt.Errorf("read %s: %w", rf.input, err)
	}

	workers := rf.workers
	if workers <= 0 {
		workers = config.BatchWorkers()
	}

	batches := pipeline.GroupByPatient(notes)
	logger.Info("batch started",
		zap.Int("notes", len(notes)),
		zap.Int("patients", len(batches)),
		zap.Int("workers", workers))

	results := p.RunBatch(cmd.Context(), batches, workers)

	engine := p.Engine()
	tracked := engine.Config().TrackedFields
	var outputs []patientOutput
	failed := 0
	for _, res := range results {
		if res.Err != nil {
			failed++
			logger.Error("patient failed", zap.String("patient_id", res.PatientRef), zap.Error(res.Err))
			continue
		}
		out := patientOutput{
			PatientID: res.PatientRef,
			Notes:     res.Notes,
			row:       report.Flatten(res.PatientRef, res.Resolved, tracked),
			Fields:    engine.Ordered(res.Resolved),
		}
		out.Row = out.row.Map()
		if rf.evidence {
			out.Evidence = res.Evidence
		}
		outputs = append(outputs, out)
	}

	logger.Info("batch finished",
		zap.Int("patients", len(results)),
		zap.Int("failed", failed))

	if err := writeOutputs(cmd.OutOrStdout(), format, tracked, outputs, rf.evidence); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", errPatientsFailed, failed, len(results))
	}
	return nil
}

func writeOutputs(w io.Writer, format string, tracked []string, outputs []patientOutput, evidence bool) error {
	switch format {
	case "csv":
		rows := make([]report.Row, len(outputs))
		for i, o := range outputs {
			rows[i] = o.row
		}
		return report.WriteCSV(w, tracked, rows)
	case "table", "markdown":
		mode := report.ASCII
		if format == "markdown" {
			mode = report.Markdown
		}
		for _, o := range outputs {
			fmt.Fprintln(w, report.ResolvedTable(mode, o.PatientID, o.Fields))
			if evidence {
				fmt.Fprintln(w, report.EvidenceTable(mode, o.PatientID, o.Evidence))
			}
			fmt.Fprintln(w)
		}
		return nil
	}
	if outputs == nil {
		outputs = []patientOutput{}
	}
	return report.WriteJSON(w, outputs)
}
