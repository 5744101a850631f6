package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/aggregate"
	"github.com/Harshitk-cp/abstractor/internal/buildconfig"
	"github.com/Harshitk-cp/abstractor/internal/config"
	"github.com/Harshitk-cp/abstractor/internal/logging"
	"github.com/Harshitk-cp/abstractor/internal/pipeline"
)

type globalFlags struct {
	precedence string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "abstractor",
		Short: "Abstract structured clinical variables from free-text notes",
		Long: "abstractor sectionizes clinical notes, extracts candidate values for each\n" +
			"tracked field and resolves one value per field per patient.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.Load()
		},
	}
	root.Version = buildconfig.Version()

	f := root.PersistentFlags()
	f.StringVar(&g.precedence, "precedence", "", "Precedence YAML file (default $PRECEDENCE_FILE)")
	f.StringVar(&g.logLevel, "log-level", "", "Log level: debug, info, warn, error (default $LOG_LEVEL)")

	root.AddCommand(newRunCmd(g))
	root.AddCommand(newSectionsCmd(g))
	root.AddCommand(newMCPCmd(g))
	root.AddCommand(newVersionCmd())
	return root
}

func (g *globalFlags) logger() (*zap.Logger, error) {
	level := g.logLevel
	if level == "" {
		level = config.LogLevel()
	}
	return logging.New(level)
}

// pipeline builds the pipeline from the precedence file and section settings.
func (g *globalFlags) pipeline() (*pipeline.Pipeline, error) {
	path := g.precedence
	if path == "" {
		path = config.PrecedenceFile()
	}
	cfg, err := config.LoadPrecedence(path)
	if err != nil {
		return nil, fmt.Errorf("load precedence: %w", err)
	}
	return pipeline.New(aggregate.NewEngine(cfg), pipeline.WithSectionOptions(config.SectionOptions())), nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), buildconfig.String())
			return nil
		},
	}
}
