package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/abstractor/internal/mcp"
)

func newMCPCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve the abstraction tools over MCP on stdio",
		Long: `Starts an MCP server over stdin/stdout exposing sectionize_note, extract_note
and abstract_patient. Nothing is stored; logs go to stderr.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := g.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			p, err := g.pipeline()
			if err != nil {
				return err
			}

			logger.Info("starting MCP server over stdio")
			err = mcp.NewServer(p, logger).Run(cmd.Context())
			if err != nil {
				logger.Error("MCP server stopped", zap.Error(err))
			}
			return err
		},
	}
}
