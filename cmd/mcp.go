package cmd

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	mcpserver "github.com/ziadkadry99/docsearch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for AI agent integration",
	Long:  `Starts a Model Context Protocol (MCP) server on stdio, exposing document search and ingestion tools for AI agents.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		svc, err := buildService(cfg)
		if err != nil {
			return err
		}
		if err := ingestFromFlags(context.Background(), cmd, cfg, svc); err != nil {
			return err
		}

		mcpserver.Version = Version
		slog.Info("docsearch MCP server started on stdio", "chunks", svc.Engine().Store().Count())

		return mcpserver.NewServer(svc).Serve()
	},
}

func init() {
	addIngestFlags(mcpCmd)
	rootCmd.AddCommand(mcpCmd)
}
