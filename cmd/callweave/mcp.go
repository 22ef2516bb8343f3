package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/callweave/callweave"
	"github.com/callweave/callweave/internal/adapters/mcp"
	"github.com/callweave/callweave/internal/adapters/sim"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Starts the callweave engine as an MCP server over stdio.
This allows AI agents to validate workflows, launch executions, and inspect
execution logs as tools.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger := newLogger(cmd)

		adapter := sim.New(sim.WithLogger(logger))
		eng := newEngine(cmd, logger, adapter)
		srv := mcp.NewServer(eng, callweave.Version)

		// Logs must not corrupt JSON-RPC on stdout.
		log.SetOutput(os.Stderr)
		logger.Info("mcp server starting (stdio)")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("mcp server failed", "err", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
