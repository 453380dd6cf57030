package main

import (
	"github.com/spf13/cobra"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	mcpserver "minds/internal/mcp"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP tool server over stdio",
	Long: `Starts an MCP server over stdin/stdout exposing the counsel, outcome,
search, template, audit, and posterior-sync tools. Point your MCP client
at this command.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := mcpserver.NewServer(a.store, a.engine, a.updater)
	logger.Info("starting minds MCP server over stdio")
	return srv.Run(cmd.Context(), &sdkmcp.StdioTransport{})
}
