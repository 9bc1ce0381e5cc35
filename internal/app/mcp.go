package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Run an MCP stdio server exposing scan and status tools",
	Long: `Start a Model Context Protocol stdio server so an agent can query
refactorwatch during a session. The server exposes three tools:

  scan_monoliths       Files over their line limit under a directory
  get_refactor_status  Filed issues by state and the latest recorded scan
  plan_refactor        Line count, plan and issue text for one file

Add to an MCP client configuration:
  {"mcpServers":{"refactorwatch":{"command":"refactorwatch","args":["mcp"]}}}`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, "")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := newLogger(cmd.ErrOrStderr(), flagVerbose)

	var history mcp.History
	db, err := openStore()
	if err != nil {
		logger.Warn("scan history disabled", "error", err)
	} else {
		defer func() { _ = db.Close() }()
		history = db
	}

	srv := mcp.NewServer(cfg.Scanner(), history, appVersion)
	return srv.Run(cmd.Context(), os.Stdin, os.Stdout)
}
