package app

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/store"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List filed issues and update their state",
}

var issuesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded refactoring issues",
	Args:  cobra.NoArgs,
	RunE:  runIssuesList,
}

var issuesSetStateCmd = &cobra.Command{
	Use:   "set-state <id> <open|in_progress|completed>",
	Short: "Update the state of a recorded issue",
	Args:  cobra.ExactArgs(2),
	RunE:  runIssuesSetState,
}

func init() {
	issuesCmd.AddCommand(issuesListCmd, issuesSetStateCmd)
	rootCmd.AddCommand(issuesCmd)
}

func runIssuesList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(flagConfig, "")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	setupOutput(cfg)

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	list, err := db.ListIssues()
	if err != nil {
		return fmt.Errorf("listing issues: %w", err)
	}

	w := cmd.OutOrStdout()
	if flagJSON {
		if list == nil {
			list = []store.Issue{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}

	if len(list) == 0 {
		fmt.Fprintln(w, output.StyleMuted.Render("No issues recorded."))
		return nil
	}

	tbl := output.NewTable("ID", "State", "Lines", "File", "URL").AlignRight(0, 2)
	for _, is := range list {
		tbl.AddRow(
			strconv.FormatInt(is.ID, 10),
			stateStyle(is.State),
			strconv.Itoa(is.Lines),
			output.StylePath.Render(is.Path),
			is.URL,
		)
	}
	tbl.Fprint(w)
	return nil
}

func runIssuesSetState(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid issue id %q", args[0])
	}

	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := db.UpdateIssueState(id, args[1]); err != nil {
		return fmt.Errorf("updating issue %d: %w", id, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Issue %d marked %s\n", id, args[1])
	return nil
}

func stateStyle(state string) string {
	switch state {
	case store.IssueCompleted:
		return output.StyleSuccess.Render(state)
	case store.IssueInProgress:
		return output.StyleWarning.Render(state)
	default:
		return state
	}
}
