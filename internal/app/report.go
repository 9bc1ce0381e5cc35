package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/report"
)

var (
	reportFlagOutput string
	reportFlagTop    int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate refactoring report",
	Long: `Report writes a markdown summary of the most recent scan: monolith count and
excess lines compared with the previous scan, filed issue progress, and the
largest files.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringVarP(&reportFlagOutput, "output", "o", "", "Write the report to a file instead of stdout")
	reportCmd.Flags().IntVar(&reportFlagTop, "top", report.DefaultTop, "Number of files to list")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	db, err := openStore()
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	md, err := report.New(db, reportFlagTop).GenerateReport()
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if reportFlagOutput == "" {
		fmt.Fprintln(cmd.OutOrStdout(), md)
		return nil
	}
	if err := os.WriteFile(reportFlagOutput, []byte(md+"\n"), 0o644); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", reportFlagOutput)
	return nil
}
