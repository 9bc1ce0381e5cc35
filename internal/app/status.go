package app

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/monitor"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/store"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check refactoring progress",
	Long: `Status shows how many refactoring issues have been filed and how many are
in progress or completed, along with the most recent scan and its change
from the scan before it.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// statusView is the JSON form of the status command.
type statusView struct {
	monitor.Status
	LatestScan   *store.Scan `json:"latest_scan,omitempty"`
	PreviousScan *store.Scan `json:"previous_scan,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	view, err := loadStatus(db)
	if err != nil {
		return err
	}

	if flagJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(view)
	}
	renderStatus(cmd.OutOrStdout(), view)
	return nil
}

func loadStatus(db *store.DB) (statusView, error) {
	var view statusView

	st, err := monitor.New(db).CheckStatus()
	if err != nil {
		return view, err
	}
	view.Status = st

	if view.LatestScan, err = db.GetScanN(1); err != nil {
		return view, fmt.Errorf("loading latest scan: %w", err)
	}
	if view.PreviousScan, err = db.GetScanN(2); err != nil {
		return view, fmt.Errorf("loading previous scan: %w", err)
	}
	return view, nil
}

func renderStatus(w io.Writer, view statusView) {
	fmt.Fprintln(w, output.Section("Refactoring Status"))
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.KeyValue("Issues created:", fmt.Sprintf("%d", view.IssuesCreated)))
	fmt.Fprintln(w, output.KeyValue("In progress:", fmt.Sprintf("%d", view.InProgress)))
	fmt.Fprintln(w, output.KeyValue("Completed:", fmt.Sprintf("%d", view.Completed)))

	if view.LatestScan == nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, output.StyleMuted.Render(" No scans recorded yet. Run 'refactorwatch scan'."))
		return
	}

	latest := view.LatestScan
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.KeyValue("Last scan:", latest.TakenAt.Local().Format(time.DateTime)))
	fmt.Fprintln(w, output.KeyValue("Root:", latest.Root))

	monoliths := fmt.Sprintf("%d", latest.ViolationCount)
	excess := fmt.Sprintf("%d", latest.TotalExcess)
	if prev := view.PreviousScan; prev != nil {
		monoliths += " " + output.TrendArrow(latest.ViolationCount-prev.ViolationCount)
		excess += " " + output.TrendArrow(latest.TotalExcess-prev.TotalExcess)
	}
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Monoliths:"), monoliths)
	fmt.Fprintf(w, " %s %s\n", output.StyleLabel.Render("Excess lines:"), excess)
	fmt.Fprintln(w)
}
