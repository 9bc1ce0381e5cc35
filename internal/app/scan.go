package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/refactorwatch/internal/analyzer"
	"github.com/blackwell-systems/refactorwatch/internal/config"
	"github.com/blackwell-systems/refactorwatch/internal/issues"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/planner"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
	"github.com/blackwell-systems/refactorwatch/internal/store"
)

var (
	scanFlagCreateIssues bool
	scanFlagLimit        int
	scanFlagRepo         string
	scanFlagMaxLines     int
	scanFlagMaxTestLines int
	scanFlagExt          []string
	scanFlagExclude      []string
	scanFlagNoRecord     bool
	scanFlagSkipFiled    bool
	scanFlagFail         bool
	scanFlagJSON         bool
)

// errViolationsFound makes `scan --fail` exit non-zero for CI use.
var errViolationsFound = errors.New("monoliths found")

var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Scan codebase for monolithic files",
	Long: `Scan walks the given directory (default: current directory), counts the
lines of every file with a configured extension, and lists the files over the
limit, largest first. Test files (under a "test" directory or named test_*)
use the separate test limit.

With --create-issues, a GitHub issue mentioning @claude is opened for each of
the first --limit files using the gh CLI.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().BoolVar(&scanFlagCreateIssues, "create-issues", false, "Create GitHub issues")
	scanCmd.Flags().IntVar(&scanFlagLimit, "limit", config.DefaultIssues.Limit, "Max issues to create")
	scanCmd.Flags().StringVar(&scanFlagRepo, "repo", "", "GitHub repository (owner/name)")
	scanCmd.Flags().IntVar(&scanFlagMaxLines, "max-lines", scanner.DefaultMaxLines, "Line limit for source files")
	scanCmd.Flags().IntVar(&scanFlagMaxTestLines, "max-test-lines", scanner.DefaultMaxTestLines, "Line limit for test files")
	scanCmd.Flags().StringSliceVar(&scanFlagExt, "ext", nil, "File extensions to scan (can be repeated)")
	scanCmd.Flags().StringSliceVar(&scanFlagExclude, "exclude", nil, "Path substrings to skip (can be repeated)")
	scanCmd.Flags().BoolVar(&scanFlagNoRecord, "no-record", false, "Do not record this scan in the history database")
	scanCmd.Flags().BoolVar(&scanFlagSkipFiled, "skip-filed", false, "Skip files that already have an open issue")
	scanCmd.Flags().BoolVar(&scanFlagFail, "fail", false, "Exit non-zero when monoliths are found")
	scanCmd.Flags().BoolVar(&scanFlagJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(scanCmd)
}

// scanOptions are the resolved settings for one scan run.
type scanOptions struct {
	Root             string
	CreateIssues     bool
	Limit            int
	Repo             string
	SkipFiled        bool
	JSON             bool
	FailOnViolations bool
}

// scanDeps are the collaborators used by a scan run.
type scanDeps struct {
	Scanner  *scanner.Scanner
	Analyzer analyzer.Analyzer
	Planner  planner.Planner
	Creator  issues.Creator
	DB       *store.DB // nil disables history
	Logger   *slog.Logger
}

// issueResult is the outcome of filing one issue.
type issueResult struct {
	Path    string `json:"path"`
	URL     string `json:"url,omitempty"`
	Skipped bool   `json:"skipped,omitempty"`
	Error   string `json:"error,omitempty"`
}

// scanReport is the JSON form of a scan run.
type scanReport struct {
	Root       string              `json:"root"`
	Violations []scanner.Violation `json:"violations"`
	Issues     []issueResult       `json:"issues,omitempty"`
}

func runScan(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) > 0 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", root, err)
	}

	cfg, err := config.Load(flagConfig, absRoot)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyScanFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}

	setupOutput(cfg)
	logger := newLogger(cmd.ErrOrStderr(), flagVerbose)

	deps := scanDeps{
		Scanner:  scanner.New(cfg.Scanner(), scanner.WithLogger(logger)),
		Analyzer: analyzer.LineAnalyzer{},
		Planner:  planner.FixedPlanner{},
		Creator:  issues.NewGHCreator(cfg.Issues.Command),
		Logger:   logger,
	}
	if !scanFlagNoRecord {
		db, err := openStore()
		if err != nil {
			logger.Warn("scan history disabled", "error", err)
		} else {
			defer func() { _ = db.Close() }()
			deps.DB = db
		}
	}

	opts := scanOptions{
		Root:             absRoot,
		CreateIssues:     scanFlagCreateIssues,
		Limit:            cfg.Issues.Limit,
		Repo:             cfg.Issues.Repo,
		SkipFiled:        scanFlagSkipFiled,
		JSON:             scanFlagJSON || flagJSON,
		FailOnViolations: scanFlagFail,
	}
	return executeScan(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), opts, deps)
}

// applyScanFlags overrides config values with flags the user set explicitly.
func applyScanFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("max-lines") {
		cfg.MaxLines = scanFlagMaxLines
	}
	if flags.Changed("max-test-lines") {
		cfg.MaxTestLines = scanFlagMaxTestLines
	}
	if flags.Changed("ext") {
		cfg.Extensions = scanFlagExt
	}
	if flags.Changed("exclude") {
		cfg.Exclude = scanFlagExclude
	}
	if flags.Changed("limit") {
		cfg.Issues.Limit = scanFlagLimit
	}
	if flags.Changed("repo") {
		cfg.Issues.Repo = scanFlagRepo
	}
}

// executeScan runs the scanner, records and renders the result, and files
// issues when requested.
func executeScan(ctx context.Context, w, errW io.Writer, opts scanOptions, deps scanDeps) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if deps.Logger == nil {
		deps.Logger = newLogger(io.Discard, false)
	}

	if !opts.JSON {
		fmt.Fprintln(w, output.StyleHeader.Render("Scanning "+opts.Root+"..."))
		fmt.Fprintln(w)
	}

	violations, err := deps.Scanner.Scan(ctx, opts.Root)
	if err != nil {
		return err
	}

	if deps.DB != nil {
		if err := recordScan(deps.DB, opts.Root, deps.Scanner.Config(), violations); err != nil {
			deps.Logger.Warn("could not record scan", "error", err)
		}
	}

	report := scanReport{Root: opts.Root, Violations: violations}

	if !opts.JSON {
		renderViolations(w, violations)
	}

	if opts.CreateIssues && len(violations) > 0 {
		if opts.Repo == "" {
			fmt.Fprintln(errW, output.StyleError.Render("Error: --repo required for creating issues"))
			fmt.Fprintln(errW, "Usage: refactorwatch scan --create-issues --repo owner/name")
		} else {
			progress := w
			if opts.JSON {
				progress = io.Discard
			}
			report.Issues = createIssues(ctx, progress, opts, deps, violations)
		}
	}

	if opts.JSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	}

	if opts.FailOnViolations && len(violations) > 0 {
		return fmt.Errorf("%w: %d file(s) over the limit", errViolationsFound, len(violations))
	}
	return nil
}

func renderViolations(w io.Writer, violations []scanner.Violation) {
	if len(violations) == 0 {
		fmt.Fprintln(w, output.StyleSuccess.Render("No monoliths found! Code looks good."))
		return
	}

	tbl := output.NewTable("File", "Lines", "Excess", "Type").
		SetTitle(fmt.Sprintf("Found %d Monoliths", len(violations))).
		AlignRight(1, 2)
	for _, v := range violations {
		tbl.AddRow(
			output.StylePath.Render(v.Path),
			output.StyleAccent.Render(fmt.Sprintf("%d", v.Lines)),
			output.StyleError.Render(fmt.Sprintf("+%d", v.ExcessLines)),
			output.StyleSuccess.Render(v.Type),
		)
	}
	tbl.Fprint(w)
}

// createIssues files one issue for each of the first opts.Limit violations.
// A failure is reported and the loop moves on to the next file.
func createIssues(ctx context.Context, w io.Writer, opts scanOptions, deps scanDeps, violations []scanner.Violation) []issueResult {
	fmt.Fprintln(w)
	fmt.Fprintln(w, output.StyleHeader.Render(fmt.Sprintf("Creating issues (limit: %d)...", opts.Limit)))
	fmt.Fprintln(w)

	n := min(opts.Limit, len(violations))
	results := make([]issueResult, 0, n)

	for i, v := range violations[:n] {
		prefix := fmt.Sprintf("  [%d/%d]", i+1, opts.Limit)
		res := issueResult{Path: v.Path}
		// Issues are keyed by slash path, like recorded scan rows.
		key := filepath.ToSlash(v.Path)

		if opts.SkipFiled && deps.DB != nil {
			existing, err := deps.DB.FindIssue(opts.Repo, key)
			if err != nil {
				deps.Logger.Warn("looking up filed issue", "path", v.Path, "error", err)
			} else if existing != nil {
				res.URL = existing.URL
				res.Skipped = true
				results = append(results, res)
				fmt.Fprintf(w, "%s %s %s\n", prefix, output.StyleMuted.Render("Already filed:"), existing.URL)
				continue
			}
		}

		analysis, err := deps.Analyzer.AnalyzeFile(v.AbsolutePath)
		if err != nil {
			deps.Logger.Debug("analysis failed", "path", v.Path, "error", err)
		}
		plan := deps.Planner.GeneratePlan(v, analysis)

		url, err := deps.Creator.CreateIssue(ctx, opts.Repo, issues.Title(plan), issues.Body(plan))
		if err == nil && url == "" {
			err = errors.New("no issue URL returned")
		}
		if err != nil {
			deps.Logger.Warn("issue creation failed", "path", v.Path, "error", err)
			res.Error = err.Error()
			results = append(results, res)
			fmt.Fprintf(w, "%s %s\n", prefix, output.StyleError.Render("Failed to create issue"))
			continue
		}

		res.URL = url
		results = append(results, res)
		fmt.Fprintf(w, "%s %s\n", prefix, output.StyleSuccess.Render(url))

		if deps.DB != nil {
			if _, err := deps.DB.RecordIssue(&store.Issue{
				Repo:  opts.Repo,
				Path:  key,
				Lines: v.Lines,
				URL:   url,
			}); err != nil {
				deps.Logger.Warn("could not record issue", "url", url, "error", err)
			}
		}
	}

	return results
}

func recordScan(db *store.DB, root string, cfg scanner.Config, violations []scanner.Violation) error {
	rows := make([]store.ViolationRow, len(violations))
	for i, v := range violations {
		rows[i] = store.ViolationRow{
			Path:        filepath.ToSlash(v.Path),
			Lines:       v.Lines,
			Type:        v.Type,
			IsTest:      v.IsTest,
			ExcessLines: v.ExcessLines,
		}
	}
	maxLines, maxTestLines := cfg.Thresholds()
	_, err := db.RecordScan(&store.Scan{
		Root:         root,
		Version:      appVersion,
		MaxLines:     maxLines,
		MaxTestLines: maxTestLines,
	}, rows)
	return err
}
