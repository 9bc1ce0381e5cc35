package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/blackwell-systems/refactorwatch/internal/analyzer"
	"github.com/blackwell-systems/refactorwatch/internal/issues"
	"github.com/blackwell-systems/refactorwatch/internal/monitor"
	"github.com/blackwell-systems/refactorwatch/internal/planner"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
	"github.com/blackwell-systems/refactorwatch/internal/store"
)

// History is the store access used by get_refactor_status.
type History interface {
	monitor.IssueCounter
	GetScanN(n int) (*store.Scan, error)
}

// ScanResult is returned by scan_monoliths.
type ScanResult struct {
	Root        string              `json:"root"`
	Count       int                 `json:"count"`
	TotalExcess int                 `json:"total_excess"`
	Violations  []scanner.Violation `json:"violations"`
}

// StatusResult is returned by get_refactor_status.
type StatusResult struct {
	monitor.Status
	LatestScan *store.Scan `json:"latest_scan,omitempty"`
}

// PlanResult is returned by plan_refactor.
type PlanResult struct {
	Analysis   analyzer.Analysis `json:"analysis"`
	Plan       planner.Plan      `json:"plan"`
	IssueTitle string            `json:"issue_title"`
	IssueBody  string            `json:"issue_body"`
}

var (
	noArgsSchema = json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
	scanSchema   = json.RawMessage(`{"type":"object","properties":{` +
		`"path":{"type":"string","description":"Directory to scan"},` +
		`"max_lines":{"type":"integer","description":"Line limit for source files"},` +
		`"max_test_lines":{"type":"integer","description":"Line limit for test files"},` +
		`"limit":{"type":"integer","description":"Return at most this many files (default all)"}` +
		`},"required":["path"],"additionalProperties":false}`)
	planSchema = json.RawMessage(`{"type":"object","properties":{` +
		`"path":{"type":"string","description":"File to plan a refactoring for"}` +
		`},"required":["path"],"additionalProperties":false}`)
)

// NewServer returns a server exposing the scan, status and plan tools.
// base supplies the scan settings that tool arguments may override;
// history may be nil, in which case get_refactor_status reports an error.
func NewServer(base scanner.Config, history History, version string) *Server {
	s := &Server{version: version}
	t := &tools{base: base, history: history, analyzer: analyzer.LineAnalyzer{}, planner: planner.FixedPlanner{}}

	s.register(toolDef{
		Name:        "scan_monoliths",
		Description: "List files under a directory that exceed their line limit, largest first.",
		InputSchema: scanSchema,
		Handler:     t.scan,
	})
	s.register(toolDef{
		Name:        "get_refactor_status",
		Description: "Filed refactoring issues by state and the most recent recorded scan.",
		InputSchema: noArgsSchema,
		Handler:     t.status,
	})
	s.register(toolDef{
		Name:        "plan_refactor",
		Description: "Line count, refactoring plan and issue text for one file.",
		InputSchema: planSchema,
		Handler:     t.plan,
	})
	return s
}

type tools struct {
	base     scanner.Config
	history  History
	analyzer analyzer.Analyzer
	planner  planner.Planner
}

func (t *tools) scan(ctx context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Path         string `json:"path"`
		MaxLines     *int   `json:"max_lines"`
		MaxTestLines *int   `json:"max_test_lines"`
		Limit        int    `json:"limit"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Path == "" {
		return nil, errors.New("path is required")
	}

	cfg := t.base
	if args.MaxLines != nil {
		cfg.MaxLines = args.MaxLines
	}
	if args.MaxTestLines != nil {
		cfg.MaxTestLines = args.MaxTestLines
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	violations, err := scanner.New(cfg).Scan(ctx, args.Path)
	if err != nil {
		return nil, err
	}

	res := ScanResult{Count: len(violations), Violations: violations}
	res.Root, _ = filepath.Abs(args.Path)
	for _, v := range violations {
		res.TotalExcess += v.ExcessLines
	}
	if args.Limit > 0 && args.Limit < len(violations) {
		res.Violations = violations[:args.Limit]
	}
	return res, nil
}

func (t *tools) status(_ context.Context, _ json.RawMessage) (any, error) {
	if t.history == nil {
		return nil, errors.New("scan history is unavailable")
	}
	st, err := monitor.New(t.history).CheckStatus()
	if err != nil {
		return nil, err
	}
	latest, err := t.history.GetScanN(1)
	if err != nil {
		return nil, err
	}
	return StatusResult{Status: st, LatestScan: latest}, nil
}

func (t *tools) plan(_ context.Context, raw json.RawMessage) (any, error) {
	var args struct {
		Path string `json:"path"`
	}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, fmt.Errorf("invalid arguments: %w", err)
	}
	if args.Path == "" {
		return nil, errors.New("path is required")
	}

	a, err := t.analyzer.AnalyzeFile(args.Path)
	if err != nil {
		return nil, err
	}

	maxLines, maxTestLines := t.base.Thresholds()
	isTest := scanner.IsTestFile(args.Path)
	limit := maxLines
	if isTest {
		limit = maxTestLines
	}

	v := scanner.Violation{
		Path:         args.Path,
		AbsolutePath: args.Path,
		Lines:        a.LOC,
		Type:         scanner.FileType(args.Path),
		IsTest:       isTest,
		ExcessLines:  max(a.LOC-limit, 0),
	}
	p := t.planner.GeneratePlan(v, a)
	return PlanResult{
		Analysis:   a,
		Plan:       p,
		IssueTitle: issues.Title(p),
		IssueBody:  issues.Body(p),
	}, nil
}
