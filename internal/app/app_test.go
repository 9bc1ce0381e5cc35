package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/refactorwatch/internal/analyzer"
	"github.com/blackwell-systems/refactorwatch/internal/output"
	"github.com/blackwell-systems/refactorwatch/internal/planner"
	"github.com/blackwell-systems/refactorwatch/internal/scanner"
	"github.com/blackwell-systems/refactorwatch/internal/store"
	"github.com/blackwell-systems/refactorwatch/internal/watcher"
)

func init() {
	output.SetNoColor(true)
}

// fakeCreator records calls and fails for paths listed in failFor.
type fakeCreator struct {
	titles  []string
	bodies  []string
	failFor map[string]bool
}

func (f *fakeCreator) CreateIssue(ctx context.Context, repo, title, body string) (string, error) {
	f.titles = append(f.titles, title)
	f.bodies = append(f.bodies, body)
	if f.failFor[strings.TrimPrefix(title, "Refactor: ")] {
		return "", errors.New("gh: exit status 1")
	}
	return "https://github.com/" + repo + "/issues/" + strconv.Itoa(len(f.titles)), nil
}

func writeLines(t *testing.T, path string, n int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(strings.Repeat("x\n", n)), 0o644))
}

func fixtureRoot(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "big.py"), 900)
	writeLines(t, filepath.Join(root, "mid.js"), 700)
	writeLines(t, filepath.Join(root, "small.py"), 600)
	writeLines(t, filepath.Join(root, "ok.py"), 100)
	return root
}

func testDeps(t *testing.T, c *fakeCreator) scanDeps {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return scanDeps{
		Scanner:  scanner.New(scanner.Config{}),
		Analyzer: analyzer.LineAnalyzer{},
		Planner:  planner.FixedPlanner{},
		Creator:  c,
		DB:       db,
	}
}

func TestRootCmd_Registration(t *testing.T) {
	assert.Contains(t, rootCmd.Long, "Autonomous code refactoring")

	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"scan", "status", "report", "issues", "config", "watch", "mcp"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestExecuteScan_ListsViolations(t *testing.T) {
	root := fixtureRoot(t)
	deps := testDeps(t, &fakeCreator{})
	var out, errOut bytes.Buffer

	err := executeScan(context.Background(), &out, &errOut, scanOptions{Root: root}, deps)
	require.NoError(t, err)

	text := out.String()
	assert.Contains(t, text, "Found 3 Monoliths")
	assert.Less(t, strings.Index(text, "big.py"), strings.Index(text, "mid.js"))
	assert.Less(t, strings.Index(text, "mid.js"), strings.Index(text, "small.py"))
	assert.NotContains(t, text, "ok.py")
	assert.Contains(t, text, "+400")

	latest, err := deps.DB.GetLatestScan()
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, 3, latest.ViolationCount)
	assert.Equal(t, 700, latest.TotalExcess)
}

func TestExecuteScan_NoViolations(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "ok.py"), 10)
	var out bytes.Buffer

	err := executeScan(context.Background(), &out, &out, scanOptions{Root: root, CreateIssues: true}, testDeps(t, &fakeCreator{}))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "No monoliths found! Code looks good.")
	assert.NotContains(t, out.String(), "Creating issues")
}

func TestExecuteScan_CreateIssuesRequiresRepo(t *testing.T) {
	root := fixtureRoot(t)
	c := &fakeCreator{}
	var out, errOut bytes.Buffer

	err := executeScan(context.Background(), &out, &errOut,
		scanOptions{Root: root, CreateIssues: true, Limit: 5}, testDeps(t, c))
	require.NoError(t, err)
	assert.Contains(t, errOut.String(), "--repo required")
	assert.Empty(t, c.titles)
}

func TestExecuteScan_CreateIssuesHonorsLimit(t *testing.T) {
	root := fixtureRoot(t)
	c := &fakeCreator{}
	deps := testDeps(t, c)
	var out bytes.Buffer

	err := executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, CreateIssues: true, Limit: 2, Repo: "acme/app"}, deps)
	require.NoError(t, err)

	assert.Equal(t, []string{"Refactor: big.py", "Refactor: mid.js"}, c.titles)
	assert.Equal(t, "@claude Please refactor this file.\n\nLines: 900", c.bodies[0])
	assert.Contains(t, out.String(), "Creating issues (limit: 2)...")
	assert.Contains(t, out.String(), "[1/2] https://github.com/acme/app/issues/1")

	counts, err := deps.DB.CountIssues()
	require.NoError(t, err)
	assert.Equal(t, 2, counts.Total)
}

func TestExecuteScan_IssueFailureContinues(t *testing.T) {
	root := fixtureRoot(t)
	c := &fakeCreator{failFor: map[string]bool{"big.py": true}}
	var out bytes.Buffer

	err := executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, CreateIssues: true, Limit: 5, Repo: "acme/app"}, testDeps(t, c))
	require.NoError(t, err)

	assert.Len(t, c.titles, 3)
	assert.Contains(t, out.String(), "[1/5] Failed to create issue")
	assert.Contains(t, out.String(), "[2/5] https://")
}

func TestExecuteScan_SkipFiled(t *testing.T) {
	root := fixtureRoot(t)
	c := &fakeCreator{}
	deps := testDeps(t, c)
	_, err := deps.DB.RecordIssue(&store.Issue{Repo: "acme/app", Path: "big.py", Lines: 900, URL: "https://github.com/acme/app/issues/42"})
	require.NoError(t, err)
	var out bytes.Buffer

	err = executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, CreateIssues: true, Limit: 5, Repo: "acme/app", SkipFiled: true}, deps)
	require.NoError(t, err)

	assert.Equal(t, []string{"Refactor: mid.js", "Refactor: small.py"}, c.titles)
	assert.Contains(t, out.String(), "Already filed: https://github.com/acme/app/issues/42")
}

func TestExecuteScan_IssuePathsUseSlashes(t *testing.T) {
	root := t.TempDir()
	writeLines(t, filepath.Join(root, "pkg", "core", "big.py"), 900)
	writeLines(t, filepath.Join(root, "pkg", "web", "mid.js"), 700)
	c := &fakeCreator{}
	deps := testDeps(t, c)
	_, err := deps.DB.RecordIssue(&store.Issue{Repo: "acme/app", Path: "pkg/core/big.py", Lines: 900, URL: "https://github.com/acme/app/issues/7"})
	require.NoError(t, err)
	var out bytes.Buffer

	err = executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, CreateIssues: true, Limit: 5, Repo: "acme/app", SkipFiled: true}, deps)
	require.NoError(t, err)
	require.Len(t, c.titles, 1, "the already filed file is skipped")

	list, err := deps.DB.ListIssues()
	require.NoError(t, err)
	var recorded []string
	for _, is := range list {
		recorded = append(recorded, is.Path)
	}
	assert.ElementsMatch(t, []string{"pkg/core/big.py", "pkg/web/mid.js"}, recorded)

	latest, err := deps.DB.GetLatestScan()
	require.NoError(t, err)
	rows, err := deps.DB.GetViolations(latest.ID)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Contains(t, recorded, r.Path, "scan rows and issues share one path form")
	}
}

func TestExecuteScan_JSON(t *testing.T) {
	root := fixtureRoot(t)
	var out bytes.Buffer

	err := executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, JSON: true, CreateIssues: true, Limit: 1, Repo: "acme/app"}, testDeps(t, &fakeCreator{}))
	require.NoError(t, err)

	var got scanReport
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got.Violations, 3)
	assert.Equal(t, "big.py", got.Violations[0].Path)
	assert.Equal(t, 400, got.Violations[0].ExcessLines)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "big.py", got.Issues[0].Path)
}

func TestExecuteScan_FailOnViolations(t *testing.T) {
	root := fixtureRoot(t)
	var out bytes.Buffer

	err := executeScan(context.Background(), &out, &out,
		scanOptions{Root: root, FailOnViolations: true}, testDeps(t, &fakeCreator{}))
	assert.ErrorIs(t, err, errViolationsFound)
}

func TestExecuteScan_InvalidRoot(t *testing.T) {
	var out bytes.Buffer
	err := executeScan(context.Background(), &out, &out,
		scanOptions{Root: filepath.Join(t.TempDir(), "missing")}, testDeps(t, &fakeCreator{}))

	var rootErr *scanner.InvalidRootError
	assert.ErrorAs(t, err, &rootErr)
}

func TestLoadStatus(t *testing.T) {
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	view, err := loadStatus(db)
	require.NoError(t, err)
	assert.Nil(t, view.LatestScan)

	_, err = db.RecordScan(&store.Scan{Root: "/r"}, []store.ViolationRow{{Path: "a.py", Lines: 600, ExcessLines: 100}})
	require.NoError(t, err)
	_, err = db.RecordScan(&store.Scan{Root: "/r"}, nil)
	require.NoError(t, err)
	_, err = db.RecordIssue(&store.Issue{Repo: "acme/app", Path: "a.py", URL: "u"})
	require.NoError(t, err)

	view, err = loadStatus(db)
	require.NoError(t, err)
	assert.Equal(t, 1, view.IssuesCreated)
	require.NotNil(t, view.LatestScan)
	require.NotNil(t, view.PreviousScan)
	assert.Equal(t, 0, view.LatestScan.ViolationCount)
	assert.Equal(t, 1, view.PreviousScan.ViolationCount)

	var out bytes.Buffer
	renderStatus(&out, view)
	assert.Contains(t, out.String(), "Issues created:")
	assert.Contains(t, out.String(), "▼ -1")
}

func TestPrintAlert(t *testing.T) {
	var out bytes.Buffer
	printAlert(&out, watcher.Alert{Level: watcher.LevelCritical, Title: "New monolith: a.py", Message: "600 lines"})
	assert.Contains(t, out.String(), "✗ New monolith: a.py")
	assert.Contains(t, out.String(), "600 lines")
}
