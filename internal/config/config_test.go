package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

// isolateHome points the home directory at a temp dir so the user's real
// config never leaks into tests.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func TestLoad_Defaults(t *testing.T) {
	isolateHome(t)

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, 500, cfg.MaxLines)
	assert.Equal(t, 1000, cfg.MaxTestLines)
	assert.Equal(t, []string{".py", ".js", ".ts", ".html", ".css"}, cfg.Extensions)
	assert.Equal(t, DefaultExclude, cfg.Exclude)
	assert.Equal(t, 5, cfg.Issues.Limit)
	assert.Equal(t, "gh", cfg.Issues.Command)
	assert.True(t, cfg.Output.Color)
}

func TestLoad_PartialFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_lines: 300\nissues:\n  repo: acme/widgets\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)

	assert.Equal(t, 300, cfg.MaxLines)
	assert.Equal(t, 1000, cfg.MaxTestLines, "unset keys keep their defaults")
	assert.Equal(t, "acme/widgets", cfg.Issues.Repo)
	assert.Equal(t, 5, cfg.Issues.Limit)
}

func TestLoad_DefaultLocation(t *testing.T) {
	home := isolateHome(t)
	dir := filepath.Join(home, ".config", "refactorwatch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("max_test_lines: 1500\n"), 0o644))

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 1500, cfg.MaxTestLines)
}

func TestLoad_MissingExplicitFileIsNotAnError(t *testing.T) {
	isolateHome(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), "")
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.MaxLines)
}

func TestLoad_ProjectFileOverridesUserFile(t *testing.T) {
	isolateHome(t)
	userCfg := filepath.Join(t.TempDir(), "user.yaml")
	require.NoError(t, os.WriteFile(userCfg, []byte("max_lines: 300\nmax_test_lines: 900\n"), 0o644))

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ProjectConfigFile),
		[]byte("max_lines: 250\nextensions: [\".go\"]\nexclude: [\"vendor\"]\n"), 0o644))

	cfg, err := Load(userCfg, root)
	require.NoError(t, err)
	assert.Equal(t, 250, cfg.MaxLines)
	assert.Equal(t, 900, cfg.MaxTestLines)
	assert.Equal(t, []string{".go"}, cfg.Extensions)
	assert.Equal(t, []string{"vendor"}, cfg.Exclude)
}

func TestLoad_EnvOverride(t *testing.T) {
	isolateHome(t)
	t.Setenv("REFACTORWATCH_MAX_LINES", "123")
	t.Setenv("REFACTORWATCH_ISSUES_LIMIT", "2")

	cfg, err := Load("", "")
	require.NoError(t, err)
	assert.Equal(t, 123, cfg.MaxLines)
	assert.Equal(t, 2, cfg.Issues.Limit)
}

func TestLoad_ExplicitZeroThresholdIsKept(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_lines: 0\n"), 0o644))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.MaxLines)

	maxLines, maxTestLines := cfg.Scanner().Thresholds()
	assert.Equal(t, 0, maxLines)
	assert.Equal(t, 1000, maxTestLines)
}

func TestLoad_RejectsNegativeThreshold(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_lines: -10\n"), 0o644))

	_, err := Load(path, "")
	assert.ErrorIs(t, err, scanner.ErrInvalidConfig)
}

func TestLoad_MalformedFile(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_lines: [unterminated\n"), 0o644))

	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestConfig_Scanner(t *testing.T) {
	cfg := Default()
	sc := cfg.Scanner()
	require.NotNil(t, sc.MaxLines)
	assert.Equal(t, cfg.MaxLines, *sc.MaxLines)
	assert.Equal(t, cfg.Extensions, sc.Extensions)

	sc.Exclude[0] = "changed"
	assert.Equal(t, ".git", cfg.Exclude[0], "Scanner() must copy slices")
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Config
	require.NoError(t, yaml.Unmarshal(data, &got))
	assert.Equal(t, Default(), got)

	err = WriteDefault(path, false)
	assert.Error(t, err, "existing file must not be overwritten without force")
	assert.NoError(t, WriteDefault(path, true))
}

func TestWriteDefault_RoundTripsThroughLoad(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, WriteDefault(path, false))

	cfg, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, Default(), *cfg)
}
