// Package config provides configuration loading and defaults for refactorwatch.
package config

import "github.com/blackwell-systems/refactorwatch/internal/scanner"

// DefaultConfigDir is the default location for refactorwatch configuration.
const DefaultConfigDir = "~/.config/refactorwatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "refactorwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// ProjectConfigFile is a per-project override read from the scan root.
const ProjectConfigFile = ".refactorwatch.yaml"

// EnvPrefix is the prefix for environment variable overrides,
// e.g. REFACTORWATCH_MAX_LINES.
const EnvPrefix = "REFACTORWATCH"

// DefaultExclude lists path substrings skipped by the CLI when no exclude
// list is configured.
var DefaultExclude = []string{".git", "node_modules", "venv", "__pycache__", "dist"}

// DefaultIssues holds the default issue-creation settings.
var DefaultIssues = Issues{
	Limit:   5,
	Command: "gh",
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
}

// Default returns a Config populated with every default value.
func Default() Config {
	return Config{
		MaxLines:     scanner.DefaultMaxLines,
		MaxTestLines: scanner.DefaultMaxTestLines,
		Extensions:   append([]string(nil), scanner.DefaultExtensions...),
		Exclude:      append([]string(nil), DefaultExclude...),
		Issues:       DefaultIssues,
		Output:       DefaultOutput,
	}
}
