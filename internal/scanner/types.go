// Package scanner finds source files that exceed configured line-count
// thresholds ("monoliths") under a directory tree.
package scanner

import (
	"errors"
	"fmt"
)

// Default thresholds and extensions applied when a Config leaves them unset.
const (
	DefaultMaxLines     = 500
	DefaultMaxTestLines = 1000
)

// DefaultExtensions are the file suffixes considered when none are configured.
var DefaultExtensions = []string{".py", ".js", ".ts", ".html", ".css"}

// ErrInvalidConfig is returned by Config.Validate for unusable settings.
var ErrInvalidConfig = errors.New("invalid scanner config")

// Config controls what a scan considers a monolith. Every field left unset
// (nil or empty) falls back to its default independently, so partial
// configurations are legal. An explicit zero threshold is kept.
type Config struct {
	// MaxLines is the threshold for ordinary source files.
	MaxLines *int `json:"max_lines,omitempty" mapstructure:"max_lines"`

	// MaxTestLines is the threshold for files classified as tests.
	MaxTestLines *int `json:"max_test_lines,omitempty" mapstructure:"max_test_lines"`

	// Extensions lists the literal suffixes (with leading dot) to scan.
	Extensions []string `json:"extensions" mapstructure:"extensions"`

	// Exclude lists substrings; any file whose absolute path contains one
	// of them is skipped.
	Exclude []string `json:"exclude" mapstructure:"exclude"`
}

// Limit returns a pointer to n for use as a Config threshold.
func Limit(n int) *int {
	return &n
}

// Thresholds returns the effective line limits, defaults included.
func (c Config) Thresholds() (maxLines, maxTestLines int) {
	maxLines, maxTestLines = DefaultMaxLines, DefaultMaxTestLines
	if c.MaxLines != nil {
		maxLines = *c.MaxLines
	}
	if c.MaxTestLines != nil {
		maxTestLines = *c.MaxTestLines
	}
	return maxLines, maxTestLines
}

// withDefaults returns a copy of c with unset fields filled in. The copy
// shares no memory with c.
func (c Config) withDefaults() Config {
	maxLines, maxTestLines := c.Thresholds()
	c.MaxLines = Limit(maxLines)
	c.MaxTestLines = Limit(maxTestLines)
	if len(c.Extensions) == 0 {
		c.Extensions = append([]string(nil), DefaultExtensions...)
	} else {
		c.Extensions = append([]string(nil), c.Extensions...)
	}
	c.Exclude = append([]string(nil), c.Exclude...)
	return c
}

// Validate reports configuration values that would make thresholds
// meaningless. It does not apply defaults.
func (c Config) Validate() error {
	if c.MaxLines != nil && *c.MaxLines < 0 {
		return fmt.Errorf("%w: max_lines must not be negative (got %d)", ErrInvalidConfig, *c.MaxLines)
	}
	if c.MaxTestLines != nil && *c.MaxTestLines < 0 {
		return fmt.Errorf("%w: max_test_lines must not be negative (got %d)", ErrInvalidConfig, *c.MaxTestLines)
	}
	for _, ext := range c.Extensions {
		if len(ext) < 2 || ext[0] != '.' {
			return fmt.Errorf("%w: extension %q must start with a dot", ErrInvalidConfig, ext)
		}
	}
	return nil
}

// Violation describes one file whose line count exceeds its threshold.
type Violation struct {
	// Path is the file location relative to the scan root.
	Path string `json:"path"`

	// AbsolutePath is the fully resolved location of the file.
	AbsolutePath string `json:"absolute_path"`

	// Lines is the measured line count.
	Lines int `json:"lines"`

	// Type is the language tag derived from the file suffix.
	Type string `json:"type"`

	// IsTest is true when the file was classified as a test file.
	IsTest bool `json:"is_test"`

	// ExcessLines is Lines minus the applicable threshold; always positive.
	ExcessLines int `json:"excess_lines"`
}

// InvalidRootError is returned when the scan root is missing or is not a
// directory.
type InvalidRootError struct {
	Root string
	Err  error
}

func (e *InvalidRootError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid scan root %q: %v", e.Root, e.Err)
	}
	return fmt.Sprintf("invalid scan root %q: not a directory", e.Root)
}

func (e *InvalidRootError) Unwrap() error {
	return e.Err
}
