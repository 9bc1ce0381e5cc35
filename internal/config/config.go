package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/blackwell-systems/refactorwatch/internal/scanner"
)

// Config is the top-level refactorwatch configuration.
type Config struct {
	MaxLines     int      `mapstructure:"max_lines" yaml:"max_lines"`
	MaxTestLines int      `mapstructure:"max_test_lines" yaml:"max_test_lines"`
	Extensions   []string `mapstructure:"extensions" yaml:"extensions"`
	Exclude      []string `mapstructure:"exclude" yaml:"exclude"`
	Issues       Issues   `mapstructure:"issues" yaml:"issues"`
	Output       Output   `mapstructure:"output" yaml:"output"`
}

// Issues defines how refactoring issues are filed.
type Issues struct {
	// Repo is the default owner/name repository for new issues.
	Repo string `mapstructure:"repo" yaml:"repo"`

	// Limit caps the number of issues created per scan.
	Limit int `mapstructure:"limit" yaml:"limit"`

	// Command is the GitHub CLI executable.
	Command string `mapstructure:"command" yaml:"command"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color" yaml:"color"`
}

// Scanner returns the scanner settings carried by c. Load has already
// applied defaults, so both thresholds are passed explicitly and a
// configured 0 stays 0.
func (c *Config) Scanner() scanner.Config {
	return scanner.Config{
		MaxLines:     scanner.Limit(c.MaxLines),
		MaxTestLines: scanner.Limit(c.MaxTestLines),
		Extensions:   append([]string(nil), c.Extensions...),
		Exclude:      append([]string(nil), c.Exclude...),
	}
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.Scanner().Validate(); err != nil {
		return err
	}
	if c.Issues.Limit < 0 {
		return fmt.Errorf("%w: issues.limit must not be negative (got %d)", scanner.ErrInvalidConfig, c.Issues.Limit)
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location),
// merges a project file from root when present, applies REFACTORWATCH_*
// environment overrides and returns a validated Config with all defaults
// applied. An empty root skips the project file.
func Load(cfgFile, root string) (*Config, error) {
	v := viper.New()

	d := Default()
	v.SetDefault("max_lines", d.MaxLines)
	v.SetDefault("max_test_lines", d.MaxTestLines)
	v.SetDefault("extensions", d.Extensions)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("issues.repo", d.Issues.Repo)
	v.SetDefault("issues.limit", d.Issues.Limit)
	v.SetDefault("issues.command", d.Issues.Command)
	v.SetDefault("output.color", d.Output.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(ConfigDir())
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if root != "" {
		project := filepath.Join(root, ProjectConfigFile)
		if _, err := os.Stat(project); err == nil {
			v.SetConfigFile(project)
			v.SetConfigType("yaml")
			if err := v.MergeInConfig(); err != nil {
				return nil, fmt.Errorf("reading %s: %w", project, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration as YAML to path. It refuses
// to overwrite an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	path = expandPath(path)
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(ConfigDir(), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// DefaultConfigPath returns the expanded path of the user config file.
func DefaultConfigPath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}
