// Package config loads the gitlab-activity configuration file and
// holds the default group definitions and bot-user list.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
)

// Default config file names looked up in the current directory, in
// priority order.
var defaultConfigFiles = []string{
	".gitlab-activity.toml",
	".gitlab-activity.yaml",
	".gitlab-activity.yml",
}

// Config is the full configuration file contents. Every CLI flag can
// also be set in the [options] section; group definitions and bot users
// live under [activity].
type Config struct {
	Options  Options  `toml:"options" yaml:"options"`
	Activity Activity `toml:"activity" yaml:"activity"`
}

// Options mirrors the CLI flag surface.
type Options struct {
	Target                  string `toml:"target" yaml:"target"`
	Branch                  string `toml:"branch" yaml:"branch"`
	Since                   string `toml:"since" yaml:"since"`
	Until                   string `toml:"until" yaml:"until"`
	Kind                    string `toml:"kind" yaml:"kind"`
	Output                  string `toml:"output" yaml:"output"`
	Append                  bool   `toml:"append" yaml:"append"`
	HeadingLevel            int    `toml:"heading_level" yaml:"heading_level"`
	IncludeIssues           bool   `toml:"include_issues" yaml:"include_issues"`
	IncludeOpened           bool   `toml:"include_opened" yaml:"include_opened"`
	IncludeContributorsList bool   `toml:"include_contributors_list" yaml:"include_contributors_list"`
	StripBrackets           bool   `toml:"strip_brackets" yaml:"strip_brackets"`
	All                     bool   `toml:"all" yaml:"all"`
	Cache                   bool   `toml:"cache" yaml:"cache"`
	CachePath               string `toml:"cache_path" yaml:"cache_path"`
}

// Activity holds repo-specific grouping and attribution settings.
type Activity struct {
	BotUsers   []string   `toml:"bot_users" yaml:"bot_users"`
	Categories Categories `toml:"categories" yaml:"categories"`
}

// Categories holds the group definitions, one list per activity kind.
type Categories struct {
	Issues        []Category `toml:"issues" yaml:"issues"`
	MergeRequests []Category `toml:"merge_requests" yaml:"merge_requests"`
}

// Category is one caller-defined report group: records match by label
// (start-anchored regex) or title prefix (literal).
type Category struct {
	Labels      []string `toml:"labels" yaml:"labels"`
	Prefixes    []string `toml:"pre" yaml:"pre"`
	Description string   `toml:"description" yaml:"description"`
}

// Load reads the configuration from path. When path is empty the
// default file names are tried in the current directory; a missing file
// yields an empty config, not an error.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}

	for _, name := range defaultConfigFiles {
		if _, err := os.Stat(name); err == nil {
			return loadFile(name)
		}
	}
	return &Config{}, nil
}

func loadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	default:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	log.Notice("gitlab-activity configuration loaded from %s.", path)
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Options.HeadingLevel < 0 {
		return fmt.Errorf("options.heading_level must be positive, got %d", c.Options.HeadingLevel)
	}
	if k := c.Options.Kind; k != "" && k != "issues" && k != "mergeRequests" {
		return fmt.Errorf("options.kind must be issues or mergeRequests, got %q", k)
	}
	for _, cat := range append(append([]Category{}, c.Activity.Categories.Issues...), c.Activity.Categories.MergeRequests...) {
		if cat.Description == "" {
			return fmt.Errorf("every category needs a description")
		}
	}
	return nil
}

// GetBotUsers returns the configured bot users, falling back to the
// defaults.
func (c *Config) GetBotUsers() []string {
	if len(c.Activity.BotUsers) > 0 {
		return c.Activity.BotUsers
	}
	return DefaultBotUsers()
}

// GetCategories returns the configured group definitions for both
// kinds, falling back to the defaults per kind.
func (c *Config) GetCategories() Categories {
	cats := c.Activity.Categories
	if len(cats.Issues) == 0 {
		cats.Issues = DefaultCategories()
	}
	if len(cats.MergeRequests) == 0 {
		cats.MergeRequests = DefaultCategories()
	}
	return cats
}

// DefaultCategories returns the built-in group definitions applied when
// a repo configures none.
func DefaultCategories() []Category {
	return []Category{
		{
			Labels:      []string{"feature", "feat", "new"},
			Prefixes:    []string{"NEW", "FEAT", "FEATURE"},
			Description: "New features added",
		},
		{
			Labels:      []string{"enhancement", "enhancements"},
			Prefixes:    []string{"ENH", "ENHANCEMENT", "IMPROVE", "IMP"},
			Description: "Enhancements made",
		},
		{
			Labels:      []string{"bug", "bugfix", "bugs"},
			Prefixes:    []string{"FIX", "BUG"},
			Description: "Bugs fixed",
		},
		{
			Labels:      []string{"maintenance", "maint"},
			Prefixes:    []string{"MAINT", "MNT"},
			Description: "Maintenance and upkeep improvements",
		},
		{
			Labels:      []string{"documentation", "docs", "doc"},
			Prefixes:    []string{"DOC", "DOCS"},
			Description: "Documentation improvements",
		},
		{
			Labels:      []string{"deprecation", "deprecate"},
			Prefixes:    []string{"DEPRECATE", "DEPRECATION", "DEP"},
			Description: "Deprecated features",
		},
	}
}

// DefaultBotUsers returns the built-in bot-user exclusion list.
// Usernames containing "bot" are excluded independently of this list.
func DefaultBotUsers() []string {
	return []string{
		"codecov",
		"codeco-io",
		"dependabot",
		"gitlab-bot",
		"pre-commit-ci",
		"welcome",
		"stale",
	}
}

// MinimalConfig returns a starter config file template.
func MinimalConfig() string {
	return `# gitlab-activity configuration file

[options]
# target = "gitlab-org/gitlab-docs"
# branch = "main"

[activity]
# Bot users excluded from contributor lists (usernames containing
# "bot" are always excluded)
# bot_users = ["codecov", "stale"]

# Group definitions used to bucket the changelog. Labels are matched
# as start-anchored regular expressions, pre as literal title prefixes.
# [[activity.categories.merge_requests]]
# labels = ["bug", "bugfix"]
# pre = ["FIX", "BUG"]
# description = "Bugs fixed"
`
}
