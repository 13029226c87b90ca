package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitlab-activity.toml")
	content := `
[options]
target = "gitlab-org/gitlab-docs"
branch = "master"
heading_level = 2
include_issues = true

[activity]
bot_users = ["robot-overlord"]

[[activity.categories.merge_requests]]
labels = ["bug"]
pre = ["FIX"]
description = "Bugs fixed"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Options.Target != "gitlab-org/gitlab-docs" {
		t.Errorf("Target = %q, want gitlab-org/gitlab-docs", cfg.Options.Target)
	}
	if cfg.Options.Branch != "master" {
		t.Errorf("Branch = %q, want master", cfg.Options.Branch)
	}
	if cfg.Options.HeadingLevel != 2 {
		t.Errorf("HeadingLevel = %d, want 2", cfg.Options.HeadingLevel)
	}
	if !cfg.Options.IncludeIssues {
		t.Error("IncludeIssues = false, want true")
	}
	if got := cfg.GetBotUsers(); len(got) != 1 || got[0] != "robot-overlord" {
		t.Errorf("GetBotUsers() = %v, want [robot-overlord]", got)
	}

	cats := cfg.GetCategories()
	if len(cats.MergeRequests) != 1 {
		t.Fatalf("MergeRequests categories = %d, want 1", len(cats.MergeRequests))
	}
	if cats.MergeRequests[0].Description != "Bugs fixed" {
		t.Errorf("Description = %q, want Bugs fixed", cats.MergeRequests[0].Description)
	}
	// issues fall back to the defaults
	if len(cats.Issues) != len(DefaultCategories()) {
		t.Errorf("Issues categories = %d, want %d", len(cats.Issues), len(DefaultCategories()))
	}
}

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitlab-activity.yaml")
	content := `
options:
  target: acme/widgets
  strip_brackets: true
activity:
  categories:
    issues:
      - labels: ["documentation"]
        pre: ["DOC"]
        description: Documentation improvements
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Options.Target != "acme/widgets" {
		t.Errorf("Target = %q, want acme/widgets", cfg.Options.Target)
	}
	if !cfg.Options.StripBrackets {
		t.Error("StripBrackets = false, want true")
	}
	cats := cfg.GetCategories()
	if len(cats.Issues) != 1 || cats.Issues[0].Labels[0] != "documentation" {
		t.Errorf("Issues categories = %+v, want single documentation group", cats.Issues)
	}
}

func TestLoadMissingDefaults(t *testing.T) {
	// no config file present: empty config, no error
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Options.Target != "" {
		t.Errorf("Target = %q, want empty", cfg.Options.Target)
	}
	if len(cfg.GetBotUsers()) != len(DefaultBotUsers()) {
		t.Error("expected default bot users")
	}
}

func TestLoadExplicitMissing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatal("Load() expected error for missing explicit path")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name:    "bad kind",
			content: "[options]\nkind = \"epics\"\n",
			wantErr: true,
		},
		{
			name:    "missing description",
			content: "[[activity.categories.issues]]\nlabels = [\"bug\"]\n",
			wantErr: true,
		},
		{
			name:    "valid kind",
			content: "[options]\nkind = \"mergeRequests\"\n",
			wantErr: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), ".gitlab-activity.toml")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatal(err)
			}
			_, err := Load(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultCategories(t *testing.T) {
	cats := DefaultCategories()
	if len(cats) != 6 {
		t.Fatalf("DefaultCategories() = %d groups, want 6", len(cats))
	}
	for _, c := range cats {
		if c.Description == "" {
			t.Errorf("category %v has empty description", c.Labels)
		}
		if len(c.Labels) == 0 {
			t.Errorf("category %q has no labels", c.Description)
		}
	}
}
