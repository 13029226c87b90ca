package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mahendrapaipuri/gitlab-activity/config"
	"github.com/mahendrapaipuri/gitlab-activity/internal/activity"
	"github.com/mahendrapaipuri/gitlab-activity/internal/changelog"
	"github.com/mahendrapaipuri/gitlab-activity/internal/gitutil"
	"github.com/mahendrapaipuri/gitlab-activity/internal/glclient"
	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

func runGenerate(cmd *cobra.Command, opts *Options) error {
	log.Initialize(opts.Verbosity, os.Stderr)

	// .env files are a convenient place for the access token
	_ = godotenv.Load()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	mergeConfig(cmd, opts, cfg)

	if err := validate(opts); err != nil {
		return err
	}

	if opts.Target == "" {
		target, err := inferTarget()
		if err != nil {
			return err
		}
		opts.Target = target
		log.Notice("Using target %s from the local git remote.", target)
	}

	token := discoverToken(opts.Token)
	if token == "" {
		log.Warn("no GitLab access token found, proceeding unauthenticated")
	}

	genOpts := buildGenerateOptions(opts, cfg, token)

	generate := changelog.Generate
	if opts.All {
		generate = changelog.GenerateAll
	}
	entry, err := generate(cmd.Context(), genOpts)
	if err != nil {
		return err
	}
	if entry == "" {
		return nil
	}

	if opts.Output == "" {
		fmt.Fprintln(cmd.OutOrStdout(), entry)
		return nil
	}
	if err := changelog.WriteFile(opts.Output, entry, opts.Append); err != nil {
		return err
	}
	log.Notice("Changelog entry written to %s.", opts.Output)
	return nil
}

// mergeConfig fills options the user did not set on the command line
// from the configuration file.
func mergeConfig(cmd *cobra.Command, opts *Options, cfg *config.Config) {
	co := cfg.Options
	set := func(flag string) bool { return cmd.Flags().Changed(flag) }

	if !set("target") && co.Target != "" {
		opts.Target = co.Target
	}
	if !set("branch") && co.Branch != "" {
		opts.Branch = co.Branch
	}
	if !set("since") && co.Since != "" {
		opts.Since = co.Since
	}
	if !set("until") && co.Until != "" {
		opts.Until = co.Until
	}
	if !set("kind") && co.Kind != "" {
		opts.Kind = co.Kind
	}
	if !set("output") && co.Output != "" {
		opts.Output = co.Output
	}
	if !set("append") && co.Append {
		opts.Append = true
	}
	if !set("heading-level") && co.HeadingLevel > 0 {
		opts.HeadingLevel = co.HeadingLevel
	}
	if !set("include-issues") && co.IncludeIssues {
		opts.IncludeIssues = true
	}
	if !set("include-opened") && co.IncludeOpened {
		opts.IncludeOpened = true
	}
	if !set("include-contributors-list") && co.IncludeContributorsList {
		opts.IncludeContributorsList = true
	}
	if !set("strip-brackets") && co.StripBrackets {
		opts.StripBrackets = true
	}
	if !set("all") && co.All {
		opts.All = true
	}
	if !set("cache") && co.Cache {
		opts.Cache = true
	}
	if !set("cache-path") && co.CachePath != "" {
		opts.CachePath = co.CachePath
	}
}

func validate(opts *Options) error {
	if opts.HeadingLevel < 1 {
		return fmt.Errorf("--heading-level must be at least 1, got %d", opts.HeadingLevel)
	}
	if opts.Kind != "" && !model.ValidKind(opts.Kind) {
		return fmt.Errorf("--kind must be issues or mergeRequests, got %q", opts.Kind)
	}
	if opts.Append && opts.Output == "" {
		return fmt.Errorf("--append requires --output")
	}
	if opts.Append {
		data, err := os.ReadFile(opts.Output)
		if err != nil {
			return fmt.Errorf("--append requires an existing changelog: %w", err)
		}
		if n := strings.Count(string(data), changelog.StartMarker); n != 1 {
			return fmt.Errorf("%s carries %d %q markers, expected exactly one", opts.Output, n, changelog.StartMarker)
		}
	}
	return nil
}

func buildGenerateOptions(opts *Options, cfg *config.Config, token string) changelog.GenerateOptions {
	var kinds []model.Kind
	switch {
	case opts.Kind != "":
		kinds = []model.Kind{model.Kind(opts.Kind)}
	case !opts.IncludeIssues:
		kinds = []model.Kind{model.KindMergeRequests}
	}

	cats := cfg.GetCategories()
	return changelog.GenerateOptions{
		Target: opts.Target,
		Token:  token,
		Branch: opts.Branch,
		Since:  opts.Since,
		Until:  opts.Until,
		Kinds:  kinds,

		HeadingLevel:        opts.HeadingLevel,
		IncludeIssues:       opts.IncludeIssues || opts.Kind == string(model.KindIssues),
		IncludeOpened:       opts.IncludeOpened,
		IncludeContributors: opts.IncludeContributorsList,
		StripBrackets:       opts.StripBrackets,

		CacheEnabled: opts.Cache,
		CachePath:    opts.CachePath,

		BotUsers:           cfg.GetBotUsers(),
		IssueGroups:        toGroupDefs(cats.Issues),
		MergeRequestGroups: toGroupDefs(cats.MergeRequests),
	}
}

func toGroupDefs(cats []config.Category) []activity.GroupDef {
	defs := make([]activity.GroupDef, len(cats))
	for i, c := range cats {
		defs[i] = activity.GroupDef{
			Labels:      c.Labels,
			Prefixes:    c.Prefixes,
			Description: c.Description,
		}
	}
	return defs
}

// inferTarget derives the report target from the local checkout's
// remote URL.
func inferTarget() (string, error) {
	if !gitutil.Installed() {
		return "", fmt.Errorf("no --target given and git is not available to infer one")
	}
	url, err := gitutil.RemoteURL()
	if err != nil {
		return "", fmt.Errorf("no --target given and none could be inferred: %w", err)
	}
	domain, path := glclient.SanitizeTarget(url)
	if domain == glclient.DefaultDomain {
		return path, nil
	}
	return domain + "/" + path, nil
}
