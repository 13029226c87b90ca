package cmd

import (
	"github.com/spf13/cobra"
)

// New creates the root command with all subcommands registered.
func New() *cobra.Command {
	opts := &Options{}

	rootCmd := &cobra.Command{
		Use:   "gitlab-activity",
		Short: "Grab recent issue and merge request activity from GitLab",
		Long: `A CLI tool that queries a GitLab project, group or namespace for
issue and merge request activity in a time window and renders it as a
grouped markdown changelog entry.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, opts)
		},
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	addGenerateFlags(rootCmd, opts)

	rootCmd.AddCommand(NewCmdConfig())
	rootCmd.AddCommand(NewCmdCache(opts))
	rootCmd.AddCommand(NewCmdVersion())

	return rootCmd
}

func addGenerateFlags(cmd *cobra.Command, opts *Options) {
	f := cmd.Flags()
	f.StringVarP(&opts.Target, "target", "t", "", "Project, group or namespace to report on (path or URL); inferred from the local git remote when omitted")
	f.StringVarP(&opts.ConfigPath, "config", "c", "", "Path to a configuration file (default .gitlab-activity.toml/.yaml)")
	f.StringVar(&opts.Token, "auth", "", "GitLab access token (default $GITLAB_ACCESS_TOKEN, then glab)")
	f.StringVarP(&opts.Branch, "branch", "b", "main", "Target branch merge requests must land on")
	f.StringVarP(&opts.Since, "since", "s", "", "Window start: a date, natural language or a git ref (default the latest tag)")
	f.StringVarP(&opts.Until, "until", "u", "", "Window end: a date, natural language or a git ref (default now)")
	f.StringVar(&opts.Kind, "kind", "", "Only report one activity kind (issues or mergeRequests)")
	f.StringVarP(&opts.Output, "output", "o", "", "Write the entry to this file instead of stdout")
	f.BoolVar(&opts.Append, "append", false, "Splice the entry into the output file between its changelog markers")
	f.IntVar(&opts.HeadingLevel, "heading-level", 1, "Markdown heading level of the entry title")
	f.BoolVar(&opts.IncludeIssues, "include-issues", false, "Include closed issues alongside merged MRs")
	f.BoolVar(&opts.IncludeOpened, "include-opened", false, "Include records opened in the window as well")
	f.BoolVar(&opts.IncludeContributorsList, "include-contributors-list", false, "Append the combined contributor list")
	f.BoolVar(&opts.StripBrackets, "strip-brackets", false, "Strip leading [bracketed] tags from titles")
	f.BoolVar(&opts.All, "all", false, "Render one entry per released tag instead of a single window")
	f.BoolVar(&opts.Cache, "cache", false, "Persist fetched activity to the local CSV cache")
	f.StringVar(&opts.CachePath, "cache-path", "", "Cache directory (default ~/.cache/gitlab-activity-data)")
	f.CountVarP(&opts.Verbosity, "verbose", "v", "Increase log verbosity (-v, -vv)")
}
