package cmd

// Options holds the shared command-line options for the
// gitlab-activity CLI.
type Options struct {
	Target     string
	ConfigPath string
	Token      string

	Branch string
	Since  string
	Until  string
	Kind   string

	Output string
	Append bool

	HeadingLevel            int
	IncludeIssues           bool
	IncludeOpened           bool
	IncludeContributorsList bool
	StripBrackets           bool

	All       bool
	Cache     bool
	CachePath string

	Verbosity int
}
