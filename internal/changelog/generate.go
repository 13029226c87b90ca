package changelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/activity"
	"github.com/mahendrapaipuri/gitlab-activity/internal/cache"
	"github.com/mahendrapaipuri/gitlab-activity/internal/gitutil"
	"github.com/mahendrapaipuri/gitlab-activity/internal/glclient"
	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// GenerateOptions is the full parameter set of a changelog run.
type GenerateOptions struct {
	Target string
	Token  string
	Branch string
	Since  string
	Until  string
	// Kinds to include; nil means all.
	Kinds []model.Kind

	HeadingLevel        int
	IncludeIssues       bool
	IncludeOpened       bool
	IncludeContributors bool
	StripBrackets       bool

	CacheEnabled bool
	CachePath    string

	BotUsers           []string
	IssueGroups        []activity.GroupDef
	MergeRequestGroups []activity.GroupDef

	// ClientOptions lets callers point the client at another API
	// endpoint.
	ClientOptions []glclient.Option
}

func (o GenerateOptions) wantsKind(kind model.Kind) bool {
	if len(o.Kinds) == 0 {
		return true
	}
	for _, k := range o.Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Generate fetches the activity for one window and renders the
// changelog entry. It returns the empty string when the window holds
// no activity.
func Generate(ctx context.Context, opts GenerateOptions) (string, error) {
	c, tgt, err := glclient.Resolve(ctx, opts.Target, opts.Token, opts.ClientOptions...)
	if err != nil {
		return "", err
	}
	return generateForTarget(ctx, c, tgt, opts)
}

func generateForTarget(ctx context.Context, c *glclient.Client, tgt *glclient.Target, opts GenerateOptions) (string, error) {
	if opts.Since == "" {
		since, err := defaultSince(ctx, c, tgt)
		if err != nil {
			return "", err
		}
		opts.Since = since
	}

	res, err := activity.Fetch(ctx, c, tgt, opts.Since, opts.Until, activity.FetchOptions{
		Kinds:    opts.Kinds,
		BotUsers: opts.BotUsers,
	})
	if err != nil {
		return "", err
	}

	if opts.CacheEnabled {
		store, err := cache.New(opts.CachePath)
		if err != nil {
			return "", err
		}
		if err := store.Save(res.Records); err != nil {
			return "", err
		}
		log.Debug("activity cached", "path", store.Root(), "records", len(res.Records))
	}

	buckets := activity.SplitBuckets(res.Records, res.Window.Since, res.Window.Until, activity.BucketOptions{
		Branch:        opts.Branch,
		IncludeIssues: opts.IncludeIssues && opts.wantsKind(model.KindIssues),
		IncludeOpened: opts.IncludeOpened,
	})

	entry := RenderEntry(RenderInput{
		Target:             tgt,
		Window:             res.Window,
		Buckets:            buckets,
		IssueGroups:        opts.IssueGroups,
		MergeRequestGroups: opts.MergeRequestGroups,
	}, RenderOptions{
		HeadingLevel:        opts.HeadingLevel,
		StripBrackets:       opts.StripBrackets,
		IncludeContributors: opts.IncludeContributors,
	})
	if entry == "" {
		log.Notice("No activity found for %s between %s and %s.", tgt.Path, res.Window.SinceLabel, res.Window.UntilLabel)
	}
	return entry, nil
}

// defaultSince picks the window start when the caller gave none: the
// project's latest tag, with a local checkout's tag as fallback.
func defaultSince(ctx context.Context, c *glclient.Client, tgt *glclient.Target) (string, error) {
	if tgt.Kind != glclient.ScopeProject {
		return "", fmt.Errorf("--since is required for %s targets", tgt.Kind)
	}
	tag, err := c.LatestTag(ctx, tgt.Path, tgt.ID)
	if err != nil {
		return "", err
	}
	if tag == "" && gitutil.Installed() {
		tag = gitutil.LatestTag()
	}
	if tag == "" {
		return "", fmt.Errorf("target %s has no tags, pass --since explicitly", tgt.Path)
	}
	log.Notice("Using latest tag %s as the window start.", tag)
	return tag, nil
}

// tagSpan is one section of an all-tags changelog: the window between
// two adjacent releases.
type tagSpan struct {
	title string
	date  string
	since string
	until string
}

// GenerateAll renders one changelog section per released tag, newest
// first, each headed by the tag name and date. Non-project targets
// have no tags; they get a single "Activity since" section covering
// the given start to now.
func GenerateAll(ctx context.Context, opts GenerateOptions) (string, error) {
	c, tgt, err := glclient.Resolve(ctx, opts.Target, opts.Token, opts.ClientOptions...)
	if err != nil {
		return "", err
	}

	var spans []tagSpan
	if tgt.Kind == glclient.ScopeProject {
		tags, err := c.ListTags(ctx, tgt.Path, tgt.ID)
		if err != nil {
			return "", err
		}
		// tags come newest first; each span runs from the previous
		// tag's commit up to this one's
		for i := 0; i+1 < len(tags); i++ {
			spans = append(spans, tagSpan{
				title: tags[i].Name,
				date:  tags[i].CreatedAt.Format("2006-01-02"),
				since: tags[i+1].Target,
				until: tags[i].Target,
			})
		}
	} else {
		if opts.Since == "" {
			return "", fmt.Errorf("--since is required for %s targets", tgt.Kind)
		}
		spans = append(spans, tagSpan{
			title: "Activity since " + opts.Since,
			date:  time.Now().UTC().Format("2006-01-02"),
			since: opts.Since,
		})
	}

	var b strings.Builder
	for i, span := range spans {
		log.Info("processing tag", "tag", span.title, "n", i+1, "total", len(spans))
		sub := opts
		sub.Since = span.since
		sub.Until = span.until
		sub.HeadingLevel = 2
		entry, err := generateForTarget(ctx, c, tgt, sub)
		if err != nil {
			return "", err
		}
		if entry == "" {
			continue
		}
		// the tag name heads the section instead of the range title
		if _, body, ok := strings.Cut(entry, "\n"); ok {
			entry = body
		}
		fmt.Fprintf(&b, "\n## %s (%s)\n%s\n", span.title, span.date, strings.TrimSpace(entry))
	}
	return b.String(), nil
}
