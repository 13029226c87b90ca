package changelog

import (
	"fmt"
	"net/url"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/activity"
	"github.com/mahendrapaipuri/gitlab-activity/internal/glclient"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// nextVersionEnv overrides the entry heading, letting release tooling
// stamp the upcoming version number.
const nextVersionEnv = "NEXT_VERSION_SPECIFIER"

// RenderInput carries everything the renderer needs for one entry.
type RenderInput struct {
	Target  *glclient.Target
	Window  activity.Window
	Buckets []activity.Bucket
	// Group definitions per activity kind.
	IssueGroups        []activity.GroupDef
	MergeRequestGroups []activity.GroupDef
}

// RenderOptions are the presentation knobs.
type RenderOptions struct {
	// HeadingLevel of the entry title; sections nest below it.
	HeadingLevel int
	// StripBrackets removes a leading "[...]" tag from titles.
	StripBrackets bool
	// IncludeContributors appends the combined contributor section.
	IncludeContributors bool
}

// RenderEntry renders one changelog entry as markdown. It returns the
// empty string when no bucket has any records.
func RenderEntry(in RenderInput, opts RenderOptions) string {
	if opts.HeadingLevel < 1 {
		opts.HeadingLevel = 1
	}

	populated := 0
	for _, b := range in.Buckets {
		populated += len(b.Records)
	}
	if populated == 0 {
		return ""
	}

	var b strings.Builder
	h := strings.Repeat("#", opts.HeadingLevel)

	title := in.Window.SinceLabel + "..." + in.Window.UntilLabel
	if v := os.Getenv(nextVersionEnv); v != "" {
		title = fmt.Sprintf("%s (%s)", v, in.Window.Until.Format("2006-01-02"))
	}
	fmt.Fprintf(&b, "%s %s\n", h, title)

	if cu := compareURL(in); cu != "" {
		fmt.Fprintf(&b, "\n([Full Changelog](%s))\n", cu)
	}

	multiBucket := len(in.Buckets) > 1
	multiRepo := repoCount(in.Buckets) > 1
	for _, bucket := range in.Buckets {
		if len(bucket.Records) == 0 {
			continue
		}
		groupLevel := opts.HeadingLevel + 1
		if multiBucket {
			fmt.Fprintf(&b, "\n%s# %s\n", h, bucket.Key.Title())
			groupLevel++
		}

		defs := in.MergeRequestGroups
		if bucket.Kind == model.KindIssues {
			defs = in.IssueGroups
		}
		groups := activity.Partition(bucket.Records, defs, "Unlabelled "+bucket.Key.Title())
		for _, g := range groups {
			fmt.Fprintf(&b, "\n%s %s\n\n", strings.Repeat("#", groupLevel), g.Description)
			writeGroup(&b, g.Records, multiRepo, groupLevel, opts.StripBrackets)
		}
	}

	if opts.IncludeContributors {
		if users := activity.RollupContributors(in.Buckets); len(users) > 0 {
			fmt.Fprintf(&b, "\n%s# Contributors to this release\n\n", h)
			links := make([]string, len(users))
			for i, u := range users {
				links[i] = userLink(u)
			}
			b.WriteString(strings.Join(links, " | ") + "\n")
		}
	}

	return b.String()
}

func writeGroup(b *strings.Builder, records []model.ActivityRecord, multiRepo bool, level int, stripBrackets bool) {
	if !multiRepo {
		for _, r := range records {
			b.WriteString(recordLine(r, stripBrackets))
		}
		return
	}

	byRepo := make(map[string][]model.ActivityRecord)
	var repos []string
	for _, r := range records {
		key := r.Org + "/" + r.Repo
		if _, ok := byRepo[key]; !ok {
			repos = append(repos, key)
		}
		byRepo[key] = append(byRepo[key], r)
	}
	sort.Strings(repos)

	for i, repo := range repos {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(b, "%s %s\n\n", strings.Repeat("#", level+1), repo)
		for _, r := range byRepo[repo] {
			b.WriteString(recordLine(r, stripBrackets))
		}
	}
}

func recordLine(r model.ActivityRecord, stripBrackets bool) string {
	title := r.Title
	if stripBrackets && strings.HasPrefix(title, "[") {
		if _, rest, ok := strings.Cut(title, "]"); ok {
			title = strings.TrimSpace(rest)
		}
	}

	line := fmt.Sprintf("- %s [#%s](%s)", title, r.Reference, r.WebURL)
	if len(r.Contributors) > 0 {
		links := make([]string, len(r.Contributors))
		for i, u := range r.Contributors {
			links[i] = userLink(u)
		}
		line += " (" + strings.Join(links, ", ") + ")"
	}
	return line + "\n"
}

func userLink(u model.User) string {
	return fmt.Sprintf("[@%s](%s)", u.Username, u.WebURL)
}

// compareURL builds the GitLab compare link for the entry. Window
// bounds that came from refs are used directly; date bounds are
// substituted with the merge commit of the merged MR closest to the
// bound, or the plain date when no merged MR exists. Only single
// projects have a compare view, and an issues-only report has nothing
// to compare.
func compareURL(in RenderInput) string {
	if in.Target == nil || in.Target.Kind != glclient.ScopeProject {
		return ""
	}
	hasMRBucket := false
	for _, b := range in.Buckets {
		if b.Kind == model.KindMergeRequests {
			hasMRBucket = true
		}
	}
	if !hasMRBucket {
		return ""
	}

	sinceRef := in.Window.SinceLabel
	untilRef := in.Window.UntilLabel
	if !in.Window.SinceIsRef {
		sinceRef = closestMergeSHA(in.Buckets, in.Window.Since)
		if sinceRef == "" {
			sinceRef = in.Window.Since.Format("2006-01-02")
		}
	}
	if !in.Window.UntilIsRef {
		untilRef = closestMergeSHA(in.Buckets, in.Window.Until)
		if untilRef == "" {
			untilRef = in.Window.Until.Format("2006-01-02")
		}
	}

	q := url.Values{}
	q.Set("from_project_id", in.Target.ID)
	q.Set("straight", "false")
	return fmt.Sprintf("https://%s/%s/-/compare/%s...%s?%s",
		in.Target.Domain, in.Target.Path, sinceRef, untilRef, q.Encode())
}

func closestMergeSHA(buckets []activity.Bucket, bound time.Time) string {
	var best string
	var bestDelta time.Duration
	for _, b := range buckets {
		if b.Key != activity.BucketMergedMRs {
			continue
		}
		for _, r := range b.Records {
			if r.MergedAt == nil || r.MergeCommitSHA == "" {
				continue
			}
			delta := r.MergedAt.Sub(bound)
			if delta < 0 {
				delta = -delta
			}
			if best == "" || delta < bestDelta {
				best = r.MergeCommitSHA
				bestDelta = delta
			}
		}
	}
	return best
}

func repoCount(buckets []activity.Bucket) int {
	repos := make(map[string]struct{})
	for _, b := range buckets {
		for _, r := range b.Records {
			repos[r.Org+"/"+r.Repo] = struct{}{}
		}
	}
	return len(repos)
}
