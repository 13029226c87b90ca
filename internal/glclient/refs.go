package glclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	naturaldate "github.com/tj/go-naturaldate"
	gitlab "gitlab.com/gitlab-org/api/client-go"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// dateLayouts are tried in order when parsing a since/until value as a
// calendar date.
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ResolveTime turns a since/until value into an absolute timestamp plus
// a flag recording whether the value named a git reference.
//
// An empty value resolves to the current UTC time and is not a ref.
// Otherwise the value is first tried as a commit/tag reference against
// the target project; on success the commit's committed timestamp is
// used and the value is a ref. When the ref lookup fails the value is
// parsed as a date string (exact layouts first, then natural language)
// and is not a ref. When both paths fail the resolution fails with
// InvalidDateOrRefError.
func (c *Client) ResolveTime(ctx context.Context, targetID, value string) (time.Time, bool, error) {
	if value == "" {
		return time.Now().UTC(), false, nil
	}

	if t, err := c.commitTime(ctx, targetID, value); err == nil {
		return t, true, nil
	} else {
		log.Debug("not resolvable as a ref", "value", value, "error", err)
	}

	if t, err := parseDate(value); err == nil {
		return t, false, nil
	}

	return time.Time{}, false, &model.InvalidDateOrRefError{Value: value}
}

// commitTime fetches commit metadata for a ref and returns its
// committed timestamp.
func (c *Client) commitTime(ctx context.Context, targetID, ref string) (time.Time, error) {
	pid, err := strconv.Atoi(targetID)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid project id %q: %w", targetID, err)
	}

	commit, _, err := c.rest.Commits.GetCommit(pid, ref, nil, gitlab.WithContext(ctx))
	if err != nil {
		return time.Time{}, err
	}
	if commit.CommittedDate == nil {
		return time.Time{}, fmt.Errorf("commit %s has no committed date", ref)
	}
	return *commit.CommittedDate, nil
}

// parseDate parses a date string. Exact layouts are tried first; if
// none match, the input is interpreted as natural language relative to
// the current time.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return naturaldate.Parse(s, time.Now().UTC(), naturaldate.WithDirection(naturaldate.Past))
}

// Tag is one repository tag with the creation time of its commit.
type Tag struct {
	Name      string
	Target    string
	CreatedAt time.Time
}

// ListTags returns the project's tags, newest first, as reported by the
// tags REST endpoint.
func (c *Client) ListTags(ctx context.Context, target, targetID string) ([]Tag, error) {
	pid, err := strconv.Atoi(targetID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id %q: %w", targetID, err)
	}

	opt := &gitlab.ListTagsOptions{
		ListOptions: gitlab.ListOptions{PerPage: 100},
	}
	raw, _, err := c.rest.Tags.ListTags(pid, opt, gitlab.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("failed to get tags for target %s: %w", target, err)
	}

	var tags []Tag
	for _, t := range raw {
		tag := Tag{Name: t.Name, Target: t.Target}
		if t.Commit != nil && t.Commit.CreatedAt != nil {
			tag.CreatedAt = *t.Commit.CreatedAt
		}
		tags = append(tags, tag)
	}
	return tags, nil
}

// LatestTag returns the name of the most recent tag, or "" when the
// project has none.
func (c *Client) LatestTag(ctx context.Context, target, targetID string) (string, error) {
	tags, err := c.ListTags(ctx, target, targetID)
	if err != nil {
		return "", err
	}
	if len(tags) == 0 {
		log.Notice("No tags found for the target %s", target)
		return "", nil
	}
	return tags[0].Name, nil
}
