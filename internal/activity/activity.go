// Package activity turns raw GitLab issue and merge request data into
// attributed, bucketed and grouped activity ready for rendering.
package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/glclient"
	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// Window is the resolved query window. The IsRef flags record whether
// a bound came from a git ref rather than a date, which decides how the
// bound is labelled and linked in the report.
type Window struct {
	Since      time.Time
	SinceIsRef bool
	SinceLabel string
	Until      time.Time
	UntilIsRef bool
	UntilLabel string
}

// Result is the fetched and normalized activity for one target and
// window.
type Result struct {
	Target  *glclient.Target
	Window  Window
	Records []model.ActivityRecord
}

// FetchOptions controls which activity kinds Fetch retrieves.
type FetchOptions struct {
	// Kinds to query; nil means all.
	Kinds []model.Kind
	// BotUsers is the contributor exclusion list.
	BotUsers []string
}

// Fetch resolves the since/until bounds against the target, queries
// every requested activity kind and returns the deduplicated,
// attributed records.
func Fetch(ctx context.Context, c *glclient.Client, tgt *glclient.Target, since, until string, opts FetchOptions) (*Result, error) {
	sinceAt, sinceIsRef, err := c.ResolveTime(ctx, tgt.ID, since)
	if err != nil {
		return nil, err
	}
	untilAt, untilIsRef, err := c.ResolveTime(ctx, tgt.ID, until)
	if err != nil {
		return nil, err
	}
	if untilAt.Before(sinceAt) {
		return nil, fmt.Errorf("until (%s) precedes since (%s)", untilAt.Format(time.RFC3339), sinceAt.Format(time.RFC3339))
	}

	window := Window{
		Since: sinceAt, SinceIsRef: sinceIsRef, SinceLabel: boundLabel(since, sinceAt),
		Until: untilAt, UntilIsRef: untilIsRef, UntilLabel: boundLabel(until, untilAt),
	}

	kinds := opts.Kinds
	if len(kinds) == 0 {
		kinds = model.AllKinds
	}

	var records []model.ActivityRecord
	for _, kind := range kinds {
		log.Info("fetching activity", "target", tgt.Path, "kind", kind)
		nodes, err := c.FetchActivity(ctx, tgt, kind, sinceAt, untilAt)
		if err != nil {
			return nil, err
		}
		recs, err := glclient.Normalize(kind, nodes)
		if err != nil {
			return nil, err
		}
		records = append(records, recs...)
	}

	records = glclient.DedupeRecords(records)
	Attribute(records, opts.BotUsers)

	return &Result{Target: tgt, Window: window, Records: records}, nil
}

// boundLabel picks the report label for a window bound: the value the
// caller passed when there was one (a ref or date spelling), otherwise
// the resolved timestamp's date.
func boundLabel(raw string, at time.Time) string {
	if raw != "" {
		return raw
	}
	return at.Format("2006-01-02")
}
