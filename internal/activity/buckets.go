package activity

import (
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// BucketKey identifies one of the four activity slices a report can
// contain.
type BucketKey string

const (
	BucketMergedMRs    BucketKey = "merged_mrs"
	BucketOpenedMRs    BucketKey = "opened_mrs"
	BucketClosedIssues BucketKey = "closed_issues"
	BucketOpenedIssues BucketKey = "opened_issues"
)

// Title returns the report heading for the bucket.
func (k BucketKey) Title() string {
	switch k {
	case BucketMergedMRs:
		return "Merged MRs"
	case BucketOpenedMRs:
		return "Opened MRs"
	case BucketClosedIssues:
		return "Closed Issues"
	case BucketOpenedIssues:
		return "Opened Issues"
	}
	return string(k)
}

// Bucket is one activity slice with the records that landed in it.
type Bucket struct {
	Key     BucketKey
	Kind    model.Kind
	Records []model.ActivityRecord
}

// countsForRollup reports whether the bucket contributes to the
// combined contributor list.
func (b Bucket) countsForRollup() bool {
	return b.Key == BucketMergedMRs || b.Key == BucketClosedIssues
}

// BucketOptions controls which slices SplitBuckets produces.
type BucketOptions struct {
	// Branch restricts merge requests to the given target branch when
	// non empty.
	Branch string
	// IncludeIssues adds the closed-issues slice (and, together with
	// IncludeOpened, the opened-issues slice).
	IncludeIssues bool
	// IncludeOpened adds the opened slices alongside the terminal
	// ones.
	IncludeOpened bool
}

// SplitBuckets partitions the records into report slices using the
// inclusive [since, until] window. Merged merge requests are selected
// by merge time, closed issues by close time, opened records by
// creation time while still open.
func SplitBuckets(records []model.ActivityRecord, since, until time.Time, opts BucketOptions) []Bucket {
	var merged, openedMRs, closed, openedIssues []model.ActivityRecord
	for _, r := range records {
		switch r.Kind {
		case model.KindMergeRequests:
			if opts.Branch != "" && r.TargetBranch != opts.Branch {
				continue
			}
			if r.MergedAt != nil && inWindow(*r.MergedAt, since, until) && r.State != model.StateClosed {
				merged = append(merged, r)
			}
			if r.State == model.StateOpened && inWindow(r.CreatedAt, since, until) {
				openedMRs = append(openedMRs, r)
			}
		case model.KindIssues:
			if r.ClosedAt != nil && inWindow(*r.ClosedAt, since, until) {
				closed = append(closed, r)
			}
			if r.State == model.StateOpened && inWindow(r.CreatedAt, since, until) {
				openedIssues = append(openedIssues, r)
			}
		}
	}

	buckets := []Bucket{{Key: BucketMergedMRs, Kind: model.KindMergeRequests, Records: merged}}
	if opts.IncludeOpened {
		buckets = append(buckets, Bucket{Key: BucketOpenedMRs, Kind: model.KindMergeRequests, Records: openedMRs})
	}
	if opts.IncludeIssues {
		buckets = append(buckets, Bucket{Key: BucketClosedIssues, Kind: model.KindIssues, Records: closed})
		if opts.IncludeOpened {
			buckets = append(buckets, Bucket{Key: BucketOpenedIssues, Kind: model.KindIssues, Records: openedIssues})
		}
	}
	return buckets
}

func inWindow(t, since, until time.Time) bool {
	return !t.Before(since) && !t.After(until)
}
