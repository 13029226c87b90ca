package activity

import (
	"testing"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

var (
	since = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	until = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func tp(t time.Time) *time.Time { return &t }

func TestSplitBuckets(t *testing.T) {
	inWin := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	outWin := time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)

	records := []model.ActivityRecord{
		{Kind: model.KindMergeRequests, Title: "merged in window", State: model.StateMerged, MergedAt: tp(inWin), TargetBranch: "main"},
		{Kind: model.KindMergeRequests, Title: "merged before window", State: model.StateMerged, MergedAt: tp(outWin), TargetBranch: "main"},
		{Kind: model.KindMergeRequests, Title: "opened in window", State: model.StateOpened, CreatedAt: inWin, TargetBranch: "main"},
		{Kind: model.KindMergeRequests, Title: "other branch", State: model.StateMerged, MergedAt: tp(inWin), TargetBranch: "release-1.0"},
		{Kind: model.KindIssues, Title: "closed in window", State: model.StateClosed, ClosedAt: tp(inWin), CreatedAt: outWin},
		{Kind: model.KindIssues, Title: "still open", State: model.StateOpened, CreatedAt: inWin},
	}

	buckets := SplitBuckets(records, since, until, BucketOptions{
		Branch:        "main",
		IncludeIssues: true,
		IncludeOpened: true,
	})
	if len(buckets) != 4 {
		t.Fatalf("SplitBuckets() = %d buckets, want 4", len(buckets))
	}

	wantTitles := map[BucketKey][]string{
		BucketMergedMRs:    {"merged in window"},
		BucketOpenedMRs:    {"opened in window"},
		BucketClosedIssues: {"closed in window"},
		BucketOpenedIssues: {"still open"},
	}
	for _, b := range buckets {
		want := wantTitles[b.Key]
		if len(b.Records) != len(want) {
			t.Errorf("bucket %s has %d records, want %d", b.Key, len(b.Records), len(want))
			continue
		}
		for i, r := range b.Records {
			if r.Title != want[i] {
				t.Errorf("bucket %s record %d = %q, want %q", b.Key, i, r.Title, want[i])
			}
		}
	}
}

func TestSplitBucketsDefaults(t *testing.T) {
	// only merged MRs without the include flags
	buckets := SplitBuckets(nil, since, until, BucketOptions{})
	if len(buckets) != 1 || buckets[0].Key != BucketMergedMRs {
		t.Fatalf("SplitBuckets() = %+v, want single merged-MRs bucket", buckets)
	}
}

func TestSplitBucketsInclusiveBounds(t *testing.T) {
	records := []model.ActivityRecord{
		{Kind: model.KindMergeRequests, Title: "at since", State: model.StateMerged, MergedAt: tp(since)},
		{Kind: model.KindMergeRequests, Title: "at until", State: model.StateMerged, MergedAt: tp(until)},
	}
	buckets := SplitBuckets(records, since, until, BucketOptions{})
	if len(buckets[0].Records) != 2 {
		t.Errorf("window bounds not inclusive: got %d records, want 2", len(buckets[0].Records))
	}
}

func TestSplitBucketsClosedMRNotMerged(t *testing.T) {
	inWin := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	records := []model.ActivityRecord{
		{Kind: model.KindMergeRequests, Title: "closed with merge time", State: model.StateClosed, MergedAt: tp(inWin)},
	}
	buckets := SplitBuckets(records, since, until, BucketOptions{})
	if len(buckets[0].Records) != 0 {
		t.Errorf("closed MR counted as merged: %+v", buckets[0].Records)
	}
}

func TestBucketKeyTitle(t *testing.T) {
	tests := []struct {
		key  BucketKey
		want string
	}{
		{BucketMergedMRs, "Merged MRs"},
		{BucketOpenedMRs, "Opened MRs"},
		{BucketClosedIssues, "Closed Issues"},
		{BucketOpenedIssues, "Opened Issues"},
	}
	for _, tt := range tests {
		if got := tt.key.Title(); got != tt.want {
			t.Errorf("%s.Title() = %q, want %q", tt.key, got, tt.want)
		}
	}
}
