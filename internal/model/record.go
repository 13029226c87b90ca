// Package model contains domain types for gitlab-activity.
// These types are independent of the GitLab API response shapes.
package model

import "time"

// Kind identifies the two supported activity types.
type Kind string

const (
	KindIssues        Kind = "issues"
	KindMergeRequests Kind = "mergeRequests"
)

// AllKinds contains every valid activity kind, in query order.
var AllKinds = []Kind{KindIssues, KindMergeRequests}

// ValidKind reports whether s names a supported activity kind.
func ValidKind(s string) bool {
	for _, k := range AllKinds {
		if string(k) == s {
			return true
		}
	}
	return false
}

// State is the lifecycle state of an issue or merge request.
type State string

const (
	StateOpened State = "opened"
	StateClosed State = "closed"
	StateMerged State = "merged"
)

// User identifies a GitLab user by username and profile URL.
// Two users are the same iff both fields are equal.
type User struct {
	Username string
	WebURL   string
}

// ActivityRecord is one issue or merge request returned by an activity
// query, flattened from the nested GraphQL response.
type ActivityRecord struct {
	ID        string
	Kind      Kind
	State     State
	Title     string
	WebURL    string
	Reference string

	CreatedAt time.Time
	UpdatedAt time.Time
	ClosedAt  *time.Time
	MergedAt  *time.Time

	Labels      []string
	EmojiCounts map[string]int

	// Merge request only fields.
	TargetBranch   string
	MergeCommitSHA string
	MergeUser      *User
	Committers     []User
	Reviewers      []User

	// Issue only: number of merge requests closed by this issue.
	MergeRequestsCount int

	Author       *User
	Participants []User

	// Contributors is the ordered, bot-filtered attribution list,
	// computed after normalization.
	Contributors []User

	// Org and Repo are derived from the web URL path.
	Org  string
	Repo string
}

// HasLabel reports whether the record carries the exact label.
func (r *ActivityRecord) HasLabel(label string) bool {
	for _, l := range r.Labels {
		if l == label {
			return true
		}
	}
	return false
}
