package glclient

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// Raw GraphQL response shapes. These are the only place the nested
// node/edge structure of the API is spelled out; everything downstream
// works with flat model.ActivityRecord values.

type rawUser struct {
	Username *string `json:"username"`
	WebURL   *string `json:"webUrl"`
	Bot      bool    `json:"bot"`
}

type rawLabelConnection struct {
	Edges []struct {
		Node struct {
			Title string `json:"title"`
		} `json:"node"`
	} `json:"edges"`
}

type rawUserConnection struct {
	Edges []struct {
		Node rawUser `json:"node"`
	} `json:"edges"`
}

type rawEmojiConnection struct {
	Edges []struct {
		Node struct {
			Emoji string `json:"emoji"`
			Name  string `json:"name"`
		} `json:"node"`
	} `json:"edges"`
}

// rawActivityNode is the union of the issue and merge request node
// shapes. Pointer fields distinguish absent from zero.
type rawActivityNode struct {
	ID                 *string             `json:"id"`
	State              *string             `json:"state"`
	Title              *string             `json:"title"`
	WebURL             *string             `json:"webUrl"`
	Reference          *string             `json:"reference"`
	CreatedAt          *time.Time          `json:"createdAt"`
	UpdatedAt          *time.Time          `json:"updatedAt"`
	ClosedAt           *time.Time          `json:"closedAt"`
	MergedAt           *time.Time          `json:"mergedAt"`
	MergeCommitSHA     *string             `json:"mergeCommitSha"`
	TargetBranch       *string             `json:"targetBranch"`
	MergeRequestsCount int                 `json:"mergeRequestsCount"`
	Labels             *rawLabelConnection `json:"labels"`
	Author             *rawUser            `json:"author"`
	MergeUser          *rawUser            `json:"mergeUser"`
	AwardEmoji         *rawEmojiConnection `json:"awardEmoji"`
	Committers         *rawUserConnection  `json:"committers"`
	Reviewers          *rawUserConnection  `json:"reviewers"`
	Participants       *rawUserConnection  `json:"participants"`
}

// Normalize flattens a raw node list for one activity kind into
// ActivityRecords. A node missing any required field fails the whole
// batch with MalformedResponseError; no partial record is synthesized.
func Normalize(kind model.Kind, nodes []json.RawMessage) ([]model.ActivityRecord, error) {
	records := make([]model.ActivityRecord, 0, len(nodes))
	for _, raw := range nodes {
		var node rawActivityNode
		if err := json.Unmarshal(raw, &node); err != nil {
			return nil, fmt.Errorf("decoding %s node: %w", kind, err)
		}

		rec, err := normalizeNode(kind, &node)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func normalizeNode(kind model.Kind, node *rawActivityNode) (*model.ActivityRecord, error) {
	required := []struct {
		field   string
		present bool
	}{
		{"id", node.ID != nil},
		{"state", node.State != nil},
		{"title", node.Title != nil},
		{"webUrl", node.WebURL != nil},
		{"reference", node.Reference != nil},
		{"createdAt", node.CreatedAt != nil},
	}
	for _, r := range required {
		if !r.present {
			return nil, &model.MalformedResponseError{Field: r.field, Kind: kind}
		}
	}

	org, repo, err := splitWebURL(*node.WebURL)
	if err != nil {
		return nil, &model.MalformedResponseError{Field: "webUrl", Kind: kind}
	}

	rec := &model.ActivityRecord{
		ID:                 *node.ID,
		Kind:               kind,
		State:              model.State(*node.State),
		Title:              *node.Title,
		WebURL:             *node.WebURL,
		Reference:          strings.TrimLeft(*node.Reference, "#!"),
		CreatedAt:          *node.CreatedAt,
		ClosedAt:           node.ClosedAt,
		MergedAt:           node.MergedAt,
		MergeRequestsCount: node.MergeRequestsCount,
		Labels:             flattenLabels(node.Labels),
		EmojiCounts:        flattenEmoji(node.AwardEmoji),
		Author:             flattenUser(node.Author),
		MergeUser:          flattenUser(node.MergeUser),
		Committers:         uniqueUsers(node.Committers),
		Reviewers:          uniqueUsers(node.Reviewers),
		Participants:       uniqueUsers(node.Participants),
		Org:                org,
		Repo:               repo,
	}
	if node.UpdatedAt != nil {
		rec.UpdatedAt = *node.UpdatedAt
	}
	if node.MergeCommitSHA != nil {
		rec.MergeCommitSHA = *node.MergeCommitSHA
	}
	if node.TargetBranch != nil {
		rec.TargetBranch = *node.TargetBranch
	}
	return rec, nil
}

// splitWebURL derives org and repo from a web URL of the form
// https://{domain}/{org}/{subgroups...}/{repo}/-/issues/{iid}. The path
// before the /-/ separator is split into the top-level org and the
// remaining repo path.
func splitWebURL(webURL string) (org, repo string, err error) {
	head, _, _ := strings.Cut(webURL, "/-/")
	segments := strings.Split(head, "/")
	// scheme + empty + domain + org + repo path
	if len(segments) < 5 {
		return "", "", fmt.Errorf("web URL %q has no org/repo path", webURL)
	}
	return segments[3], strings.Join(segments[4:], "/"), nil
}

func flattenLabels(conn *rawLabelConnection) []string {
	if conn == nil {
		return nil
	}
	labels := make([]string, 0, len(conn.Edges))
	for _, e := range conn.Edges {
		labels = append(labels, e.Node.Title)
	}
	return labels
}

func flattenEmoji(conn *rawEmojiConnection) map[string]int {
	if conn == nil || len(conn.Edges) == 0 {
		return nil
	}
	counts := make(map[string]int, len(conn.Edges))
	for _, e := range conn.Edges {
		counts[e.Node.Name]++
	}
	return counts
}

func flattenUser(u *rawUser) *model.User {
	if u == nil || u.Username == nil {
		return nil
	}
	user := &model.User{Username: *u.Username}
	if u.WebURL != nil {
		user.WebURL = *u.WebURL
	}
	return user
}

// uniqueUsers flattens a user connection to a sorted set of unique
// users, dropping entries the API flags as bots.
func uniqueUsers(conn *rawUserConnection) []model.User {
	if conn == nil {
		return nil
	}
	seen := make(map[model.User]struct{}, len(conn.Edges))
	for _, e := range conn.Edges {
		u := flattenUser(&e.Node)
		if u == nil || e.Node.Bot {
			continue
		}
		seen[*u] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	users := make([]model.User, 0, len(seen))
	for u := range seen {
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Username != users[j].Username {
			return users[i].Username < users[j].Username
		}
		return users[i].WebURL < users[j].WebURL
	})
	return users
}

// DedupeRecords drops records whose id was already seen, keeping the
// first occurrence. Deduplication is idempotent.
func DedupeRecords(records []model.ActivityRecord) []model.ActivityRecord {
	seen := make(map[string]struct{}, len(records))
	out := records[:0:0]
	for _, rec := range records {
		if _, ok := seen[rec.ID]; ok {
			continue
		}
		seen[rec.ID] = struct{}{}
		out = append(out, rec)
	}
	return out
}
