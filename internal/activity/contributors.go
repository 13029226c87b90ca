package activity

import (
	"strings"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// Attribute fills in the Contributors field of every record: the
// ordered, deduplicated set of users credited for it, with bot users
// removed. The author always comes first. Merge requests then credit
// committers and participants, and finally the merge user when it is
// someone other than the author; issues credit participants.
func Attribute(records []model.ActivityRecord, botUsers []string) {
	for i := range records {
		records[i].Contributors = contributors(&records[i], botUsers)
	}
}

func contributors(r *model.ActivityRecord, botUsers []string) []model.User {
	var out []model.User
	seen := make(map[model.User]struct{})

	add := func(u *model.User) {
		if u == nil || u.Username == "" {
			return
		}
		if _, ok := seen[*u]; ok {
			return
		}
		if isBot(u.Username, botUsers) {
			return
		}
		seen[*u] = struct{}{}
		out = append(out, *u)
	}

	add(r.Author)
	switch r.Kind {
	case model.KindMergeRequests:
		for i := range r.Committers {
			add(&r.Committers[i])
		}
		for i := range r.Participants {
			add(&r.Participants[i])
		}
		if r.MergeUser != nil && (r.Author == nil || r.MergeUser.Username != r.Author.Username) {
			add(r.MergeUser)
		}
	case model.KindIssues:
		for i := range r.Participants {
			add(&r.Participants[i])
		}
	}
	return out
}

func isBot(username string, botUsers []string) bool {
	// literal substring match, no case folding
	if strings.Contains(username, "bot") {
		return true
	}
	for _, b := range botUsers {
		if username == b {
			return true
		}
	}
	return false
}

// RollupContributors returns the combined contributor list of merged
// merge requests and closed issues that have at least one associated
// merge request, in first-seen order.
func RollupContributors(buckets []Bucket) []model.User {
	var out []model.User
	seen := make(map[model.User]struct{})
	for _, b := range buckets {
		if !b.countsForRollup() {
			continue
		}
		for _, r := range b.Records {
			if r.Kind == model.KindIssues && r.MergeRequestsCount == 0 {
				continue
			}
			for _, u := range r.Contributors {
				if _, ok := seen[u]; ok {
					continue
				}
				seen[u] = struct{}{}
				out = append(out, u)
			}
		}
	}
	return out
}
