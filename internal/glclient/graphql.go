package glclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// DefaultPageSize is the number of nodes requested per activity page.
const DefaultPageSize = 50

// queryTimeFormat renders window bounds the way the activity query
// expects them.
const queryTimeFormat = "2006-01-02T15:04:05Z"

// FormatQueryTime formats a window bound for an activity query.
func FormatQueryTime(t time.Time) string {
	return t.UTC().Format(queryTimeFormat)
}

// activityPage is the paginated connection envelope of one response.
type activityPage struct {
	Count    int               `json:"count"`
	Nodes    []json.RawMessage `json:"nodes"`
	PageInfo struct {
		EndCursor   string `json:"endCursor"`
		HasNextPage bool   `json:"hasNextPage"`
	} `json:"pageInfo"`
}

// FetchActivity runs the activity query for one kind against the
// target and follows cursor pagination to exhaustion, returning the
// concatenated raw node list.
//
// For a namespace target the member project paths are resolved first
// and the per-project query sequence runs for each member in turn,
// concatenating results. A target reporting zero matches contributes
// nothing and is not an error. Any failure mid-pagination discards
// everything already fetched for this kind.
func (c *Client) FetchActivity(ctx context.Context, tgt *Target, kind model.Kind, since, until time.Time) ([]json.RawMessage, error) {
	return c.FetchActivityPaged(ctx, tgt, kind, since, until, DefaultPageSize)
}

// FetchActivityPaged is FetchActivity with an explicit page size.
func (c *Client) FetchActivityPaged(ctx context.Context, tgt *Target, kind model.Kind, since, until time.Time, pageSize int) ([]json.RawMessage, error) {
	scope := tgt.Kind
	paths := []string{tgt.Path}
	if tgt.Kind == ScopeNamespace {
		var err error
		paths, err = c.NamespaceProjects(ctx, tgt.Path)
		if err != nil {
			return nil, err
		}
		scope = ScopeProject
	}

	var nodes []json.RawMessage
	for _, path := range paths {
		pageNodes, err := c.fetchTargetActivity(ctx, scope, path, kind, since, until, pageSize)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, pageNodes...)
	}
	return nodes, nil
}

// fetchTargetActivity pages through the activity query for a single
// project or group path.
func (c *Client) fetchTargetActivity(ctx context.Context, scope ScopeKind, path string, kind model.Kind, since, until time.Time, pageSize int) ([]json.RawMessage, error) {
	params := activityQueryParams{
		Scope:    scope,
		Path:     path,
		Kind:     kind,
		Since:    FormatQueryTime(since),
		Until:    FormatQueryTime(until),
		PageSize: pageSize,
	}

	var nodes []json.RawMessage
	totalPages := 1
	for page := 0; page < totalPages; page++ {
		query, err := buildActivityQuery(params)
		if err != nil {
			return nil, err
		}

		envelope, err := c.fetchActivityPage(ctx, query, scope, kind)
		if err != nil {
			return nil, err
		}

		if page == 0 {
			if envelope.Count == 0 {
				log.Notice("Found no entries for %s query on target %s", kind, path)
				return nil, nil
			}
			totalPages = (envelope.Count + pageSize - 1) / pageSize
			log.Notice("Found %d items on target %s, which will take %d pages", envelope.Count, path, totalPages)
		}

		nodes = append(nodes, envelope.Nodes...)
		log.Progress("Downloading %d/%d %s", len(nodes), envelope.Count, kind)

		if !envelope.PageInfo.HasNextPage {
			break
		}
		params.Cursor = envelope.PageInfo.EndCursor
	}
	log.ProgressDone()

	return nodes, nil
}

// fetchActivityPage executes one page query and unwraps the
// data.{scope}.{kind} connection envelope.
func (c *Client) fetchActivityPage(ctx context.Context, query string, scope ScopeKind, kind model.Kind) (*activityPage, error) {
	data, err := c.executeGraphQL(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("parsing activity response: %w", err)
	}

	raw, ok := payload[string(scope)][string(kind)]
	if !ok || raw == nil {
		return nil, &model.QueryFailedError{
			Query:   query,
			Message: fmt.Sprintf("response carries no %s.%s data", scope, kind),
		}
	}

	var envelope activityPage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("parsing %s connection: %w", kind, err)
	}
	return &envelope, nil
}
