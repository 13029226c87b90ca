package glclient

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// ScopeKind is the resolved kind of a query target.
type ScopeKind string

const (
	ScopeProject   ScopeKind = "project"
	ScopeGroup     ScopeKind = "group"
	ScopeNamespace ScopeKind = "namespace"
)

// scopeProbeOrder is the fixed priority in which target kinds are
// probed. The first kind reporting an id wins.
var scopeProbeOrder = []ScopeKind{ScopeGroup, ScopeProject, ScopeNamespace}

// Target is a fully resolved query target.
type Target struct {
	Domain string
	Path   string
	Kind   ScopeKind
	ID     string // numeric id reported by the API
}

// SanitizeTarget splits a free-form target string into a domain and a
// normalized path. Accepted forms:
//
//   - gitlab-org
//   - gitlab-org/gitlab-docs
//   - gitlab.com/gitlab-org
//   - http(s)://gitlab.com/gitlab-org/gitlab-docs(.git)
//   - git@gitlab.com:gitlab-org/gitlab-docs(.git)
//
// When the string carries no domain, gitlab.com is assumed.
func SanitizeTarget(target string) (domain, path string) {
	domain = DefaultDomain
	path = target

	switch {
	case strings.HasPrefix(target, "http"):
		rest := target[strings.Index(target, "//")+2:]
		domain, path, _ = strings.Cut(rest, "/")
	case strings.Contains(target, "@"):
		rest := target[strings.LastIndex(target, "@")+1:]
		domain, path, _ = strings.Cut(rest, ":")
		path = strings.ReplaceAll(path, ":", "/")
	case strings.Contains(target, "."):
		for _, part := range strings.Split(target, "/") {
			if strings.Contains(part, ".") {
				domain = part
				break
			}
		}
		_, path, _ = strings.Cut(target, domain)
	}

	// A URL may still carry credentials in front of the host.
	if at := strings.LastIndex(domain, "@"); at >= 0 {
		domain = domain[at+1:]
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	return domain, path
}

// Resolve sanitizes a free-form target, builds a client for its domain
// and probes the API for the target's scope kind and numeric id.
// Probe order is group, project, namespace; the first hit wins. When no
// probe succeeds the whole resolution fails with AmbiguousTargetError.
func Resolve(ctx context.Context, target, token string, opts ...Option) (*Client, *Target, error) {
	domain, path := SanitizeTarget(target)

	client, err := New(domain, token, opts...)
	if err != nil {
		return nil, nil, err
	}

	tgt, err := client.resolvePath(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return client, tgt, nil
}

func (c *Client) resolvePath(ctx context.Context, path string) (*Target, error) {
	for _, kind := range scopeProbeOrder {
		id, err := c.lookupScopeID(ctx, kind, path)
		if err != nil {
			var qerr *model.QueryFailedError
			if errors.As(err, &qerr) {
				// A failed probe is a miss, not a fatal error.
				log.Debug("scope probe failed", "kind", kind, "path", path, "error", qerr.Message)
				continue
			}
			return nil, err
		}
		if id != "" {
			log.Debug("resolved target", "path", path, "kind", kind, "id", id)
			return &Target{Domain: c.domain, Path: path, Kind: kind, ID: id}, nil
		}
	}
	return nil, &model.AmbiguousTargetError{Target: path}
}

// lookupScopeID asks the API whether path exists as the given scope
// kind. It returns the numeric id, or "" when the scope reports null.
func (c *Client) lookupScopeID(ctx context.Context, kind ScopeKind, path string) (string, error) {
	query, err := buildScopeIDQuery(kind, path)
	if err != nil {
		return "", err
	}

	data, err := c.executeGraphQL(ctx, query)
	if err != nil {
		return "", err
	}

	var payload map[string]*struct {
		Name string `json:"name"`
		ID   string `json:"id"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", err
	}

	scope := payload[string(kind)]
	if scope == nil || scope.ID == "" {
		return "", nil
	}

	// Ids come back as global ids like gid://gitlab/Project/278964.
	id := scope.ID
	if i := strings.LastIndex(id, "/"); i >= 0 {
		id = id[i+1:]
	}
	return id, nil
}

// NamespaceProjects returns the full paths of every project contained
// in the namespace.
func (c *Client) NamespaceProjects(ctx context.Context, path string) ([]string, error) {
	query, err := buildNamespaceProjectsQuery(path)
	if err != nil {
		return nil, err
	}

	data, err := c.executeGraphQL(ctx, query)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Namespace *struct {
			Projects struct {
				Edges []struct {
					Node struct {
						FullPath string `json:"fullPath"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"projects"`
		} `json:"namespace"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, err
	}

	var projects []string
	if payload.Namespace != nil {
		for _, e := range payload.Namespace.Projects.Edges {
			projects = append(projects, e.Node.FullPath)
		}
	}
	if len(projects) == 0 {
		return nil, &model.QueryFailedError{
			Query:   query,
			Message: "failed to retrieve projects for namespace " + path,
		}
	}
	return projects, nil
}
