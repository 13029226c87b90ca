package glclient

import (
	"bytes"
	"embed"
	"fmt"
	"text/template"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

//go:embed queries/*.graphql
var queryFiles embed.FS

// Query templates parsed at init time
var (
	scopeIDTemplate           *template.Template
	namespaceProjectsTemplate *template.Template
	activityTemplate          *template.Template
	mergeRequestFields        string
	issueFields               string
)

func init() {
	scopeIDTemplate = mustParse("queries/scope_id.graphql")
	namespaceProjectsTemplate = mustParse("queries/namespace_projects.graphql")
	activityTemplate = mustParse("queries/activity.graphql")
	mergeRequestFields = mustRead("queries/merge_request_fields.graphql")
	issueFields = mustRead("queries/issue_fields.graphql")
}

func mustParse(name string) *template.Template {
	return template.Must(template.New(name).Parse(mustRead(name)))
}

func mustRead(name string) string {
	data, err := queryFiles.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to load %s: %v", name, err))
	}
	return string(data)
}

// buildScopeIDQuery builds the id-lookup query used to probe whether a
// path names a project, group or namespace.
func buildScopeIDQuery(kind ScopeKind, path string) (string, error) {
	var buf bytes.Buffer
	err := scopeIDTemplate.Execute(&buf, struct {
		Kind ScopeKind
		Path string
	}{kind, path})
	if err != nil {
		return "", fmt.Errorf("building scope id query: %w", err)
	}
	return buf.String(), nil
}

// buildNamespaceProjectsQuery builds the member-project listing query
// for a namespace.
func buildNamespaceProjectsQuery(path string) (string, error) {
	var buf bytes.Buffer
	err := namespaceProjectsTemplate.Execute(&buf, struct{ Path string }{path})
	if err != nil {
		return "", fmt.Errorf("building namespace projects query: %w", err)
	}
	return buf.String(), nil
}

// activityQueryParams parameterizes one page of an activity query.
type activityQueryParams struct {
	Scope    ScopeKind
	Path     string
	Kind     model.Kind
	Since    string
	Until    string
	PageSize int
	Cursor   string
}

// buildActivityQuery builds one page of the cursor-paginated activity
// query for a kind. An empty cursor requests the first page.
func buildActivityQuery(p activityQueryParams) (string, error) {
	fields := mergeRequestFields
	if p.Kind == model.KindIssues {
		fields = issueFields
	}

	var buf bytes.Buffer
	err := activityTemplate.Execute(&buf, struct {
		activityQueryParams
		Fields string
	}{p, fields})
	if err != nil {
		return "", fmt.Errorf("building %s activity query: %w", p.Kind, err)
	}
	return buf.String(), nil
}
