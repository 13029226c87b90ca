package glclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

var (
	qSince = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	qUntil = time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
)

func newTestClient(t *testing.T, srv *httptest.Server) *Client {
	t.Helper()
	c, err := New("gitlab.com", "token", WithBaseURL(srv.URL))
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func TestFetchActivityPagination(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := decodeQuery(t, r)
		requests = append(requests, query)
		if strings.Contains(query, `after: "cursor-1"`) {
			fmt.Fprint(w, `{"data": {"project": {"mergeRequests": {
				"count": 3,
				"nodes": [{"n": 3}],
				"pageInfo": {"endCursor": "cursor-2", "hasNextPage": false}
			}}}}`)
			return
		}
		fmt.Fprint(w, `{"data": {"project": {"mergeRequests": {
			"count": 3,
			"nodes": [{"n": 1}, {"n": 2}],
			"pageInfo": {"endCursor": "cursor-1", "hasNextPage": true}
		}}}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Domain: "gitlab.com", Path: "acme/widgets", Kind: ScopeProject, ID: "42"}
	nodes, err := c.FetchActivityPaged(context.Background(), tgt, model.KindMergeRequests, qSince, qUntil, 2)
	if err != nil {
		t.Fatalf("FetchActivityPaged() error = %v", err)
	}
	if len(nodes) != 3 {
		t.Errorf("nodes = %d, want 3", len(nodes))
	}
	if len(requests) != 2 {
		t.Fatalf("requests = %d, want 2", len(requests))
	}
	if strings.Contains(requests[0], "after:") {
		t.Errorf("first page must not carry a cursor: %s", requests[0])
	}
	if !strings.Contains(requests[1], `after: "cursor-1"`) {
		t.Errorf("second page must resume at the first cursor: %s", requests[1])
	}
	for _, q := range requests {
		if !strings.Contains(q, `createdAfter: "2024-01-01T00:00:00Z"`) {
			t.Errorf("query missing window start: %s", q)
		}
	}
}

func TestFetchActivityStopsWithoutNextPage(t *testing.T) {
	// count above the page size but hasNextPage false: stop anyway
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"data": {"project": {"issues": {
			"count": 10,
			"nodes": [{"n": 1}],
			"pageInfo": {"endCursor": "x", "hasNextPage": false}
		}}}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Path: "acme/widgets", Kind: ScopeProject, ID: "42"}
	nodes, err := c.FetchActivityPaged(context.Background(), tgt, model.KindIssues, qSince, qUntil, 2)
	if err != nil {
		t.Fatalf("FetchActivityPaged() error = %v", err)
	}
	if len(nodes) != 1 || requests != 1 {
		t.Errorf("nodes = %d, requests = %d, want 1 and 1", len(nodes), requests)
	}
}

func TestFetchActivityZeroCount(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, `{"data": {"group": {"issues": {
			"count": 0,
			"nodes": [],
			"pageInfo": {"endCursor": "", "hasNextPage": false}
		}}}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Path: "acme", Kind: ScopeGroup, ID: "9"}
	nodes, err := c.FetchActivity(context.Background(), tgt, model.KindIssues, qSince, qUntil)
	if err != nil {
		t.Fatalf("FetchActivity() error = %v", err)
	}
	if nodes != nil {
		t.Errorf("nodes = %v, want nil", nodes)
	}
	if requests != 1 {
		t.Errorf("requests = %d, want 1", requests)
	}
}

func TestFetchActivityNamespaceFanOut(t *testing.T) {
	var projectQueries []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := decodeQuery(t, r)
		switch {
		case strings.Contains(query, "namespace (fullPath"):
			fmt.Fprint(w, `{"data": {"namespace": {"projects": {"edges": [
				{"node": {"fullPath": "jane/dotfiles"}},
				{"node": {"fullPath": "jane/scripts"}}
			]}}}}`)
		case strings.Contains(query, "project (fullPath"):
			projectQueries = append(projectQueries, query)
			count := 0
			nodes := "[]"
			if strings.Contains(query, `"jane/dotfiles"`) {
				count = 1
				nodes = `[{"n": 1}]`
			}
			fmt.Fprintf(w, `{"data": {"project": {"mergeRequests": {
				"count": %d,
				"nodes": %s,
				"pageInfo": {"endCursor": "", "hasNextPage": false}
			}}}}`, count, nodes)
		default:
			t.Errorf("unexpected query: %s", query)
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Path: "jane", Kind: ScopeNamespace, ID: "7"}
	nodes, err := c.FetchActivity(context.Background(), tgt, model.KindMergeRequests, qSince, qUntil)
	if err != nil {
		t.Fatalf("FetchActivity() error = %v", err)
	}
	if len(nodes) != 1 {
		t.Errorf("nodes = %d, want 1 from the single active project", len(nodes))
	}
	if len(projectQueries) != 2 {
		t.Errorf("project queries = %d, want one per member project", len(projectQueries))
	}
}

func TestFetchActivityErrorDiscardsPartial(t *testing.T) {
	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		if requests == 1 {
			fmt.Fprint(w, `{"data": {"project": {"mergeRequests": {
				"count": 4,
				"nodes": [{"n": 1}, {"n": 2}],
				"pageInfo": {"endCursor": "c1", "hasNextPage": true}
			}}}}`)
			return
		}
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Path: "acme/widgets", Kind: ScopeProject, ID: "42"}
	nodes, err := c.FetchActivityPaged(context.Background(), tgt, model.KindMergeRequests, qSince, qUntil, 2)
	var qerr *model.QueryFailedError
	if !errors.As(err, &qerr) {
		t.Fatalf("error = %v, want QueryFailedError", err)
	}
	if !strings.Contains(qerr.Message, "502") {
		t.Errorf("Message = %q, want the status code", qerr.Message)
	}
	if nodes != nil {
		t.Errorf("nodes = %v, want nil after mid-pagination failure", nodes)
	}
}

func TestFetchActivityMissingScope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data": {"project": null}}`)
	}))
	defer srv.Close()

	c := newTestClient(t, srv)
	tgt := &Target{Path: "acme/widgets", Kind: ScopeProject, ID: "42"}
	_, err := c.FetchActivity(context.Background(), tgt, model.KindMergeRequests, qSince, qUntil)
	var qerr *model.QueryFailedError
	if !errors.As(err, &qerr) {
		t.Fatalf("error = %v, want QueryFailedError", err)
	}
}
