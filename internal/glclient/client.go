// Package glclient talks to the GitLab API. The cursor-paginated
// activity queries go through GraphQL; tag and commit lookups use the
// official REST client. All response-shape knowledge lives here so the
// rest of the program only sees model types.
package glclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	gitlab "gitlab.com/gitlab-org/api/client-go"
	"golang.org/x/oauth2"

	"github.com/mahendrapaipuri/gitlab-activity/internal/log"
	"github.com/mahendrapaipuri/gitlab-activity/internal/model"
)

// DefaultDomain is used when the target string carries no host.
const DefaultDomain = "gitlab.com"

const httpTimeout = 30 * time.Second

// Client is an API client bound to one GitLab instance.
type Client struct {
	domain  string
	baseURL string // https://{domain}, overridable for tests
	httpc   *http.Client
	rest    *gitlab.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the instance base URL (scheme + host). The
// GraphQL endpoint becomes {base}/api/graphql and the REST endpoint
// {base}/api/v4.
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithHTTPClient overrides the HTTP client used for GraphQL requests.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpc = h
	}
}

// New creates a client for the given GitLab domain authenticated with a
// personal access token.
func New(domain, token string, opts ...Option) (*Client, error) {
	c := &Client{
		domain:  domain,
		baseURL: "https://" + domain,
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.httpc == nil {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		c.httpc = oauth2.NewClient(context.Background(), ts)
		c.httpc.Timeout = httpTimeout
	}

	rest, err := gitlab.NewClient(token,
		gitlab.WithBaseURL(c.baseURL+"/api/v4"),
		gitlab.WithHTTPClient(c.httpc),
	)
	if err != nil {
		return nil, fmt.Errorf("creating GitLab REST client: %w", err)
	}
	c.rest = rest

	return c, nil
}

// Domain returns the GitLab instance domain the client is bound to.
func (c *Client) Domain() string {
	return c.domain
}

// graphqlRequest is the GraphQL request payload.
type graphqlRequest struct {
	Query string `json:"query"`
}

// graphqlResponse is the generic GraphQL response envelope.
type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

type graphqlError struct {
	Message string `json:"message"`
}

// executeGraphQL posts a query to the instance GraphQL endpoint.
// A non-200 status or a populated error list fails the whole call with
// a QueryFailedError; there is no partial-result recovery.
func (c *Client) executeGraphQL(ctx context.Context, query string) (json.RawMessage, error) {
	body, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshaling GraphQL request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/graphql", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating GraphQL request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Trace("GraphQL request", "query", query)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GraphQL request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading GraphQL response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &model.QueryFailedError{
			Query:   query,
			Message: fmt.Sprintf("returned code of %d", resp.StatusCode),
		}
	}

	var gqlResp graphqlResponse
	if err := json.Unmarshal(respBody, &gqlResp); err != nil {
		return nil, fmt.Errorf("parsing GraphQL response: %w", err)
	}

	if len(gqlResp.Errors) > 0 {
		msgs := make([]string, len(gqlResp.Errors))
		for i, e := range gqlResp.Errors {
			msgs[i] = e.Message
		}
		return nil, &model.QueryFailedError{
			Query:   query,
			Message: strings.Join(msgs, "; "),
		}
	}

	return gqlResp.Data, nil
}
