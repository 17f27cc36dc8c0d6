// Package jira queries saved filters and issue searches.
package jira

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/httpclient"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the REST API root of the issue tracker.
	DefaultBaseURL = "https://localhost/jira/rest/api/2"

	// CredentialPrefix selects JIRA_USERNAME / JIRA_PASSWORD.
	CredentialPrefix = "JIRA"

	// OverdueFilterID is the saved filter listing overdue issues.
	OverdueFilterID = "10300"

	// DueSoonFilterID is the saved filter listing issues due in the next two weeks.
	DueSoonFilterID = "10107"
)

// Client is an issue tracker client. It holds no per-call state.
type Client struct {
	baseURL          string
	credentialPrefix string
	overdueFilterID  string
	dueSoonFilterID  string
	maxResults       uint
	fields           []string
	resolver         interfaces.CredentialResolver
	pipeline         *httpclient.Pipeline
	limiter          *rate.Limiter
	logger           arbor.ILogger
}

var _ interfaces.IssueService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithBaseURL sets a custom base URL.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithCredentialPrefix sets the credential key prefix.
func WithCredentialPrefix(prefix string) ClientOption {
	return func(c *Client) {
		if prefix != "" {
			c.credentialPrefix = prefix
		}
	}
}

// WithFilterIDs overrides the overdue and due-soon filter ids. Empty values keep the defaults.
func WithFilterIDs(overdue, dueSoon string) ClientOption {
	return func(c *Client) {
		if overdue != "" {
			c.overdueFilterID = overdue
		}
		if dueSoon != "" {
			c.dueSoonFilterID = dueSoon
		}
	}
}

// WithMaxResults sets the page size applied when a request leaves it unset.
func WithMaxResults(maxResults uint) ClientOption {
	return func(c *Client) {
		if maxResults > 0 {
			c.maxResults = maxResults
		}
	}
}

// WithFields sets the field list used by filter searches.
func WithFields(fields []string) ClientOption {
	return func(c *Client) {
		if len(fields) > 0 {
			c.fields = append([]string(nil), fields...)
		}
	}
}

// WithRateLimit sets a rate limit in requests per second. Zero disables limiting.
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		} else {
			c.limiter = nil
		}
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a new issue tracker client.
func NewClient(resolver interfaces.CredentialResolver, pipeline *httpclient.Pipeline, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:          DefaultBaseURL,
		credentialPrefix: CredentialPrefix,
		overdueFilterID:  OverdueFilterID,
		dueSoonFilterID:  DueSoonFilterID,
		maxResults:       models.DefaultMaxResults,
		fields:           append([]string(nil), models.DefaultSearchFields...),
		resolver:         resolver,
		pipeline:         pipeline,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.pipeline == nil {
		c.pipeline = httpclient.NewPipeline(httpclient.WithLogger(c.logger))
	}

	return c
}

// GetFilter fetches a saved filter by id.
func (c *Client) GetFilter(ctx context.Context, id string) (*models.Filter, error) {
	if strings.TrimSpace(id) == "" {
		return nil, &models.InvalidRequestError{Field: "id", Rule: "required"}
	}

	creds, err := c.resolver.Resolve(ctx, c.credentialPrefix)
	if err != nil {
		return nil, err
	}

	var filter models.Filter
	err = c.pipeline.Execute(ctx, creds, httpclient.RequestSpec{
		Method:  http.MethodGet,
		URL:     c.baseURL + "/filter/" + url.PathEscape(id),
		Limiter: c.limiter,
	}, &filter)
	if err != nil {
		return nil, err
	}

	return &filter, nil
}

// Search runs an issue search and returns one page of issues. A zero
// MaxResults takes the configured default. Any malformed issue fails the
// whole call.
func (c *Client) Search(ctx context.Context, req models.SearchRequest) ([]models.Issue, error) {
	if req.MaxResults == 0 {
		req.MaxResults = c.maxResults
	}
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	creds, err := c.resolver.Resolve(ctx, c.credentialPrefix)
	if err != nil {
		return nil, err
	}

	var resp models.SearchResponse
	err = c.pipeline.Execute(ctx, creds, httpclient.RequestSpec{
		Method:  http.MethodPost,
		URL:     c.baseURL + "/search",
		Body:    req,
		Limiter: c.limiter,
	}, &resp)
	if err != nil {
		return nil, err
	}

	if resp.Issues == nil {
		resp.Issues = []models.Issue{}
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("issues", len(resp.Issues)).
			Int("total", resp.Total).
			Msg("Issue search complete")
	}

	return resp.Issues, nil
}

// GetIssuesForFilter fetches a saved filter and searches its query with
// default pagination.
func (c *Client) GetIssuesForFilter(ctx context.Context, filterID string) ([]models.Issue, error) {
	filter, err := c.GetFilter(ctx, filterID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch filter %s: %w", filterID, err)
	}

	req := models.NewSearchRequest(filter.Query)
	req.MaxResults = c.maxResults
	req.Fields = append([]string(nil), c.fields...)

	issues, err := c.Search(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to search filter %s: %w", filterID, err)
	}
	return issues, nil
}

// GetOverdueIssues returns the issues matched by the overdue filter.
func (c *Client) GetOverdueIssues(ctx context.Context) ([]models.Issue, error) {
	return c.GetIssuesForFilter(ctx, c.overdueFilterID)
}

// GetDueSoonIssues returns the issues matched by the due-soon filter.
func (c *Client) GetDueSoonIssues(ctx context.Context) ([]models.Issue, error) {
	return c.GetIssuesForFilter(ctx, c.dueSoonFilterID)
}
