// Package pocket retrieves saved articles from the bookmark service.
package pocket

import (
	"context"
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/httpclient"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the bookmark API root.
	DefaultBaseURL = "https://getpocket.com/v3"

	// DefaultCount is the number of items RetrieveDefault asks for.
	DefaultCount = 10
)

// Client retrieves bookmarks. The consumer key and access token are request
// parameters sent in the JSON body, not basic auth credentials.
type Client struct {
	baseURL     string
	consumerKey string
	accessToken string
	count       uint
	detailType  string
	pipeline    *httpclient.Pipeline
	limiter     *rate.Limiter
	logger      arbor.ILogger
}

var _ interfaces.BookmarkService = (*Client)(nil)

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

// WithTokens sets the consumer key and access token used by RetrieveDefault.
func WithTokens(consumerKey, accessToken string) ClientOption {
	return func(c *Client) {
		c.consumerKey = consumerKey
		c.accessToken = accessToken
	}
}

// WithDefaults sets the count and detail type used by RetrieveDefault.
func WithDefaults(count uint, detailType string) ClientOption {
	return func(c *Client) {
		if count > 0 {
			c.count = count
		}
		if detailType != "" {
			c.detailType = detailType
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

// NewClient creates a new bookmark client.
func NewClient(pipeline *httpclient.Pipeline, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    DefaultBaseURL,
		count:      DefaultCount,
		detailType: models.DetailTypeComplete,
		pipeline:   pipeline,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.pipeline == nil {
		c.pipeline = httpclient.NewPipeline(httpclient.WithLogger(c.logger))
	}

	return c
}

// Retrieve returns saved items keyed by item id. An empty list is an empty
// map, never nil.
func (c *Client) Retrieve(ctx context.Context, req models.RetrieveRequest) (map[string]models.SavedItem, error) {
	if err := models.ValidateRequest(req); err != nil {
		return nil, err
	}

	var resp models.RetrieveResponse
	err := c.pipeline.Execute(ctx, nil, httpclient.RequestSpec{
		Method: http.MethodPost,
		URL:    c.baseURL + "/get",
		Header: http.Header{
			"Content-Type": []string{"application/json"},
			"X-Accept":     []string{"application/json"},
		},
		Body:    req,
		Limiter: c.limiter,
	}, &resp)
	if err != nil {
		return nil, err
	}

	items := map[string]models.SavedItem(resp.List)
	if items == nil {
		items = map[string]models.SavedItem{}
	}

	if c.logger != nil {
		c.logger.Debug().Int("items", len(items)).Msg("Bookmarks retrieved")
	}

	return items, nil
}

// RetrieveDefault retrieves using the configured tokens, count and detail type.
func (c *Client) RetrieveDefault(ctx context.Context) (map[string]models.SavedItem, error) {
	return c.Retrieve(ctx, models.RetrieveRequest{
		ConsumerKey: c.consumerKey,
		AccessToken: c.accessToken,
		Count:       c.count,
		DetailType:  c.detailType,
	})
}
