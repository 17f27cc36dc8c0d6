// Package sparql runs SELECT queries against a graph database endpoint.
package sparql

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/httpclient"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
	"golang.org/x/time/rate"
)

const (
	// DefaultEndpoint is the query endpoint of the default database.
	DefaultEndpoint = "https://localhost/stardog/jora/query"

	// CredentialPrefix selects STARDOG_USERNAME / STARDOG_PASSWORD.
	CredentialPrefix = "STARDOG"

	// ResultsMediaType is the SPARQL 1.1 query results JSON format.
	ResultsMediaType = "application/sparql-results+json"
)

// Client is bound to one SparqlContext and never mutates it.
type Client struct {
	sparqlCtx        models.SparqlContext
	credentialPrefix string
	resolver         interfaces.CredentialResolver
	pipeline         *httpclient.Pipeline
	limiter          *rate.Limiter
	logger           arbor.ILogger
}

var _ interfaces.GraphService = (*Client)(nil)

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithEndpoint sets the query endpoint.
func WithEndpoint(endpoint string) ClientOption {
	return func(c *Client) {
		if endpoint != "" {
			c.sparqlCtx.Endpoint = endpoint
		}
	}
}

// WithReasoningEnabled sets the reasoning flag sent with every query.
func WithReasoningEnabled(reasoning bool) ClientOption {
	return func(c *Client) {
		c.sparqlCtx.Reasoning = reasoning
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

// NewClient creates a graph query client.
func NewClient(resolver interfaces.CredentialResolver, pipeline *httpclient.Pipeline, opts ...ClientOption) *Client {
	c := &Client{
		sparqlCtx:        models.SparqlContext{Endpoint: DefaultEndpoint},
		credentialPrefix: CredentialPrefix,
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

// Context returns a copy of the client's connection settings.
func (c *Client) Context() models.SparqlContext {
	return c.sparqlCtx
}

// WithReasoning returns a client for the same database with reasoning set.
// The receiver is unchanged.
func (c *Client) WithReasoning(reasoning bool) *Client {
	clone := *c
	clone.sparqlCtx.Reasoning = reasoning
	return &clone
}

// Query runs a SELECT query. A binding whose term cannot be decoded fails
// the whole call with *models.MalformedTermError.
func (c *Client) Query(ctx context.Context, query string) (*models.SelectResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, &models.InvalidRequestError{Field: "query", Rule: "required"}
	}

	creds, err := c.resolver.Resolve(ctx, c.credentialPrefix)
	if err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("query", query)
	params.Set("reasoning", strconv.FormatBool(c.sparqlCtx.Reasoning))

	var result models.SelectResult
	err = c.pipeline.Execute(ctx, creds, httpclient.RequestSpec{
		Method:  http.MethodGet,
		URL:     c.sparqlCtx.Endpoint,
		Query:   params,
		Header:  http.Header{"Accept": []string{ResultsMediaType}},
		Limiter: c.limiter,
	}, &result)
	if err != nil {
		return nil, err
	}

	if c.logger != nil {
		c.logger.Debug().
			Int("solutions", result.Len()).
			Str("reasoning", strconv.FormatBool(c.sparqlCtx.Reasoning)).
			Msg("Query complete")
	}

	return &result, nil
}
