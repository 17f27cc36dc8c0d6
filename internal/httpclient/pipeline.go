package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/models"
	"golang.org/x/time/rate"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "jora/1.0"

// Pipeline executes authenticated JSON requests: rate limit, send with basic
// auth, validate the status, decode the body. It is safe for concurrent use.
type Pipeline struct {
	httpClient *http.Client
	logger     arbor.ILogger
	userAgent  string
}

// Option configures the Pipeline.
type Option func(*Pipeline)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(p *Pipeline) {
		p.httpClient = httpClient
	}
}

// WithTimeout replaces the HTTP client with one using the given timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) {
		p.httpClient = NewDefaultHTTPClient(timeout)
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithUserAgent sets the User-Agent header value.
func WithUserAgent(userAgent string) Option {
	return func(p *Pipeline) {
		if userAgent != "" {
			p.userAgent = userAgent
		}
	}
}

// NewPipeline creates a pipeline with a 30s client and no logging.
func NewPipeline(opts ...Option) *Pipeline {
	p := &Pipeline{
		httpClient: NewDefaultHTTPClient(DefaultTimeout),
		userAgent:  DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RequestSpec describes one request. Body, when non-nil, is JSON encoded.
type RequestSpec struct {
	Method  string
	URL     string
	Query   url.Values
	Header  http.Header
	Body    interface{}
	Limiter *rate.Limiter
}

// Execute performs the request and decodes a 200 body into out.
//
// Errors: *models.TransportError when no response was received,
// *models.RequestFailedError for a non-200 status, and a decode error
// (*models.MalformedTermError, *models.MalformedIssueError or
// *models.DecodeError) when the body does not match out. creds may be nil
// for services that authenticate in the body.
func (p *Pipeline) Execute(ctx context.Context, creds *models.Credentials, spec RequestSpec, out interface{}) error {
	method := spec.Method
	if method == "" {
		method = http.MethodGet
	}

	reqURL, err := url.Parse(spec.URL)
	if err != nil {
		return fmt.Errorf("failed to parse request URL: %w", err)
	}
	// target is what logs and errors show: no userinfo, no per-call parameters
	target := redactURL(reqURL)

	if len(spec.Query) > 0 {
		q := reqURL.Query()
		for key, values := range spec.Query {
			for _, v := range values {
				q.Add(key, v)
			}
		}
		reqURL.RawQuery = q.Encode()
	}

	if spec.Limiter != nil {
		if err := spec.Limiter.Wait(ctx); err != nil {
			return &models.TransportError{Method: method, URL: target, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	var body io.Reader
	if spec.Body != nil {
		payload, err := json.Marshal(spec.Body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, values := range spec.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if spec.Body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", p.userAgent)
	if creds != nil {
		req.SetBasicAuth(creds.Username, creds.Password)
	}

	logger := p.requestLogger()
	if logger != nil {
		logger.Debug().
			Str("method", method).
			Str("url", target).
			Msg("Sending request")
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		if logger != nil {
			logger.Warn().Err(err).Str("url", target).Msg("Request did not complete")
		}
		return &models.TransportError{Method: method, URL: target, Err: unwrapURLError(err)}
	}

	resp, err = Validate(resp)
	if err != nil {
		if logger != nil {
			var failed *models.RequestFailedError
			if errors.As(err, &failed) {
				logger.Warn().Int("status", failed.StatusCode).Str("url", target).Msg("Request failed")
			}
		}
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &models.TransportError{Method: method, URL: target, Err: fmt.Errorf("read body: %w", err)}
	}

	if logger != nil {
		logger.Debug().
			Int("status", resp.StatusCode).
			Int("bytes", len(data)).
			Str("elapsed", time.Since(start).String()).
			Msg("Response received")
	}

	if out == nil {
		return nil
	}
	return decodeBody(data, out)
}

func (p *Pipeline) requestLogger() arbor.ILogger {
	if p.logger == nil {
		return nil
	}
	return p.logger.WithCorrelationId(uuid.New().String())
}

// decodeBody keeps typed decode errors raised by custom unmarshalers and
// wraps anything else as *models.DecodeError.
func decodeBody(data []byte, out interface{}) error {
	err := json.Unmarshal(data, out)
	if err == nil {
		return nil
	}

	var termErr *models.MalformedTermError
	var issueErr *models.MalformedIssueError
	var decodeErr *models.DecodeError
	switch {
	case errors.As(err, &termErr):
		return termErr
	case errors.As(err, &issueErr):
		return issueErr
	case errors.As(err, &decodeErr):
		return decodeErr
	}
	return &models.DecodeError{Target: fmt.Sprintf("%T", out), Err: err}
}

func unwrapURLError(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}

// redactURL drops any userinfo before a URL is placed in an error
func redactURL(u *url.URL) string {
	if u.User == nil {
		return u.String()
	}
	clean := *u
	clean.User = nil
	return clean.String()
}
