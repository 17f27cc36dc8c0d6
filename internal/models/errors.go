package models

import (
	"fmt"
	"strings"
)

// MissingCredentialsError is returned when a service prefix cannot be resolved
// to a complete username/password pair. Keys lists every lookup key that was absent.
type MissingCredentialsError struct {
	Prefix string
	Keys   []string
}

func (e *MissingCredentialsError) Error() string {
	return fmt.Sprintf("missing credentials for %s: %s not set", e.Prefix, strings.Join(e.Keys, " and "))
}

// TransportError wraps a failure to complete the HTTP round trip
// (DNS, connection refused, timeout, cancellation).
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestFailedError is returned for any completed response whose status is not 200.
// Body holds the response body exactly as received.
type RequestFailedError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("request failed: %s %s: status %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// MalformedTermError is returned when a JSON value cannot be decoded into an RdfTerm.
// Discriminant is the "type" value seen (empty when absent); Field names the
// missing or invalid member, if any.
type MalformedTermError struct {
	Discriminant string
	Field        string
	Err          error
}

func (e *MalformedTermError) Error() string {
	var b strings.Builder
	b.WriteString("malformed term")
	switch {
	case e.Field != "" && e.Discriminant != "":
		fmt.Fprintf(&b, ": %q term: field %q", e.Discriminant, e.Field)
	case e.Field != "":
		fmt.Fprintf(&b, ": field %q", e.Field)
	default:
		fmt.Fprintf(&b, ": unrecognised discriminant %q", e.Discriminant)
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *MalformedTermError) Unwrap() error {
	return e.Err
}

// MalformedIssueError is returned when an issue record is missing a mandatory
// field or carries a value that cannot be parsed.
type MalformedIssueError struct {
	Field string
	Err   error
}

func (e *MalformedIssueError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed issue: field %q: %v", e.Field, e.Err)
	}
	return fmt.Sprintf("malformed issue: field %q is required", e.Field)
}

func (e *MalformedIssueError) Unwrap() error {
	return e.Err
}

// DecodeError is returned when a response body is not JSON of the expected shape.
type DecodeError struct {
	Target string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// InvalidRequestError is returned when request parameters are rejected before any I/O.
type InvalidRequestError struct {
	Field string
	Rule  string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: field %q failed %q", e.Field, e.Rule)
}
