package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// SparqlContext is the immutable configuration of one logical graph database connection
type SparqlContext struct {
	Endpoint  string
	Reasoning bool
}

// Solution is one result row: variable name to bound term.
// Unbound variables are simply absent.
type Solution map[string]RdfTerm

// UnmarshalJSON decodes every binding with DecodeTerm; the first malformed term fails the row.
// A null row is malformed.
func (s *Solution) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return &DecodeError{Target: "solution", Err: errors.New("null binding row")}
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return &DecodeError{Target: "solution", Err: err}
	}

	out := make(Solution, len(raw))
	for name, value := range raw {
		term, err := DecodeTerm(value)
		if err != nil {
			return fmt.Errorf("binding %q: %w", name, err)
		}
		out[name] = term
	}

	*s = out
	return nil
}

// SelectResult is the decoded body of a SELECT query in the W3C SPARQL 1.1
// results JSON format. Bindings keep the order the server returned.
type SelectResult struct {
	Vars     []string
	Bindings []Solution
}

type selectResultJSON struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []Solution `json:"bindings"`
	} `json:"results"`
}

// UnmarshalJSON decodes "head.vars" and "results.bindings". A body without a
// "results" member is not a SELECT result.
func (r *SelectResult) UnmarshalJSON(data []byte) error {
	var raw selectResultJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Results == nil {
		return &DecodeError{Target: "select result", Err: errors.New("missing \"results\" member")}
	}

	r.Vars = raw.Head.Vars
	r.Bindings = raw.Results.Bindings
	if r.Bindings == nil {
		r.Bindings = []Solution{}
	}
	return nil
}

// Len returns the number of solutions
func (r *SelectResult) Len() int {
	return len(r.Bindings)
}
