package models

import (
	"encoding/json"
	"errors"
	"strconv"
)

// TermKind is the discriminant carried in the "type" member of a SPARQL JSON term.
type TermKind string

const (
	TermKindIri     TermKind = "uri"
	TermKindLiteral TermKind = "literal"
	TermKindBnode   TermKind = "bnode"
)

// RdfTerm is one of Iri, Literal or Bnode. The set is closed: the marker method
// is unexported so no other package can add a variant.
//
// Values are comparable with ==, and terms of different variants are never equal
// even when they carry the same value.
type RdfTerm interface {
	Kind() TermKind
	String() string
	rdfTerm()
}

// Iri is a named resource
type Iri struct {
	Value string
}

// Literal is a lexical value with its datatype IRI
type Literal struct {
	Value    string
	Datatype string
}

// Bnode is an anonymous node identified by a result-local label
type Bnode struct {
	Value string
}

func (Iri) Kind() TermKind     { return TermKindIri }
func (Literal) Kind() TermKind { return TermKindLiteral }
func (Bnode) Kind() TermKind   { return TermKindBnode }

func (Iri) rdfTerm()     {}
func (Literal) rdfTerm() {}
func (Bnode) rdfTerm()   {}

func (t Iri) String() string { return "<" + t.Value + ">" }

func (t Literal) String() string {
	return strconv.Quote(t.Value) + "^^<" + t.Datatype + ">"
}

func (t Bnode) String() string { return "_:" + t.Value }

// MatchTerm dispatches on the variant of term. Every variant needs a handler, so
// adding a variant breaks each call site until it is handled. A nil term yields
// the zero value of T.
func MatchTerm[T any](term RdfTerm, iri func(Iri) T, literal func(Literal) T, bnode func(Bnode) T) T {
	var zero T
	switch t := term.(type) {
	case Iri:
		return iri(t)
	case Literal:
		return literal(t)
	case Bnode:
		return bnode(t)
	default:
		return zero
	}
}

// DecodeTerm decodes a SPARQL results JSON term object into its RdfTerm variant.
//
// The "type" member selects the variant: "uri" and "bnode" require "value";
// "literal" requires "value" and "datatype". Anything else, or a missing or
// non-string required member, is a *MalformedTermError.
func DecodeTerm(data []byte) (RdfTerm, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, &MalformedTermError{Err: err}
	}
	if obj == nil {
		return nil, &MalformedTermError{Err: errors.New("term is null")}
	}

	discriminant, err := termMember(obj, "", "type")
	if err != nil {
		return nil, err
	}

	switch TermKind(discriminant) {
	case TermKindIri:
		value, err := termMember(obj, discriminant, "value")
		if err != nil {
			return nil, err
		}
		return Iri{Value: value}, nil

	case TermKindLiteral:
		value, err := termMember(obj, discriminant, "value")
		if err != nil {
			return nil, err
		}
		datatype, err := termMember(obj, discriminant, "datatype")
		if err != nil {
			return nil, err
		}
		return Literal{Value: value, Datatype: datatype}, nil

	case TermKindBnode:
		value, err := termMember(obj, discriminant, "value")
		if err != nil {
			return nil, err
		}
		return Bnode{Value: value}, nil

	default:
		return nil, &MalformedTermError{Discriminant: discriminant}
	}
}

// termMember reads a required string member of a term object
func termMember(obj map[string]json.RawMessage, discriminant, field string) (string, error) {
	raw, ok := obj[field]
	if !ok || string(raw) == "null" {
		return "", &MalformedTermError{Discriminant: discriminant, Field: field}
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", &MalformedTermError{Discriminant: discriminant, Field: field, Err: err}
	}
	return s, nil
}
