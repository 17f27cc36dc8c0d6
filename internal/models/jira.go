package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DefaultMaxResults is the page size used when a search request does not set one
const DefaultMaxResults uint = 100

// JiraTimeLayout is the timestamp format of "created" and other datetime fields
const JiraTimeLayout = "2006-01-02T15:04:05.000-0700"

// DefaultSearchFields is the field list requested by NewSearchRequest
var DefaultSearchFields = []string{"status", "summary", "*all"}

// Filter is a saved issue search
type Filter struct {
	ID    string `json:"id"`
	URL   string `json:"self"`
	Name  string `json:"name"`
	Query string `json:"jql"`
}

// SearchRequest is the body of an issue search. StartAt is always 0 here: a
// single bounded page is fetched.
type SearchRequest struct {
	Query      string   `json:"jql" validate:"required"`
	StartAt    uint     `json:"startAt"`
	MaxResults uint     `json:"maxResults" validate:"min=1"`
	Fields     []string `json:"fields"`
}

// NewSearchRequest wraps a query with default pagination and fields
func NewSearchRequest(query string) SearchRequest {
	fields := make([]string, len(DefaultSearchFields))
	copy(fields, DefaultSearchFields)

	return SearchRequest{
		Query:      query,
		StartAt:    0,
		MaxResults: DefaultMaxResults,
		Fields:     fields,
	}
}

// SearchResponse is the decoded body of an issue search
type SearchResponse struct {
	StartAt    int     `json:"startAt"`
	MaxResults int     `json:"maxResults"`
	Total      int     `json:"total"`
	Issues     []Issue `json:"issues"`
}

// Status is an issue workflow status
type Status struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// IssueFields holds the issue fields the dashboard uses
type IssueFields struct {
	Summary string
	Status  Status
	Created time.Time
	DueDate *Date // nil when the issue has no due date
}

// Issue is one issue record
type Issue struct {
	ID     string
	URL    string
	Key    string
	Fields IssueFields
}

// IsOverdue reports whether the issue has a due date before today
func (i *Issue) IsOverdue(today Date) bool {
	return i.Fields.DueDate != nil && i.Fields.DueDate.Before(today)
}

type issueJSON struct {
	ID     *string          `json:"id" validate:"required"`
	Self   *string          `json:"self" validate:"required"`
	Key    *string          `json:"key" validate:"required"`
	Fields *issueFieldsJSON `json:"fields" validate:"required"`
}

type issueFieldsJSON struct {
	Summary *string `json:"summary" validate:"required"`
	Status  *Status `json:"status" validate:"required"`
	Created *string `json:"created" validate:"required"`
	DueDate *string `json:"duedate"`
}

// UnmarshalJSON decodes an issue, failing with *MalformedIssueError when a
// mandatory field is missing or unparsable. "duedate" may be absent or null.
func (i *Issue) UnmarshalJSON(data []byte) error {
	var raw issueJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return &MalformedIssueError{Field: typeErrorField(err), Err: err}
	}

	if err := validate.Struct(&raw); err != nil {
		if field, _, ok := firstViolation(err); ok {
			return &MalformedIssueError{Field: field}
		}
		return &MalformedIssueError{Err: err}
	}

	created, err := parseJiraTime(*raw.Fields.Created)
	if err != nil {
		return &MalformedIssueError{Field: "fields.created", Err: err}
	}

	var dueDate *Date
	if raw.Fields.DueDate != nil && *raw.Fields.DueDate != "" {
		d, err := ParseDate(*raw.Fields.DueDate)
		if err != nil {
			return &MalformedIssueError{Field: "fields.duedate", Err: err}
		}
		dueDate = &d
	}

	*i = Issue{
		ID:  *raw.ID,
		URL: *raw.Self,
		Key: *raw.Key,
		Fields: IssueFields{
			Summary: *raw.Fields.Summary,
			Status:  *raw.Fields.Status,
			Created: created,
			DueDate: dueDate,
		},
	}
	return nil
}

func parseJiraTime(s string) (time.Time, error) {
	for _, layout := range []string{JiraTimeLayout, time.RFC3339Nano} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// typeErrorField extracts the offending field from a json type mismatch
func typeErrorField(err error) string {
	if ute, ok := err.(*json.UnmarshalTypeError); ok {
		return ute.Field
	}
	return ""
}
