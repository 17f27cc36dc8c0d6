package jira

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/httpclient"
	"github.com/ternarybob/jora/internal/models"
	"github.com/ternarybob/jora/internal/services/credentials"
)

const twoIssues = `{
	"startAt": 0,
	"maxResults": 100,
	"total": 2,
	"issues": [
		{
			"id": "10001",
			"self": "https://localhost/jira/rest/api/2/issue/10001",
			"key": "BS-1",
			"fields": {
				"summary": "Renew certificates",
				"status": {"id": "3", "name": "In Progress"},
				"created": "2019-01-15T10:24:33.000-0500",
				"duedate": "2019-01-20"
			}
		},
		{
			"id": "10002",
			"self": "https://localhost/jira/rest/api/2/issue/10002",
			"key": "BS-2",
			"fields": {
				"summary": "Rotate keys",
				"status": {"id": "1", "name": "Open"},
				"created": "2019-01-16T08:00:00.000+0000"
			}
		}
	]
}`

const overdueFilter = `{
	"self": "https://localhost/jira/rest/api/2/filter/10300",
	"id": "10300",
	"name": "Overdue",
	"jql": "duedate < now() AND resolution = Unresolved"
}`

func testResolver() *credentials.Resolver {
	return credentials.NewResolver(nil, credentials.StaticSource{"JIRA_USERNAME": "u", "JIRA_PASSWORD": "p"})
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...ClientOption) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]ClientOption{WithBaseURL(server.URL), WithLogger(arbor.NewLogger())}, opts...)
	return NewClient(testResolver(), httpclient.NewPipeline(), opts...)
}

func TestClient_SearchTwoIssuesOneWithoutDueDate(t *testing.T) {
	var gotBody map[string]interface{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "u", user)
		assert.Equal(t, "p", pass)

		assert.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(twoIssues))
	})

	issues, err := client.Search(context.Background(), models.NewSearchRequest("project = BS"))
	require.NoError(t, err)

	require.Len(t, issues, 2)
	assert.Equal(t, "BS-1", issues[0].Key)
	require.NotNil(t, issues[0].Fields.DueDate)
	assert.Equal(t, "2019-01-20", issues[0].Fields.DueDate.String())
	assert.Equal(t, "BS-2", issues[1].Key)
	assert.Nil(t, issues[1].Fields.DueDate)

	assert.Equal(t, "project = BS", gotBody["jql"])
	assert.Equal(t, float64(0), gotBody["startAt"])
	assert.Equal(t, float64(100), gotBody["maxResults"])
	assert.Equal(t, []interface{}{"status", "summary", "*all"}, gotBody["fields"])
}

func TestClient_SearchAppliesDefaultMaxResults(t *testing.T) {
	var gotMax float64
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		gotMax, _ = body["maxResults"].(float64)
		_, _ = w.Write([]byte(`{"issues":[]}`))
	}, WithMaxResults(25))

	issues, err := client.Search(context.Background(), models.SearchRequest{Query: "project = BS"})
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
	assert.Equal(t, float64(25), gotMax)
}

func TestClient_SearchRejectsInvalidRequestWithoutIO(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	})

	_, err := client.Search(context.Background(), models.SearchRequest{})

	var invalid *models.InvalidRequestError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "jql", invalid.Field)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))

	_, err = client.GetFilter(context.Background(), " ")
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_MissingCredentialsWithoutIO(t *testing.T) {
	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
	}))
	defer server.Close()

	resolver := credentials.NewResolver(nil, credentials.StaticSource{"JIRA_USERNAME": "u"})
	client := NewClient(resolver, nil, WithBaseURL(server.URL))

	_, err := client.GetOverdueIssues(context.Background())

	var missing *models.MissingCredentialsError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, []string{"JIRA_PASSWORD"}, missing.Keys)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClient_GetFilterIsIdempotent(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/filter/10300", r.URL.Path)
		_, _ = w.Write([]byte(overdueFilter))
	})

	first, err := client.GetFilter(context.Background(), OverdueFilterID)
	require.NoError(t, err)
	second, err := client.GetFilter(context.Background(), OverdueFilterID)
	require.NoError(t, err)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("GetFilter not idempotent (-first +second):\n%s", diff)
	}
	assert.Equal(t, &models.Filter{
		ID:    "10300",
		URL:   "https://localhost/jira/rest/api/2/filter/10300",
		Name:  "Overdue",
		Query: "duedate < now() AND resolution = Unresolved",
	}, first)
}

func TestClient_GetOverdueIssuesComposesFilterAndSearch(t *testing.T) {
	var paths []string
	var searchedJQL string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		switch r.URL.Path {
		case "/filter/10300":
			_, _ = w.Write([]byte(overdueFilter))
		case "/search":
			var body models.SearchRequest
			_ = json.NewDecoder(r.Body).Decode(&body)
			searchedJQL = body.Query
			_, _ = w.Write([]byte(twoIssues))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	issues, err := client.GetOverdueIssues(context.Background())
	require.NoError(t, err)

	assert.Len(t, issues, 2)
	assert.Equal(t, []string{"GET /filter/10300", "POST /search"}, paths)
	assert.Equal(t, "duedate < now() AND resolution = Unresolved", searchedJQL)
}

func TestClient_GetIssuesForFilterUsesConfiguredFields(t *testing.T) {
	var body models.SearchRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			_ = json.NewDecoder(r.Body).Decode(&body)
			_, _ = w.Write([]byte(`{"issues":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"id":"555","self":"s","name":"Mine","jql":"assignee = currentUser()"}`))
	}, WithFields([]string{"summary", "duedate"}), WithMaxResults(25))

	_, err := client.GetIssuesForFilter(context.Background(), "555")
	require.NoError(t, err)

	assert.Equal(t, "assignee = currentUser()", body.Query)
	assert.Equal(t, []string{"summary", "duedate"}, body.Fields)
	assert.Equal(t, uint(25), body.MaxResults)
}

func TestClient_GetDueSoonIssuesUsesSecondFilter(t *testing.T) {
	var filterPath string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			_, _ = w.Write([]byte(`{"issues":[]}`))
			return
		}
		filterPath = r.URL.Path
		_, _ = w.Write([]byte(`{"id":"10107","self":"s","name":"Due soon","jql":"duedate <= 2w"}`))
	})

	issues, err := client.GetDueSoonIssues(context.Background())
	require.NoError(t, err)
	assert.Empty(t, issues)
	assert.Equal(t, "/filter/10107", filterPath)
}

func TestClient_RequestFailedCarriesBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"errorMessages":["Error in the JQL Query"]}`))
	})

	_, err := client.Search(context.Background(), models.NewSearchRequest("not jql"))

	var failed *models.RequestFailedError
	require.ErrorAs(t, err, &failed)
	assert.Equal(t, http.StatusBadRequest, failed.StatusCode)
	assert.Equal(t, `{"errorMessages":["Error in the JQL Query"]}`, failed.Body)
}

func TestClient_MalformedIssueFailsBatch(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"issues":[{"id":"1","self":"s","key":"K-1","fields":{"summary":"x","status":{"id":"1","name":"Open"}}}]}`))
	})

	issues, err := client.Search(context.Background(), models.NewSearchRequest("project = K"))
	assert.Nil(t, issues)

	var malformed *models.MalformedIssueError
	require.ErrorAs(t, err, &malformed)
	assert.Equal(t, "fields.created", malformed.Field)
}

func TestClient_FilterNotFoundStopsComposition(t *testing.T) {
	var searched bool
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/search" {
			searched = true
		}
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte("filter missing"))
	})

	_, err := client.GetIssuesForFilter(context.Background(), "999")

	var failed *models.RequestFailedError
	require.True(t, errors.As(err, &failed))
	assert.Equal(t, "filter missing", failed.Body)
	assert.False(t, searched)
}
