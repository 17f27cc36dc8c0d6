package models

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRetrieveResponse_Unmarshal(t *testing.T) {
	body := `{
		"status": 1,
		"complete": 1,
		"list": {
			"229279689": {
				"item_id": "229279689",
				"resolved_id": "229279689",
				"given_url": "http://www.grantland.com/blog/the-triangle/post/_/id/38347/ryder-cup-preview",
				"given_title": "The Massive Ryder Cup Preview",
				"time_added": "1245626956",
				"time_updated": "1245626956",
				"resolved_url": "http://www.grantland.com/blog/the-triangle/post/_/id/38347/ryder-cup-preview",
				"resolved_title": "The Massive Ryder Cup Preview",
				"excerpt": "The list of things I love about the Ryder Cup is so long",
				"favorite": "0"
			}
		}
	}`

	var resp RetrieveResponse
	require.NoError(t, json.Unmarshal([]byte(body), &resp))

	assert.Equal(t, 1, resp.Status)
	require.Len(t, resp.List, 1)
	item := resp.List["229279689"]
	assert.Equal(t, "229279689", item.ItemID)
	assert.Equal(t, "The Massive Ryder Cup Preview", item.Title())
	assert.Equal(t, "1245626956", item.TimeAdded)
}

func TestRetrieveResponse_EmptyListArray(t *testing.T) {
	for _, list := range []string{`[]`, ` [ ] `, `null`, `{}`} {
		t.Run(list, func(t *testing.T) {
			var resp RetrieveResponse
			require.NoError(t, json.Unmarshal([]byte(`{"status":2,"complete":1,"list":`+list+`}`), &resp))
			assert.NotNil(t, resp.List)
			assert.Empty(t, resp.List)
		})
	}
}

func TestSavedItem_TitleFallback(t *testing.T) {
	item := SavedItem{GivenTitle: "given"}
	assert.Equal(t, "given", item.Title())
}

func TestRetrieveRequest_Validation(t *testing.T) {
	valid := RetrieveRequest{ConsumerKey: "ck", AccessToken: "at", Count: 2, DetailType: DetailTypeComplete}
	require.NoError(t, ValidateRequest(valid))

	tests := []struct {
		name      string
		mutate    func(r *RetrieveRequest)
		wantField string
	}{
		{name: "no consumer key", mutate: func(r *RetrieveRequest) { r.ConsumerKey = "" }, wantField: "consumer_key"},
		{name: "no access token", mutate: func(r *RetrieveRequest) { r.AccessToken = "" }, wantField: "access_token"},
		{name: "zero count", mutate: func(r *RetrieveRequest) { r.Count = 0 }, wantField: "count"},
		{name: "unknown detail", mutate: func(r *RetrieveRequest) { r.DetailType = "full" }, wantField: "detailType"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := valid
			tt.mutate(&req)

			var invalid *InvalidRequestError
			require.ErrorAs(t, ValidateRequest(req), &invalid)
			assert.Equal(t, tt.wantField, invalid.Field)
		})
	}
}

func TestCredentials_NeverFormatsPassword(t *testing.T) {
	creds := Credentials{Username: "u", Password: "hunter2"}

	for _, formatted := range []string{
		fmt.Sprintf("%v", creds),
		fmt.Sprintf("%+v", creds),
		fmt.Sprintf("%#v", creds),
		fmt.Sprintf("%s", &creds),
		creds.String(),
	} {
		assert.NotContains(t, formatted, "hunter2")
		assert.Contains(t, formatted, "REDACTED")
	}

	data, err := json.Marshal(creds)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hunter2")
	assert.NotContains(t, string(data), "u\"")
}
