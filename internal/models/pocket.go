package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Detail levels accepted by the bookmark service
const (
	DetailTypeSimple   = "simple"
	DetailTypeComplete = "complete"
)

// SavedItem is one bookmarked article
type SavedItem struct {
	ItemID        string `json:"item_id"`
	ResolvedID    string `json:"resolved_id"`
	GivenURL      string `json:"given_url"`
	GivenTitle    string `json:"given_title"`
	TimeAdded     string `json:"time_added"`
	TimeUpdated   string `json:"time_updated"`
	ResolvedURL   string `json:"resolved_url"`
	ResolvedTitle string `json:"resolved_title"`
	Excerpt       string `json:"excerpt"`
}

// Title returns the resolved title, falling back to the title given when saved
func (s *SavedItem) Title() string {
	if s.ResolvedTitle != "" {
		return s.ResolvedTitle
	}
	return s.GivenTitle
}

// RetrieveRequest is the body of a bookmark retrieval. The consumer key and
// access token travel in the body rather than as basic auth.
type RetrieveRequest struct {
	ConsumerKey string `json:"consumer_key" validate:"required"`
	AccessToken string `json:"access_token" validate:"required"`
	Count       uint   `json:"count" validate:"min=1"`
	DetailType  string `json:"detailType" validate:"oneof=simple complete"`
}

// RetrieveResponse is the decoded body of a bookmark retrieval
type RetrieveResponse struct {
	Status   int          `json:"status"`
	Complete int          `json:"complete"`
	List     SavedItemMap `json:"list"`
}

// SavedItemMap is keyed by item id
type SavedItemMap map[string]SavedItem

// UnmarshalJSON accepts the empty array the service sends instead of an empty object
func (m *SavedItemMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.HasPrefix(trimmed, []byte("[")) {
		var arr []json.RawMessage
		if err := json.Unmarshal(trimmed, &arr); err != nil {
			return err
		}
		if len(arr) > 0 {
			return fmt.Errorf("unexpected non-empty list array with %d entries", len(arr))
		}
		*m = SavedItemMap{}
		return nil
	}

	var items map[string]SavedItem
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return err
	}
	if items == nil {
		items = SavedItemMap{}
	}
	*m = items
	return nil
}
