package interfaces

import (
	"context"

	"github.com/ternarybob/jora/internal/models"
)

// IssueService queries the issue tracker
type IssueService interface {
	GetFilter(ctx context.Context, id string) (*models.Filter, error)
	Search(ctx context.Context, req models.SearchRequest) ([]models.Issue, error)
	GetIssuesForFilter(ctx context.Context, filterID string) ([]models.Issue, error)
	GetOverdueIssues(ctx context.Context) ([]models.Issue, error)
	GetDueSoonIssues(ctx context.Context) ([]models.Issue, error)
}

// BookmarkService retrieves saved articles
type BookmarkService interface {
	Retrieve(ctx context.Context, req models.RetrieveRequest) (map[string]models.SavedItem, error)
	RetrieveDefault(ctx context.Context) (map[string]models.SavedItem, error)
}

// GraphService runs SELECT queries against a graph database
type GraphService interface {
	Query(ctx context.Context, query string) (*models.SelectResult, error)
	Context() models.SparqlContext
}
