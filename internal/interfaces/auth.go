// -----------------------------------------------------------------------
// Last Modified: Sunday, 18th October 2026 9:12:40 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

package interfaces

import (
	"context"

	"github.com/ternarybob/jora/internal/models"
)

// CredentialSource is a read-only key lookup (process environment, KV store, fixed map).
// Empty values are reported as absent.
type CredentialSource interface {
	Lookup(ctx context.Context, key string) (string, bool)
	Name() string
}

// CredentialResolver resolves the username/password pair for a service prefix
// from <PREFIX>_USERNAME and <PREFIX>_PASSWORD. It returns
// *models.MissingCredentialsError if either key is absent and never returns
// partial credentials.
type CredentialResolver interface {
	Resolve(ctx context.Context, prefix string) (*models.Credentials, error)
}
