// Package credentials resolves per-service username/password pairs.
package credentials

import (
	"context"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/interfaces"
	"github.com/ternarybob/jora/internal/models"
)

// Key suffixes, in the order they are reported when missing
const (
	UsernameSuffix = "_USERNAME"
	PasswordSuffix = "_PASSWORD"
)

// Resolver looks each key up in its sources in order; the first source
// holding a non-empty value wins.
type Resolver struct {
	sources []interfaces.CredentialSource
	logger  arbor.ILogger
}

var _ interfaces.CredentialResolver = (*Resolver)(nil)

// NewResolver creates a resolver. With no sources it reads the process environment.
func NewResolver(logger arbor.ILogger, sources ...interfaces.CredentialSource) *Resolver {
	if len(sources) == 0 {
		sources = []interfaces.CredentialSource{NewEnvSource()}
	}
	return &Resolver{sources: sources, logger: logger}
}

// Keys returns the lookup keys for a prefix: <PREFIX>_USERNAME, <PREFIX>_PASSWORD
func Keys(prefix string) (username, password string) {
	p := strings.ToUpper(strings.TrimSpace(prefix))
	return p + UsernameSuffix, p + PasswordSuffix
}

// Resolve returns the credentials for prefix, or *models.MissingCredentialsError
// naming every absent key. No network access is performed.
func (r *Resolver) Resolve(ctx context.Context, prefix string) (*models.Credentials, error) {
	userKey, passKey := Keys(prefix)

	username, userFrom := r.lookup(ctx, userKey)
	password, passFrom := r.lookup(ctx, passKey)

	var missing []string
	if userFrom == "" {
		missing = append(missing, userKey)
	}
	if passFrom == "" {
		missing = append(missing, passKey)
	}
	if len(missing) > 0 {
		if r.logger != nil {
			r.logger.Warn().
				Str("prefix", prefix).
				Str("missing", strings.Join(missing, ",")).
				Msg("Credentials not resolved")
		}
		return nil, &models.MissingCredentialsError{Prefix: prefix, Keys: missing}
	}

	if r.logger != nil {
		r.logger.Debug().
			Str("prefix", prefix).
			Str("username_source", userFrom).
			Str("password_source", passFrom).
			Msg("Credentials resolved")
	}

	return &models.Credentials{Username: username, Password: password}, nil
}

// lookup returns the value and the name of the source that supplied it
func (r *Resolver) lookup(ctx context.Context, key string) (string, string) {
	for _, source := range r.sources {
		if value, ok := source.Lookup(ctx, key); ok {
			return value, source.Name()
		}
	}
	return "", ""
}
