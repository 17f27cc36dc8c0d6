package credentials

import (
	"context"
	"os"

	"github.com/ternarybob/jora/internal/interfaces"
)

// present is the one absence rule shared by every source: only an empty
// value is absent, whitespace is kept as given.
func present(value string) bool {
	return value != ""
}

// EnvSource reads the process environment
type EnvSource struct {
	lookup func(string) (string, bool)
}

// NewEnvSource creates a source over os.LookupEnv
func NewEnvSource() *EnvSource {
	return &EnvSource{lookup: os.LookupEnv}
}

// NewEnvSourceFunc creates a source over an arbitrary lookup, e.g. a fixed map in tests
func NewEnvSourceFunc(lookup func(string) (string, bool)) *EnvSource {
	return &EnvSource{lookup: lookup}
}

func (s *EnvSource) Lookup(_ context.Context, key string) (string, bool) {
	value, ok := s.lookup(key)
	if !ok || !present(value) {
		return "", false
	}
	return value, true
}

func (s *EnvSource) Name() string { return "env" }

// KVSource reads variables loaded into the key/value store
type KVSource struct {
	kv interfaces.KeyValueStorage
}

func NewKVSource(kv interfaces.KeyValueStorage) *KVSource {
	return &KVSource{kv: kv}
}

func (s *KVSource) Lookup(ctx context.Context, key string) (string, bool) {
	if s.kv == nil {
		return "", false
	}
	value, err := s.kv.Get(ctx, key)
	if err != nil || !present(value) {
		return "", false
	}
	return value, true
}

func (s *KVSource) Name() string { return "kv" }

// StaticSource is a fixed map. Keys are matched case-sensitively.
type StaticSource map[string]string

func (s StaticSource) Lookup(_ context.Context, key string) (string, bool) {
	value, ok := s[key]
	if !ok || !present(value) {
		return "", false
	}
	return value, true
}

func (s StaticSource) Name() string { return "static" }
