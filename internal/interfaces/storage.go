package interfaces

import "context"

// StorageManager owns the local database
type StorageManager interface {
	KeyValueStorage() KeyValueStorage

	// LoadVariablesFromFiles loads variables.toml (and variables/*.toml) from dirPath into the KV store
	LoadVariablesFromFiles(ctx context.Context, dirPath string) error

	Close() error
}
