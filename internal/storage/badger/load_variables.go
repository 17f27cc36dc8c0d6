package badger

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// VariablesFileName is read from the variables directory before variables/*.toml
const VariablesFileName = "variables.toml"

// variableEntry is the table form of a variable:
//
//	[JIRA_USERNAME]
//	value = "alice"
//	description = "Issue tracker account"
//
// A plain top-level string (JIRA_USERNAME = "alice") is also accepted.
type variableEntry struct {
	Value       string `toml:"value"`
	Description string `toml:"description"`
}

type loadStats struct {
	loaded, skipped, failed int
}

func (s *loadStats) add(o loadStats) {
	s.loaded += o.loaded
	s.skipped += o.skipped
	s.failed += o.failed
}

// LoadVariablesFromFiles upserts variables from <dir>/variables.toml and
// <dir>/variables/*.toml into the KV store. Missing files are not an error;
// unreadable or unparsable files are logged and skipped.
func (m *Manager) LoadVariablesFromFiles(ctx context.Context, dirPath string) error {
	if dirPath == "" {
		return nil
	}

	var stats loadStats

	file := filepath.Join(dirPath, VariablesFileName)
	if _, err := os.Stat(file); err == nil {
		stats.add(m.loadVariablesFile(ctx, file))
	}

	subdir := filepath.Join(dirPath, "variables")
	if entries, err := os.ReadDir(subdir); err == nil {
		names := make([]string, 0, len(entries))
		for _, entry := range entries {
			if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".toml") {
				names = append(names, entry.Name())
			}
		}
		sort.Strings(names)
		for _, name := range names {
			stats.add(m.loadVariablesFile(ctx, filepath.Join(subdir, name)))
		}
	}

	m.logger.Debug().
		Str("dir", dirPath).
		Int("loaded", stats.loaded).
		Int("skipped", stats.skipped).
		Int("errors", stats.failed).
		Msg("Variables loaded")

	return nil
}

func (m *Manager) loadVariablesFile(ctx context.Context, path string) loadStats {
	content, err := os.ReadFile(path)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to read variables file")
		return loadStats{failed: 1}
	}

	entries, err := parseVariables(content)
	if err != nil {
		m.logger.Warn().Err(err).Str("file", path).Msg("Failed to parse variables file")
		return loadStats{failed: 1}
	}

	var stats loadStats
	fileName := filepath.Base(path)
	for key, entry := range entries {
		if entry.Value == "" {
			m.logger.Warn().Str("file", fileName).Str("key", key).Msg("Skipping variable with empty value")
			stats.skipped++
			continue
		}

		description := entry.Description
		if description == "" {
			description = "Loaded from " + fileName
		}

		if _, err := m.kv.Upsert(ctx, key, entry.Value, description); err != nil {
			m.logger.Error().Err(err).Str("key", key).Msg("Failed to store variable")
			stats.failed++
			continue
		}
		// values are never logged
		m.logger.Debug().Str("key", key).Msg("Variable stored")
		stats.loaded++
	}
	return stats
}

// parseVariables accepts both table and plain string entries
func parseVariables(content []byte) (map[string]variableEntry, error) {
	var raw map[string]interface{}
	if err := toml.Unmarshal(content, &raw); err != nil {
		return nil, err
	}

	entries := make(map[string]variableEntry, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case string:
			entries[key] = variableEntry{Value: v}
		case map[string]interface{}:
			var entry variableEntry
			entry.Value, _ = v["value"].(string)
			entry.Description, _ = v["description"].(string)
			entries[key] = entry
		default:
			return nil, fmt.Errorf("variable %q: unsupported value type %T", key, value)
		}
	}
	return entries, nil
}
