// -----------------------------------------------------------------------
// Last Modified: Sunday, 18th October 2026 11:02:10 am
// Modified By: Bob McAllan
// -----------------------------------------------------------------------

// The {KEY} syntax lets a configuration value reference a variable held in
// the key/value store, so tokens can live in variables.toml instead of the
// main config:
//
//	[pocket]
//	access_token = "{POCKET_ACCESS_TOKEN}"
//
// Key lookup is case-insensitive. Unresolved references are left in place
// and logged by name only; values are never logged.
package common

import (
	"context"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/jora/internal/interfaces"
)

// keyRefPattern matches {key-name} references in strings
var keyRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplaceKeyReferences replaces each {key} in input with vars[lower(key)].
// It returns the new string and the names of references that were not found.
func ReplaceKeyReferences(input string, vars map[string]string) (string, []string) {
	if input == "" || !strings.Contains(input, "{") {
		return input, nil
	}

	var unresolved []string
	result := keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := vars[strings.ToLower(name)]; ok {
			return value
		}
		unresolved = append(unresolved, name)
		return match
	})
	return result, unresolved
}

// ReplaceInStruct replaces {key} references in every exported string and
// []string field of the struct pointed to by v, descending into nested structs.
func ReplaceInStruct(v interface{}, vars map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr || val.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got %T", v)
	}
	replaceInValue(val.Elem(), "", vars, logger)
	return nil
}

func replaceInValue(val reflect.Value, path string, vars map[string]string, logger arbor.ILogger) {
	typ := val.Type()
	for i := 0; i < val.NumField(); i++ {
		field := val.Field(i)
		if !field.CanSet() {
			continue
		}
		name := typ.Field(i).Name
		if path != "" {
			name = path + "." + name
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(replaceField(field.String(), name, vars, logger))
		case reflect.Struct:
			replaceInValue(field, name, vars, logger)
		case reflect.Slice:
			if field.Type().Elem().Kind() == reflect.String {
				for j := 0; j < field.Len(); j++ {
					elem := field.Index(j)
					elem.SetString(replaceField(elem.String(), fmt.Sprintf("%s[%d]", name, j), vars, logger))
				}
			}
		}
	}
}

func replaceField(value, field string, vars map[string]string, logger arbor.ILogger) string {
	replaced, unresolved := ReplaceKeyReferences(value, vars)
	if logger != nil {
		for _, key := range unresolved {
			logger.Warn().Str("field", field).Str("key", key).Msg("Unresolved key reference - key not found in variables")
		}
		if replaced != value {
			logger.Debug().Str("field", field).Msg("Replaced key reference")
		}
	}
	return replaced
}

// ResolveConfigReferences substitutes {KEY} references in config from the
// key/value store. A nil store leaves config unchanged.
func ResolveConfigReferences(ctx context.Context, config *Config, kv interfaces.KeyValueStorage, logger arbor.ILogger) error {
	if kv == nil {
		return nil
	}

	pairs, err := kv.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list variables: %w", err)
	}

	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		vars[strings.ToLower(pair.Key)] = pair.Value
	}

	return ReplaceInStruct(config, vars, logger)
}
