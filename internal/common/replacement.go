// Package common provides utility functions for key/value reference replacement.
//
// The {key-name} syntax allows configuration values to reference keys stored
// in the key/value store. At runtime, these references are replaced with actual
// values from the store.
//
// Example:
//   Input:  "api_key = {gemini-api-key}"
//   KV Map: {"gemini-api-key": "sk-12345"}
//   Output: "api_key = sk-12345"
//
// Replacement is case-sensitive. Missing keys are logged as warnings but not
// treated as errors; the unresolved reference stays in place so later
// validation can surface it.
package common

import (
	"fmt"
	"reflect"
	"regexp"

	"github.com/ternarybob/arbor"
)

// keyRefPattern matches {key-name} references. Key names are alphanumeric
// plus hyphens and underscores; anything else is left alone.
var keyRefPattern = regexp.MustCompile(`\{([a-zA-Z0-9_-]+)\}`)

// ReplaceKeyReferences replaces every {key-name} reference in input with the
// value from kvMap. References to missing keys are kept unchanged and logged.
func ReplaceKeyReferences(input string, kvMap map[string]string, logger arbor.ILogger) string {
	if input == "" {
		return input
	}

	return keyRefPattern.ReplaceAllStringFunc(input, func(match string) string {
		name := match[1 : len(match)-1]
		if value, ok := kvMap[name]; ok {
			return value
		}
		logger.Warn().
			Str("reference", match).
			Str("key", name).
			Msg("Unresolved key reference - key not found in KV store")
		return match
	})
}

// ReplaceInStruct walks a struct pointer and replaces {key-name} references
// in every reachable string: plain fields, nested structs, struct pointers,
// string slices, and map[string]string values. Fields are mutated in place.
func ReplaceInStruct(v interface{}, kvMap map[string]string, logger arbor.ILogger) error {
	val := reflect.ValueOf(v)
	if val.Kind() != reflect.Ptr {
		return fmt.Errorf("ReplaceInStruct requires a pointer, got %T", v)
	}
	val = val.Elem()
	if val.Kind() != reflect.Struct {
		return fmt.Errorf("ReplaceInStruct requires a struct pointer, got pointer to %v", val.Kind())
	}

	walkReplace(val, "", kvMap, logger)
	return nil
}

// walkReplace recurses through one reflect value. Settability is checked at
// the leaves, so unexported fields are skipped wherever they appear.
func walkReplace(val reflect.Value, path string, kvMap map[string]string, logger arbor.ILogger) {
	switch val.Kind() {
	case reflect.String:
		if !val.CanSet() {
			return
		}
		old := val.String()
		if replaced := ReplaceKeyReferences(old, kvMap, logger); replaced != old {
			val.SetString(replaced)
			logger.Debug().
				Str("field", path).
				Str("old", old).
				Str("new", replaced).
				Msg("Replaced key reference in config")
		}

	case reflect.Struct:
		typ := val.Type()
		for i := 0; i < val.NumField(); i++ {
			walkReplace(val.Field(i), joinPath(path, typ.Field(i).Name), kvMap, logger)
		}

	case reflect.Ptr:
		if !val.IsNil() {
			walkReplace(val.Elem(), path, kvMap, logger)
		}

	case reflect.Slice:
		if val.Type().Elem().Kind() == reflect.String {
			for i := 0; i < val.Len(); i++ {
				walkReplace(val.Index(i), fmt.Sprintf("%s[%d]", path, i), kvMap, logger)
			}
		}

	case reflect.Map:
		// Map values are not addressable, so strings are rewritten via
		// SetMapIndex. Maps behind unexported fields cannot be written.
		if !val.CanInterface() {
			return
		}
		if val.Type().Key().Kind() == reflect.String && val.Type().Elem().Kind() == reflect.String {
			for _, key := range val.MapKeys() {
				old := val.MapIndex(key).String()
				if replaced := ReplaceKeyReferences(old, kvMap, logger); replaced != old {
					val.SetMapIndex(key, reflect.ValueOf(replaced))
					logger.Debug().
						Str("field", path).
						Str("key", key.String()).
						Str("old", old).
						Str("new", replaced).
						Msg("Replaced key reference in config map")
				}
			}
		}
	}
}

func joinPath(base, field string) string {
	if base == "" {
		return field
	}
	return base + "." + field
}
