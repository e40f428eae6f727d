// Package configbinder binds loosely typed key/value properties onto option structs.
package configbinder

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// BindProperties binds a map of properties to a target struct using mapstructure.
// It matches keys against the "yaml" tag and allows weakly typed input, so
// "250" binds to an int field and "true" to a bool field.
func BindProperties(properties map[string]interface{}, target interface{}) error {
	if len(properties) == 0 {
		return nil
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "yaml",
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return fmt.Errorf("failed to create mapstructure decoder: %w", err)
	}

	if err := decoder.Decode(properties); err != nil {
		targetType := reflect.TypeOf(target)
		if targetType.Kind() == reflect.Ptr {
			targetType = targetType.Elem()
		}
		return fmt.Errorf("failed to bind properties to %s: %w", targetType.Name(), err)
	}
	return nil
}

// ParseAssignments turns ["batch_size=50", "path=./x"] into a property map.
// Entries without '=' are rejected.
func ParseAssignments(assignments []string) (map[string]interface{}, error) {
	props := make(map[string]interface{}, len(assignments))
	for _, a := range assignments {
		key, value, ok := strings.Cut(a, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", a)
		}
		props[key] = strings.TrimSpace(value)
	}
	return props, nil
}
