package dbtypes

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EncodeList serializes items as a JSON array for a text column. A nil slice
// is stored as "[]".
func EncodeList[T any](items []T) (string, error) {
	if items == nil {
		return "[]", nil
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(raw), nil
}

// DecodeList parses a JSON array stored in a text column. Blank and "null"
// values decode to an empty list. An array that was serialized twice (a JSON
// string holding the array) is unwrapped once. Any other shape is an error and
// the returned list is empty, never nil.
func DecodeList[T any](raw string) ([]T, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || trimmed == "null" {
		return []T{}, nil
	}

	if strings.HasPrefix(trimmed, `"`) {
		var inner string
		if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
			return []T{}, fmt.Errorf("decode list: %w", err)
		}
		trimmed = strings.TrimSpace(inner)
		if trimmed == "" || trimmed == "null" {
			return []T{}, nil
		}
	}

	var items []T
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return []T{}, fmt.Errorf("decode list: %w", err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}
