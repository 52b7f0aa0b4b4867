package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/atacado-catalog/pkg/errors"
)

// ParseQueryInt reads one integer query parameter bounded by [min, max].
// An absent or blank parameter yields defaultVal; a repeated one is rejected
// so "limit=1&limit=500" cannot slip past the bound check.
func ParseQueryInt(r *http.Request, key string, defaultVal, min, max int) (int, error) {
	values := r.URL.Query()[key]
	switch len(values) {
	case 0:
		return defaultVal, nil
	case 1:
	default:
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter given more than once").
			WithDetails(map[string]any{"field": key})
	}

	raw := strings.TrimSpace(values[0])
	if raw == "" {
		return defaultVal, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be numeric").
			WithDetails(map[string]any{"field": key})
	}
	if value < min || value > max {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "query parameter out of range").
			WithDetails(map[string]any{"field": key, "min": min, "max": max})
	}
	return value, nil
}

// QueryText returns a sanitized free-text query parameter, see SanitizeString.
func QueryText(r *http.Request, key string, maxLen int) string {
	return SanitizeString(r.URL.Query().Get(key), maxLen)
}
