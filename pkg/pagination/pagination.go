package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DefaultLimit is the standard page size when a limit is not provided.
	DefaultLimit = 50
	// MaxLimit caps how many items any page can request.
	MaxLimit = 200

	cursorPrefix = "o:"
)

// Params holds cursor pagination inputs from controllers or services.
type Params struct {
	Limit  int
	Cursor string
}

// Limits overrides the package defaults, usually from config.
type Limits struct {
	Default int
	Max     int
}

// NormalizeLimit enforces the default and maximum limits.
func (l Limits) NormalizeLimit(limit int) int {
	def, max := l.Default, l.Max
	if def <= 0 {
		def = DefaultLimit
	}
	if max <= 0 {
		max = MaxLimit
	}
	if limit <= 0 {
		limit = def
	}
	if limit > max {
		return max
	}
	return limit
}

// NormalizeLimit applies the package defaults.
func NormalizeLimit(limit int) int {
	return Limits{}.NormalizeLimit(limit)
}

// EncodeCursor builds an opaque cursor pointing at offset.
func EncodeCursor(offset int) string {
	return base64.RawURLEncoding.EncodeToString([]byte(cursorPrefix + strconv.Itoa(offset)))
}

// ParseCursor decodes a cursor into an offset. An empty cursor is offset 0.
func ParseCursor(value string) (int, error) {
	if strings.TrimSpace(value) == "" {
		return 0, nil
	}
	decoded, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil {
		return 0, fmt.Errorf("decode cursor: %w", err)
	}
	raw, ok := strings.CutPrefix(string(decoded), cursorPrefix)
	if !ok {
		return 0, fmt.Errorf("invalid cursor format")
	}
	offset, err := strconv.Atoi(raw)
	if err != nil || offset < 0 {
		return 0, fmt.Errorf("invalid cursor offset")
	}
	return offset, nil
}

// Window returns the [start, end) bounds of the requested page over total
// items and the cursor for the following page, empty on the last page.
func Window(total, offset, limit int) (start, end int, next string) {
	if offset > total {
		offset = total
	}
	end = offset + limit
	if end >= total {
		return offset, total, ""
	}
	return offset, end, EncodeCursor(end)
}
