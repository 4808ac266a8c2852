package ginserver

import (
	"strconv"
	"strings"
	"time"
)

// parseDay accepts RFC 3339 timestamps and plain YYYY-MM-DD dates.
func parseDay(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.UTC(), true
	}
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t.UTC(), true
	}
	return time.Time{}, false
}

// either returns the camelCase spelling of a field when set, falling back to
// the snake_case one.
func either(camel, snake string) string {
	if strings.TrimSpace(camel) != "" {
		return camel
	}
	return snake
}

func parseInt(raw string) int {
	value, _ := strconv.Atoi(strings.TrimSpace(raw))
	if value < 0 {
		return 0
	}
	return value
}

func parseIntWithDefault(raw string, fallback int) int {
	if value := parseInt(raw); value > 0 {
		return value
	}
	return fallback
}

func parseInt64(raw string) int64 {
	value, _ := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if value < 0 {
		return 0
	}
	return value
}
