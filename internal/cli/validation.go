package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/shiftdesk/internal/core/ident"
	"github.com/example/shiftdesk/internal/wire"
)

// parseID parses a positive numeric identifier given on the command line.
func parseID(arg, entityType string) (int64, error) {
	id, err := ident.Parse(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID '%s': expected a positive number", entityType, arg)
	}
	return id, nil
}

// parseDate parses a YYYY-MM-DD day in the configured timezone. "today",
// "yesterday" and the empty string are accepted.
func parseDate(arg string) (time.Time, error) {
	loc := wire.Location()
	now := time.Now().In(loc)

	switch strings.ToLower(strings.TrimSpace(arg)) {
	case "", "today":
		return now, nil
	case "yesterday":
		return now.AddDate(0, 0, -1), nil
	}

	t, err := time.ParseInLocation(time.DateOnly, arg, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date '%s': use YYYY-MM-DD", arg)
	}
	return t, nil
}

// parseOptionalDate is parseDate, except that an empty argument yields the
// zero time (no bound).
func parseOptionalDate(arg string) (time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return time.Time{}, nil
	}
	return parseDate(arg)
}

// parseTimestamp parses a close time given as RFC 3339 or as "YYYY-MM-DD HH:MM"
// in the configured timezone. Empty means now.
func parseTimestamp(arg string) (time.Time, error) {
	if strings.TrimSpace(arg) == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, arg); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02 15:04", arg, wire.Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time '%s': use RFC 3339 or 'YYYY-MM-DD HH:MM'", arg)
	}
	return t, nil
}
