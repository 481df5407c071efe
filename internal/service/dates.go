package service

import (
	"fmt"
	"strings"
	"time"
)

// dateLayout is the canonical form every date field is normalized to before
// persistence, regardless of input representation.
const dateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
}

// normalizeDate parses an incoming date string and returns its canonical
// YYYY-MM-DD form.
func normalizeDate(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", fmt.Errorf("date is empty")
	}
	for _, layout := range acceptedDateLayouts {
		if parsed, err := time.Parse(layout, trimmed); err == nil {
			return parsed.Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("unrecognized date %q", raw)
}

// today returns the server-local calendar date in canonical form.
func today() string {
	return time.Now().Format(dateLayout)
}
