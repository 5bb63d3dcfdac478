package app

import (
	"regexp"
	"strings"
)

const tracedQueryLimit = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace collapses whitespace and truncates long statements
// so span attributes stay readable.
func formatDBQueryForTrace(query string) string {
	query = strings.TrimSpace(query)
	if query == "" {
		return query
	}

	flat := sqlWhitespace.ReplaceAllString(query, " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}

	return flat
}
