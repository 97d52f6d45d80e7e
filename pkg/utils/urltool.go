package utils

import (
	"net/url"
	"strings"
)

// TrimTrailingSlashes strips surrounding whitespace and any run of
// trailing '/' characters.
func TrimTrailingSlashes(str string) string {
	str = strings.TrimSpace(str)
	for strings.HasSuffix(str, "/") {
		str = strings.TrimSuffix(str, "/")
	}
	return str
}

// HasHTTPScheme reports whether str starts with http:// or https://,
// ignoring scheme case.
func HasHTTPScheme(str string) bool {
	lower := strings.ToLower(str)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// Origin rebuilds scheme://host[:port] from a parsed URL. The scheme comes
// back canonicalized (lowercase) from the parser; host casing is whatever
// the input carried.
func Origin(u *url.URL) string {
	return u.Scheme + "://" + u.Host
}
