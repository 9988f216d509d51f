package shortener

import "strings"

const defaultScheme = "http://"

var allowedSchemes = []string{"http://", "https://"}

// NormalizeURL guarantees the returned URL carries an http or https scheme.
// URLs that already start with one (case-insensitive) are returned unchanged,
// anything else is prefixed with "http://". The result is never rejected,
// so NormalizeURL(NormalizeURL(u)) == NormalizeURL(u) for every u.
func NormalizeURL(rawURL string) string {
	if HasScheme(rawURL) {
		return rawURL
	}

	return defaultScheme + rawURL
}

// HasScheme reports whether rawURL starts with an http or https scheme.
func HasScheme(rawURL string) bool {
	for _, scheme := range allowedSchemes {
		if len(rawURL) >= len(scheme) && strings.EqualFold(rawURL[:len(scheme)], scheme) {
			return true
		}
	}

	return false
}
