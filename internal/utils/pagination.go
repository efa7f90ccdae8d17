// Package utils provides small, generic helpers shared across layers.
// Nothing here knows about applications or notifications; the functions
// exist mainly to keep query-string parsing in handlers terse.
package utils

import "strconv"

// AtoiDefault parses s as an int and falls back to def when s is empty or
// malformed. It is the forgiving parser used for ?page= and ?page_size=
// query parameters, where a bad value should never produce a 4xx.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampInt bounds n to the inclusive range [lo, hi].
func ClampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
