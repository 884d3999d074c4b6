package domain

import "regexp"

var userIDPattern = regexp.MustCompile(`^usr-[A-Za-z0-9]+$`)

// IsUserID reports whether s is a well-formed user identifier. Users are
// managed outside this service; only the identifier crosses the boundary.
func IsUserID(s string) bool {
	return userIDPattern.MatchString(s)
}
