package domain

import (
	"regexp"
	"strings"
)

// LikeToRegex traduce un patrón LIKE ('%' y '_') a una expresión regular
// anclada. La sensibilidad a mayúsculas la decide quien la compila.
func LikeToRegex(pattern string) string {
	var sb strings.Builder
	sb.WriteString("^")
	for _, r := range pattern {
		switch r {
		case '%':
			sb.WriteString(".*")
		case '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return sb.String()
}
