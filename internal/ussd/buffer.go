package ussd

import "strings"

const Delimiter = "*"

// Segments splits the cumulative gateway buffer into the caller's choices.
// Segments are kept verbatim; an empty buffer has no segments.
func Segments(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, Delimiter)
}
