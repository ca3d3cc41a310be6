package errs

import "unicode/utf8"

const (
	abbreviateMax  = 100
	abbreviateHead = 60
	abbreviateTail = 30
	elision        = "..."
)

// Abbreviate shortens s for display in error messages.
//
// Strings of up to 100 characters are returned unchanged; longer ones keep the
// first 60 and last 30 characters around an elision marker. It never alters
// data returned to callers.
func Abbreviate(s string) string {
	if utf8.RuneCountInString(s) <= abbreviateMax {
		return s
	}

	runes := []rune(s)

	return string(runes[:abbreviateHead]) + elision + string(runes[len(runes)-abbreviateTail:])
}
