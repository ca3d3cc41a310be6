package encoding

import (
	"strings"
	"unicode/utf8"
)

// ScanUTF8 splits data into the text that decodes as UTF-8 and the byte
// offsets of every byte that does not.
//
// Returns:
//   - string: the valid characters in order, invalid bytes dropped
//   - []int: offsets of invalid bytes, empty when data is valid UTF-8
func ScanUTF8(data []byte) (string, []int) {
	if utf8.Valid(data) {
		return string(data), nil
	}

	var valid strings.Builder
	valid.Grow(len(data))
	invalid := make([]int, 0, 4)

	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size <= 1 {
			invalid = append(invalid, i)
			i++

			continue
		}
		valid.WriteRune(r)
		i += size
	}

	return valid.String(), invalid
}
