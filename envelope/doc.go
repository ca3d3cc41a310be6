// Package envelope implements the flexcol binary envelope.
//
// An enveloped value is an ASCII header followed by the payload:
//
//	"FC:" VV "," C "," <payload>
//
//	VV  two decimal digits, zero-padded format version (currently 01)
//	C   one decimal digit: 0 = payload is JSON text, 1 = payload is gzip-compressed JSON text
//
// A value without the header is bare JSON text and is always treated as
// uncompressed, so values written before the envelope was enabled stay
// readable. Versions above CurrentVersion and flags other than 0 and 1 are
// rejected.
package envelope
