// Package encoding holds the text-level helpers behind the flexcol column
// codec: UTF-8 validation with diagnostics, JSON decoding with integer-preserving
// number handling, canonical JSON encoding, and normalization of Go values to
// the form they take after a JSON round trip.
package encoding
