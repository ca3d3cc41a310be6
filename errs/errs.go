// Package errs defines the closed set of errors returned by flexcol.
//
// Every failure is an *Error whose Kind identifies what went wrong. Kinds
// implement the error interface themselves, so callers can match a failure
// with errors.Is and reach its structured context with errors.As:
//
//	if errors.Is(err, errs.ErrDataTooLong) {
//	    var e *errs.Error
//	    errors.As(err, &e)
//	    log.Printf("limit %d exceeded by %d", e.Limit, e.Actual-e.Limit)
//	}
package errs

import (
	"fmt"
	"strings"
)

// Kind identifies one member of the error taxonomy.
type Kind uint8

const (
	// ErrConfiguration reports an invalid constructor option.
	ErrConfiguration Kind = iota + 1
	// ErrConflictingStorageName reports two fields sharing a storage name.
	ErrConflictingStorageName
	// ErrNoSuchField reports access to an undeclared field.
	ErrNoSuchField
	// ErrEncoding reports stored text that is not valid UTF-8.
	ErrEncoding
	// ErrUnsupportedVersion reports an envelope version newer than supported.
	ErrUnsupportedVersion
	// ErrInvalidEnvelope reports a compression flag outside {0, 1}.
	ErrInvalidEnvelope
	// ErrCorruptCompressedData reports a payload that failed to decompress.
	ErrCorruptCompressedData
	// ErrUnparseableData reports a payload that is not valid JSON.
	ErrUnparseableData
	// ErrInvalidStructure reports valid JSON that is not an object.
	ErrInvalidStructure
	// ErrDataTooLong reports a serialized value over the configured limit.
	ErrDataTooLong
)

var kindNames = map[Kind]string{
	ErrConfiguration:          "invalid configuration",
	ErrConflictingStorageName: "conflicting storage name",
	ErrNoSuchField:            "no such field",
	ErrEncoding:               "invalid encoding",
	ErrUnsupportedVersion:     "unsupported version",
	ErrInvalidEnvelope:        "invalid envelope",
	ErrCorruptCompressedData:  "corrupt compressed data",
	ErrUnparseableData:        "unparseable data",
	ErrInvalidStructure:       "invalid structure",
	ErrDataTooLong:            "data too long",
}

// Error implements the error interface so a Kind can be used as an errors.Is target.
func (k Kind) Error() string {
	if name, ok := kindNames[k]; ok {
		return name
	}

	return "unknown error"
}

// String returns the kind name.
func (k Kind) String() string {
	return k.Error()
}

// Error is the structured error value returned by flexcol.
//
// Only the fields relevant to Kind are populated; see the constructor for
// each kind.
type Error struct {
	Kind Kind

	// Source is the data source description, when one is known.
	Source string

	// Option and Value describe an invalid configuration option.
	Option string
	Value  any

	// Field, ExistingField, StorageName and Schema describe field set conflicts
	// and lookups. KnownFields lists every declared field name.
	Field         string
	ExistingField string
	StorageName   string
	Schema        string
	KnownFields   []string

	// ValidText, InvalidOffsets and FirstInvalid describe an encoding failure.
	ValidText      string
	InvalidOffsets []int
	FirstInvalid   int

	// Found and Max describe an envelope version mismatch. Flag is the
	// offending compression flag.
	Found int
	Max   int
	Flag  int

	// Raw is the offending input, Parsed the decoded non-object value and
	// Shape its JSON type name.
	Raw    string
	Parsed any
	Shape  string

	// Limit and Actual describe a length-limit violation; Raw holds the
	// serialized value.
	Limit  int
	Actual int

	// Cause is the underlying failure, if any.
	Cause error
}

// Error formats the message for every kind.
func (e *Error) Error() string {
	var msg string
	switch e.Kind {
	case ErrConfiguration:
		msg = fmt.Sprintf("invalid value for %s: %v", e.Option, e.Value)
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	case ErrConflictingStorageName:
		msg = fmt.Sprintf("field %q in %s would store its data under %q, which is already used by field %q",
			e.Field, e.Schema, e.StorageName, e.ExistingField)
	case ErrNoSuchField:
		msg = fmt.Sprintf("field %q does not exist; known fields: %s", e.Field, strings.Join(e.KnownFields, ", "))
	case ErrEncoding:
		msg = fmt.Sprintf("stored data is not valid UTF-8: first invalid byte at offset %d (%d invalid bytes); valid text: %q",
			e.FirstInvalid, len(e.InvalidOffsets), Abbreviate(e.ValidText))
	case ErrUnsupportedVersion:
		msg = fmt.Sprintf("stored data has envelope version %d, but this version of flexcol only supports up to %d",
			e.Found, e.Max)
	case ErrInvalidEnvelope:
		msg = fmt.Sprintf("stored data has invalid compression flag %d", e.Flag)
	case ErrCorruptCompressedData:
		msg = "stored data is marked as compressed but could not be decompressed"
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	case ErrUnparseableData:
		msg = fmt.Sprintf("stored data is not valid JSON: %q", Abbreviate(e.Raw))
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	case ErrInvalidStructure:
		msg = fmt.Sprintf("stored data is valid JSON but a %s, not an object: %q", e.Shape, Abbreviate(e.Raw))
	case ErrDataTooLong:
		msg = fmt.Sprintf("serialized data is %d long, over the limit of %d: %q", e.Actual, e.Limit, Abbreviate(e.Raw))
	default:
		msg = e.Kind.Error()
	}

	if e.Source != "" {
		return e.Source + ": " + msg
	}

	return msg
}

// Is matches the error against its Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)

	return ok && k == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Configuration returns an ErrConfiguration error.
func Configuration(option string, value any, cause error) *Error {
	return &Error{Kind: ErrConfiguration, Option: option, Value: value, Cause: cause}
}

// ConflictingStorageName returns an ErrConflictingStorageName error.
func ConflictingStorageName(schema, field, existing, storageName string) *Error {
	return &Error{
		Kind:          ErrConflictingStorageName,
		Schema:        schema,
		Field:         field,
		ExistingField: existing,
		StorageName:   storageName,
	}
}

// NoSuchField returns an ErrNoSuchField error.
func NoSuchField(source, field string, known []string) *Error {
	return &Error{Kind: ErrNoSuchField, Source: source, Field: field, KnownFields: known}
}

// Encoding returns an ErrEncoding error.
func Encoding(source, validText string, invalid []int) *Error {
	first := -1
	if len(invalid) > 0 {
		first = invalid[0]
	}

	return &Error{
		Kind:           ErrEncoding,
		Source:         source,
		ValidText:      validText,
		InvalidOffsets: invalid,
		FirstInvalid:   first,
	}
}

// UnsupportedVersion returns an ErrUnsupportedVersion error.
func UnsupportedVersion(source string, found, maxVersion int) *Error {
	return &Error{Kind: ErrUnsupportedVersion, Source: source, Found: found, Max: maxVersion}
}

// InvalidEnvelope returns an ErrInvalidEnvelope error.
func InvalidEnvelope(source string, flag int) *Error {
	return &Error{Kind: ErrInvalidEnvelope, Source: source, Flag: flag}
}

// CorruptCompressedData returns an ErrCorruptCompressedData error.
func CorruptCompressedData(source string, cause error) *Error {
	return &Error{Kind: ErrCorruptCompressedData, Source: source, Cause: cause}
}

// UnparseableData returns an ErrUnparseableData error.
func UnparseableData(source, raw string, cause error) *Error {
	return &Error{Kind: ErrUnparseableData, Source: source, Raw: raw, Cause: cause}
}

// InvalidStructure returns an ErrInvalidStructure error.
func InvalidStructure(source, raw string, parsed any, shape string) *Error {
	return &Error{Kind: ErrInvalidStructure, Source: source, Raw: raw, Parsed: parsed, Shape: shape}
}

// DataTooLong returns an ErrDataTooLong error.
func DataTooLong(source string, limit, actual int, raw string) *Error {
	return &Error{Kind: ErrDataTooLong, Source: source, Limit: limit, Actual: actual, Raw: raw}
}

// WithSource returns err with its Source set, when err is an *Error without one.
func WithSource(err error, source string) error {
	e, ok := err.(*Error)
	if !ok || e.Source != "" {
		return err
	}

	cp := *e
	cp.Source = source

	return &cp
}
