// Package flexcol packs many logical fields into a single stored column
// value, encoded as one JSON object and optionally framed by a versioned,
// gzip-capable binary envelope.
//
// Flexcol is meant for rows whose optional attributes change more often than
// the table schema: the fields live in one text or binary column and are read
// and written individually through a Column.
//
// # Core Features
//
//   - Field sets with storage-name aliases and collision detection
//   - Lazy, single-pass deserialization of the stored value
//   - Unknown keys preserved or dropped on re-serialization
//   - Text storage (bare JSON) or binary storage ("FC:01,<flag>," envelope)
//   - Optional gzip compression, kept only when it saves at least 5%
//   - Length limits with precise, typed errors for every malformed input
//   - Observer events for deserialization and serialization
//
// # Basic Usage
//
//	set, _ := flexcol.NewFieldSet("user_attributes",
//	    flexcol.Field("nickname"),
//	    flexcol.AliasedField("theme", "ui_theme"),
//	)
//
//	col, _ := flexcol.NewDefaultColumn(set, "users.attributes for row 42", stored)
//	theme, _ := col.Get("theme")
//	col.Set("nickname", "arlo")
//	stored, _ = col.ToStoredData()
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the column and
// field packages. For fine-grained control use those packages directly, the
// envelope package for the binary format, schema for TOML/YAML field set
// definitions and store for pebble-backed persistence.
package flexcol

import (
	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/format"
)

// DefaultCompressOver is the payload size above which binary columns created
// by NewDefaultBinaryColumn try gzip compression.
const DefaultCompressOver = 1024

var defaultTextOptions = []column.Option{
	column.WithStorageMode(format.StorageText),
	column.WithUnknownFields(format.UnknownPreserve),
	column.WithAllowNull(true),
}

var defaultBinaryOptions = []column.Option{
	column.WithStorageMode(format.StorageBinary),
	column.WithUnknownFields(format.UnknownPreserve),
	column.WithBinaryHeader(true),
	column.WithCompressOver(DefaultCompressOver),
	column.WithAllowNull(true),
}

// Field declares a field stored under its own name. It panics if name is blank.
func Field(name string) field.Descriptor {
	return field.MustDescriptor(name)
}

// AliasedField declares a field stored under storageName. It panics if
// either name is blank.
func AliasedField(name, storageName string) field.Descriptor {
	return field.MustDescriptor(name, field.WithAlias(storageName))
}

// NewFieldSet creates a field set.
//
// Parameters:
//   - name: the set's identity, used in collision errors
//   - fields: the field descriptors (see Field and AliasedField)
//
// Returns:
//   - *field.Set: the immutable field set, safe to share between columns
//   - error: ErrConflictingStorageName when two fields share a storage name,
//     ErrConfiguration for a duplicate field name
func NewFieldSet(name string, fields ...field.Descriptor) (*field.Set, error) {
	return field.NewSet(name, fields...)
}

// NewColumn creates a column with custom options.
//
// Parameters:
//   - set: the column's field set
//   - source: describes the stored value for errors and events
//   - raw: the stored value: nil, string, []byte or map[string]any
//   - opts: column options (see column.Option)
//
// Returns:
//   - *column.Column: the unparsed column
//   - error: ErrConfiguration for invalid options
//
// Example:
//
//	col, err := flexcol.NewColumn(set, source, raw,
//	    column.WithStorageMode(format.StorageBinary),
//	    column.WithLengthLimit(65535),
//	)
func NewColumn(set *field.Set, source column.DataSource, raw any, opts ...column.Option) (*column.Column, error) {
	return column.New(set, source, raw, opts...)
}

// NewDefaultColumn creates a text column with recommended defaults: bare
// JSON storage, unknown fields preserved, empty objects stored as nil.
func NewDefaultColumn(set *field.Set, description string, raw any) (*column.Column, error) {
	return column.New(set, column.NewStaticSource(description), raw, defaultTextOptions...)
}

// NewDefaultBinaryColumn creates a binary column with recommended defaults:
// envelope header enabled, payloads over DefaultCompressOver bytes
// gzip-compressed when it pays off, unknown fields preserved.
func NewDefaultBinaryColumn(set *field.Set, description string, raw any) (*column.Column, error) {
	return column.New(set, column.NewStaticSource(description), raw, defaultBinaryOptions...)
}
