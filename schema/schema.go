// Package schema loads field sets and column configuration from TOML or
// YAML files.
//
// A schema file names the field set, lists its fields and configures how
// the column is stored:
//
//	name = "user_attributes"
//
//	[column]
//	storage = "binary"
//	unknown_fields = "preserve"
//	compress_over = 200
//
//	[[fields]]
//	name = "nickname"
//	alias = "nn"
package schema

import (
	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/format"
)

// Schema is a parsed schema file.
type Schema struct {
	Name   string
	Fields []FieldSpec
	Column ColumnSpec
}

// FieldSpec declares one field. An empty Alias stores the field under its name.
type FieldSpec struct {
	Name  string
	Alias string
}

// ColumnSpec mirrors column.Config without the observer.
type ColumnSpec struct {
	Storage       format.StorageMode
	UnknownFields format.UnknownPolicy
	Header        bool
	LengthLimit   *int
	CompressOver  *int
	AllowNull     bool
	Structured    bool
}

func defaultColumnSpec() ColumnSpec {
	cfg := column.DefaultConfig()

	return ColumnSpec{
		Storage:       cfg.StorageMode,
		UnknownFields: cfg.UnknownFields,
		Header:        cfg.BinaryHeader,
		AllowNull:     cfg.AllowNull,
	}
}

// FieldSet builds the field set.
//
// Returns:
//   - *field.Set: the field set, named after the schema
//   - error: ErrConfiguration or ErrConflictingStorageName
func (s *Schema) FieldSet() (*field.Set, error) {
	descs := make([]field.Descriptor, 0, len(s.Fields))
	for _, f := range s.Fields {
		var opts []field.DescriptorOption
		if f.Alias != "" {
			opts = append(opts, field.WithAlias(f.Alias))
		}

		d, err := field.NewDescriptor(f.Name, opts...)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}

	return field.NewSet(s.Name, descs...)
}

// ColumnConfig returns the column configuration with a no-op observer.
func (s *Schema) ColumnConfig() column.Config {
	cfg := column.DefaultConfig()
	cfg.StorageMode = s.Column.Storage
	cfg.UnknownFields = s.Column.UnknownFields
	cfg.BinaryHeader = s.Column.Header
	cfg.LengthLimit = s.Column.LengthLimit
	cfg.CompressOver = s.Column.CompressOver
	cfg.AllowNull = s.Column.AllowNull
	cfg.Structured = s.Column.Structured

	return cfg
}

// ColumnOptions returns options applying the schema's column configuration.
// Options appended after them, such as column.WithObserver, still apply.
func (s *Schema) ColumnOptions() []column.Option {
	return []column.Option{column.WithConfig(s.ColumnConfig())}
}

// Validate checks that the schema produces a valid field set and column
// configuration.
func (s *Schema) Validate() error {
	if _, err := s.FieldSet(); err != nil {
		return err
	}

	cfg := s.ColumnConfig()

	return cfg.Validate()
}
