package schema

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/arloliu/flexcol/format"
	"gopkg.in/yaml.v3"
)

// ErrUnsupportedFormat is returned for a schema file extension other than
// .toml, .yaml or .yml.
var ErrUnsupportedFormat = errors.New("unsupported schema file format")

type fileSchema struct {
	Name   string      `toml:"name" yaml:"name"`
	Column fileColumn  `toml:"column" yaml:"column"`
	Fields []fileField `toml:"fields" yaml:"fields"`
}

type fileColumn struct {
	Storage       string `toml:"storage" yaml:"storage"`
	UnknownFields string `toml:"unknown_fields" yaml:"unknown_fields"`
	Header        *bool  `toml:"header" yaml:"header"`
	LengthLimit   *int   `toml:"length_limit" yaml:"length_limit"`
	CompressOver  *int   `toml:"compress_over" yaml:"compress_over"`
	AllowNull     *bool  `toml:"allow_null" yaml:"allow_null"`
	Structured    *bool  `toml:"structured" yaml:"structured"`
}

type fileField struct {
	Name  string `toml:"name" yaml:"name"`
	Alias string `toml:"alias" yaml:"alias"`
}

// Load reads a schema file, choosing the decoder by extension.
func Load(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	var s *Schema
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		s, err = ParseTOML(data)
	case ".yaml", ".yml":
		s, err = ParseYAML(data)
	default:
		return nil, fmt.Errorf("load schema %s: %w: %q", path, ErrUnsupportedFormat, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("load schema %s: %w", path, err)
	}

	return s, nil
}

// ParseTOML parses a TOML schema. Unknown keys are rejected.
func ParseTOML(data []byte) (*Schema, error) {
	var raw fileSchema
	meta, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, fmt.Errorf("parse toml: %w", err)
	}

	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}

		return nil, fmt.Errorf("parse toml: unknown keys: %s", strings.Join(keys, ", "))
	}

	if !meta.IsDefined("name") {
		return nil, errors.New("parse toml: missing name")
	}

	return raw.toSchema()
}

// ParseYAML parses a YAML schema. Unknown keys are rejected.
func ParseYAML(data []byte) (*Schema, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var raw fileSchema
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	if strings.TrimSpace(raw.Name) == "" {
		return nil, errors.New("parse yaml: missing name")
	}

	return raw.toSchema()
}

func (f fileSchema) toSchema() (*Schema, error) {
	s := &Schema{
		Name:   strings.TrimSpace(f.Name),
		Column: defaultColumnSpec(),
		Fields: make([]FieldSpec, 0, len(f.Fields)),
	}

	for _, fld := range f.Fields {
		s.Fields = append(s.Fields, FieldSpec{
			Name:  strings.TrimSpace(fld.Name),
			Alias: strings.TrimSpace(fld.Alias),
		})
	}

	c := f.Column
	if c.Storage != "" {
		mode, err := format.ParseStorageMode(c.Storage)
		if err != nil {
			return nil, err
		}
		s.Column.Storage = mode
	}

	if c.UnknownFields != "" {
		policy, err := format.ParseUnknownPolicy(c.UnknownFields)
		if err != nil {
			return nil, err
		}
		s.Column.UnknownFields = policy
	}

	if c.Header != nil {
		s.Column.Header = *c.Header
	}
	if c.AllowNull != nil {
		s.Column.AllowNull = *c.AllowNull
	}
	if c.Structured != nil {
		s.Column.Structured = *c.Structured
	}
	s.Column.LengthLimit = c.LengthLimit
	s.Column.CompressOver = c.CompressOver

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}
