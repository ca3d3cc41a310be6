package field

import (
	"strings"

	"github.com/arloliu/flexcol/errs"
)

// Descriptor describes one logical field: its name and the key its value is
// stored under in the JSON encoding.
type Descriptor struct {
	name        string
	storageName string
}

// DescriptorOption customizes a Descriptor.
type DescriptorOption func(*Descriptor) error

// WithAlias stores the field under storageName instead of its own name.
func WithAlias(storageName string) DescriptorOption {
	return func(d *Descriptor) error {
		normalized, ok := NormalizeName(storageName)
		if !ok {
			return errs.Configuration("alias", storageName, nil)
		}
		d.storageName = normalized

		return nil
	}
}

// NewDescriptor creates a Descriptor for the field called name.
//
// Parameters:
//   - name: field name; surrounding whitespace is trimmed and it is lower-cased
//   - opts: optional settings such as WithAlias
//
// Returns:
//   - Descriptor: the field descriptor
//   - error: ErrConfiguration if name or an alias is blank
func NewDescriptor(name string, opts ...DescriptorOption) (Descriptor, error) {
	normalized, ok := NormalizeName(name)
	if !ok {
		return Descriptor{}, errs.Configuration("field name", name, nil)
	}

	d := Descriptor{name: normalized, storageName: normalized}
	for _, opt := range opts {
		if err := opt(&d); err != nil {
			return Descriptor{}, err
		}
	}

	return d, nil
}

// MustDescriptor is like NewDescriptor but panics on error.
func MustDescriptor(name string, opts ...DescriptorOption) Descriptor {
	d, err := NewDescriptor(name, opts...)
	if err != nil {
		panic(err)
	}

	return d
}

// Name returns the logical field name.
func (d Descriptor) Name() string {
	return d.name
}

// StorageName returns the JSON key the field is stored under.
func (d Descriptor) StorageName() string {
	return d.storageName
}

// Aliased reports whether the field stores under a name other than its own.
func (d Descriptor) Aliased() bool {
	return d.name != d.storageName
}

// NormalizeName returns the canonical identifier for name: surrounding
// whitespace removed and lower-cased. ok is false for a blank name.
func NormalizeName(name string) (normalized string, ok bool) {
	normalized = strings.ToLower(strings.TrimSpace(name))

	return normalized, normalized != ""
}
