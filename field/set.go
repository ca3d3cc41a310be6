package field

import (
	"errors"
	"fmt"

	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/internal/collision"
	"github.com/arloliu/flexcol/internal/hash"
)

// Set is the ordered, closed schema of fields valid for one stored value.
//
// A Set is immutable after construction and safe for concurrent use.
type Set struct {
	name        string
	descriptors []Descriptor
	byName      map[string]int
	byStorage   map[string]int
	fingerprint uint64
}

// NewSet creates a field set.
//
// Parameters:
//   - name: the identity of the owning schema, used in error messages
//   - descriptors: fields in declaration order
//
// Returns:
//   - *Set: the field set
//   - error: ErrConflictingStorageName if two fields would share a storage
//     name, ErrConfiguration if a field is declared twice
func NewSet(name string, descriptors ...Descriptor) (*Set, error) {
	tracker := collision.NewTracker()
	s := &Set{
		name:        name,
		descriptors: make([]Descriptor, 0, len(descriptors)),
		byName:      make(map[string]int, len(descriptors)),
		byStorage:   make(map[string]int, len(descriptors)),
	}

	parts := make([]string, 0, len(descriptors)*2+1)
	parts = append(parts, name)

	for _, d := range descriptors {
		if d.name == "" {
			return nil, errs.Configuration("field", d, errors.New("descriptor has no name"))
		}

		owner, err := tracker.Track(d.name, d.storageName)
		if errors.Is(err, collision.ErrDuplicateField) {
			return nil, errs.Configuration("field", d.name, fmt.Errorf("%w in %s", err, name))
		}
		if owner != "" {
			return nil, errs.ConflictingStorageName(name, d.name, owner, d.storageName)
		}

		s.byName[d.name] = len(s.descriptors)
		s.byStorage[d.storageName] = len(s.descriptors)
		s.descriptors = append(s.descriptors, d)
		parts = append(parts, d.name, d.storageName)
	}

	s.fingerprint = hash.Fingerprint(parts...)

	return s, nil
}

// MustSet is like NewSet but panics on error.
func MustSet(name string, descriptors ...Descriptor) *Set {
	s, err := NewSet(name, descriptors...)
	if err != nil {
		panic(err)
	}

	return s
}

// Name returns the schema identity of the set.
func (s *Set) Name() string {
	return s.name
}

// Len returns the number of fields.
func (s *Set) Len() int {
	return len(s.descriptors)
}

// Fingerprint returns a hash of the set name and its ordered descriptors.
// Two sets with equal fingerprints resolve every name identically.
func (s *Set) Fingerprint() uint64 {
	return s.fingerprint
}

// FieldNamed returns the field whose logical name matches name.
func (s *Set) FieldNamed(name string) (Descriptor, bool) {
	normalized, ok := NormalizeName(name)
	if !ok {
		return Descriptor{}, false
	}

	idx, ok := s.byName[normalized]
	if !ok {
		return Descriptor{}, false
	}

	return s.descriptors[idx], true
}

// FieldWithStorageName returns the field stored under name.
func (s *Set) FieldWithStorageName(name string) (Descriptor, bool) {
	normalized, ok := NormalizeName(name)
	if !ok {
		return Descriptor{}, false
	}

	idx, ok := s.byStorage[normalized]
	if !ok {
		return Descriptor{}, false
	}

	return s.descriptors[idx], true
}

// FieldNames returns all field names in declaration order.
func (s *Set) FieldNames() []string {
	names := make([]string, len(s.descriptors))
	for i, d := range s.descriptors {
		names[i] = d.name
	}

	return names
}

// Descriptors returns a copy of the descriptors in declaration order.
func (s *Set) Descriptors() []Descriptor {
	out := make([]Descriptor, len(s.descriptors))
	copy(out, s.descriptors)

	return out
}
