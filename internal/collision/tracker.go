package collision

import "errors"

// ErrDuplicateField is returned when the same field name is tracked twice.
var ErrDuplicateField = errors.New("duplicate field name")

// Tracker detects storage-name collisions while a field set is built.
// It maps each claimed storage name to the field that claimed it.
type Tracker struct {
	owners map[string]string   // storage name → field name
	fields map[string]struct{} // field names seen so far
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		owners: make(map[string]string),
		fields: make(map[string]struct{}),
	}
}

// Track records that field stores its data under storageName.
//
// Returns:
//   - owner: the field already storing under storageName, or "" when the name is free
//   - error: ErrDuplicateField if field was tracked before
//
// When owner is non-empty nothing is recorded.
func (t *Tracker) Track(field, storageName string) (string, error) {
	if _, exists := t.fields[field]; exists {
		return "", ErrDuplicateField
	}

	if owner, exists := t.owners[storageName]; exists {
		return owner, nil
	}

	t.fields[field] = struct{}{}
	t.owners[storageName] = field

	return "", nil
}
