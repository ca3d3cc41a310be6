package column

import "maps"

// DataSource describes where a stored value came from. The codec only reads
// from it: the description is used in error messages and the event context
// in every event payload.
type DataSource interface {
	// Description returns a human-readable description, e.g. "users.attributes for row 42".
	Description() string
	// EventContext returns structured context merged into event payloads.
	EventContext() map[string]any
}

// StaticSource is a DataSource with fixed values.
type StaticSource struct {
	Desc    string
	Context map[string]any
}

var _ DataSource = StaticSource{}

// NewStaticSource creates a StaticSource with the given description and no
// extra context.
func NewStaticSource(desc string) StaticSource {
	return StaticSource{Desc: desc}
}

// Description implements DataSource.
func (s StaticSource) Description() string {
	return s.Desc
}

// EventContext implements DataSource. The returned map is a copy.
func (s StaticSource) EventContext() map[string]any {
	return maps.Clone(s.Context)
}
