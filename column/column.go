package column

import (
	"errors"
	"fmt"
	"sort"
	"time"
	"unicode/utf8"

	"github.com/arloliu/flexcol/envelope"
	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/format"
	"github.com/arloliu/flexcol/internal/encoding"
	"github.com/arloliu/flexcol/internal/options"
)

// Payload keys added to events.
const (
	PayloadRawData = "raw_data"
)

// Column packs the fields of one field set into a single stored value.
//
// A Column starts unparsed, holding only the raw stored value. The first
// read or write parses it into field values and unknown fields; it is never
// parsed again. A Column is not safe for concurrent use.
type Column struct {
	set    *field.Set
	source DataSource
	cfg    Config

	raw    []byte
	rawMap map[string]any

	// parsed guards values and unknown: both are nil until it is true.
	parsed  bool
	values  map[string]any
	unknown map[string]any
}

// New creates a Column for one stored value.
//
// Parameters:
//   - set: the fields valid for this value
//   - source: describes the value for errors and events
//   - raw: the stored value: nil, string, []byte or a pre-parsed map[string]any
//   - opts: configuration options (see DefaultConfig)
//
// Returns:
//   - *Column: the unparsed column
//   - error: ErrConfiguration for a nil set or source, an invalid option or an
//     unsupported raw type
//
// Configuration is validated here; the raw value is not inspected until first use.
func New(set *field.Set, source DataSource, raw any, opts ...Option) (*Column, error) {
	if set == nil {
		return nil, errs.Configuration("field_set", nil, nil)
	}
	if source == nil {
		return nil, errs.Configuration("data_source", nil, nil)
	}

	cfg := DefaultConfig()
	if err := options.Apply(&cfg, opts...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Observer == nil {
		cfg.Observer = NopObserver{}
	}

	c := &Column{set: set, source: source, cfg: cfg}

	switch v := raw.(type) {
	case nil:
	case string:
		c.raw = []byte(v)
	case []byte:
		c.raw = v
	case map[string]any:
		if v == nil {
			v = map[string]any{}
		}
		c.rawMap = v
	default:
		return nil, errs.Configuration("raw", fmt.Sprintf("%T", raw), errors.New("unsupported stored value type"))
	}

	return c, nil
}

// FieldSet returns the column's field set.
func (c *Column) FieldSet() *field.Set {
	return c.set
}

// Source returns the column's data source.
func (c *Column) Source() DataSource {
	return c.source
}

// Config returns a copy of the column's configuration.
func (c *Column) Config() Config {
	return c.cfg
}

// Deserialized reports whether the stored value has been parsed.
func (c *Column) Deserialized() bool {
	return c.parsed
}

// Touched reports whether any field has been read or written. Every access
// parses the stored value, so this is the same as Deserialized.
func (c *Column) Touched() bool {
	return c.parsed
}

// Deserialize parses the stored value if that has not happened yet.
// A failed parse leaves the column unparsed.
func (c *Column) Deserialize() error {
	if c.parsed {
		return nil
	}

	values, unknown, err := c.deserialize()
	if err != nil {
		return err
	}

	c.values, c.unknown, c.parsed = values, unknown, true

	return nil
}

// Get returns the value of the named field, or nil when it is not set.
//
// Returns:
//   - any: the field value
//   - error: ErrNoSuchField for an undeclared field, or any parse error
func (c *Column) Get(name string) (any, error) {
	d, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := c.Deserialize(); err != nil {
		return nil, err
	}

	return c.values[d.Name()], nil
}

// Set assigns the named field and returns the value as stored.
//
// The value is normalized to its JSON round-trip form: named string types
// become string, integers int64, and so on. Setting nil clears the field.
func (c *Column) Set(name string, value any) (any, error) {
	d, err := c.resolve(name)
	if err != nil {
		return nil, err
	}
	if err := c.Deserialize(); err != nil {
		return nil, err
	}

	stored := encoding.NormalizeValue(value)
	c.values[d.Name()] = stored

	return stored, nil
}

// Keys returns the names of fields with a non-nil value, sorted.
func (c *Column) Keys() ([]string, error) {
	if err := c.Deserialize(); err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(c.values))
	for name, v := range c.values {
		if v != nil {
			keys = append(keys, name)
		}
	}
	sort.Strings(keys)

	return keys, nil
}

// UnknownFields returns a copy of the stored keys that matched no field.
// They are returned even under the delete policy, which only drops them on
// re-serialization.
func (c *Column) UnknownFields() (map[string]any, error) {
	if err := c.Deserialize(); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(c.unknown))
	for k, v := range c.unknown {
		out[k] = encoding.Clone(v)
	}

	return out, nil
}

// ToJSON returns the logical JSON encoding without emitting an event or
// enforcing the length limit.
func (c *Column) ToJSON() (string, error) {
	obj, err := c.logicalObject()
	if err != nil {
		return "", err
	}

	b, err := encoding.EncodeJSON(obj)
	if err != nil {
		return "", fmt.Errorf("%s: encode json: %w", c.source.Description(), err)
	}

	return string(b), nil
}

// ToStoredData returns the value to write back to storage.
//
// Returns:
//   - any: nil, a string (text mode), a []byte (binary mode) or a
//     map[string]any (structured text mode)
//   - error: ErrDataTooLong when the length limit is exceeded, or any parse error
//
// An empty object is returned as nil when nulls are allowed, otherwise as an
// empty value of the mode's type.
func (c *Column) ToStoredData() (any, error) {
	var out any
	err := c.instrument(EventSerialize, nil, func() error {
		var err error
		out, err = c.storedData()

		return err
	})
	if err != nil {
		return nil, err
	}

	return out, nil
}

func (c *Column) storedData() (any, error) {
	obj, err := c.logicalObject()
	if err != nil {
		return nil, err
	}

	if len(obj) == 0 {
		return c.emptyValue(), nil
	}

	if c.cfg.Structured {
		return encoding.Clone(obj), nil
	}

	text, err := encoding.EncodeJSON(obj)
	if err != nil {
		return nil, fmt.Errorf("%s: encode json: %w", c.source.Description(), err)
	}

	if c.cfg.StorageMode == format.StorageText {
		s := string(text)
		if err := c.checkLength(utf8.RuneCountInString(s), s); err != nil {
			return nil, err
		}

		return s, nil
	}

	data := text
	if c.cfg.BinaryHeader {
		res, err := envelope.Encode(text, envelope.EncodeOptions{CompressOver: c.cfg.CompressOver})
		if err != nil {
			return nil, fmt.Errorf("%s: encode envelope: %w", c.source.Description(), err)
		}
		data = res.Data
	}

	if err := c.checkLength(len(data), string(data)); err != nil {
		return nil, err
	}

	return data, nil
}

func (c *Column) emptyValue() any {
	switch {
	case c.cfg.AllowNull:
		return nil
	case c.cfg.Structured:
		return map[string]any{}
	case c.cfg.StorageMode == format.StorageBinary:
		return []byte{}
	default:
		return ""
	}
}

func (c *Column) checkLength(length int, value string) error {
	if c.cfg.LengthLimit == nil || length <= *c.cfg.LengthLimit {
		return nil
	}

	return errs.DataTooLong(c.source.Description(), *c.cfg.LengthLimit, length, value)
}

// logicalObject merges preserved unknown fields and set fields keyed by
// storage name. Fields win over unknown keys.
func (c *Column) logicalObject() (map[string]any, error) {
	if err := c.Deserialize(); err != nil {
		return nil, err
	}

	out := make(map[string]any, len(c.values)+len(c.unknown))
	if c.cfg.UnknownFields != format.UnknownDelete {
		for k, v := range c.unknown {
			out[k] = v
		}
	}

	for name, v := range c.values {
		if v == nil {
			continue
		}
		d, _ := c.set.FieldNamed(name)
		out[d.StorageName()] = v
	}

	return out, nil
}

func (c *Column) resolve(name string) (field.Descriptor, error) {
	d, ok := c.set.FieldNamed(name)
	if !ok {
		return field.Descriptor{}, errs.NoSuchField(c.source.Description(), name, c.set.FieldNames())
	}

	return d, nil
}

func (c *Column) deserialize() (map[string]any, map[string]any, error) {
	if c.rawMap != nil {
		var values, unknown map[string]any
		err := c.instrument(EventDeserialize, nil, func() error {
			obj := make(map[string]any, len(c.rawMap))
			for k, v := range c.rawMap {
				obj[k] = encoding.NormalizeValue(v)
			}
			values, unknown = c.partition(obj)

			return nil
		})

		return values, unknown, err
	}

	var values, unknown map[string]any
	extra := map[string]any{PayloadRawData: string(c.raw)}
	err := c.instrument(EventDeserialize, extra, func() error {
		obj, err := c.parse()
		if err != nil {
			return err
		}
		values, unknown = c.partition(obj)

		return nil
	})

	return values, unknown, err
}

// parse turns the raw stored value into a JSON object.
func (c *Column) parse() (map[string]any, error) {
	desc := c.source.Description()

	if c.cfg.StorageMode == format.StorageText {
		if err := checkUTF8(desc, c.raw); err != nil {
			return nil, err
		}
	}

	decoded, err := envelope.Decode(c.raw)
	if err != nil {
		return nil, errs.WithSource(err, desc)
	}
	payload := decoded.Payload

	if c.cfg.StorageMode == format.StorageBinary {
		if err := checkUTF8(desc, payload); err != nil {
			return nil, err
		}
	}

	if len(payload) == 0 {
		return map[string]any{}, nil
	}

	parsed, err := encoding.DecodeJSON(payload)
	if err != nil {
		return nil, errs.UnparseableData(desc, string(payload), err)
	}

	obj, ok := parsed.(map[string]any)
	if !ok {
		return nil, errs.InvalidStructure(desc, string(payload), parsed, encoding.Shape(parsed))
	}

	return obj, nil
}

// partition splits obj into field values and unknown keys. A key that
// matches a storage name exactly takes precedence over one that only
// matches after normalization; the loser is kept as an unknown key.
func (c *Column) partition(obj map[string]any) (map[string]any, map[string]any) {
	values := make(map[string]any, len(obj))
	unknown := make(map[string]any)

	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ei, ej := c.exactStorageName(keys[i]), c.exactStorageName(keys[j])
		if ei != ej {
			return ei
		}

		return keys[i] < keys[j]
	})

	for _, k := range keys {
		d, ok := c.set.FieldWithStorageName(k)
		if !ok {
			unknown[k] = obj[k]
			continue
		}
		if _, taken := values[d.Name()]; taken {
			unknown[k] = obj[k]
			continue
		}
		values[d.Name()] = obj[k]
	}

	return values, unknown
}

func (c *Column) exactStorageName(key string) bool {
	d, ok := c.set.FieldWithStorageName(key)
	return ok && d.StorageName() == key
}

func (c *Column) instrument(name string, extra map[string]any, fn func() error) error {
	ctx := c.source.EventContext()
	payload := make(map[string]any, len(ctx)+len(extra))
	for k, v := range ctx {
		payload[k] = v
	}
	for k, v := range extra {
		payload[k] = v
	}

	ev := Event{Name: name, Payload: payload}
	c.cfg.Observer.Started(ev)

	start := time.Now()
	err := fn()

	ev.Duration = time.Since(start)
	ev.Err = err
	c.cfg.Observer.Finished(ev)

	return err
}

func checkUTF8(source string, data []byte) error {
	if utf8.Valid(data) {
		return nil
	}

	valid, invalid := encoding.ScanUTF8(data)

	return errs.Encoding(source, valid, invalid)
}
