package column

import (
	"bytes"
	"strings"
	"testing"

	"github.com/arloliu/flexcol/compress"
	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/format"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	started  []Event
	finished []Event
}

func (o *recordingObserver) Started(ev Event)  { o.started = append(o.started, ev) }
func (o *recordingObserver) Finished(ev Event) { o.finished = append(o.finished, ev) }

func (o *recordingObserver) count(name string) int {
	n := 0
	for _, ev := range o.finished {
		if ev.Name == name {
			n++
		}
	}

	return n
}

type mood string

func fooBarBaz(t *testing.T) *field.Set {
	t.Helper()

	set, err := field.NewSet("test_schema",
		field.MustDescriptor("foo"),
		field.MustDescriptor("bar"),
		field.MustDescriptor("baz"),
	)
	require.NoError(t, err)

	return set
}

func testSource() StaticSource {
	return StaticSource{Desc: "users.attributes for row 1", Context: map[string]any{"table": "users", "id": 1}}
}

func newColumn(t *testing.T, set *field.Set, raw any, opts ...Option) *Column {
	t.Helper()

	col, err := New(set, testSource(), raw, opts...)
	require.NoError(t, err)

	return col
}

func TestColumn_Scenario(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `  {"bar":123,"foo":"bar","baz":"quux"}   `)

	keys, err := col.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"bar", "baz", "foo"}, keys)

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "bar", v)

	v, err = col.Get("bar")
	require.NoError(t, err)
	require.Equal(t, int64(123), v)

	_, err = col.Set("bar", nil)
	require.NoError(t, err)

	keys, err = col.Keys()
	require.NoError(t, err)
	require.Equal(t, []string{"baz", "foo"}, keys)

	out, err := col.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `{"baz":"quux","foo":"bar"}`, out)
}

func TestColumn_LazyDeserialization(t *testing.T) {
	obs := &recordingObserver{}
	col := newColumn(t, fooBarBaz(t), `{"foo":"a"}`, WithObserver(obs))

	require.False(t, col.Deserialized())
	require.False(t, col.Touched())
	require.Empty(t, obs.started)

	for range 3 {
		_, err := col.Get("foo")
		require.NoError(t, err)
	}
	_, err := col.Set("bar", 1)
	require.NoError(t, err)
	_, err = col.Keys()
	require.NoError(t, err)
	_, err = col.ToJSON()
	require.NoError(t, err)

	require.True(t, col.Deserialized())
	require.True(t, col.Touched())
	require.Equal(t, 1, obs.count(EventDeserialize))
	require.Len(t, obs.started, 1)
	require.Equal(t, 0, obs.count(EventSerialize), "ToJSON emits no event")
}

func TestColumn_Events(t *testing.T) {
	obs := &recordingObserver{}
	col := newColumn(t, fooBarBaz(t), `{"foo":"a"}`, WithObserver(obs))

	_, err := col.ToStoredData()
	require.NoError(t, err)

	require.Len(t, obs.started, 2)
	require.Equal(t, EventSerialize, obs.started[0].Name)
	require.Equal(t, EventDeserialize, obs.started[1].Name)

	deser := obs.finished[0]
	require.Equal(t, EventDeserialize, deser.Name)
	require.Equal(t, `{"foo":"a"}`, deser.Payload[PayloadRawData])
	require.Equal(t, "users", deser.Payload["table"])
	require.NoError(t, deser.Err)

	ser := obs.finished[1]
	require.Equal(t, EventSerialize, ser.Name)
	require.Equal(t, 1, ser.Payload["id"])
	require.NotContains(t, ser.Payload, PayloadRawData)
}

func TestColumn_EventCarriesError(t *testing.T) {
	obs := &recordingObserver{}
	col := newColumn(t, fooBarBaz(t), `{oops`, WithObserver(obs))

	_, err := col.Get("foo")
	require.ErrorIs(t, err, errs.ErrUnparseableData)
	require.Len(t, obs.finished, 1)
	require.ErrorIs(t, obs.finished[0].Err, errs.ErrUnparseableData)
	require.False(t, col.Deserialized(), "failed parse leaves column unparsed")
}

func TestColumn_NoSuchField(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `{"foo":"a"}`)

	_, err := col.Get("quux")
	require.ErrorIs(t, err, errs.ErrNoSuchField)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "quux", e.Field)
	require.Equal(t, []string{"foo", "bar", "baz"}, e.KnownFields)
	require.Equal(t, "users.attributes for row 1", e.Source)
	require.False(t, col.Deserialized(), "lookup failure happens before parsing")

	_, err = col.Set("quux", 1)
	require.ErrorIs(t, err, errs.ErrNoSuchField)
}

func TestColumn_NamesAreNormalized(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `{"foo":"a"}`)

	v, err := col.Get(" FOO ")
	require.NoError(t, err)
	require.Equal(t, "a", v)
}

func TestColumn_SetNormalizesValues(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), nil)

	stored, err := col.Set("foo", mood("happy"))
	require.NoError(t, err)
	require.Equal(t, "happy", stored)

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.IsType(t, "", v)

	stored, err = col.Set("bar", 42)
	require.NoError(t, err)
	require.Equal(t, int64(42), stored)
}

func TestColumn_RoundTrip(t *testing.T) {
	set := fooBarBaz(t)
	assignments := []map[string]any{
		{"foo": "text", "bar": 123, "baz": 1.5},
		{"foo": mood("sym"), "bar": []string{"a", "b"}, "baz": map[string]int{"n": 1}},
		{"foo": true, "bar": int64(-9), "baz": "日本語 <&>"},
		{"foo": uint8(200)},
		{"foo": 1e19, "bar": -1e19, "baz": 2.0},
	}

	for _, assign := range assignments {
		src := newColumn(t, set, nil)
		for k, v := range assign {
			_, err := src.Set(k, v)
			require.NoError(t, err)
		}

		text, err := src.ToJSON()
		require.NoError(t, err)

		dst := newColumn(t, set, text)
		for k := range assign {
			want, err := src.Get(k)
			require.NoError(t, err)
			got, err := dst.Get(k)
			require.NoError(t, err)
			require.Equal(t, want, got, "field %s after reload of %s", k, text)
		}
	}
}

func TestColumn_AliasPrecedence(t *testing.T) {
	set, err := field.NewSet("aliased", field.MustDescriptor("foo", field.WithAlias("bar")))
	require.NoError(t, err)

	col := newColumn(t, set, `{"foo":"aaa","bar":"bbb"}`)

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "bbb", v)

	unknown, err := col.UnknownFields()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"foo": "aaa"}, unknown)

	_, err = col.Set("foo", "ccc")
	require.NoError(t, err)

	out, err := col.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `{"bar":"ccc","foo":"aaa"}`, out)
}

func TestColumn_ExactStorageKeyWins(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `{"FOO":"upper","foo":"lower"}`)

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "lower", v)

	unknown, err := col.UnknownFields()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"FOO": "upper"}, unknown)

	col = newColumn(t, fooBarBaz(t), `{"Foo":"mixed"}`)
	v, err = col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "mixed", v)
}

func TestColumn_UnknownFieldPolicy(t *testing.T) {
	raw := `{"foo":"a","legacy":{"x":1}}`

	preserve := newColumn(t, fooBarBaz(t), raw, WithUnknownFields(format.UnknownPreserve))
	out, err := preserve.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `{"foo":"a","legacy":{"x":1}}`, out)

	del := newColumn(t, fooBarBaz(t), raw, WithUnknownFields(format.UnknownDelete))
	out, err = del.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `{"foo":"a"}`, out)

	unknown, err := del.UnknownFields()
	require.NoError(t, err)
	require.Contains(t, unknown, "legacy")
}

func TestColumn_EmptyInput(t *testing.T) {
	for _, raw := range []any{nil, "", "   \n\t ", []byte{}, "FC:01,0,", "FC:01,0,   "} {
		col := newColumn(t, fooBarBaz(t), raw)

		keys, err := col.Keys()
		require.NoError(t, err)
		require.Empty(t, keys)

		unknown, err := col.UnknownFields()
		require.NoError(t, err)
		require.Empty(t, unknown)
	}
}

func TestColumn_PreParsedMap(t *testing.T) {
	obs := &recordingObserver{}
	col := newColumn(t, fooBarBaz(t), map[string]any{"foo": mood("x"), "other": 1}, WithObserver(obs))

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "x", v)

	unknown, err := col.UnknownFields()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"other": int64(1)}, unknown)
	require.Equal(t, 1, obs.count(EventDeserialize))
}

func TestColumn_EncodingError(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), []byte{'{', '"', 'f', 'o', 'o', '"', ':', '"', 0xff, 'a', '"', '}'})

	_, err := col.Get("foo")
	require.ErrorIs(t, err, errs.ErrEncoding)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, 8, e.FirstInvalid)
	require.Equal(t, []int{8}, e.InvalidOffsets)
	require.Equal(t, `{"foo":"a"}`, e.ValidText)
}

func TestColumn_ParseErrors(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		kind errs.Kind
	}{
		{"syntax", `{"foo":`, errs.ErrUnparseableData},
		{"trailing", `{"foo":1} {}`, errs.ErrUnparseableData},
		{"array", `[1,2,3]`, errs.ErrInvalidStructure},
		{"scalar", `"just a string"`, errs.ErrInvalidStructure},
		{"version", `FC:02,0,{"foo":1}`, errs.ErrUnsupportedVersion},
		{"flag", `FC:01,2,{"foo":1}`, errs.ErrInvalidEnvelope},
		{"corrupt", `FC:01,1,not gzip at all`, errs.ErrCorruptCompressedData},
		{"malformed header is json", `FC:1,0,{}`, errs.ErrUnparseableData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := newColumn(t, fooBarBaz(t), tt.raw)

			_, err := col.Get("foo")
			require.ErrorIs(t, err, tt.kind)

			var e *errs.Error
			require.ErrorAs(t, err, &e)
			require.Equal(t, "users.attributes for row 1", e.Source)
		})
	}
}

func TestColumn_VersionRejection(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `FC:02,0,{"foo":1}`, WithStorageMode(format.StorageBinary))

	_, err := col.Keys()

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, errs.ErrUnsupportedVersion, e.Kind)
	require.Equal(t, 2, e.Found)
	require.Equal(t, 1, e.Max)
}

func TestColumn_InvalidStructureShape(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `[1]`)

	_, err := col.Keys()

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "array", e.Shape)
	require.Equal(t, []any{int64(1)}, e.Parsed)
	require.Equal(t, "[1]", e.Raw)
}

func TestColumn_ToStoredData_Text(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), nil)
	_, err := col.Set("foo", "bar")
	require.NoError(t, err)

	out, err := col.ToStoredData()
	require.NoError(t, err)
	require.Equal(t, `{"foo":"bar"}`, out)
}

func TestColumn_ToStoredData_Empty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		opts []Option
		want any
	}{
		{"text null", `{}`, nil, nil},
		{"text no null", `{}`, []Option{WithAllowNull(false)}, ""},
		{"binary no null", `{}`, []Option{WithAllowNull(false), WithStorageMode(format.StorageBinary)}, []byte{}},
		{"structured no null", `{}`, []Option{WithAllowNull(false), WithStructured(true)}, map[string]any{}},
		{"delete policy drops unknown", `{"legacy":1}`, []Option{WithUnknownFields(format.UnknownDelete)}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col := newColumn(t, fooBarBaz(t), tt.raw, tt.opts...)

			out, err := col.ToStoredData()
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestColumn_ToStoredData_Structured(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), map[string]any{"foo": "a"}, WithStructured(true))
	_, err := col.Set("bar", 2)
	require.NoError(t, err)

	out, err := col.ToStoredData()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"foo": "a", "bar": int64(2)}, out)
}

func TestColumn_ToStoredData_StructuredIsDetached(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), `{"foo":{"x":1},"bar":[1,2],"legacy":{"y":true}}`, WithStructured(true))

	out, err := col.ToStoredData()
	require.NoError(t, err)

	obj, ok := out.(map[string]any)
	require.True(t, ok)
	obj["foo"].(map[string]any)["x"] = int64(99)
	obj["bar"].([]any)[0] = int64(99)
	obj["legacy"].(map[string]any)["y"] = false
	obj["baz"] = "injected"

	v, err := col.Get("foo")
	require.NoError(t, err)
	require.Equal(t, map[string]any{"x": int64(1)}, v)

	v, err = col.Get("bar")
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, v)

	v, err = col.Get("baz")
	require.NoError(t, err)
	require.Nil(t, v)

	unknown, err := col.UnknownFields()
	require.NoError(t, err)
	require.Equal(t, map[string]any{"legacy": map[string]any{"y": true}}, unknown)

	unknown["legacy"].(map[string]any)["y"] = "mutated"
	text, err := col.ToJSON()
	require.NoError(t, err)
	require.Equal(t, `{"bar":[1,2],"foo":{"x":1},"legacy":{"y":true}}`, text)
}

func TestColumn_ToStoredData_Binary(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), nil, WithStorageMode(format.StorageBinary))
	_, err := col.Set("foo", "bär")
	require.NoError(t, err)

	out, err := col.ToStoredData()
	require.NoError(t, err)
	require.Equal(t, []byte(`FC:01,0,{"foo":"bär"}`), out)

	reloaded := newColumn(t, fooBarBaz(t), out, WithStorageMode(format.StorageBinary))
	v, err := reloaded.Get("foo")
	require.NoError(t, err)
	require.Equal(t, "bär", v)
}

func TestColumn_ToStoredData_BinaryWithoutHeader(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), nil, WithStorageMode(format.StorageBinary), WithBinaryHeader(false))
	_, err := col.Set("foo", "x")
	require.NoError(t, err)

	out, err := col.ToStoredData()
	require.NoError(t, err)
	require.Equal(t, []byte(`{"foo":"x"}`), out)
}

func TestColumn_CompressionThreshold(t *testing.T) {
	repetitive := strings.Repeat("abcdefgh", 200)

	tests := []struct {
		name       string
		value      string
		over       int
		compressed bool
	}{
		{"repetitive over threshold", repetitive, 1, true},
		{"under threshold", repetitive, 100000, false},
		{"incompressible small payload", "x", 1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := []Option{WithStorageMode(format.StorageBinary), WithCompressOver(tt.over)}
			col := newColumn(t, fooBarBaz(t), nil, opts...)
			_, err := col.Set("foo", tt.value)
			require.NoError(t, err)

			out, err := col.ToStoredData()
			require.NoError(t, err)
			data, ok := out.([]byte)
			require.True(t, ok)

			if tt.compressed {
				require.True(t, bytes.HasPrefix(data, []byte("FC:01,1,")))
				require.Less(t, len(data), len(repetitive))
			} else {
				require.True(t, bytes.HasPrefix(data, []byte("FC:01,0,")))
			}

			reloaded := newColumn(t, fooBarBaz(t), data, opts...)
			v, err := reloaded.Get("foo")
			require.NoError(t, err)
			require.Equal(t, tt.value, v)
		})
	}
}

func TestColumn_ReadsForeignCompressedPayload(t *testing.T) {
	compressed, err := compress.NewGzipCompressor().Compress([]byte(`{"baz":"z"}`))
	require.NoError(t, err)

	raw := append([]byte("  FC:01,1,"), compressed...)
	col := newColumn(t, fooBarBaz(t), raw, WithStorageMode(format.StorageBinary))

	v, err := col.Get("baz")
	require.NoError(t, err)
	require.Equal(t, "z", v)
}

func TestColumn_BinaryModeValidatesDecodedPayload(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), []byte{'F', 'C', ':', '0', '1', ',', '0', ',', '{', 0xc3, '}'},
		WithStorageMode(format.StorageBinary))

	_, err := col.Keys()
	require.ErrorIs(t, err, errs.ErrEncoding)
}

func TestColumn_LengthLimit(t *testing.T) {
	col := newColumn(t, fooBarBaz(t), nil, WithLengthLimit(1000))
	_, err := col.Set("foo", strings.Repeat("y", 3000))
	require.NoError(t, err)

	_, err = col.ToStoredData()
	require.ErrorIs(t, err, errs.ErrDataTooLong)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, 1000, e.Limit)
	require.Equal(t, 3010, e.Actual)

	text, err := col.ToJSON()
	require.NoError(t, err, "ToJSON ignores the limit")
	require.Equal(t, text, e.Raw)
	require.Less(t, len(e.Error()), 400)
}

func TestColumn_LengthLimitCountsCharactersInTextMode(t *testing.T) {
	// {"foo":"éééé"} is 14 characters and 18 bytes
	col := newColumn(t, fooBarBaz(t), nil, WithLengthLimit(14))
	_, err := col.Set("foo", "éééé")
	require.NoError(t, err)

	_, err = col.ToStoredData()
	require.NoError(t, err)

	bin := newColumn(t, fooBarBaz(t), nil, WithLengthLimit(25), WithStorageMode(format.StorageBinary))
	_, err = bin.Set("foo", "éééé")
	require.NoError(t, err)

	// 8 header bytes + 18 payload bytes
	_, err = bin.ToStoredData()
	require.ErrorIs(t, err, errs.ErrDataTooLong)
}

func TestNew_Validation(t *testing.T) {
	set := fooBarBaz(t)

	tests := []struct {
		name   string
		set    *field.Set
		source DataSource
		raw    any
		opts   []Option
	}{
		{"nil set", nil, testSource(), nil, nil},
		{"nil source", set, nil, nil, nil},
		{"bad policy", set, testSource(), nil, []Option{WithUnknownFields(format.UnknownPolicy(9))}},
		{"bad storage", set, testSource(), nil, []Option{WithStorageMode(format.StorageMode(0))}},
		{"short limit", set, testSource(), nil, []Option{WithLengthLimit(7)}},
		{"negative compress", set, testSource(), nil, []Option{WithStorageMode(format.StorageBinary), WithCompressOver(-1)}},
		{"compress in text mode", set, testSource(), nil, []Option{WithCompressOver(10)}},
		{"compress without header", set, testSource(), nil,
			[]Option{WithStorageMode(format.StorageBinary), WithBinaryHeader(false), WithCompressOver(10)}},
		{"structured binary", set, testSource(), nil, []Option{WithStorageMode(format.StorageBinary), WithStructured(true)}},
		{"unsupported raw", set, testSource(), 42, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := New(tt.set, tt.source, tt.raw, tt.opts...)
			require.ErrorIs(t, err, errs.ErrConfiguration)
			require.Nil(t, col)
		})
	}
}

func TestNew_AcceptsBoundaryValues(t *testing.T) {
	col, err := New(fooBarBaz(t), testSource(), nil,
		WithStorageMode(format.StorageBinary),
		WithLengthLimit(8),
		WithCompressOver(0),
		WithObserver(nil),
	)
	require.NoError(t, err)

	cfg := col.Config()
	require.Equal(t, 8, *cfg.LengthLimit)
	require.Equal(t, 0, *cfg.CompressOver)
	require.IsType(t, NopObserver{}, cfg.Observer)
}

func TestNew_WithConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.StorageMode = format.StorageBinary
	cfg.Observer = nil

	col, err := New(fooBarBaz(t), testSource(), nil, WithConfig(cfg), WithAllowNull(false))
	require.NoError(t, err)
	require.Equal(t, format.StorageBinary, col.Config().StorageMode)
	require.False(t, col.Config().AllowNull)
	require.NotNil(t, col.Config().Observer)
}
