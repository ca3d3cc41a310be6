// Package column implements the codec for a single stored column value that
// packs many logical fields as one JSON object.
//
// A Column wraps the raw value read from storage together with the field set
// that defines which keys are fields, and parses it lazily on first access:
//
//	set := field.MustSet("user_attributes",
//		field.MustDescriptor("nickname"),
//		field.MustDescriptor("theme", field.WithAlias("ui_theme")),
//	)
//
//	col, err := column.New(set, column.NewStaticSource("users.attributes for row 42"), raw,
//		column.WithStorageMode(format.StorageBinary),
//		column.WithCompressOver(1024),
//	)
//	if err != nil {
//		return err
//	}
//
//	theme, err := col.Get("theme")
//	...
//	_, err = col.Set("nickname", "arlo")
//	...
//	stored, err := col.ToStoredData()
//
// Keys that match no field are kept as unknown fields. Under
// format.UnknownPreserve they are written back untouched; under
// format.UnknownDelete they are dropped on re-serialization.
//
// In binary mode, stored values are framed by the envelope package, which
// adds a version and compression header and optionally gzip-compresses the
// payload.
//
// Deserialization and serialization are reported to an Observer. LogObserver
// forwards them to a zerolog logger.
package column
