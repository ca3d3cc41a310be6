// Package field defines field descriptors and field sets.
//
// A Descriptor names one logical field and the JSON key (storage name) its
// value is written under. A Set is the closed, ordered collection of
// descriptors valid for one stored value; it resolves both logical names and
// storage names in constant time and rejects storage-name collisions when it
// is built:
//
//	set, err := field.NewSet("user_attributes",
//	    field.MustDescriptor("nickname", field.WithAlias("nn")),
//	    field.MustDescriptor("email"),
//	)
//
// Names are case- and whitespace-insensitive: " NickName " and "nickname"
// refer to the same field.
package field
