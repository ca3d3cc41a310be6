package field

import (
	"testing"

	"github.com/arloliu/flexcol/errs"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	d, err := NewDescriptor("  NickName ")
	require.NoError(t, err)
	require.Equal(t, "nickname", d.Name())
	require.Equal(t, "nickname", d.StorageName())
	require.False(t, d.Aliased())

	d, err = NewDescriptor("nickname", WithAlias(" NN"))
	require.NoError(t, err)
	require.Equal(t, "nickname", d.Name())
	require.Equal(t, "nn", d.StorageName())
	require.True(t, d.Aliased())
}

func TestNewDescriptor_Blank(t *testing.T) {
	_, err := NewDescriptor("   ")
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = NewDescriptor("foo", WithAlias(""))
	require.ErrorIs(t, err, errs.ErrConfiguration)

	require.Panics(t, func() { MustDescriptor("") })
}

func TestSet_Lookup(t *testing.T) {
	set, err := NewSet("users",
		MustDescriptor("foo", WithAlias("bar")),
		MustDescriptor("baz"),
	)
	require.NoError(t, err)
	require.Equal(t, "users", set.Name())
	require.Equal(t, 2, set.Len())
	require.Equal(t, []string{"foo", "baz"}, set.FieldNames())

	d, ok := set.FieldNamed("FOO ")
	require.True(t, ok)
	require.Equal(t, "bar", d.StorageName())

	_, ok = set.FieldNamed("bar")
	require.False(t, ok, "storage alias is not a field name")

	d, ok = set.FieldWithStorageName("bar")
	require.True(t, ok)
	require.Equal(t, "foo", d.Name())

	_, ok = set.FieldWithStorageName("foo")
	require.False(t, ok, "an aliased field no longer stores under its own name")

	_, ok = set.FieldNamed("")
	require.False(t, ok)
	_, ok = set.FieldWithStorageName("  ")
	require.False(t, ok)
}

func TestSet_ConflictingStorageName(t *testing.T) {
	_, err := NewSet("users",
		MustDescriptor("foo", WithAlias("bar")),
		MustDescriptor("bar"),
	)
	require.ErrorIs(t, err, errs.ErrConflictingStorageName)

	var e *errs.Error
	require.ErrorAs(t, err, &e)
	require.Equal(t, "bar", e.Field)
	require.Equal(t, "foo", e.ExistingField)
	require.Equal(t, "bar", e.StorageName)
	require.Equal(t, "users", e.Schema)
}

func TestSet_FieldMayClaimOtherFieldsName(t *testing.T) {
	set, err := NewSet("users",
		MustDescriptor("foo", WithAlias("bar")),
		MustDescriptor("bar", WithAlias("baz")),
	)
	require.NoError(t, err)

	d, ok := set.FieldWithStorageName("bar")
	require.True(t, ok)
	require.Equal(t, "foo", d.Name())

	d, ok = set.FieldWithStorageName("baz")
	require.True(t, ok)
	require.Equal(t, "bar", d.Name())
}

func TestSet_DuplicateField(t *testing.T) {
	_, err := NewSet("users", MustDescriptor("foo"), MustDescriptor("FOO", WithAlias("other")))
	require.ErrorIs(t, err, errs.ErrConfiguration)

	_, err = NewSet("users", Descriptor{})
	require.ErrorIs(t, err, errs.ErrConfiguration)

	require.Panics(t, func() { MustSet("users", MustDescriptor("a"), MustDescriptor("a")) })
}

func TestSet_Fingerprint(t *testing.T) {
	a := MustSet("users", MustDescriptor("foo"), MustDescriptor("bar"))
	b := MustSet("users", MustDescriptor("foo"), MustDescriptor("bar"))
	c := MustSet("users", MustDescriptor("foo", WithAlias("f")), MustDescriptor("bar"))
	d := MustSet("users", MustDescriptor("bar"), MustDescriptor("foo"))

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), c.Fingerprint())
	require.NotEqual(t, a.Fingerprint(), d.Fingerprint())
}

func TestSet_DescriptorsIsCopy(t *testing.T) {
	set := MustSet("users", MustDescriptor("foo"))

	ds := set.Descriptors()
	ds[0] = MustDescriptor("changed")

	require.Equal(t, []string{"foo"}, set.FieldNames())
}

func TestSet_Empty(t *testing.T) {
	set, err := NewSet("empty")
	require.NoError(t, err)
	require.Equal(t, 0, set.Len())
	require.Empty(t, set.FieldNames())
}
