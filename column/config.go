package column

import (
	"errors"

	"github.com/arloliu/flexcol/errs"
	"github.com/arloliu/flexcol/format"
	"github.com/arloliu/flexcol/internal/options"
)

// MinLengthLimit is the smallest accepted length limit.
const MinLengthLimit = 8

// Config is the complete configuration of a Column.
type Config struct {
	// UnknownFields decides whether keys that match no field survive re-serialization.
	UnknownFields format.UnknownPolicy
	// StorageMode selects bare JSON text or the binary envelope.
	StorageMode format.StorageMode
	// BinaryHeader writes the envelope header in binary mode. Without it the
	// stored value is bare JSON and cannot be compressed.
	BinaryHeader bool
	// LengthLimit is the maximum stored length: characters in text mode,
	// bytes in binary mode. Nil means unlimited.
	LengthLimit *int
	// CompressOver compresses binary payloads longer than this many bytes.
	// Nil disables compression.
	CompressOver *int
	// AllowNull stores an empty object as nil instead of an empty value.
	AllowNull bool
	// Structured marks a column whose type is itself JSON; ToStoredData then
	// returns the object instead of its text.
	Structured bool
	// Observer receives deserialize and serialize events. Nil means NopObserver.
	Observer Observer
}

// DefaultConfig returns the default configuration: text storage, unknown
// fields preserved, header enabled, no length limit, no compression, nulls allowed.
func DefaultConfig() Config {
	return Config{
		UnknownFields: format.UnknownPreserve,
		StorageMode:   format.StorageText,
		BinaryHeader:  true,
		AllowNull:     true,
		Observer:      NopObserver{},
	}
}

// Validate checks the configuration.
//
// Returns:
//   - error: ErrConfiguration naming the first invalid option
func (c *Config) Validate() error {
	if !c.UnknownFields.Valid() {
		return errs.Configuration("unknown_fields", c.UnknownFields, nil)
	}

	if !c.StorageMode.Valid() {
		return errs.Configuration("storage_mode", c.StorageMode, nil)
	}

	if c.LengthLimit != nil && *c.LengthLimit < MinLengthLimit {
		return errs.Configuration("length_limit", *c.LengthLimit, errors.New("must be at least 8"))
	}

	if c.CompressOver != nil {
		if *c.CompressOver < 0 {
			return errs.Configuration("compress_over", *c.CompressOver, errors.New("must not be negative"))
		}
		if c.StorageMode != format.StorageBinary || !c.BinaryHeader {
			return errs.Configuration("compress_over", *c.CompressOver,
				errors.New("compression requires binary storage with the header enabled"))
		}
	}

	if c.Structured && c.StorageMode != format.StorageText {
		return errs.Configuration("structured", c.Structured, errors.New("structured columns store text, not binary"))
	}

	return nil
}

// Option represents a functional option for configuring a Column.
type Option = options.Option[*Config]

// WithConfig replaces the whole configuration. Later options still apply on top.
func WithConfig(cfg Config) Option {
	return options.NoError(func(c *Config) {
		*c = cfg
	})
}

// WithUnknownFields sets the unknown field policy.
func WithUnknownFields(policy format.UnknownPolicy) Option {
	return options.NoError(func(c *Config) {
		c.UnknownFields = policy
	})
}

// WithStorageMode sets the storage mode.
func WithStorageMode(mode format.StorageMode) Option {
	return options.NoError(func(c *Config) {
		c.StorageMode = mode
	})
}

// WithBinaryHeader enables or disables the envelope header in binary mode.
func WithBinaryHeader(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.BinaryHeader = enabled
	})
}

// WithLengthLimit limits the stored length; limit must be at least 8.
func WithLengthLimit(limit int) Option {
	return options.NoError(func(c *Config) {
		c.LengthLimit = &limit
	})
}

// WithCompressOver compresses binary payloads longer than n bytes.
func WithCompressOver(n int) Option {
	return options.NoError(func(c *Config) {
		c.CompressOver = &n
	})
}

// WithAllowNull controls whether an empty object is stored as nil.
func WithAllowNull(allow bool) Option {
	return options.NoError(func(c *Config) {
		c.AllowNull = allow
	})
}

// WithStructured marks the column type as JSON.
func WithStructured(structured bool) Option {
	return options.NoError(func(c *Config) {
		c.Structured = structured
	})
}

// WithObserver sets the event observer; nil restores the no-op observer.
func WithObserver(o Observer) Option {
	return options.NoError(func(c *Config) {
		if o == nil {
			o = NopObserver{}
		}
		c.Observer = o
	})
}
