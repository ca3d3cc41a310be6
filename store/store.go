package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/field"
	"github.com/arloliu/flexcol/internal/options"
	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
	"github.com/segmentio/ksuid"
)

var (
	// ErrNotFound is returned when a row does not exist.
	ErrNotFound = errors.New("store: row not found")
	// ErrInvalidTable is returned for an empty table name or one containing '/'.
	ErrInvalidTable = errors.New("store: invalid table name")
	// ErrCorruptRow is returned when a row value cannot be decoded.
	ErrCorruptRow = errors.New("store: corrupt row")
)

const (
	keySeparator = '/'
	// idLength is the size of a binary KSUID.
	idLength = 20
)

// Store keeps packed column values in pebble. It is safe for concurrent use;
// Update and Delete on the same store are serialized, so a row deleted
// while an Update is in flight stays deleted once Delete returns.
type Store struct {
	db     *pebble.DB
	logger zerolog.Logger
	sync   bool
	// mu orders Update's existence check and write against Delete.
	mu sync.Mutex
}

// Option configures a Store.
type Option = options.Option[*Store]

// WithLogger sets the logger for open, close and write events. The default
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return options.NoError(func(s *Store) {
		s.logger = logger
	})
}

// WithSync makes every write wait for the write-ahead log to be synced.
func WithSync(enabled bool) Option {
	return options.NoError(func(s *Store) {
		s.sync = enabled
	})
}

// Open opens or creates a store in dir. A nil pebbleOpts uses pebble's defaults.
func Open(dir string, pebbleOpts *pebble.Options, opts ...Option) (*Store, error) {
	s := &Store{logger: zerolog.Nop(), sync: true}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if pebbleOpts == nil {
		pebbleOpts = &pebble.Options{}
	}

	db, err := pebble.Open(dir, pebbleOpts)
	if err != nil {
		return nil, fmt.Errorf("open store %q: %w", dir, err)
	}
	s.db = db

	s.logger.Debug().Str("dir", dir).Msg("store opened")

	return s, nil
}

// Insert writes the column's stored value as a new row and returns its id.
func (s *Store) Insert(table string, col *column.Column) (ksuid.KSUID, error) {
	if err := validateTable(table); err != nil {
		return ksuid.Nil, err
	}

	id := ksuid.New()
	if err := s.write(table, id, col); err != nil {
		return ksuid.Nil, err
	}

	return id, nil
}

// Update overwrites an existing row.
//
// Returns:
//   - error: ErrNotFound if the row does not exist, or the column's
//     serialization error
func (s *Store) Update(table string, id ksuid.KSUID, col *column.Column) error {
	if err := validateTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.read(table, id); err != nil {
		return err
	}

	return s.write(table, id, col)
}

// Load reads a row and wraps it in an unparsed Column.
//
// Parameters:
//   - table, id: the row to read
//   - set: the row's field set
//   - opts: column options; they should match those the row was written with
//
// Returns:
//   - *column.Column: the column, with a RowSource as its data source
//   - error: ErrNotFound, ErrCorruptRow or a column configuration error
func (s *Store) Load(table string, id ksuid.KSUID, set *field.Set, opts ...column.Option) (*column.Column, error) {
	if err := validateTable(table); err != nil {
		return nil, err
	}

	raw, err := s.read(table, id)
	if err != nil {
		return nil, err
	}

	return column.New(set, RowSource{Table: table, ID: id}, raw, opts...)
}

// Delete removes a row. Deleting a missing row is not an error.
func (s *Store) Delete(table string, id ksuid.KSUID) error {
	if err := validateTable(table); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.db.Delete(rowKey(table, id), s.writeOptions()); err != nil {
		return fmt.Errorf("delete %s: %w", RowSource{Table: table, ID: id}.Description(), err)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	s.logger.Debug().Msg("store closed")

	return s.db.Close()
}

func (s *Store) write(table string, id ksuid.KSUID, col *column.Column) error {
	data, err := col.ToStoredData()
	if err != nil {
		return err
	}

	value, err := encodeValue(data)
	if err != nil {
		return err
	}

	src := RowSource{Table: table, ID: id}
	if err := s.db.Set(rowKey(table, id), value, s.writeOptions()); err != nil {
		return fmt.Errorf("write %s: %w", src.Description(), err)
	}

	s.logger.Debug().
		Str("table", table).
		Str("id", id.String()).
		Stringer("kind", valueKind(value[0])).
		Int("bytes", len(value)-1).
		Msg("row written")

	return nil
}

func (s *Store) read(table string, id ksuid.KSUID) (any, error) {
	src := RowSource{Table: table, ID: id}

	value, closer, err := s.db.Get(rowKey(table, id))
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, src.Description())
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", src.Description(), err)
	}
	defer closer.Close()

	// value is only valid until closer is closed; decodeValue copies it.
	raw, err := decodeValue(value)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Description(), err)
	}

	return raw, nil
}

func (s *Store) writeOptions() *pebble.WriteOptions {
	if s.sync {
		return pebble.Sync
	}

	return pebble.NoSync
}

func rowKey(table string, id ksuid.KSUID) []byte {
	key := make([]byte, 0, len(table)+1+idLength)
	key = append(key, table...)
	key = append(key, keySeparator)

	return append(key, id.Bytes()...)
}

func validateTable(table string) error {
	if table == "" || strings.ContainsRune(table, keySeparator) {
		return fmt.Errorf("%w: %q", ErrInvalidTable, table)
	}

	return nil
}
