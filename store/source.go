package store

import (
	"github.com/arloliu/flexcol/column"
	"github.com/arloliu/flexcol/field"
	"github.com/segmentio/ksuid"
)

// RowSource identifies a stored row for error messages and events.
type RowSource struct {
	Table string
	ID    ksuid.KSUID
}

var _ column.DataSource = RowSource{}

// Description implements column.DataSource.
func (s RowSource) Description() string {
	return s.Table + " row " + s.ID.String()
}

// EventContext implements column.DataSource.
func (s RowSource) EventContext() map[string]any {
	return map[string]any{
		"table": s.Table,
		"id":    s.ID.String(),
	}
}

// PendingSource identifies a row that has not been inserted yet.
type PendingSource struct {
	Table string
}

var _ column.DataSource = PendingSource{}

// Description implements column.DataSource.
func (s PendingSource) Description() string {
	return s.Table + " new row"
}

// EventContext implements column.DataSource.
func (s PendingSource) EventContext() map[string]any {
	return map[string]any{"table": s.Table}
}

// NewColumn creates a column for a row about to be inserted into table.
func NewColumn(set *field.Set, table string, raw any, opts ...column.Option) (*column.Column, error) {
	return column.New(set, PendingSource{Table: table}, raw, opts...)
}
